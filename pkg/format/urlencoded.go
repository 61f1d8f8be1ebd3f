/*
Copyright 2023 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package format

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

// Param is a single flattened key/value pair
type Param struct {
	Key   string
	Value string
}

func URLRequestFormat() *RequestFormat {
	return &RequestFormat{
		Write: func(params interface{}) ([]byte, error) {
			encoded, err := EncodeParams(params)
			if err != nil {
				return nil, err
			}

			return []byte(encoded), nil
		},
		ContentType: ContentTypeURLEncoded,
	}
}

// EncodeParams renders params as a query string. Nested maps become key[sub]=v and sequences key[0]=v.
// Map keys are visited in sorted order
func EncodeParams(params interface{}) (string, error) {
	flattened, err := FlattenParams(params)
	if err != nil {
		return "", err
	}

	return strings.Join(lo.Map(flattened, func(param Param, _ int) string {
		return escapeKey(param.Key) + "=" + url.QueryEscape(param.Value)
	}), "&"), nil
}

// FlattenParams turns params (a map, url.Values, []Param or a struct) into an ordered list of pairs
func FlattenParams(params interface{}) ([]Param, error) {
	switch typedParams := params.(type) {
	case nil:
		return nil, nil
	case []Param:
		return typedParams, nil
	case url.Values:
		var flattened []Param
		for _, key := range sortedStrings(lo.Keys(typedParams)) {
			for _, value := range typedParams[key] {
				flattened = append(flattened, Param{Key: key, Value: value})
			}
		}
		return flattened, nil
	}

	value := reflect.ValueOf(params)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		return flattenValue("", value), nil
	case reflect.Struct:
		asMap, err := structToMap(value.Interface())
		if err != nil {
			return nil, errors.Wrap(err, "Failed to convert params to a map")
		}
		return flattenValue("", reflect.ValueOf(asMap)), nil
	default:
		return nil, errors.Errorf("Params must be a map or a struct, got %T", params)
	}
}

func flattenValue(prefix string, value reflect.Value) []Param {
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return []Param{{Key: prefix}}
		}
		value = value.Elem()
	}

	var flattened []Param

	switch value.Kind() {
	case reflect.Map:
		keysByName := map[string]reflect.Value{}
		for _, key := range value.MapKeys() {
			keysByName[stringify(key.Interface())] = key
		}

		for _, name := range sortedStrings(lo.Keys(keysByName)) {
			key := name
			if prefix != "" {
				key = prefix + "[" + name + "]"
			}
			flattened = append(flattened, flattenValue(key, value.MapIndex(keysByName[name]))...)
		}

	case reflect.Slice, reflect.Array:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return []Param{{Key: prefix, Value: stringify(value.Interface())}}
		}

		for index := 0; index < value.Len(); index++ {
			flattened = append(flattened,
				flattenValue(prefix+"["+strconv.Itoa(index)+"]", value.Index(index))...)
		}

	default:
		flattened = append(flattened, Param{Key: prefix, Value: stringify(value.Interface())})
	}

	return flattened
}

// escapeKey escapes a key but leaves the brackets of nested keys readable
func escapeKey(key string) string {
	return strings.NewReplacer("%5B", "[", "%5D", "]").Replace(url.QueryEscape(key))
}

func stringify(value interface{}) string {
	switch typedValue := value.(type) {
	case nil:
		return ""
	case string:
		return typedValue
	case []byte:
		return string(typedValue)
	case bool:
		return strconv.FormatBool(typedValue)
	case float32:
		return strconv.FormatFloat(float64(typedValue), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(typedValue, 'f', -1, 64)
	case time.Time:
		return typedValue.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return typedValue.String()
	default:
		return fmt.Sprint(value)
	}
}

func structToMap(value interface{}) (map[string]interface{}, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	asMap := map[string]interface{}{}
	if err := json.Unmarshal(encoded, &asMap); err != nil {
		return nil, err
	}

	return asMap, nil
}

func sortedStrings(values []string) []string {
	sort.Strings(values)
	return values
}
