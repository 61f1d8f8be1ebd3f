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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
)

type TransitType string

const (
	TransitTypeJSON    TransitType = "json"
	TransitTypeMsgpack TransitType = "msgpack"
)

// integers outside this range lose precision as JSON numbers and are written as "~i" strings
const maxSafeJSONInteger = 1<<53 - 1

const (
	transitMapMarker = "^ "
	transitTagPrefix = "~#"
)

type TransitWriter interface {
	Write(value interface{}) ([]byte, error)
}

type TransitReader interface {
	Read(data []byte) (interface{}, error)
}

func TransitRequestFormat(options *Options) *RequestFormat {
	writer := options.Writer
	if writer == nil {
		writer = NewTransitWriter(options.Type)
	}

	return &RequestFormat{
		Write:       writer.Write,
		ContentType: transitContentType(options.Type),
	}
}

func TransitResponseFormat(options *Options) *ResponseFormat {
	reader := options.Reader
	if reader == nil {
		reader = NewTransitReader(options.Type, options.Raw)
	}

	return &ResponseFormat{
		Read: func(response Response) (interface{}, error) {
			return reader.Read(response.Body())
		},
		Description: "Transit",
		ContentType: []string{transitContentType(options.Type)},
	}
}

func transitContentType(transitType TransitType) string {
	if transitType == TransitTypeMsgpack {
		return ContentTypeTransitMsgpack
	}

	return ContentTypeTransitJSON
}

type transitWriter struct {
	transitType TransitType
}

// NewTransitWriter creates a writer for the given encoding (json if empty). Maps are emitted in key order
// and no cache codes are written
func NewTransitWriter(transitType TransitType) TransitWriter {
	return &transitWriter{transitType: transitType}
}

func (w *transitWriter) Write(value interface{}) ([]byte, error) {
	representation, err := w.emit(value, false)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode transit value")
	}

	// top level scalars are quoted
	if !isComposite(representation) {
		representation = []interface{}{transitTagPrefix + "'", representation}
	}

	if w.transitType == TransitTypeMsgpack {
		var buffer bytes.Buffer
		if err := msgpack.NewEncoder(&buffer).SortMapKeys(true).Encode(representation); err != nil {
			return nil, errors.Wrap(err, "Failed to encode transit msgpack")
		}
		return buffer.Bytes(), nil
	}

	return json.Marshal(representation)
}

func (w *transitWriter) emit(value interface{}, asKey bool) (interface{}, error) {
	switch typedValue := value.(type) {
	case nil:
		if asKey {
			return "~_", nil
		}
		return nil, nil
	case bool:
		if asKey {
			if typedValue {
				return "~?t", nil
			}
			return "~?f", nil
		}
		return typedValue, nil
	case string:
		if strings.HasPrefix(typedValue, "~") ||
			strings.HasPrefix(typedValue, "^") ||
			strings.HasPrefix(typedValue, "`") {
			return "~" + typedValue, nil
		}
		return typedValue, nil
	case Keyword:
		return "~:" + string(typedValue), nil
	case Symbol:
		return "~$" + string(typedValue), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return w.emitInteger(normalizeNumber(typedValue), asKey), nil
	case float32:
		return w.emitFloat(float64(typedValue), asKey), nil
	case float64:
		return w.emitFloat(typedValue, asKey), nil
	case json.Number:
		return w.emit(normalizeNumber(typedValue), asKey)
	case *big.Int:
		return "~n" + typedValue.String(), nil
	case time.Time:
		return "~m" + strconv.FormatInt(typedValue.UnixMilli(), 10), nil
	case uuid.UUID:
		return "~u" + typedValue.String(), nil
	case []byte:
		return "~b" + base64.StdEncoding.EncodeToString(typedValue), nil
	case Set:
		return w.emitTagged("set", []interface{}(typedValue))
	case List:
		return w.emitTagged("list", []interface{}(typedValue))
	case CompositeMap:
		return w.emitCompositeMap(typedValue)
	case TaggedValue:
		return w.emitTagged(typedValue.Tag, typedValue.Value)
	}

	reflectedValue := reflect.ValueOf(value)

	switch reflectedValue.Kind() {
	case reflect.Ptr, reflect.Interface:
		if reflectedValue.IsNil() {
			return w.emit(nil, asKey)
		}
		return w.emit(reflectedValue.Elem().Interface(), asKey)
	case reflect.String:
		return w.emit(reflectedValue.String(), asKey)
	case reflect.Map:
		return w.emitMap(reflectedValue)
	case reflect.Slice, reflect.Array:
		array := make([]interface{}, 0, reflectedValue.Len())
		for index := 0; index < reflectedValue.Len(); index++ {
			element, err := w.emit(reflectedValue.Index(index).Interface(), false)
			if err != nil {
				return nil, err
			}
			array = append(array, element)
		}
		return array, nil
	case reflect.Struct:

		// structs are written the way encoding/json sees them
		asMap, err := structToMap(value)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to convert %T", value)
		}
		return w.emit(asMap, asKey)
	default:
		return nil, errors.Errorf("Unsupported transit value type: %T", value)
	}
}

func (w *transitWriter) emitInteger(value interface{}, asKey bool) interface{} {
	switch typedValue := value.(type) {
	case int64:
		if asKey || (w.transitType != TransitTypeMsgpack &&
			(typedValue > maxSafeJSONInteger || typedValue < -maxSafeJSONInteger)) {
			return "~i" + strconv.FormatInt(typedValue, 10)
		}
		return typedValue
	case uint64:
		if asKey || w.transitType != TransitTypeMsgpack {
			return "~i" + strconv.FormatUint(typedValue, 10)
		}
		return typedValue
	default:
		return value
	}
}

func (w *transitWriter) emitFloat(value float64, asKey bool) interface{} {
	switch {
	case math.IsNaN(value):
		return "~zNaN"
	case math.IsInf(value, 1):
		return "~zINF"
	case math.IsInf(value, -1):
		return "~z-INF"
	}

	// integral floats would read back as integers
	if asKey || (w.transitType != TransitTypeMsgpack && value == math.Trunc(value)) {
		return "~d" + strconv.FormatFloat(value, 'g', -1, 64)
	}

	return value
}

func (w *transitWriter) emitTagged(tag string, value interface{}) (interface{}, error) {
	representation, err := w.emit(value, false)
	if err != nil {
		return nil, err
	}

	return []interface{}{transitTagPrefix + tag, representation}, nil
}

func (w *transitWriter) emitMap(value reflect.Value) (interface{}, error) {
	type emittedEntry struct {
		key   interface{}
		value interface{}
	}

	entries := make([]emittedEntry, 0, value.Len())
	stringKeys := true

	for _, key := range value.MapKeys() {
		emittedKey, err := w.emit(key.Interface(), true)
		if err != nil {
			return nil, err
		}

		if _, isString := emittedKey.(string); !isString {
			stringKeys = false
		}

		emittedValue, err := w.emit(value.MapIndex(key).Interface(), false)
		if err != nil {
			return nil, err
		}

		entries = append(entries, emittedEntry{key: emittedKey, value: emittedValue})
	}

	// composite keys
	if !stringKeys {
		compositeMap := make(CompositeMap, 0, len(entries))
		for _, key := range value.MapKeys() {
			compositeMap = append(compositeMap, MapEntry{Key: key.Interface(), Value: value.MapIndex(key).Interface()})
		}
		return w.emitCompositeMap(compositeMap)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key.(string) < entries[j].key.(string)
	})

	if w.transitType == TransitTypeMsgpack {
		result := make(map[string]interface{}, len(entries))
		for _, entry := range entries {
			result[entry.key.(string)] = entry.value
		}
		return result, nil
	}

	result := make([]interface{}, 0, 1+2*len(entries))
	result = append(result, transitMapMarker)
	for _, entry := range entries {
		result = append(result, entry.key, entry.value)
	}

	return result, nil
}

func (w *transitWriter) emitCompositeMap(compositeMap CompositeMap) (interface{}, error) {
	pairs := make([]interface{}, 0, 2*len(compositeMap))

	for _, entry := range compositeMap {
		key, err := w.emit(entry.Key, false)
		if err != nil {
			return nil, err
		}

		value, err := w.emit(entry.Value, false)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, key, value)
	}

	return []interface{}{transitTagPrefix + "cmap", pairs}, nil
}

func isComposite(representation interface{}) bool {
	switch representation.(type) {
	case []interface{}, map[string]interface{}:
		return true
	default:
		return false
	}
}
