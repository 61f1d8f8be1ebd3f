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

package common

import (
	"fmt"
	"strings"

	"github.com/nuclio/errors"
)

// StringSliceToStringMap converts ["a=x", "b=y"] to {a: x, b: y}. Values may contain the separator
func StringSliceToStringMap(source []string, separator string) (map[string]string, error) {
	result := map[string]string{}

	for _, keyAndValue := range source {
		kv := strings.SplitN(keyAndValue, separator, 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, errors.Errorf("Expected key%svalue, got %q", separator, keyAndValue)
		}

		result[kv[0]] = kv[1]
	}

	return result, nil
}

// SliceToMap converts [key1, val1, key2, val2 ...] to {key1: val1, key2: val2 ...}. Keys must be strings
// or fmt.Stringers
func SliceToMap(keysAndValues []interface{}) (map[string]interface{}, error) {
	if len(keysAndValues)%2 != 0 {
		return nil, errors.Errorf("Expected key/value pairs, got %d elements", len(keysAndValues))
	}

	result := make(map[string]interface{}, len(keysAndValues)/2)

	for index := 0; index < len(keysAndValues); index += 2 {
		switch typedKey := keysAndValues[index].(type) {
		case string:
			result[typedKey] = keysAndValues[index+1]
		case fmt.Stringer:
			result[typedKey.String()] = keysAndValues[index+1]
		default:
			return nil, errors.Errorf("Key at index %d must be a string, got %T", index, keysAndValues[index])
		}
	}

	return result, nil
}
