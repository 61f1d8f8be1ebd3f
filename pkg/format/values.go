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
	"math"
	"reflect"
	"strconv"
)

// Keyword is an interned name, used for keywordized JSON keys and transit "~:" values
type Keyword string

func (k Keyword) String() string {
	return string(k)
}

// Symbol is a transit "~$" value
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

// Set is an unordered transit collection
type Set []interface{}

// List is a transit list, kept distinct from an array
type List []interface{}

type MapEntry struct {
	Key   interface{}
	Value interface{}
}

// CompositeMap is a map whose keys are not comparable Go values (maps, sets, arrays)
type CompositeMap []MapEntry

// TaggedValue holds a transit extension value with no native representation
type TaggedValue struct {
	Tag   string
	Value interface{}
}

// normalizeNumber collapses the integer and float widths decoders produce into int64, uint64 and float64
func normalizeNumber(value interface{}) interface{} {
	switch typedValue := value.(type) {
	case int:
		return int64(typedValue)
	case int8:
		return int64(typedValue)
	case int16:
		return int64(typedValue)
	case int32:
		return int64(typedValue)
	case uint:
		return normalizeNumber(uint64(typedValue))
	case uint8:
		return int64(typedValue)
	case uint16:
		return int64(typedValue)
	case uint32:
		return int64(typedValue)
	case uint64:
		if typedValue <= math.MaxInt64 {
			return int64(typedValue)
		}
		return typedValue
	case float32:
		return float64(typedValue)
	case json.Number:
		if intValue, err := typedValue.Int64(); err == nil {
			return intValue
		}
		if floatValue, err := strconv.ParseFloat(string(typedValue), 64); err == nil {
			return floatValue
		}
		return string(typedValue)
	default:
		return value
	}
}

// buildMap picks the narrowest Go map type that can hold the given entries
func buildMap(entries []MapEntry) interface{} {
	allKeywords, allStrings, allComparable := true, true, true

	for _, entry := range entries {
		switch entry.Key.(type) {
		case Keyword:
			allStrings = false
		case string:
			allKeywords = false
		default:
			allKeywords = false
			allStrings = false
			if entry.Key != nil && !reflect.TypeOf(entry.Key).Comparable() {
				allComparable = false
			}
		}
	}

	switch {
	case len(entries) == 0 || allStrings:
		result := make(map[string]interface{}, len(entries))
		for _, entry := range entries {
			result[entry.Key.(string)] = entry.Value
		}
		return result
	case allKeywords:
		result := make(map[Keyword]interface{}, len(entries))
		for _, entry := range entries {
			result[entry.Key.(Keyword)] = entry.Value
		}
		return result
	case allComparable:
		result := make(map[interface{}]interface{}, len(entries))
		for _, entry := range entries {
			result[entry.Key] = entry.Value
		}
		return result
	default:
		return CompositeMap(entries)
	}
}
