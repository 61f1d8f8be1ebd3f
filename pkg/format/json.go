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
	"encoding/json"
	"io"

	"github.com/nuclio/errors"
)

func JSONRequestFormat() *RequestFormat {
	return &RequestFormat{
		Write:       json.Marshal,
		ContentType: ContentTypeJSON,
	}
}

func JSONResponseFormat(options *Options) *ResponseFormat {
	prefix := []byte(options.Prefix)
	keywords := options.Keywords
	raw := options.Raw

	description := "JSON"
	if len(prefix) > 0 {
		description += " prefix '" + options.Prefix + "'"
	}
	if keywords {
		description += " keywordize"
	}

	return &ResponseFormat{
		Read: func(response Response) (interface{}, error) {
			return ReadJSON(bytes.TrimPrefix(response.Body(), prefix), keywords, raw)
		},
		Description: description,
		ContentType: []string{ContentTypeJSON},
	}
}

// ReadJSON parses a JSON document. Unless raw, integral numbers become int64, other numbers float64,
// and with keywords object keys become Keyword
func ReadJSON(body []byte, keywords bool, raw bool) (interface{}, error) {
	var value interface{}

	if raw {
		if err := json.Unmarshal(body, &value); err != nil {
			return nil, errors.Wrap(err, "Failed to parse JSON")
		}

		return value, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(&value); err != nil {
		return nil, errors.Wrap(err, "Failed to parse JSON")
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("Failed to parse JSON: unexpected data after top-level value")
	}

	return convertJSON(value, keywords), nil
}

func convertJSON(value interface{}, keywords bool) interface{} {
	switch typedValue := value.(type) {
	case map[string]interface{}:
		if keywords {
			converted := make(map[Keyword]interface{}, len(typedValue))
			for key, element := range typedValue {
				converted[Keyword(key)] = convertJSON(element, keywords)
			}
			return converted
		}

		converted := make(map[string]interface{}, len(typedValue))
		for key, element := range typedValue {
			converted[key] = convertJSON(element, keywords)
		}
		return converted

	case []interface{}:
		converted := make([]interface{}, len(typedValue))
		for index, element := range typedValue {
			converted[index] = convertJSON(element, keywords)
		}
		return converted

	default:
		return normalizeNumber(value)
	}
}
