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
	"fmt"
)

func TextRequestFormat() *RequestFormat {
	return &RequestFormat{
		Write: func(params interface{}) ([]byte, error) {
			switch typedParams := params.(type) {
			case nil:
				return nil, nil
			case []byte:
				return typedParams, nil
			case string:
				return []byte(typedParams), nil
			case fmt.Stringer:
				return []byte(typedParams.String()), nil
			default:
				return []byte(fmt.Sprint(params)), nil
			}
		},
		ContentType: ContentTypeText,
	}
}

// TextResponseFormat reads the body as a string
func TextResponseFormat() *ResponseFormat {
	return &ResponseFormat{
		Read: func(response Response) (interface{}, error) {
			return string(response.Body()), nil
		},
		Description: "raw text",
		ContentType: []string{ContentTypeAny},
	}
}

// RawResponseFormat returns the body bytes as is
func RawResponseFormat() *ResponseFormat {
	return &ResponseFormat{
		Read: func(response Response) (interface{}, error) {
			return response.Body(), nil
		},
		Description: "raw body",
		ContentType: []string{ContentTypeAny},
	}
}
