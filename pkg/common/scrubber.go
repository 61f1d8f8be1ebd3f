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
	"path"
	"reflect"
	"strings"

	"github.com/nuclio/ajax/pkg/common/headers"

	"github.com/nuclio/gosecretive"
)

const ReferencePrefix = "$ref:"

// HeaderScrubber replaces sensitive header values with references, so that requests can be logged
type HeaderScrubber struct {
	sensitiveHeaders []string
}

// NewHeaderScrubber creates a scrubber for the well known sensitive headers and the given extra ones
func NewHeaderScrubber(extraSensitiveHeaders ...string) *HeaderScrubber {
	return &HeaderScrubber{
		sensitiveHeaders: extraSensitiveHeaders,
	}
}

// Scrub returns a copy of the headers with sensitive values replaced, and the secrets map
// that restores them
func (s *HeaderScrubber) Scrub(headersToScrub map[string]string) (map[string]string, map[string]string) {
	if len(headersToScrub) == 0 {
		return map[string]string{}, map[string]string{}
	}

	headersAsMap := make(map[string]interface{}, len(headersToScrub))
	for name, value := range headersToScrub {
		headersAsMap[name] = value
	}

	scrubbedHeaders, secretsMap := gosecretive.Scrub(headersAsMap, func(fieldPath string, valueToScrub interface{}) *string {
		if !s.isSensitive(path.Base(fieldPath)) {
			return nil
		}

		// empty values carry nothing to hide
		if kind := reflect.ValueOf(valueToScrub).Kind(); kind == reflect.String &&
			reflect.ValueOf(valueToScrub).String() == "" {
			return nil
		}

		secretKey := ReferencePrefix + fieldPath
		return &secretKey
	})

	return s.toStringMap(scrubbedHeaders, headersToScrub), secretsMap
}

// Restore restores scrubbed header values from a secrets map
func (s *HeaderScrubber) Restore(scrubbedHeaders map[string]string, secretsMap map[string]string) map[string]string {
	headersAsMap := make(map[string]interface{}, len(scrubbedHeaders))
	for name, value := range scrubbedHeaders {
		headersAsMap[name] = value
	}

	return s.toStringMap(gosecretive.Restore(headersAsMap, secretsMap), scrubbedHeaders)
}

func (s *HeaderScrubber) isSensitive(name string) bool {
	if headers.IsSensitiveHeader(name) {
		return true
	}

	for _, sensitiveHeader := range s.sensitiveHeaders {
		if strings.EqualFold(sensitiveHeader, name) {
			return true
		}
	}

	return false
}

func (s *HeaderScrubber) toStringMap(object interface{}, fallback map[string]string) map[string]string {
	objectAsMap, isMap := object.(map[string]interface{})
	if !isMap {
		return fallback
	}

	result := make(map[string]string, len(objectAsMap))
	for name, value := range objectAsMap {
		if stringValue, isString := value.(string); isString {
			result[name] = stringValue
		}
	}

	return result
}
