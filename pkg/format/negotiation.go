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
	"strings"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

// ErrNoMatchingFormat is returned by a detecting reader when no table entry matches the response
var ErrNoMatchingFormat = errors.New("No response format matches the response content type")

// Negotiation pairs a content type pattern with a response format spec
type Negotiation struct {
	Pattern string
	Format  interface{}
}

// DefaultFormats is the table consulted when no response format is given. Order matters, first match wins
var DefaultFormats = []Negotiation{
	{Pattern: ContentTypeTransitJSON, Format: NameTransit},
	{Pattern: "application/transit+transit", Format: NameTransit},
	{Pattern: ContentTypeJSON, Format: NameJSON},
	{Pattern: "text/plain", Format: NameText},
	{Pattern: "text/html", Format: NameText},
	{Pattern: ContentTypeAny, Format: NameRaw},
}

// DetectContentType reports whether contentType matches any of the accept entries. "*/*" matches anything,
// any other entry matches when it appears within the content type
func DetectContentType(contentType string, acceptEntries []string) bool {
	return lo.ContainsBy(acceptEntries, func(entry string) bool {
		return entry == ContentTypeAny || strings.Contains(contentType, entry)
	})
}

// GetDefaultFormat returns the format of the first table entry matching the response content type,
// or nil if none matches
func GetDefaultFormat(response Response, options *Options, table []Negotiation) (*ResponseFormat, error) {
	contentType := response.ResponseHeader("Content-Type")

	for _, entry := range table {
		if DetectContentType(contentType, []string{entry.Pattern}) {
			return GetResponseFormat(entry.Format, options)
		}
	}

	return nil, nil
}

// AcceptEntries returns the accept entries of a response format spec. A list spec yields the entries of
// each element, in order
func AcceptEntries(spec interface{}, options *Options) ([]string, error) {
	responseFormat, err := GetResponseFormat(spec, options)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to resolve response format")
	}

	return responseFormat.ContentType, nil
}

// Detect returns a reader that picks its format from the table at read time. Its accept entries are the
// table's patterns, in order
func Detect(options *Options, table []Negotiation) *ResponseFormat {
	patterns := lo.Map(table, func(entry Negotiation, _ int) string {
		return entry.Pattern
	})

	return &ResponseFormat{
		Read: func(response Response) (interface{}, error) {
			responseFormat, err := GetDefaultFormat(response, options, table)
			if err != nil {
				return nil, errors.Wrap(err, "Failed to resolve detected format")
			}

			if responseFormat == nil {
				return nil, errors.Wrapf(ErrNoMatchingFormat,
					"No response format matches content type %q", response.ResponseHeader("Content-Type"))
			}

			return responseFormat.Read(response)
		},
		Description: "detecting response format (" + strings.Join(patterns, ", ") + ")",
		ContentType: patterns,
	}
}
