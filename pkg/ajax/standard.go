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

package ajax

import (
	"net/http"
	"strings"

	"github.com/nuclio/ajax/pkg/common/headers"
	"github.com/nuclio/ajax/pkg/format"

	"github.com/nuclio/errors"
)

// ProcessGet moves the params of a GET into the query string and ends the request phase
type ProcessGet struct {
	AbstractInterceptor
}

func (pg *ProcessGet) ProcessRequest(request *Request) (Step, error) {
	if request.Method != http.MethodGet {
		return Continue(request), nil
	}

	query, err := format.EncodeParams(request.Params)
	if err != nil {
		return Step{}, errors.Wrap(err, "Failed to encode query parameters")
	}

	processedRequest := request.Clone()
	processedRequest.URI = appendQuery(request.URI, query)
	processedRequest.Params = nil

	return Halt(processedRequest), nil
}

func (pg *ProcessGet) String() string {
	return "process-get"
}

// DirectSubmission ends the request phase when the body is already serialized
type DirectSubmission struct {
	AbstractInterceptor
}

func (ds *DirectSubmission) ProcessRequest(request *Request) (Step, error) {
	if request.Body != nil {
		return Halt(request), nil
	}

	return Continue(request), nil
}

func (ds *DirectSubmission) String() string {
	return "direct-submission"
}

// ApplyRequestFormat writes the params into the body with the request format and sets the content type
type ApplyRequestFormat struct {
	AbstractInterceptor
}

func (arf *ApplyRequestFormat) ProcessRequest(request *Request) (Step, error) {
	if request.Params == nil {
		return Continue(request), nil
	}

	requestFormat, err := format.GetRequestFormat(request.Format, &request.FormatOptions)
	if err != nil {
		return Step{}, errors.Wrap(err, "Failed to resolve request format")
	}

	body, err := requestFormat.Write(request.Params)
	if err != nil {
		return Step{}, errors.Wrap(err, "Failed to write request body")
	}

	processedRequest := request.Clone()
	processedRequest.Body = body

	if requestFormat.ContentType != "" {
		processedRequest = processedRequest.WithHeader(headers.ContentType, requestFormat.ContentType)
	}

	return Continue(processedRequest), nil
}

func (arf *ApplyRequestFormat) String() string {
	return "apply-request-format"
}

// standardInterceptors end every chain
func standardInterceptors() []Interceptor {
	return []Interceptor{
		&ProcessGet{},
		&DirectSubmission{},
		&ApplyRequestFormat{},
	}
}

func appendQuery(uri string, query string) string {
	switch {
	case query == "":
		return uri
	case !strings.Contains(uri, "?"):
		return uri + "?" + query
	case strings.HasSuffix(uri, "?") || strings.HasSuffix(uri, "&"):
		return uri + query
	default:
		return uri + "&" + query
	}
}
