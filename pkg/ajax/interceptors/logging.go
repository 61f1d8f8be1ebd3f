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

package interceptors

import (
	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/logger"
)

// Logging logs every request and response passing through it, with sensitive headers scrubbed
type Logging struct {
	ajax.AbstractInterceptor
	logger   logger.Logger
	scrubber *common.HeaderScrubber
}

func NewLogging(parentLogger logger.Logger, extraSensitiveHeaders ...string) *Logging {
	return &Logging{
		logger:   parentLogger.GetChild("requests"),
		scrubber: common.NewHeaderScrubber(extraSensitiveHeaders...),
	}
}

func (l *Logging) ProcessRequest(request *ajax.Request) (ajax.Step, error) {
	scrubbedHeaders, _ := l.scrubber.Scrub(request.Headers)

	l.logger.DebugWith("Request",
		"id", request.ID,
		"method", request.Method,
		"uri", request.URI,
		"headers", scrubbedHeaders,
		"hasParams", request.Params != nil,
		"bodyLength", len(request.Body))

	return ajax.Continue(request), nil
}

func (l *Logging) ProcessResponse(response interface{}) interface{} {
	switch typedResponse := response.(type) {
	case transport.Response:
		l.logger.DebugWith("Response",
			"status", typedResponse.Status(),
			"statusText", typedResponse.StatusText(),
			"contentType", typedResponse.ResponseHeader("Content-Type"),
			"bodyLength", len(typedResponse.Body()),
			"aborted", typedResponse.WasAborted())
	case ajax.Outcome:
		l.logger.DebugWith("Outcome", "ok", typedResponse.OK)
	}

	return response
}

func (l *Logging) String() string {
	return "logging"
}
