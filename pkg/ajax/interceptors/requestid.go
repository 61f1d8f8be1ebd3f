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
	"github.com/nuclio/ajax/pkg/common/headers"

	"github.com/rs/xid"
)

// RequestID sends the request's id in a header, so that it can be correlated with server logs
type RequestID struct {
	ajax.AbstractInterceptor
	headerName string
}

// NewRequestID creates the interceptor. An empty header name means X-Request-Id
func NewRequestID(headerName string) *RequestID {
	if headerName == "" {
		headerName = headers.RequestID
	}

	return &RequestID{
		headerName: headerName,
	}
}

func (ri *RequestID) ProcessRequest(request *ajax.Request) (ajax.Step, error) {
	if _, hasRequestID := request.Header(ri.headerName); hasRequestID {
		return ajax.Continue(request), nil
	}

	requestID := request.ID
	if requestID == "" {
		requestID = xid.New().String()
	}

	modifiedRequest := request.WithHeader(ri.headerName, requestID)
	modifiedRequest.ID = requestID

	return ajax.Continue(modifiedRequest), nil
}

func (ri *RequestID) String() string {
	return "request-id"
}
