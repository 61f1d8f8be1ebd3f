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
)

// DefaultHeaders adds headers the request doesn't already set
type DefaultHeaders struct {
	ajax.AbstractInterceptor
	headers map[string]string
}

func NewDefaultHeaders(defaultHeaders map[string]string) *DefaultHeaders {
	copiedHeaders := make(map[string]string, len(defaultHeaders))
	for name, value := range defaultHeaders {
		copiedHeaders[name] = value
	}

	return &DefaultHeaders{
		headers: copiedHeaders,
	}
}

func (dh *DefaultHeaders) ProcessRequest(request *ajax.Request) (ajax.Step, error) {
	modifiedRequest := request

	for name, value := range dh.headers {
		if _, exists := modifiedRequest.Header(name); !exists {
			modifiedRequest = modifiedRequest.WithHeader(name, value)
		}
	}

	return ajax.Continue(modifiedRequest), nil
}

func (dh *DefaultHeaders) String() string {
	return "default-headers"
}

// Authorization sends "Authorization: Token <jwt>" when a token is available
type Authorization struct {
	ajax.AbstractInterceptor
	tokenProvider func() string
}

// NewAuthorization creates the interceptor. The provider is called per request, so that a token
// obtained by logging in applies to subsequent requests
func NewAuthorization(tokenProvider func() string) *Authorization {
	return &Authorization{
		tokenProvider: tokenProvider,
	}
}

func (a *Authorization) ProcessRequest(request *ajax.Request) (ajax.Step, error) {
	if _, hasAuthorization := request.Header(headers.Authorization); hasAuthorization {
		return ajax.Continue(request), nil
	}

	token := a.tokenProvider()
	if token == "" {
		return ajax.Continue(request), nil
	}

	return ajax.Continue(request.WithHeader(headers.Authorization, headers.AuthorizationTokenPrefix+token)), nil
}

func (a *Authorization) String() string {
	return "authorization"
}
