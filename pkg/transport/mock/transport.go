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

package mock

import (
	"context"
	"net/http"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/stretchr/testify/mock"
)

// Transport completes synchronously with whatever response the expectation returns.
// Expectations are set on "Send" with (method, uri, headers, body, options) and must return
// (transport.Response, error)
type Transport struct {
	mock.Mock
}

func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) Send(ctx context.Context,
	method string,
	uri string,
	headers map[string]string,
	body []byte,
	options *transport.Options,
	onComplete func(transport.Response)) error {
	args := t.Called(method, uri, headers, body, options)

	if err := args.Error(1); err != nil {
		return err
	}

	response, _ := args.Get(0).(transport.Response)
	onComplete(response)

	return nil
}

func (t *Transport) Abort() {
	t.Called()
}

// Response is a canned transport response
type Response struct {
	StatusCode int
	Text       string
	Headers    http.Header
	Content    []byte
	Aborted    bool
}

// NewResponse creates a response with a content type header
func NewResponse(statusCode int, contentType string, content string) *Response {
	return &Response{
		StatusCode: statusCode,
		Text:       http.StatusText(statusCode),
		Headers:    http.Header{"Content-Type": []string{contentType}},
		Content:    []byte(content),
	}
}

func (r *Response) Status() int {
	return r.StatusCode
}

func (r *Response) StatusText() string {
	return r.Text
}

func (r *Response) Body() []byte {
	return r.Content
}

func (r *Response) ResponseHeader(name string) string {
	if r.Headers == nil {
		return ""
	}

	return r.Headers.Get(name)
}

func (r *Response) WasAborted() bool {
	return r.Aborted
}
