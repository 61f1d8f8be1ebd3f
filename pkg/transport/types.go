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

package transport

import (
	"context"
	"time"
)

// StatusNoResponse is reported when the request was aborted or timed out before a response arrived
const StatusNoResponse = -1

// StatusFailed is reported when the request failed at the network level
const StatusFailed = 0

type Kind string

const (
	KindHTTP     Kind = "http"
	KindFastHTTP Kind = "fasthttp"

	DefaultKind = KindHTTP
)

// Options are passed through to the transport untouched by the pipeline
type Options struct {
	Timeout         time.Duration
	WithCredentials bool
	ResponseType    string
}

// Response is the completed state of a transport. All methods are only valid
// after the completion callback was invoked
type Response interface {

	// Status returns the HTTP status, StatusFailed or StatusNoResponse
	Status() int

	// StatusText returns the status line text
	StatusText() string

	// Body returns the raw response body
	Body() []byte

	// ResponseHeader returns a response header value, or "" if it is absent
	ResponseHeader(name string) string

	// WasAborted returns true if Abort was called (or the context was cancelled) before completion
	WasAborted() bool
}

// Transport is a single-use request capability, similar to a browser XHR object
type Transport interface {

	// Send starts the request. onComplete is invoked exactly once, from any goroutine, with
	// the transport's response view. An error is returned only if the request could not be started
	Send(ctx context.Context,
		method string,
		uri string,
		headers map[string]string,
		body []byte,
		options *Options,
		onComplete func(Response)) error

	// Abort cancels an in-flight request. It is advisory: completion still happens through onComplete
	Abort()
}

// Factory creates a fresh transport per request
type Factory func() Transport
