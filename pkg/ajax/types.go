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
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nuclio/ajax/pkg/common/headers"
	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/nuclio-sdk-go"
)

type FailureKind string

const (
	FailureKindError     FailureKind = "error"
	FailureKindParse     FailureKind = "parse"
	FailureKindAborted   FailureKind = "aborted"
	FailureKindTimeout   FailureKind = "timeout"
	FailureKindFailed    FailureKind = "failed"
	FailureKindException FailureKind = "exception"
)

// Request describes a single ajax call. Interceptors never mutate a request in place, they
// return a modified Clone
type Request struct {
	URI     string
	Method  string
	Headers map[string]string

	// structured value, written into Body by the request format (or into the URI for GET)
	Params interface{}

	// pre-serialized payload. when set, Params are never applied
	Body []byte

	// request format spec: a format.Name, *format.RequestFormat or format.RequestWriter
	Format interface{}

	// response format spec: as above, a list of specs, or nil for content negotiation
	ResponseFormat interface{}

	FormatOptions format.Options
	Interceptors  []Interceptor

	// transport override. nil means a fresh transport from the client's factory
	API transport.Transport

	Timeout         time.Duration
	WithCredentials bool
	ResponseType    string

	// receives the outcome, exactly once
	Handler func(Outcome)

	// assigned at normalization when empty
	ID string
}

// Clone returns a copy whose headers and interceptors can be modified independently
func (r *Request) Clone() *Request {
	clone := *r

	if r.Headers != nil {
		clone.Headers = make(map[string]string, len(r.Headers))
		for name, value := range r.Headers {
			clone.Headers[name] = value
		}
	}

	if r.Interceptors != nil {
		clone.Interceptors = append([]Interceptor{}, r.Interceptors...)
	}

	return &clone
}

// WithHeader returns a clone with the header set, replacing any differently-cased header of the same name
func (r *Request) WithHeader(name string, value string) *Request {
	clone := r.Clone()
	if clone.Headers == nil {
		clone.Headers = map[string]string{}
	}

	for existingName := range clone.Headers {
		if strings.EqualFold(existingName, name) {
			delete(clone.Headers, existingName)
		}
	}

	clone.Headers[name] = value

	return clone
}

// Header returns the value of a header, matching its name case-insensitively
func (r *Request) Header(name string) (string, bool) {
	return headers.Lookup(r.Headers, name)
}

// Outcome is the result delivered to a handler. On success Value holds the parsed response,
// otherwise a *Failure
type Outcome struct {
	OK    bool
	Value interface{}
}

func SuccessOutcome(value interface{}) Outcome {
	return Outcome{OK: true, Value: value}
}

func FailureOutcome(failure *Failure) Outcome {
	return Outcome{OK: false, Value: failure}
}

// Failure returns the failure of a failed outcome, nil otherwise
func (o Outcome) Failure() *Failure {
	failure, _ := o.Value.(*Failure)
	return failure
}

// Failure is the structured description of a failed request. Which of Response, ParseError and
// Exception is populated depends on Kind
type Failure struct {
	Status     int
	StatusText string
	Kind       FailureKind

	// parsed body of a non-2xx response
	Response interface{}

	// set when the body could not be read
	ParseError   *Failure
	OriginalText string

	Exception error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure (status %d): %s", f.Kind, f.Status, f.StatusText)
}

// ToError converts an HTTP error failure to the matching status error. Other failures are
// returned as is
func (f *Failure) ToError() error {
	if f.Kind != FailureKindError {
		return f
	}

	message := f.Error()

	switch f.Status {
	case http.StatusBadRequest:
		return nuclio.NewErrBadRequest(message)
	case http.StatusUnauthorized:
		return nuclio.NewErrUnauthorized(message)
	case http.StatusForbidden:
		return nuclio.NewErrForbidden(message)
	case http.StatusNotFound:
		return nuclio.NewErrNotFound(message)
	case http.StatusConflict:
		return nuclio.NewErrConflict(message)
	case http.StatusPreconditionFailed:
		return nuclio.NewErrPreconditionFailed(message)
	case http.StatusUnprocessableEntity:
		return nuclio.NewErrUnprocessableEntity(message)
	case http.StatusBadGateway:
		return nuclio.NewErrBadGateway(message)
	}

	if f.Status >= http.StatusInternalServerError {
		return nuclio.NewErrInternalServerError(message)
	}

	return f
}
