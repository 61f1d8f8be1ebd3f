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

	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

// Step is the result of an interceptor's request hook. A halted step ends the request phase
type Step struct {
	Request *Request
	Halted  bool
}

func Continue(request *Request) Step {
	return Step{Request: request}
}

func Halt(request *Request) Step {
	return Step{Request: request, Halted: true}
}

// Interceptor transforms a request on its way to the transport and the response on its way back.
// Request hooks run in chain order, response hooks in reverse
type Interceptor interface {

	// ProcessRequest returns the (possibly modified) request, and whether to skip the rest of the chain
	ProcessRequest(request *Request) (Step, error)

	// ProcessResponse returns the (possibly modified) response. The last hook to run must produce an Outcome
	ProcessResponse(response interface{}) interface{}
}

// AbstractInterceptor passes requests and responses through unmodified
type AbstractInterceptor struct{}

func (ai *AbstractInterceptor) ProcessRequest(request *Request) (Step, error) {
	return Continue(request), nil
}

func (ai *AbstractInterceptor) ProcessResponse(response interface{}) interface{} {
	return response
}

type functionInterceptor struct {
	name         string
	requestFunc  func(*Request) (Step, error)
	responseFunc func(interface{}) interface{}
}

// NewInterceptor creates an interceptor from functions. Either may be nil
func NewInterceptor(name string,
	requestFunc func(*Request) (Step, error),
	responseFunc func(interface{}) interface{}) Interceptor {
	return &functionInterceptor{
		name:         name,
		requestFunc:  requestFunc,
		responseFunc: responseFunc,
	}
}

func (fi *functionInterceptor) ProcessRequest(request *Request) (Step, error) {
	if fi.requestFunc == nil {
		return Continue(request), nil
	}

	return fi.requestFunc(request)
}

func (fi *functionInterceptor) ProcessResponse(response interface{}) interface{} {
	if fi.responseFunc == nil {
		return response
	}

	return fi.responseFunc(response)
}

func (fi *functionInterceptor) String() string {
	return fi.name
}

// processRequest folds the request through the chain, stopping at the first halted step
func processRequest(request *Request, interceptors []Interceptor) (*Request, error) {
	for _, interceptor := range interceptors {
		step, err := interceptor.ProcessRequest(request)
		if err != nil {
			return nil, errors.Wrapf(err, "Interceptor %s failed to process request", interceptorName(interceptor))
		}

		if step.Request == nil {
			return nil, errors.Errorf("Interceptor %s returned no request", interceptorName(interceptor))
		}

		request = step.Request

		if step.Halted {
			break
		}
	}

	return request, nil
}

// processResponse folds the response through the chain in reverse order
func processResponse(response interface{}, interceptors []Interceptor) (result interface{}) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = FailureOutcome(exceptionFailure(recoveredError(recovered)))
		}
	}()

	reversed := lo.Reverse(append([]Interceptor{}, interceptors...))

	return lo.Reduce(reversed, func(current interface{}, interceptor Interceptor, _ int) interface{} {
		return interceptor.ProcessResponse(current)
	}, response)
}

func interceptorName(interceptor Interceptor) string {
	if stringer, isStringer := interceptor.(fmt.Stringer); isStringer {
		return stringer.String()
	}

	return fmt.Sprintf("%T", interceptor)
}

func recoveredError(recovered interface{}) error {
	if err, isError := recovered.(error); isError {
		return err
	}

	return errors.Errorf("%v", recovered)
}
