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
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"
	"github.com/nuclio/ajax/pkg/transport/nethttp"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/rs/xid"
)

// ErrNoHandler is returned when a request has no handler to deliver its outcome to
var ErrNoHandler = errors.New("No handler given")

// Client runs requests through the interceptor chain. It holds the defaults shared by all of its
// requests: interceptors, handlers and options
type Client struct {
	logger           logger.Logger
	transportFactory transport.Factory

	lock                sync.RWMutex
	defaultInterceptors []Interceptor
	defaultHandler      func(response interface{})
	defaultErrorHandler func(failure *Failure)
	defaultOptions      Defaults
}

// NewClient creates a client. A nil factory means plain net/http transports
func NewClient(parentLogger logger.Logger, transportFactory transport.Factory) (*Client, error) {
	if parentLogger == nil {
		return nil, errors.New("Logger is required")
	}

	newClient := &Client{
		logger:           parentLogger.GetChild("ajax"),
		transportFactory: transportFactory,
	}

	if newClient.transportFactory == nil {
		newClient.transportFactory = nethttp.NewFactory(newClient.logger, 0, false)
	}

	newClient.defaultHandler = newClient.logResponse
	newClient.defaultErrorHandler = newClient.logFailure

	return newClient, nil
}

func (c *Client) GetDefaultInterceptors() []Interceptor {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return append([]Interceptor{}, c.defaultInterceptors...)
}

// SetDefaultInterceptors sets the interceptors that run after the per-request ones, on every request
func (c *Client) SetDefaultInterceptors(interceptors ...Interceptor) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defaultInterceptors = append([]Interceptor{}, interceptors...)
}

func (c *Client) GetDefaultHandlers() (func(response interface{}), func(failure *Failure)) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.defaultHandler, c.defaultErrorHandler
}

// SetDefaultHandler sets the handler for requests that don't set one. nil leaves such requests without one
func (c *Client) SetDefaultHandler(handler func(response interface{})) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defaultHandler = handler
}

// SetDefaultErrorHandler sets the error handler for requests that don't set one
func (c *Client) SetDefaultErrorHandler(errorHandler func(failure *Failure)) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defaultErrorHandler = errorHandler
}

func (c *Client) GetDefaults() Defaults {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.defaultOptions.clone()
}

// SetDefaults sets the options merged into every convenience API call
func (c *Client) SetDefaults(defaults Defaults) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defaultOptions = defaults.clone()
}

// Request runs the request through the chain and hands it to the transport. The outcome is delivered to
// request.Handler once the transport completes. Errors raised before the transport is invoked are
// returned, and the handler is not called. The returned transport may be used to abort the request
func (c *Client) Request(ctx context.Context, request *Request) (transport.Transport, error) {
	if request.Handler == nil {
		return nil, ErrNoHandler
	}

	normalizedRequest, err := c.normalize(request)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to normalize request")
	}

	interceptors := normalizedRequest.Interceptors

	processedRequest, err := processRequest(normalizedRequest, interceptors)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to process request")
	}

	requestTransport := processedRequest.API
	if requestTransport == nil {
		requestTransport = c.transportFactory()
	}

	c.logger.DebugWith("Sending request",
		"id", processedRequest.ID,
		"method", processedRequest.Method,
		"uri", processedRequest.URI,
		"bodyLength", len(processedRequest.Body))

	var deliverOnce sync.Once
	handler := processedRequest.Handler

	if err := requestTransport.Send(ctx,
		processedRequest.Method,
		processedRequest.URI,
		processedRequest.Headers,
		processedRequest.Body,
		&transport.Options{
			Timeout:         processedRequest.Timeout,
			WithCredentials: processedRequest.WithCredentials,
			ResponseType:    processedRequest.ResponseType,
		},
		func(response transport.Response) {
			deliverOnce.Do(func() {
				handler(c.toOutcome(processedRequest.ID, processResponse(response, interceptors)))
			})
		}); err != nil {
		return nil, errors.Wrap(err, "Failed to send request")
	}

	return requestTransport, nil
}

// normalize uppercases the method, assigns an id and builds the interceptor chain
func (c *Client) normalize(request *Request) (*Request, error) {
	normalizedRequest := request.Clone()

	normalizedRequest.Method = strings.ToUpper(request.Method)
	if normalizedRequest.Method == "" {
		normalizedRequest.Method = http.MethodGet
	}

	if normalizedRequest.ID == "" {
		normalizedRequest.ID = xid.New().String()
	}

	responseFormat, err := format.GetResponseFormat(request.ResponseFormat, &normalizedRequest.FormatOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to resolve response format")
	}

	interceptors := []Interceptor{NewResponseFormatInterceptor(responseFormat)}
	interceptors = append(interceptors, request.Interceptors...)
	interceptors = append(interceptors, c.GetDefaultInterceptors()...)
	interceptors = append(interceptors, standardInterceptors()...)

	normalizedRequest.Interceptors = interceptors

	return normalizedRequest, nil
}

func (c *Client) toOutcome(requestID string, result interface{}) Outcome {
	if outcome, isOutcome := result.(Outcome); isOutcome {
		return outcome
	}

	c.logger.WarnWith("Response interceptors did not produce an outcome",
		"id", requestID,
		"type", typeName(result))

	return FailureOutcome(exceptionFailure(errors.Errorf("Response interceptors produced %s instead of an outcome",
		typeName(result))))
}

func (c *Client) logResponse(response interface{}) {
	c.logger.DebugWith("Request succeeded", "responseType", typeName(response))
}

func (c *Client) logFailure(failure *Failure) {
	c.logger.WarnWith("Request failed",
		"status", failure.Status,
		"statusText", failure.StatusText,
		"kind", failure.Kind)
}
