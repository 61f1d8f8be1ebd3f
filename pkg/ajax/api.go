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
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/imdario/mergo"
	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
)

// Options are the knobs of a convenience API call. Keys in parentheses are the names DoKV accepts
type Options struct {

	// called with the parsed response on success (handler)
	Handler func(response interface{}) `mapstructure:"handler"`

	// called with the failure otherwise (error-handler)
	ErrorHandler func(failure *Failure) `mapstructure:"error-handler"`

	// called after either handler (finally)
	Finally func() `mapstructure:"finally"`

	// request format spec (format)
	Format interface{} `mapstructure:"format"`

	// response format spec (response-format)
	ResponseFormat interface{} `mapstructure:"response-format"`

	Params          interface{}         `mapstructure:"params"`
	Body            []byte              `mapstructure:"body"`
	Headers         map[string]string   `mapstructure:"headers"`
	Timeout         time.Duration       `mapstructure:"timeout"`
	WithCredentials bool                `mapstructure:"with-credentials"`
	API             transport.Transport `mapstructure:"api"`
	Interceptors    []Interceptor       `mapstructure:"interceptors"`

	// codec options (keywords, prefix, raw, type, writer, reader)
	format.Options `mapstructure:",squash"`
}

// Defaults are merged into the options of every convenience API call, without overriding what the call sets
type Defaults struct {
	Headers         map[string]string
	Timeout         time.Duration
	WithCredentials bool
}

func (d Defaults) clone() Defaults {
	clone := d
	if d.Headers != nil {
		clone.Headers = make(map[string]string, len(d.Headers))
		for name, value := range d.Headers {
			clone.Headers[name] = value
		}
	}

	return clone
}

func (c *Client) Get(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodGet, uri, options)
}

func (c *Client) Head(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodHead, uri, options)
}

func (c *Client) Post(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodPost, uri, options)
}

func (c *Client) Put(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodPut, uri, options)
}

func (c *Client) Delete(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodDelete, uri, options)
}

func (c *Client) Options(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodOptions, uri, options)
}

func (c *Client) Trace(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodTrace, uri, options)
}

func (c *Client) Patch(ctx context.Context, uri string, options *Options) (transport.Transport, error) {
	return c.Do(ctx, http.MethodPatch, uri, options)
}

// DoKV is Do with the options given as flattened key/value pairs, e.g.
// DoKV(ctx, "GET", "/articles", "params", map[string]interface{}{"limit": 10}, "handler", handler)
func (c *Client) DoKV(ctx context.Context, method string, uri string, keysAndValues ...interface{}) (transport.Transport, error) {
	optionsMap, err := common.SliceToMap(keysAndValues)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read options")
	}

	options := Options{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &options,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create options decoder")
	}

	if err := decoder.Decode(optionsMap); err != nil {
		return nil, errors.Wrap(err, "Failed to decode options")
	}

	return c.Do(ctx, method, uri, &options)
}

// Do sends a request with the given method. The outcome is delivered to the options' Handler or ErrorHandler
// (or the client's defaults), followed by Finally
func (c *Client) Do(ctx context.Context, method string, uri string, options *Options) (transport.Transport, error) {
	if options == nil {
		options = &Options{}
	}

	method = strings.ToUpper(method)

	defaults := Defaults{
		Headers:         copyHeaders(options.Headers),
		Timeout:         options.Timeout,
		WithCredentials: options.WithCredentials,
	}

	if err := mergo.Merge(&defaults, c.GetDefaults()); err != nil {
		return nil, errors.Wrap(err, "Failed to merge default options")
	}

	handler, err := c.resolveHandler(options)
	if err != nil {
		return nil, err
	}

	request := &Request{
		URI:             uri,
		Method:          method,
		Headers:         defaults.Headers,
		Params:          options.Params,
		Body:            options.Body,
		FormatOptions:   options.Options,
		Interceptors:    options.Interceptors,
		API:             options.API,
		Timeout:         defaults.Timeout,
		WithCredentials: defaults.WithCredentials,
		Handler:         handler,
	}

	// a request format is only needed when params will be written into a body
	if options.Format != nil || (options.Body == nil && method != http.MethodGet) {
		request.Format, err = format.GetRequestFormat(options.Format, &request.FormatOptions)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to resolve request format")
		}
	}

	request.ResponseFormat, err = format.GetResponseFormat(options.ResponseFormat, &request.FormatOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to resolve response format")
	}

	return c.Request(ctx, request)
}

// resolveHandler multiplexes an outcome into the success or error handler, then calls Finally
func (c *Client) resolveHandler(options *Options) (func(Outcome), error) {
	defaultHandler, defaultErrorHandler := c.GetDefaultHandlers()

	successHandler := options.Handler
	if successHandler == nil {
		successHandler = defaultHandler
	}

	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	if successHandler == nil || errorHandler == nil {
		return nil, ErrNoHandler
	}

	finally := options.Finally

	return func(outcome Outcome) {
		if outcome.OK {
			successHandler(outcome.Value)
		} else {
			errorHandler(outcome.Failure())
		}

		if finally != nil {
			finally()
		}
	}, nil
}

func copyHeaders(headers map[string]string) map[string]string {
	copied := make(map[string]string, len(headers))
	for name, value := range headers {
		copied[name] = value
	}

	return copied
}

func typeName(value interface{}) string {
	return fmt.Sprintf("%T", value)
}
