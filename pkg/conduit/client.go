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

package conduit

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/ajax/interceptors"
	"github.com/nuclio/ajax/pkg/format"

	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/samber/lo"
)

// Client is a typed client of the Conduit REST API. Calls block until the response is read
type Client struct {
	logger     logger.Logger
	ajaxClient *ajax.Client
	baseURL    string

	lock  sync.RWMutex
	token string
}

func NewClient(parentLogger logger.Logger, ajaxClient *ajax.Client, baseURL string) (*Client, error) {
	if ajaxClient == nil {
		return nil, errors.New("Ajax client is required")
	}

	if baseURL == "" {
		return nil, errors.New("Base URL is required")
	}

	return &Client{
		logger:     parentLogger.GetChild("conduit"),
		ajaxClient: ajaxClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SetToken sets the JWT sent with every subsequent request
func (c *Client) SetToken(token string) {
	if TokenExpired(token, time.Now()) {
		c.logger.WarnWith("Token has expired, requests requiring authentication will fail")
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.token = token
}

func (c *Client) GetToken() string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.token
}

// call sends a JSON request and decodes the response into result (when given)
func (c *Client) call(ctx context.Context,
	method string,
	path string,
	params interface{},
	result interface{}) error {

	type callResult struct {
		value   interface{}
		failure *ajax.Failure
	}

	resultChan := make(chan callResult, 1)

	requestTransport, err := c.ajaxClient.Do(ctx, method, c.baseURL+path, &ajax.Options{
		Params:         params,
		Format:         format.NameJSON,
		ResponseFormat: format.NameJSON,
		Interceptors:   []ajax.Interceptor{interceptors.NewAuthorization(c.GetToken)},
		Handler: func(response interface{}) {
			resultChan <- callResult{value: response}
		},
		ErrorHandler: func(failure *ajax.Failure) {
			resultChan <- callResult{failure: failure}
		},
	})
	if err != nil {
		return errors.Wrapf(err, "Failed to send %s %s", method, path)
	}

	var received callResult

	select {
	case received = <-resultChan:
	case <-ctx.Done():

		// the transport still completes, as aborted
		requestTransport.Abort()
		received = <-resultChan
	}

	if received.failure != nil {
		c.logger.DebugWith("Request failed",
			"method", method,
			"path", path,
			"status", received.failure.Status,
			"kind", received.failure.Kind)

		return FailureToError(received.failure)
	}

	if result == nil {
		return nil
	}

	if err := decode(received.value, result); err != nil {
		return errors.Wrapf(err, "Failed to decode response of %s %s", method, path)
	}

	return nil
}

// FailureToError converts a failure to an error carrying its HTTP status, with the server's
// validation messages (if any) as its message
func FailureToError(failure *ajax.Failure) error {
	return errors.Wrap(failure.ToError(), DescribeFailure(failure))
}

// DescribeFailure renders a failure as a single line. Conduit reports validation failures as
// {"errors": {"field": ["message", ...]}}
func DescribeFailure(failure *ajax.Failure) string {
	if failure.ParseError != nil {
		return failure.ParseError.StatusText
	}

	body, isMap := failure.Response.(map[string]interface{})
	if !isMap {
		return failure.Error()
	}

	fieldErrors, isMap := body["errors"].(map[string]interface{})
	if !isMap || len(fieldErrors) == 0 {
		return failure.Error()
	}

	fields := lo.Keys(fieldErrors)
	sort.Strings(fields)

	descriptions := lo.Map(fields, func(field string, _ int) string {
		switch messages := fieldErrors[field].(type) {
		case []interface{}:
			return field + " " + strings.Join(lo.Map(messages, func(message interface{}, _ int) string {
				return fmt.Sprint(message)
			}), ", ")
		default:
			return field + " " + fmt.Sprint(messages)
		}
	})

	return strings.Join(descriptions, "; ")
}

func decode(value interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           result,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to create decoder")
	}

	return decoder.Decode(value)
}

func (c *Client) get(ctx context.Context, path string, params interface{}, result interface{}) error {
	return c.call(ctx, http.MethodGet, path, params, result)
}
