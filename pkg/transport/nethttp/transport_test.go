//go:build test_unit

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

package nethttp

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/jarcoal/httpmock"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type TransportTestSuite struct {
	suite.Suite
	logger     logger.Logger
	httpClient *http.Client
}

func (suite *TransportTestSuite) SetupTest() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	suite.httpClient = &http.Client{}
	httpmock.ActivateNonDefault(suite.httpClient)
}

func (suite *TransportTestSuite) TearDownTest() {
	httpmock.DeactivateAndReset()
}

func (suite *TransportTestSuite) TestSendReadsResponse() {
	httpmock.RegisterResponder(http.MethodPost, "http://conduit.local/api/echo",
		func(request *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(request.Body)
			if err != nil {
				return nil, err
			}

			suite.Assert().Equal("application/json", request.Header.Get("Content-Type"))

			response := httpmock.NewBytesResponse(http.StatusCreated, body)
			response.Header.Set("Content-Type", "application/json; charset=utf-8")
			return response, nil
		})

	response := suite.send(NewTransport(suite.logger, suite.httpClient),
		http.MethodPost,
		"http://conduit.local/api/echo",
		[]byte(`{"a":1}`),
		nil)

	suite.Require().Equal(http.StatusCreated, response.Status())
	suite.Require().Equal("Created", response.StatusText())
	suite.Require().Equal(`{"a":1}`, string(response.Body()))
	suite.Require().Equal("application/json; charset=utf-8", response.ResponseHeader("content-type"))
	suite.Require().Equal("", response.ResponseHeader("X-Missing"))
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestSendNetworkFailure() {
	httpmock.RegisterResponder(http.MethodGet, "http://conduit.local/api/tags",
		httpmock.NewErrorResponder(errors.New("Connection refused")))

	response := suite.send(NewTransport(suite.logger, suite.httpClient),
		http.MethodGet,
		"http://conduit.local/api/tags",
		nil,
		nil)

	suite.Require().Equal(transport.StatusFailed, response.Status())
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestSendTimeout() {
	httpmock.RegisterResponder(http.MethodGet, "http://conduit.local/api/slow", suite.blockingResponder)

	response := suite.send(NewTransport(suite.logger, suite.httpClient),
		http.MethodGet,
		"http://conduit.local/api/slow",
		nil,
		&transport.Options{Timeout: 10 * time.Millisecond})

	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestAbort() {
	httpmock.RegisterResponder(http.MethodGet, "http://conduit.local/api/slow", suite.blockingResponder)

	httpTransport := NewTransport(suite.logger, suite.httpClient)
	completed := make(chan transport.Response, 1)

	err := httpTransport.Send(context.Background(),
		http.MethodGet,
		"http://conduit.local/api/slow",
		nil,
		nil,
		nil,
		func(response transport.Response) {
			completed <- response
		})
	suite.Require().NoError(err)

	httpTransport.Abort()

	response := suite.waitFor(completed)
	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().True(response.WasAborted())
}

func (suite *TransportTestSuite) TestContextCancellationIsAbort() {
	httpmock.RegisterResponder(http.MethodGet, "http://conduit.local/api/slow", suite.blockingResponder)

	ctx, cancel := context.WithCancel(context.Background())
	completed := make(chan transport.Response, 1)

	err := NewTransport(suite.logger, suite.httpClient).Send(ctx,
		http.MethodGet,
		"http://conduit.local/api/slow",
		nil,
		nil,
		nil,
		func(response transport.Response) {
			completed <- response
		})
	suite.Require().NoError(err)

	cancel()

	response := suite.waitFor(completed)
	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().True(response.WasAborted())
}

func (suite *TransportTestSuite) TestInterruptedBody() {
	for _, testCase := range []struct {
		name            string
		createContext   func() (context.Context, context.CancelFunc)
		expectedAborted bool
	}{
		{
			name: "Cancelled",
			createContext: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(20*time.Millisecond, cancel)
				return ctx, cancel
			},
			expectedAborted: true,
		},
		{
			name: "DeadlineExceeded",
			createContext: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 20*time.Millisecond)
			},
			expectedAborted: false,
		},
	} {
		suite.Run(testCase.name, func() {
			httpmock.RegisterResponder(http.MethodGet, "http://conduit.local/api/stream",
				func(request *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusOK,
						Header:     http.Header{},
						Body:       &blockingBody{ctx: request.Context()},
						Request:    request,
					}, nil
				})

			ctx, cancel := testCase.createContext()
			defer cancel()

			completed := make(chan transport.Response, 1)

			err := NewTransport(suite.logger, suite.httpClient).Send(ctx,
				http.MethodGet,
				"http://conduit.local/api/stream",
				nil,
				nil,
				nil,
				func(response transport.Response) {
					completed <- response
				})
			suite.Require().NoError(err)

			response := suite.waitFor(completed)
			suite.Require().Equal(transport.StatusNoResponse, response.Status())
			suite.Require().Equal(testCase.expectedAborted, response.WasAborted())
		})
	}
}

func (suite *TransportTestSuite) TestSendInvalidURI() {
	err := NewTransport(suite.logger, suite.httpClient).Send(context.Background(),
		"BAD METHOD",
		"http://conduit.local",
		nil,
		nil,
		nil,
		func(response transport.Response) {
			suite.Fail("Completion must not be called")
		})
	suite.Require().Error(err)
}

func (suite *TransportTestSuite) blockingResponder(request *http.Request) (*http.Response, error) {
	<-request.Context().Done()
	return nil, request.Context().Err()
}

func (suite *TransportTestSuite) send(httpTransport transport.Transport,
	method string,
	uri string,
	body []byte,
	options *transport.Options) transport.Response {
	completed := make(chan transport.Response, 1)

	err := httpTransport.Send(context.Background(),
		method,
		uri,
		map[string]string{"Content-Type": "application/json"},
		body,
		options,
		func(response transport.Response) {
			completed <- response
		})
	suite.Require().NoError(err)

	return suite.waitFor(completed)
}

func (suite *TransportTestSuite) waitFor(completed chan transport.Response) transport.Response {
	select {
	case response := <-completed:
		return response
	case <-time.After(5 * time.Second):
		suite.FailNow("Timed out waiting for completion")
	}

	return nil
}

// blockingBody blocks reads until its request context is done
type blockingBody struct {
	ctx context.Context
}

func (bb *blockingBody) Read(p []byte) (int, error) {
	<-bb.ctx.Done()
	return 0, bb.ctx.Err()
}

func (bb *blockingBody) Close() error {
	return nil
}

func TestTransportTestSuite(t *testing.T) {
	suite.Run(t, new(TransportTestSuite))
}
