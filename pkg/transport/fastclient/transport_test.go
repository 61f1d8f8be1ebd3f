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

package fastclient

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type TransportTestSuite struct {
	suite.Suite
	logger   logger.Logger
	listener *fasthttputil.InmemoryListener
	server   *fasthttp.Server
	client   *fasthttp.Client
	release  chan struct{}
}

func (suite *TransportTestSuite) SetupTest() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	// handlers of a test only see that test's channel and listener
	release := make(chan struct{})
	listener := fasthttputil.NewInmemoryListener()

	suite.release = release
	suite.listener = listener
	suite.server = &fasthttp.Server{
		Handler: newHandler(release),
	}

	go suite.server.Serve(listener) // nolint: errcheck

	suite.client = &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return listener.Dial()
		},
	}
}

func (suite *TransportTestSuite) TearDownTest() {
	close(suite.release)
	suite.client.CloseIdleConnections()
	suite.server.Shutdown() // nolint: errcheck
	suite.listener.Close()  // nolint: errcheck
}

func (suite *TransportTestSuite) TestSendReadsResponse() {
	response := suite.send(NewTransport(suite.logger, suite.client),
		http.MethodPut,
		"http://conduit.local/api/articles/how-to",
		[]byte(`{"article":{}}`),
		nil)

	suite.Require().Equal(http.StatusOK, response.Status())
	suite.Require().Equal("OK", response.StatusText())
	suite.Require().Equal(`{"article":{}}`, string(response.Body()))
	suite.Require().Equal("application/json", response.ResponseHeader("Content-Type"))
	suite.Require().Equal("PUT", response.ResponseHeader("X-Echo-Method"))
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestSendNotFound() {
	response := suite.send(NewTransport(suite.logger, suite.client),
		http.MethodGet,
		"http://conduit.local/missing",
		nil,
		nil)

	suite.Require().Equal(http.StatusNotFound, response.Status())
	suite.Require().Equal(`{"errors":{"article":["not found"]}}`, string(response.Body()))
}

func (suite *TransportTestSuite) TestSendTimeout() {
	response := suite.send(NewTransport(suite.logger, suite.client),
		http.MethodGet,
		"http://conduit.local/slow",
		nil,
		&transport.Options{Timeout: 20 * time.Millisecond})

	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestAbort() {
	fastTransport := NewTransport(suite.logger, suite.client)
	completed := make(chan transport.Response, 1)

	err := fastTransport.Send(context.Background(),
		http.MethodGet,
		"http://conduit.local/slow",
		nil,
		nil,
		nil,
		func(response transport.Response) {
			completed <- response
		})
	suite.Require().NoError(err)

	fastTransport.Abort()

	response := suite.waitFor(completed)
	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().True(response.WasAborted())
}

func (suite *TransportTestSuite) TestContextDeadlineIsTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	response := suite.sendWithContext(ctx, http.MethodGet, "http://conduit.local/slow")
	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().False(response.WasAborted())
}

func (suite *TransportTestSuite) TestContextCancelIsAbort() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	response := suite.sendWithContext(ctx, http.MethodGet, "http://conduit.local/slow")
	suite.Require().Equal(transport.StatusNoResponse, response.Status())
	suite.Require().True(response.WasAborted())
}

func (suite *TransportTestSuite) TestSendRelativeURI() {
	err := NewTransport(suite.logger, suite.client).Send(context.Background(),
		http.MethodGet,
		"/api/tags",
		nil,
		nil,
		nil,
		func(response transport.Response) {
			suite.Fail("Completion must not be called")
		})
	suite.Require().Error(err)
}

func newHandler(release chan struct{}) fasthttp.RequestHandler {
	return func(requestCtx *fasthttp.RequestCtx) {
		switch string(requestCtx.Path()) {
		case "/slow":
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}

		case "/missing":
			requestCtx.SetStatusCode(http.StatusNotFound)
			requestCtx.SetContentType("application/json")
			requestCtx.SetBodyString(`{"errors":{"article":["not found"]}}`)

		default:
			requestCtx.SetContentType("application/json")
			requestCtx.Response.Header.Set("X-Echo-Method", string(requestCtx.Method()))
			requestCtx.SetBody(requestCtx.PostBody())
		}
	}
}

func (suite *TransportTestSuite) send(fastTransport transport.Transport,
	method string,
	uri string,
	body []byte,
	options *transport.Options) transport.Response {
	completed := make(chan transport.Response, 1)

	err := fastTransport.Send(context.Background(),
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

func (suite *TransportTestSuite) sendWithContext(ctx context.Context,
	method string,
	uri string) transport.Response {
	completed := make(chan transport.Response, 1)

	err := NewTransport(suite.logger, suite.client).Send(ctx,
		method,
		uri,
		nil,
		nil,
		nil,
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

func TestTransportTestSuite(t *testing.T) {
	suite.Run(t, new(TransportTestSuite))
}
