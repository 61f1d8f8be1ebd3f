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
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Transport sends a single request with a net/http client
type Transport struct {
	logger     logger.Logger
	httpClient *http.Client

	lock       sync.Mutex
	cancel     context.CancelFunc
	aborted    bool
	completed  bool
	status     int
	statusText string
	headers    http.Header
	body       []byte
}

// NewTransport creates a transport around an existing client. The client may be shared
// between transports, the transport itself may not
func NewTransport(parentLogger logger.Logger, httpClient *http.Client) *Transport {
	return &Transport{
		logger:     parentLogger.GetChild("nethttp"),
		httpClient: httpClient,
	}
}

// NewFactory returns a factory producing transports that share one http.Client
func NewFactory(parentLogger logger.Logger, timeout time.Duration, insecure bool) transport.Factory {
	httpClient := &http.Client{
		Timeout: timeout,
	}

	if insecure {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return func() transport.Transport {
		return NewTransport(parentLogger, httpClient)
	}
}

func (t *Transport) Send(ctx context.Context,
	method string,
	uri string,
	headers map[string]string,
	body []byte,
	options *transport.Options,
	onComplete func(transport.Response)) error {

	if options == nil {
		options = &transport.Options{}
	}

	var requestContext context.Context
	var cancel context.CancelFunc

	if options.Timeout > 0 {
		requestContext, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		requestContext, cancel = context.WithCancel(ctx)
	}

	request, err := http.NewRequestWithContext(requestContext, method, uri, bytes.NewReader(body))
	if err != nil {
		cancel()
		return errors.Wrap(err, "Failed to create http request")
	}

	for headerKey, headerValue := range headers {
		request.Header.Set(headerKey, headerValue)
	}

	t.lock.Lock()
	t.cancel = cancel
	t.lock.Unlock()

	httpClient := t.httpClient

	// cookies are only attached when credentials were asked for
	if !options.WithCredentials && httpClient.Jar != nil {
		clientWithoutJar := *httpClient
		clientWithoutJar.Jar = nil
		httpClient = &clientWithoutJar
	}

	go func() {
		defer cancel()

		t.logger.DebugWith("Sending request", "method", method, "uri", uri)

		response, err := httpClient.Do(request)
		if err != nil {
			t.completeWithError(ctx, requestContext, err)
		} else {
			t.completeWithResponse(ctx, response)
		}

		onComplete(t)
	}()

	return nil
}

func (t *Transport) Abort() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.completed {
		return
	}

	t.aborted = true
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Transport) Status() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.status
}

func (t *Transport) StatusText() string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.statusText
}

func (t *Transport) Body() []byte {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.body
}

func (t *Transport) ResponseHeader(name string) string {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.headers == nil {
		return ""
	}

	return t.headers.Get(name)
}

func (t *Transport) WasAborted() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.aborted
}

func (t *Transport) completeWithResponse(parentContext context.Context, response *http.Response) {
	defer response.Body.Close() // nolint: errcheck

	responseBody, err := io.ReadAll(response.Body)

	t.lock.Lock()
	defer t.lock.Unlock()

	t.completed = true

	// a body cut short by abort/timeout counts as no response at all
	if err != nil {
		t.logger.DebugWith("Failed to read response body", "err", err.Error())
		t.status = transport.StatusNoResponse

		if parentContext.Err() == context.Canceled {
			t.aborted = true
		}

		return
	}

	t.status = response.StatusCode
	t.statusText = statusText(response)
	t.headers = response.Header
	t.body = responseBody
}

func (t *Transport) completeWithError(parentContext context.Context, requestContext context.Context, err error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.completed = true

	switch {
	case t.aborted:
		t.status = transport.StatusNoResponse

	// the caller cancelled the context it handed us, treat it like an abort
	case parentContext.Err() == context.Canceled:
		t.aborted = true
		t.status = transport.StatusNoResponse

	case requestContext.Err() == context.DeadlineExceeded || isTimeout(err):
		t.status = transport.StatusNoResponse

	default:
		t.logger.DebugWith("Request failed", "err", err.Error())
		t.status = transport.StatusFailed
	}
}

func isTimeout(err error) bool {
	netError, isNetError := err.(net.Error)
	return isNetError && netError.Timeout()
}

// statusText strips the numeric code from the status line ("404 Not Found" -> "Not Found")
func statusText(response *http.Response) string {
	if _, text, found := strings.Cut(response.Status, " "); found && text != "" {
		return text
	}

	return http.StatusText(response.StatusCode)
}
