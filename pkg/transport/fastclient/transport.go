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
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/valyala/fasthttp"
)

// Transport sends a single request with a fasthttp client. fasthttp has no way to interrupt
// an in-flight request, so Abort completes the transport immediately and the late result is dropped
type Transport struct {
	logger         logger.Logger
	client         *fasthttp.Client
	defaultTimeout time.Duration

	lock         sync.Mutex
	completeOnce sync.Once
	abortChannel chan struct{}
	aborted      bool
	completed    bool
	status       int
	statusText   string
	headers      http.Header
	body         []byte
}

func NewTransport(parentLogger logger.Logger, client *fasthttp.Client) *Transport {
	return &Transport{
		logger:       parentLogger.GetChild("fasthttp"),
		client:       client,
		abortChannel: make(chan struct{}),
	}
}

// NewFactory returns a factory producing transports that share one fasthttp client
func NewFactory(parentLogger logger.Logger,
	timeout time.Duration,
	insecure bool,
	maxConnsPerHost int) transport.Factory {
	client := &fasthttp.Client{
		Name:            "conduit-ajax",
		MaxConnsPerHost: maxConnsPerHost,
	}

	if insecure {
		client.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return func() transport.Transport {
		newTransport := NewTransport(parentLogger, client)
		newTransport.defaultTimeout = timeout
		return newTransport
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

	request := fasthttp.AcquireRequest()
	request.Header.SetMethod(method)
	request.SetRequestURI(uri)

	// fail early on URIs fasthttp cannot route
	if len(request.URI().Host()) == 0 {
		fasthttp.ReleaseRequest(request)
		return errors.Errorf("Request URI must be absolute: %s", uri)
	}

	for headerKey, headerValue := range headers {
		request.Header.Set(headerKey, headerValue)
	}

	if body != nil {
		request.SetBody(body)
	}

	complete := func(populate func()) {
		t.completeOnce.Do(func() {
			t.lock.Lock()
			populate()
			t.completed = true
			t.lock.Unlock()

			onComplete(t)
		})
	}

	// watch for abort and context cancellation
	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			complete(func() {

				// a passed deadline is a timeout, not an abort
				t.aborted = ctx.Err() == context.Canceled
				t.status = transport.StatusNoResponse
			})
		case <-t.abortChannel:
			complete(func() {
				t.status = transport.StatusNoResponse
			})
		}
	}()

	go func() {
		defer close(done)
		defer fasthttp.ReleaseRequest(request)

		response := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(response)

		t.logger.DebugWith("Sending request", "method", method, "uri", uri)

		timeout := options.Timeout
		if timeout == 0 {
			timeout = t.defaultTimeout
		}

		var err error
		if timeout > 0 {
			err = t.client.DoTimeout(request, response, timeout)
		} else {
			err = t.client.Do(request, response)
		}

		complete(func() {
			if err != nil {
				if err == fasthttp.ErrTimeout || err == fasthttp.ErrDialTimeout {
					t.status = transport.StatusNoResponse
				} else {
					t.logger.DebugWith("Request failed", "err", err.Error())
					t.status = transport.StatusFailed
				}

				return
			}

			t.status = response.StatusCode()
			t.statusText = fasthttp.StatusMessage(t.status)
			t.body = append([]byte(nil), response.Body()...)
			t.headers = http.Header{}

			response.Header.VisitAll(func(key []byte, value []byte) {
				t.headers.Add(string(key), string(value))
			})
		})
	}()

	return nil
}

func (t *Transport) Abort() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.aborted || t.completed {
		return
	}

	t.aborted = true
	close(t.abortChannel)
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
