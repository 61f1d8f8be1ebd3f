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

package clientconfig

import (
	"time"

	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/errors"
)

const (
	DefaultBaseURL         = "https://api.realworld.io/api"
	DefaultRequestTimeout  = "30s"
	DefaultRequestIDHeader = "X-Request-Id"
	DefaultLoggerLevel     = "info"
)

type Config struct {

	// Conduit API address, including the /api suffix
	BaseURL string `json:"baseURL,omitempty"`

	// JWT used for the Authorization header
	Token string `json:"token,omitempty"`

	Transport Transport `json:"transport,omitempty"`

	// headers added to every request, unless the request sets them
	DefaultHeaders map[string]string `json:"defaultHeaders,omitempty"`

	Logger    Logger    `json:"logger,omitempty"`
	Metrics   Metrics   `json:"metrics,omitempty"`
	RequestID RequestID `json:"requestID,omitempty"`
}

type Transport struct {

	// transport kind to use (http | fasthttp)
	Kind transport.Kind `json:"kind,omitempty"`

	// request timeout, as a Go duration string (e.g. 30s)
	Timeout string `json:"timeout,omitempty"`

	InsecureSkipVerify bool `json:"insecureSkipVerify,omitempty"`

	// fasthttp only
	MaxConnsPerHost int `json:"maxConnsPerHost,omitempty"`
}

// GetTimeout returns the parsed timeout, zero if none is configured
func (t *Transport) GetTimeout() (time.Duration, error) {
	if t.Timeout == "" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to parse timeout %s", t.Timeout)
	}

	return timeout, nil
}

type Logger struct {

	// debug | info | warn | error
	Level string `json:"level,omitempty"`
}

type Metrics struct {
	Enabled bool `json:"enabled,omitempty"`
}

type RequestID struct {
	Enabled bool   `json:"enabled,omitempty"`
	Header  string `json:"header,omitempty"`
}
