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

package transport

import (
	"context"
	"net/http"
)

// SyntheticResponse is a pre-built, successful empty response. It reports status 0, which the
// response format treats as success rather than a network failure
type SyntheticResponse struct {
	Headers http.Header
}

func (sr *SyntheticResponse) Status() int {
	return StatusFailed
}

func (sr *SyntheticResponse) StatusText() string {
	return ""
}

func (sr *SyntheticResponse) Body() []byte {
	return nil
}

func (sr *SyntheticResponse) ResponseHeader(name string) string {
	if sr.Headers == nil {
		return ""
	}

	return sr.Headers.Get(name)
}

func (sr *SyntheticResponse) WasAborted() bool {
	return false
}

// SyntheticTransport completes every request immediately with a SyntheticResponse. Useful for
// hosts that have no network (e.g. fire-and-forget beacons)
type SyntheticTransport struct{}

func NewSyntheticTransport() Transport {
	return &SyntheticTransport{}
}

func (st *SyntheticTransport) Send(ctx context.Context,
	method string,
	uri string,
	headers map[string]string,
	body []byte,
	options *Options,
	onComplete func(Response)) error {
	onComplete(&SyntheticResponse{})
	return nil
}

func (st *SyntheticTransport) Abort() {}
