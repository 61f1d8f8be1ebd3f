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

package headers

import "strings"

// Request headers
const (
	Accept        = "Accept"
	ContentType   = "Content-Type"
	Authorization = "Authorization"
	RequestID     = "X-Request-Id"
	UserAgent     = "User-Agent"

	// Conduit expects "Token <jwt>" rather than a bearer token
	AuthorizationTokenPrefix = "Token "
)

// sensitive headers are masked before being logged
var sensitiveHeaders = []string{
	Authorization,
	"Cookie",
	"Set-Cookie",
	"Proxy-Authorization",
}

func IsSensitiveHeader(headerName string) bool {
	for _, sensitiveHeader := range sensitiveHeaders {
		if strings.EqualFold(headerName, sensitiveHeader) {
			return true
		}
	}

	return false
}

// Lookup returns the value of a header, matching its name case-insensitively
func Lookup(headers map[string]string, headerName string) (string, bool) {
	for name, value := range headers {
		if strings.EqualFold(name, headerName) {
			return value, true
		}
	}

	return "", false
}
