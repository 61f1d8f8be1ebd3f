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

package common

import (
	"github.com/nuclio/errors"
	"github.com/nuclio/nuclio-sdk-go"
)

// maximum number of causes walked when resolving a status code
const maxErrorDepth = 32

// ResolveErrorStatusCodeOrDefault returns the status code of the outermost error in the cause chain
// that carries one
func ResolveErrorStatusCodeOrDefault(err error, defaultStatusCode int) int {
	current := err

	for depth := 0; current != nil && depth < maxErrorDepth; depth++ {
		if errWithStatus, ok := current.(*nuclio.ErrorWithStatusCode); ok {
			return errWithStatus.StatusCode()
		}

		cause := errors.Cause(current)
		if cause == current {
			break
		}

		current = cause
	}

	// unable to resolve, returning default
	return defaultStatusCode
}
