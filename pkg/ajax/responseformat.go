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
	"fmt"
	"net/http"

	"github.com/nuclio/ajax/pkg/common/headers"
	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

const (
	statusTextFailed  = "Request failed."
	statusTextAborted = "Request aborted by client."
	statusTextTimeout = "Request timed out."
)

var successStatusCodes = []int{
	http.StatusOK,
	http.StatusCreated,
	http.StatusAccepted,
	http.StatusNoContent,
	http.StatusResetContent,
	http.StatusPartialContent,
}

// ResponseFormatInterceptor is the head of every chain. It asks for its format's content types on the
// way out, and turns the transport response into an Outcome on the way back
type ResponseFormatInterceptor struct {
	responseFormat *format.ResponseFormat
}

func NewResponseFormatInterceptor(responseFormat *format.ResponseFormat) *ResponseFormatInterceptor {
	return &ResponseFormatInterceptor{
		responseFormat: responseFormat,
	}
}

func (rfi *ResponseFormatInterceptor) Format() *format.ResponseFormat {
	return rfi.responseFormat
}

// ProcessRequest sets the Accept header, unless the request already has one
func (rfi *ResponseFormatInterceptor) ProcessRequest(request *Request) (Step, error) {
	acceptHeader := format.AcceptHeader(rfi.responseFormat)
	if acceptHeader == "" {
		return Continue(request), nil
	}

	if _, hasAccept := request.Header(headers.Accept); hasAccept {
		return Continue(request), nil
	}

	return Continue(request.WithHeader(headers.Accept, acceptHeader)), nil
}

// ProcessResponse dispatches on the transport status
func (rfi *ResponseFormatInterceptor) ProcessResponse(response interface{}) (result interface{}) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = FailureOutcome(exceptionFailure(recoveredError(recovered)))
		}
	}()

	switch typedResponse := response.(type) {
	case Outcome:

		// an inner interceptor already decided
		return typedResponse
	case transport.Response:
		return rfi.dispatch(typedResponse)
	default:
		return FailureOutcome(exceptionFailure(errors.Errorf("Unexpected response type %T", response)))
	}
}

func (rfi *ResponseFormatInterceptor) String() string {
	return "response-format (" + rfi.responseFormat.Description + ")"
}

func (rfi *ResponseFormatInterceptor) dispatch(response transport.Response) Outcome {
	status := response.Status()

	switch status {
	case transport.StatusFailed:
		if _, isSynthetic := response.(*transport.SyntheticResponse); isSynthetic {
			return SuccessOutcome(nil)
		}

		return FailureOutcome(&Failure{
			Status:     status,
			StatusText: statusTextFailed,
			Kind:       FailureKindFailed,
		})

	case transport.StatusNoResponse:
		if response.WasAborted() {
			return FailureOutcome(&Failure{
				Status:     status,
				StatusText: statusTextAborted,
				Kind:       FailureKindAborted,
			})
		}

		return FailureOutcome(&Failure{
			Status:     status,
			StatusText: statusTextTimeout,
			Kind:       FailureKindTimeout,
		})

	case http.StatusNoContent, http.StatusResetContent:
		return SuccessOutcome(nil)
	}

	value, err := rfi.responseFormat.Read(response)
	if err != nil {
		originalText := string(response.Body())

		return FailureOutcome(&Failure{
			Status:     status,
			StatusText: response.StatusText(),
			Kind:       FailureKindException,
			ParseError: &Failure{
				Status:       status,
				StatusText:   fmt.Sprintf("%s  Format should have been %s", errorMessage(err), rfi.responseFormat.Description),
				Kind:         FailureKindParse,
				OriginalText: originalText,
			},
			OriginalText: originalText,
		})
	}

	if lo.Contains(successStatusCodes, status) {
		return SuccessOutcome(value)
	}

	return FailureOutcome(&Failure{
		Status:     status,
		StatusText: response.StatusText(),
		Kind:       FailureKindError,
		Response:   value,
	})
}

// errorMessage includes the root cause, which nuclio errors leave out of Error()
func errorMessage(err error) string {
	rootCause := errors.RootCause(err)
	if rootCause == nil || rootCause == err || rootCause.Error() == err.Error() {
		return err.Error()
	}

	return err.Error() + ": " + rootCause.Error()
}

func exceptionFailure(err error) *Failure {
	return &Failure{
		Status:     transport.StatusFailed,
		StatusText: err.Error(),
		Kind:       FailureKindException,
		Exception:  err,
	}
}
