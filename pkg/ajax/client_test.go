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

package ajax

import (
	"context"
	"net/http"
	"testing"

	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"
	mocktransport "github.com/nuclio/ajax/pkg/transport/mock"

	"github.com/google/go-cmp/cmp"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	logger        logger.Logger
	client        *Client
	mockTransport *mocktransport.Transport
	ctx           context.Context
}

func (suite *ClientTestSuite) SetupTest() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	suite.mockTransport = mocktransport.NewTransport()
	suite.ctx = context.Background()

	suite.client, err = NewClient(suite.logger, func() transport.Transport {
		return suite.mockTransport
	})
	suite.Require().NoError(err)
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.mockTransport.AssertExpectations(suite.T())
}

func (suite *ClientTestSuite) TestPostJSON() {
	suite.mockTransport.
		On("Send",
			"POST",
			"/echo",
			mock.MatchedBy(func(headers map[string]string) bool {
				return headers["Content-Type"] == format.ContentTypeJSON &&
					headers["Accept"] == format.ContentTypeJSON
			}),
			[]byte(`{"a":1}`),
			mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"a":1}`), nil).
		Once()

	outcome := suite.request(&Request{
		URI:            "/echo",
		Method:         "post",
		Params:         map[string]interface{}{"a": 1},
		Format:         format.NameJSON,
		ResponseFormat: format.NameJSON,
	})

	suite.Require().True(outcome.OK)
	suite.Require().Equal(map[string]interface{}{"a": int64(1)}, outcome.Value)
}

func (suite *ClientTestSuite) TestGetAppendsParamsToQuery() {
	suite.mockTransport.
		On("Send", "GET", "/items?x=1&y=2", mock.Anything, []byte(nil), mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `[]`), nil).
		Once()

	outcome := suite.request(&Request{
		URI:    "/items?x=1",
		Method: http.MethodGet,
		Params: map[string]interface{}{"y": 2},
	})

	suite.Require().True(outcome.OK)
	suite.Require().Equal([]interface{}{}, outcome.Value)
}

func (suite *ClientTestSuite) TestErrorResponse() {
	suite.mockTransport.
		On("Send", "GET", "/users/missing", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusNotFound,
			format.ContentTypeJSON,
			`{"errors":{"name":["is invalid"]}}`), nil).
		Once()

	outcome := suite.request(&Request{URI: "/users/missing"})

	suite.Require().False(outcome.OK)
	suite.Require().Empty(cmp.Diff(&Failure{
		Status:     http.StatusNotFound,
		StatusText: "Not Found",
		Kind:       FailureKindError,
		Response: map[string]interface{}{
			"errors": map[string]interface{}{"name": []interface{}{"is invalid"}},
		},
	}, outcome.Failure()))

	statusError := outcome.Failure().ToError()
	suite.Require().Equal(http.StatusNotFound, common.ResolveErrorStatusCodeOrDefault(statusError, 0))
}

func (suite *ClientTestSuite) TestNoContent() {
	for _, statusCode := range []int{http.StatusNoContent, http.StatusResetContent} {
		suite.Run(http.StatusText(statusCode), func() {
			suite.mockTransport.
				On("Send", "DELETE", "/articles/slug", mock.Anything, mock.Anything, mock.Anything).
				Return(mocktransport.NewResponse(statusCode, format.ContentTypeJSON, "not json"), nil).
				Once()

			outcome := suite.request(&Request{
				URI:            "/articles/slug",
				Method:         http.MethodDelete,
				ResponseFormat: format.NameJSON,
			})

			suite.Require().Equal(SuccessOutcome(nil), outcome)
		})
	}
}

func (suite *ClientTestSuite) TestTransportStatuses() {
	for _, testCase := range []struct {
		name            string
		response        transport.Response
		expectedOutcome Outcome
	}{
		{
			name:     "failed",
			response: &mocktransport.Response{StatusCode: transport.StatusFailed},
			expectedOutcome: FailureOutcome(&Failure{
				Status:     0,
				StatusText: "Request failed.",
				Kind:       FailureKindFailed,
			}),
		},
		{
			name:            "synthetic",
			response:        &transport.SyntheticResponse{},
			expectedOutcome: SuccessOutcome(nil),
		},
		{
			name:     "aborted",
			response: &mocktransport.Response{StatusCode: transport.StatusNoResponse, Aborted: true},
			expectedOutcome: FailureOutcome(&Failure{
				Status:     -1,
				StatusText: "Request aborted by client.",
				Kind:       FailureKindAborted,
			}),
		},
		{
			name:     "timeout",
			response: &mocktransport.Response{StatusCode: transport.StatusNoResponse},
			expectedOutcome: FailureOutcome(&Failure{
				Status:     -1,
				StatusText: "Request timed out.",
				Kind:       FailureKindTimeout,
			}),
		},
	} {
		suite.Run(testCase.name, func() {
			suite.mockTransport.
				On("Send", "GET", "/status", mock.Anything, mock.Anything, mock.Anything).
				Return(testCase.response, nil).
				Once()

			outcome := suite.request(&Request{URI: "/status"})
			suite.Require().Empty(cmp.Diff(testCase.expectedOutcome, outcome))
		})
	}
}

func (suite *ClientTestSuite) TestSyntheticTransport() {
	var outcome Outcome

	_, err := suite.client.Request(suite.ctx, &Request{
		URI:     "/local",
		API:     transport.NewSyntheticTransport(),
		Handler: func(result Outcome) { outcome = result },
	})
	suite.Require().NoError(err)
	suite.Require().Equal(SuccessOutcome(nil), outcome)
}

func (suite *ClientTestSuite) TestParseError() {
	suite.mockTransport.
		On("Send", "GET", "/broken", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, "{broken"), nil).
		Once()

	outcome := suite.request(&Request{URI: "/broken", ResponseFormat: format.NameJSON})

	suite.Require().False(outcome.OK)

	failure := outcome.Failure()
	suite.Require().Equal(FailureKindException, failure.Kind)
	suite.Require().Equal(http.StatusOK, failure.Status)
	suite.Require().Equal("{broken", failure.OriginalText)
	suite.Require().Nil(failure.Response)
	suite.Require().NotNil(failure.ParseError)
	suite.Require().Equal(FailureKindParse, failure.ParseError.Kind)
	suite.Require().Contains(failure.ParseError.StatusText, "  Format should have been JSON")
}

func (suite *ClientTestSuite) TestNoMatchingFormat() {
	suite.mockTransport.
		On("Send", "GET", "/page", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, "text/html", "<p>hi</p>"), nil).
		Once()

	outcome := suite.request(&Request{
		URI: "/page",
		ResponseFormat: []format.Negotiation{
			{Pattern: format.ContentTypeJSON, Format: format.NameJSON},
		},
	})

	suite.Require().False(outcome.OK)
	suite.Require().Equal(FailureKindException, outcome.Failure().Kind)
	suite.Require().Contains(outcome.Failure().ParseError.StatusText, "No response format matches")
}

func (suite *ClientTestSuite) TestBodyBypassesRequestFormat() {
	request := &Request{
		URI:    "/upload",
		Method: http.MethodPost,
		Body:   []byte("already serialized"),
		Params: map[string]interface{}{"ignored": true},
		Format: format.NameJSON,
	}

	processedRequest, err := processRequest(request, []Interceptor{
		&ProcessGet{},
		&DirectSubmission{},
		&ApplyRequestFormat{},
	})
	suite.Require().NoError(err)
	suite.Require().Equal(request.Body, processedRequest.Body)
	suite.Require().Empty(processedRequest.Headers)
}

func (suite *ClientTestSuite) TestMissingHandler() {
	_, err := suite.client.Request(suite.ctx, &Request{URI: "/any"})
	suite.Require().Equal(ErrNoHandler, err)
}

func (suite *ClientTestSuite) TestRequestPhaseErrorIsSynchronous() {
	failing := NewInterceptor("failing", func(request *Request) (Step, error) {
		return Step{}, errors.New("boom")
	}, nil)

	called := false
	_, err := suite.client.Request(suite.ctx, &Request{
		URI:          "/any",
		Interceptors: []Interceptor{failing},
		Handler:      func(Outcome) { called = true },
	})

	suite.Require().Error(err)
	suite.Require().Contains(errors.RootCause(err).Error(), "boom")
	suite.Require().False(called)
}

func (suite *ClientTestSuite) TestInterceptorOrder() {
	var calls []string

	recording := func(name string) Interceptor {
		return NewInterceptor(name,
			func(request *Request) (Step, error) {
				calls = append(calls, "request:"+name)
				return Continue(request), nil
			},
			func(response interface{}) interface{} {
				calls = append(calls, "response:"+name)
				return response
			})
	}

	suite.client.SetDefaultInterceptors(recording("default"))

	suite.mockTransport.
		On("Send", "POST", "/order", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusCreated, "text/plain", "ok"), nil).
		Once()

	outcome := suite.request(&Request{
		URI:          "/order",
		Method:       http.MethodPost,
		Interceptors: []Interceptor{recording("first"), recording("second")},
	})

	suite.Require().Equal(SuccessOutcome("ok"), outcome)
	suite.Require().Equal([]string{
		"request:first",
		"request:second",
		"request:default",
		"response:default",
		"response:second",
		"response:first",
	}, calls)
}

func (suite *ClientTestSuite) TestHaltSkipsRemainingInterceptors() {
	halting := NewInterceptor("halting", func(request *Request) (Step, error) {
		return Halt(request.WithHeader("X-Halted", "true")), nil
	}, nil)

	suite.mockTransport.
		On("Send",
			"POST",
			"/halt",
			map[string]string{"Accept": format.ContentTypeAny, "X-Halted": "true"},
			[]byte(nil),
			mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, "text/plain", "ok"), nil).
		Once()

	outcome := suite.request(&Request{
		URI:            "/halt",
		Method:         http.MethodPost,
		Params:         map[string]interface{}{"never": "written"},
		ResponseFormat: format.NameText,
		Interceptors:   []Interceptor{halting},
	})

	suite.Require().True(outcome.OK)
}

func (suite *ClientTestSuite) TestCallerAcceptHeaderWins() {
	suite.mockTransport.
		On("Send",
			"GET",
			"/accept",
			map[string]string{"accept": "application/vnd.conduit+json"},
			mock.Anything,
			mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{}`), nil).
		Once()

	outcome := suite.request(&Request{
		URI:     "/accept",
		Headers: map[string]string{"accept": "application/vnd.conduit+json"},
	})

	suite.Require().True(outcome.OK)
}

func (suite *ClientTestSuite) TestResponseInterceptorPanic() {
	panicking := NewInterceptor("panicking", nil, func(response interface{}) interface{} {
		panic("interceptor exploded")
	})

	suite.mockTransport.
		On("Send", "GET", "/panic", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, "text/plain", "ok"), nil).
		Once()

	outcome := suite.request(&Request{
		URI:          "/panic",
		Interceptors: []Interceptor{panicking},
	})

	suite.Require().False(outcome.OK)
	suite.Require().Equal(FailureKindException, outcome.Failure().Kind)
	suite.Require().Equal(0, outcome.Failure().Status)
	suite.Require().Equal("interceptor exploded", outcome.Failure().StatusText)
	suite.Require().NotNil(outcome.Failure().Exception)
}

func (suite *ClientTestSuite) TestSendError() {
	suite.mockTransport.
		On("Send", "GET", "/unreachable", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("Invalid request")).
		Once()

	_, err := suite.client.Request(suite.ctx, &Request{
		URI:     "/unreachable",
		Handler: func(Outcome) {},
	})
	suite.Require().Error(err)
}

func (suite *ClientTestSuite) TestMethodIsNormalized() {
	suite.mockTransport.
		On("Send", "PATCH", "/normalized", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, "text/plain", ""), nil).
		Once()

	outcome := suite.request(&Request{URI: "/normalized", Method: "pAtCh"})
	suite.Require().True(outcome.OK)
}

func (suite *ClientTestSuite) request(request *Request) Outcome {
	var outcome Outcome
	delivered := 0

	request.Handler = func(result Outcome) {
		outcome = result
		delivered++
	}

	_, err := suite.client.Request(suite.ctx, request)
	suite.Require().NoError(err)
	suite.Require().Equal(1, delivered)

	return outcome
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
