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

package command

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/format"
	"github.com/nuclio/ajax/pkg/transport"
	mocktransport "github.com/nuclio/ajax/pkg/transport/mock"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testBaseURL = "http://conduit.local/api"

type CommandTestSuite struct {
	suite.Suite
	mockTransport *mocktransport.Transport
	output        *bytes.Buffer
}

func (suite *CommandTestSuite) SetupTest() {
	suite.mockTransport = mocktransport.NewTransport()
	suite.output = &bytes.Buffer{}
}

func (suite *CommandTestSuite) TearDownTest() {
	suite.mockTransport.AssertExpectations(suite.T())
}

func (suite *CommandTestSuite) TestTags() {
	suite.mockTransport.
		On("Send", "GET", testBaseURL+"/tags", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"tags":["go","dragons"]}`), nil).
		Once()

	err := suite.execute(true, "tags", "-o", "json")
	suite.Require().NoError(err)
	suite.Require().Equal("[\n\t\"go\",\n\t\"dragons\"\n]\n", suite.output.String())
}

func (suite *CommandTestSuite) TestRequest() {
	suite.mockTransport.
		On("Send",
			"POST",
			testBaseURL+"/echo",
			mock.MatchedBy(func(headers map[string]string) bool {
				return headers["Authorization"] == "Token jwt" && headers["X-Custom"] == "yes"
			}),
			[]byte(`{"title":"x"}`),
			mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"ok":true}`), nil).
		Once()

	err := suite.execute(true,
		"request", "post", "/echo",
		"--token", "jwt",
		"-p", "title=x",
		"-H", "X-Custom=yes",
		"-r", "json")
	suite.Require().NoError(err)
	suite.Require().Equal("{\n\t\"ok\": true\n}\n", suite.output.String())
}

func (suite *CommandTestSuite) TestRequestFailureCarriesStatus() {
	suite.mockTransport.
		On("Send", "GET", testBaseURL+"/articles/missing", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusNotFound,
			format.ContentTypeJSON,
			`{"errors":{"article":["not found"]}}`), nil).
		Once()

	err := suite.execute(true, "article", "missing")
	suite.Require().Error(err)
	suite.Require().Equal(http.StatusNotFound, common.ResolveErrorStatusCodeOrDefault(err, 0))
}

func (suite *CommandTestSuite) TestArticles() {
	suite.mockTransport.
		On("Send", "GET", testBaseURL+"/articles?limit=2&tag=go", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"articles":[
			{"slug":"a","title":"A","author":{"username":"jake"},"favoritesCount":2}],"articlesCount":5}`), nil).
		Once()

	err := suite.execute(true, "articles", "--tag", "go", "--limit", "2")
	suite.Require().NoError(err)
	suite.Require().Contains(suite.output.String(), "jake")
	suite.Require().Contains(suite.output.String(), "1 of 5 articles")
}

func (suite *CommandTestSuite) TestArticleWithComments() {
	suite.mockTransport.
		On("Send", "GET", testBaseURL+"/articles/a", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"article":
			{"slug":"a","title":"A","author":{"username":"jake"}}}`), nil).
		Once()

	suite.mockTransport.
		On("Send", "GET", testBaseURL+"/articles/a/comments", mock.Anything, mock.Anything, mock.Anything).
		Return(mocktransport.NewResponse(http.StatusOK, format.ContentTypeJSON, `{"comments":[
			{"id":7,"body":"nice one","author":{"username":"celeb"}}]}`), nil).
		Once()

	err := suite.execute(true, "article", "a", "--comments")
	suite.Require().NoError(err)
	suite.Require().Contains(suite.output.String(), "jake")
	suite.Require().Contains(suite.output.String(), "nice one")
}

func (suite *CommandTestSuite) TestVersion() {
	err := suite.execute(false, "version", "-o", "json")
	suite.Require().NoError(err)
	suite.Require().Contains(suite.output.String(), `"goVersion"`)
}

func (suite *CommandTestSuite) TestInvalidFlags() {
	for _, testCase := range []struct {
		name string
		args []string
	}{
		{name: "LoginWithoutPassword", args: []string{"login", "--email", "jake@jake.jake"}},
		{name: "FollowAndUnfollow", args: []string{"profile", "jake", "--follow", "--unfollow"}},
		{name: "MissingArgs", args: []string{"request", "GET"}},
		{name: "BadParam", args: []string{"request", "GET", "/tags", "-p", "novalue"}},
	} {
		suite.Run(testCase.name, func() {
			suite.Require().Error(suite.execute(true, testCase.args...))
		})
	}
}

func (suite *CommandTestSuite) TestUnsupportedTransport() {
	err := suite.execute(false, "tags", "--transport", "carrier-pigeon")
	suite.Require().Error(err)
}

func (suite *CommandTestSuite) execute(mockTransport bool, args ...string) error {
	rootCommandeer := NewRootCommandeer()
	rootCommandeer.logOutput = io.Discard

	if mockTransport {
		rootCommandeer.transportFactory = func() transport.Transport {
			return suite.mockTransport
		}
	}

	cmd := rootCommandeer.GetCmd()
	cmd.SetOut(suite.output)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--url", testBaseURL,
		"--config", filepath.Join(suite.T().TempDir(), "missing.yaml")))

	return rootCommandeer.Execute()
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}
