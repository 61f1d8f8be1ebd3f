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

package common

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type URLTestSuite struct {
	suite.Suite
}

func (ts *URLTestSuite) TestIsURL() {
	ts.Require().False(IsURL("/not/a/url"))
	ts.Require().False(IsURL("ftp://www.example.com"))
	ts.Require().True(IsURL("http://www.example.com"))
	ts.Require().True(IsURL("https://www.example.com"))
}

func (ts *URLTestSuite) TestResolveURI() {
	for _, testCase := range []struct {
		name      string
		baseURL   string
		pathOrURL string
		expected  string
	}{
		{name: "Path", baseURL: "http://h/api", pathOrURL: "/tags", expected: "http://h/api/tags"},
		{name: "RelativePath", baseURL: "http://h/api/", pathOrURL: "tags", expected: "http://h/api/tags"},
		{name: "Slashes", baseURL: "http://h/api", pathOrURL: "//articles//a", expected: "http://h/api/articles/a"},
		{name: "Query", baseURL: "http://h/api", pathOrURL: "/articles?limit=1&tag=go", expected: "http://h/api/articles?limit=1&tag=go"},
		{name: "URL", baseURL: "http://h/api", pathOrURL: "https://other/x", expected: "https://other/x"},
	} {
		ts.Run(testCase.name, func() {
			ts.Require().Equal(testCase.expected, ResolveURI(testCase.baseURL, testCase.pathOrURL))
		})
	}
}

func (ts *URLTestSuite) TestNormalizeURLPath() {
	ts.Require().Equal("/", NormalizeURLPath(""))
	ts.Require().Equal("/a", NormalizeURLPath("a"))
	ts.Require().Equal("/a/b/c/", NormalizeURLPath("//a//b/c/"))
}

func TestURLTestSuite(t *testing.T) {
	suite.Run(t, new(URLTestSuite))
}
