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

type ScrubberTestSuite struct {
	suite.Suite
	scrubber *HeaderScrubber
}

func (suite *ScrubberTestSuite) SetupTest() {
	suite.scrubber = NewHeaderScrubber("X-Api-Key")
}

func (suite *ScrubberTestSuite) TestScrubAndRestore() {
	headersToScrub := map[string]string{
		"Authorization": "Token secret.jwt.value",
		"x-api-key":     "12345",
		"Accept":        "application/json",
		"Cookie":        "",
	}

	scrubbedHeaders, secretsMap := suite.scrubber.Scrub(headersToScrub)
	suite.Require().NotEmpty(secretsMap)

	for _, sensitiveHeader := range []string{"Authorization", "x-api-key"} {
		suite.Require().NotEqual(headersToScrub[sensitiveHeader], scrubbedHeaders[sensitiveHeader])
		suite.Require().Contains(scrubbedHeaders[sensitiveHeader], ReferencePrefix)
	}

	// non sensitive and empty values are kept
	suite.Require().Equal("application/json", scrubbedHeaders["Accept"])
	suite.Require().Equal("", scrubbedHeaders["Cookie"])

	// the input is untouched
	suite.Require().Equal("Token secret.jwt.value", headersToScrub["Authorization"])

	suite.Require().Equal(headersToScrub, suite.scrubber.Restore(scrubbedHeaders, secretsMap))
}

func (suite *ScrubberTestSuite) TestScrubEmpty() {
	scrubbedHeaders, secretsMap := suite.scrubber.Scrub(nil)
	suite.Require().Empty(scrubbedHeaders)
	suite.Require().Empty(secretsMap)
}

func TestScrubberTestSuite(t *testing.T) {
	suite.Run(t, new(ScrubberTestSuite))
}
