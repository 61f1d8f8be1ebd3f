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

type keyName string

func (k keyName) String() string {
	return string(k)
}

type MapTestSuite struct {
	suite.Suite
}

func (ts *MapTestSuite) TestSliceToMap() {
	result, err := SliceToMap([]interface{}{"a", 1, keyName("b"), "two"})
	ts.Require().NoError(err)
	ts.Require().Equal(map[string]interface{}{"a": 1, "b": "two"}, result)

	_, err = SliceToMap([]interface{}{"a"})
	ts.Require().Error(err)

	_, err = SliceToMap([]interface{}{1, "a"})
	ts.Require().Error(err)
}

func (ts *MapTestSuite) TestStringSliceToStringMap() {
	result, err := StringSliceToStringMap([]string{"tag=go", "filter=a=b"}, "=")
	ts.Require().NoError(err)
	ts.Require().Equal(map[string]string{"tag": "go", "filter": "a=b"}, result)

	_, err = StringSliceToStringMap([]string{"novalue"}, "=")
	ts.Require().Error(err)
}

func TestMapTestSuite(t *testing.T) {
	suite.Run(t, new(MapTestSuite))
}
