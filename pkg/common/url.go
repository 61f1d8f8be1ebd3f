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
	"strings"

	"github.com/valyala/fasthttp"
)

const (
	HTTPPrefix  = "http://"
	HTTPSPrefix = "https://"
)

func IsURL(s string) bool {
	return strings.HasPrefix(s, HTTPPrefix) || strings.HasPrefix(s, HTTPSPrefix)
}

// ResolveURI returns pathOrURL as is if it is a URL, otherwise appends its normalized path (and query)
// to the base URL
// examples:
// ("http://h/api/", "articles//a?x=1") -> "http://h/api/articles/a?x=1"
// ("http://h/api", "https://other/x") -> "https://other/x"
func ResolveURI(baseURL string, pathOrURL string) string {
	if IsURL(pathOrURL) {
		return pathOrURL
	}

	path, query, hasQuery := strings.Cut(pathOrURL, "?")

	resolved := strings.TrimSuffix(baseURL, "/") + NormalizeURLPath(path)
	if hasQuery {
		resolved += "?" + query
	}

	return resolved
}

// NormalizeURLPath cleans a URL path
// examples:
// "" -> "/"
// "a" -> "/a"
// "//a//b/c/" -> "/a/b/c/"
func NormalizeURLPath(p string) string {
	uri := fasthttp.URI{}
	uri.SetPath(p)

	return string(uri.Path())
}
