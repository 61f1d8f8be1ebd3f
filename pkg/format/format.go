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

package format

import (
	"strings"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

// Name is the keyword form of a format spec
type Name string

const (
	NameJSON    Name = "json"
	NameTransit Name = "transit"
	NameText    Name = "text"
	NameRaw     Name = "raw"
	NameURL     Name = "url"
	NameDetect  Name = "detect"
)

const (
	ContentTypeJSON           = "application/json"
	ContentTypeTransitJSON    = "application/transit+json"
	ContentTypeTransitMsgpack = "application/transit+msgpack"
	ContentTypeText           = "text/plain; charset=utf-8"
	ContentTypeURLEncoded     = "application/x-www-form-urlencoded; charset=utf-8"
	ContentTypeAny            = "*/*"
)

// Response is the part of a transport response a reader may look at
type Response interface {
	Status() int
	StatusText() string
	Body() []byte
	ResponseHeader(name string) string
}

// RequestWriter serializes request params into a body
type RequestWriter func(params interface{}) ([]byte, error)

// ResponseReader parses a response into a value
type ResponseReader func(response Response) (interface{}, error)

type RequestFormat struct {
	Write       RequestWriter
	ContentType string
}

type ResponseFormat struct {
	Read        ResponseReader
	Description string

	// accept entries, also used as content type patterns during negotiation
	ContentType []string
}

// Options are the codec knobs a request may carry
type Options struct {

	// JSON: convert object keys to Keyword
	Keywords bool `mapstructure:"keywords"`

	// JSON: stripped from the start of the body before parsing
	Prefix string `mapstructure:"prefix"`

	// JSON / Transit: skip structural conversion and return the decoder's native value
	Raw bool `mapstructure:"raw"`

	// Transit: json (default) or msgpack
	Type TransitType `mapstructure:"type"`

	// Transit: override the default writer / reader
	Writer TransitWriter `mapstructure:"writer"`
	Reader TransitReader `mapstructure:"reader"`
}

// GetRequestFormat resolves a request format spec: a Name, a RequestFormat, or a RequestWriter.
// A nil spec resolves to transit
func GetRequestFormat(spec interface{}, options *Options) (*RequestFormat, error) {
	if options == nil {
		options = &Options{}
	}

	switch typedSpec := spec.(type) {
	case nil:
		return TransitRequestFormat(options), nil
	case Name:
		return getNamedRequestFormat(typedSpec, options)
	case string:
		return getNamedRequestFormat(Name(typedSpec), options)
	case *RequestFormat:
		if typedSpec == nil || typedSpec.Write == nil {
			return nil, errors.New("Request format has no writer")
		}
		return typedSpec, nil
	case RequestFormat:
		return GetRequestFormat(&typedSpec, options)
	case RequestWriter:
		return &RequestFormat{Write: typedSpec}, nil
	case func(interface{}) ([]byte, error):
		return &RequestFormat{Write: typedSpec}, nil
	default:
		return nil, errors.Errorf("Unrecognized request format: %T", spec)
	}
}

func getNamedRequestFormat(name Name, options *Options) (*RequestFormat, error) {
	switch name {
	case NameTransit, "":
		return TransitRequestFormat(options), nil
	case NameJSON:
		return JSONRequestFormat(), nil
	case NameText:
		return TextRequestFormat(), nil
	case NameRaw, NameURL:
		return URLRequestFormat(), nil
	default:
		return nil, errors.Errorf("Unrecognized request format: %s", name)
	}
}

// GetResponseFormat resolves a response format spec: a Name, a ResponseFormat, a ResponseReader or
// a list of specs (and Negotiation entries) to negotiate between. A nil spec resolves to detection
// over DefaultFormats
func GetResponseFormat(spec interface{}, options *Options) (*ResponseFormat, error) {
	if options == nil {
		options = &Options{}
	}

	switch typedSpec := spec.(type) {
	case nil:
		return Detect(options, DefaultFormats), nil
	case Name:
		return getNamedResponseFormat(typedSpec, options)
	case string:
		return getNamedResponseFormat(Name(typedSpec), options)
	case *ResponseFormat:
		if typedSpec == nil || typedSpec.Read == nil {
			return nil, errors.New("Response format has no reader")
		}
		return typedSpec, nil
	case ResponseFormat:
		return GetResponseFormat(&typedSpec, options)
	case ResponseReader:
		return &ResponseFormat{Read: typedSpec, Description: "custom", ContentType: []string{ContentTypeAny}}, nil
	case func(Response) (interface{}, error):
		return GetResponseFormat(ResponseReader(typedSpec), options)
	case []Negotiation:
		return Detect(options, typedSpec), nil
	case []interface{}:
		table, err := buildNegotiationTable(typedSpec, options)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to build negotiation table")
		}
		return Detect(options, table), nil
	default:
		return nil, errors.Errorf("Unrecognized response format: %T", spec)
	}
}

func getNamedResponseFormat(name Name, options *Options) (*ResponseFormat, error) {
	switch name {
	case NameDetect, "":
		return Detect(options, DefaultFormats), nil
	case NameJSON:
		return JSONResponseFormat(options), nil
	case NameTransit:
		return TransitResponseFormat(options), nil
	case NameText:
		return TextResponseFormat(), nil
	case NameRaw:
		return RawResponseFormat(), nil
	default:
		return nil, errors.Errorf("Unrecognized response format: %s", name)
	}
}

// buildNegotiationTable turns a list of specs into negotiation entries, one per accept entry
func buildNegotiationTable(specs []interface{}, options *Options) ([]Negotiation, error) {
	var table []Negotiation

	for _, spec := range specs {
		if entry, isNegotiation := spec.(Negotiation); isNegotiation {
			table = append(table, entry)
			continue
		}

		responseFormat, err := GetResponseFormat(spec, options)
		if err != nil {
			return nil, err
		}

		table = append(table, lo.Map(responseFormat.ContentType, func(contentType string, _ int) Negotiation {
			return Negotiation{Pattern: contentType, Format: responseFormat}
		})...)
	}

	return table, nil
}

// AcceptHeader renders a response format's accept entries as an Accept header value
func AcceptHeader(responseFormat *ResponseFormat) string {
	return strings.Join(responseFormat.ContentType, ", ")
}
