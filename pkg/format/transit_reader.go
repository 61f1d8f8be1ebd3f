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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icza/dyno"
	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
	"github.com/vmihailenco/msgpack/v4/codes"
)

const (
	cacheCodeDigits = 44
	cacheBaseChar   = 48
	maxCacheEntries = cacheCodeDigits * cacheCodeDigits
)

// orderedMap keeps object entries in wire order, which the read cache depends on
type orderedMap []MapEntry

type transitReader struct {
	transitType TransitType
	raw         bool
}

// NewTransitReader creates a reader for the given encoding (json if empty). A raw reader returns the
// decoded wire structure without interpreting transit encodings
func NewTransitReader(transitType TransitType, raw bool) TransitReader {
	return &transitReader{
		transitType: transitType,
		raw:         raw,
	}
}

func (r *transitReader) Read(data []byte) (interface{}, error) {
	if r.raw {
		return r.readRaw(data)
	}

	var tree interface{}
	var err error

	if r.transitType == TransitTypeMsgpack {
		tree, err = readMsgpackValue(msgpack.NewDecoder(bytes.NewReader(data)))
	} else {
		tree, err = readJSONDocument(data)
	}

	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode transit")
	}

	return (&transitParser{}).parse(tree, false)
}

func (r *transitReader) readRaw(data []byte) (interface{}, error) {
	var tree interface{}

	if r.transitType == TransitTypeMsgpack {
		if err := msgpack.Unmarshal(data, &tree); err != nil {
			return nil, errors.Wrap(err, "Failed to decode transit msgpack")
		}

		// msgpack decodes maps with interface keys
		return dyno.ConvertMapI2MapS(tree), nil
	}

	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "Failed to decode transit JSON")
	}

	return tree, nil
}

type transitParser struct {
	cache []string
}

func (p *transitParser) parse(node interface{}, asKey bool) (interface{}, error) {
	switch typedNode := node.(type) {
	case string:
		return p.decodeString(p.resolve(typedNode, asKey))
	case []interface{}:
		return p.parseArray(typedNode)
	case orderedMap:
		return p.parseObject(typedNode)
	default:
		return normalizeNumber(node), nil
	}
}

func (p *transitParser) parseArray(array []interface{}) (interface{}, error) {
	if len(array) == 0 {
		return []interface{}{}, nil
	}

	head, headIsString := array[0].(string)
	if !headIsString {
		return p.parseElements(array, nil)
	}

	if head == transitMapMarker {
		entries := make([]MapEntry, 0, (len(array)-1)/2)

		for index := 1; index+1 < len(array); index += 2 {
			key, err := p.parse(array[index], true)
			if err != nil {
				return nil, err
			}

			value, err := p.parse(array[index+1], false)
			if err != nil {
				return nil, err
			}

			entries = append(entries, MapEntry{Key: key, Value: value})
		}

		return buildMap(entries), nil
	}

	head = p.resolve(head, false)

	if len(array) == 2 && strings.HasPrefix(head, transitTagPrefix) {
		representation, err := p.parse(array[1], false)
		if err != nil {
			return nil, err
		}

		return decodeTagged(strings.TrimPrefix(head, transitTagPrefix), representation)
	}

	// the head was already resolved against the cache, decode it without resolving again
	decodedHead, err := p.decodeString(head)
	if err != nil {
		return nil, err
	}

	return p.parseElements(array[1:], []interface{}{decodedHead})
}

func (p *transitParser) parseElements(array []interface{}, result []interface{}) (interface{}, error) {
	for _, element := range array {
		parsedElement, err := p.parse(element, false)
		if err != nil {
			return nil, err
		}

		result = append(result, parsedElement)
	}

	return result, nil
}

// parseObject handles verbose maps ({"key": value}) and msgpack maps
func (p *transitParser) parseObject(object orderedMap) (interface{}, error) {
	entries := make([]MapEntry, 0, len(object))

	for _, entry := range object {
		rawKey, keyIsString := entry.Key.(string)

		if keyIsString && len(object) == 1 {
			rawKey = p.resolve(rawKey, true)

			if strings.HasPrefix(rawKey, transitTagPrefix) {
				representation, err := p.parse(entry.Value, false)
				if err != nil {
					return nil, err
				}

				return decodeTagged(strings.TrimPrefix(rawKey, transitTagPrefix), representation)
			}

			key, err := p.decodeString(rawKey)
			if err != nil {
				return nil, err
			}

			value, err := p.parse(entry.Value, false)
			if err != nil {
				return nil, err
			}

			return buildMap([]MapEntry{{Key: key, Value: value}}), nil
		}

		key, err := p.parse(entry.Key, true)
		if err != nil {
			return nil, err
		}

		value, err := p.parse(entry.Value, false)
		if err != nil {
			return nil, err
		}

		entries = append(entries, MapEntry{Key: key, Value: value})
	}

	return buildMap(entries), nil
}

// resolve replaces a cache reference with the string it stands for, and remembers cacheable strings
func (p *transitParser) resolve(value string, asKey bool) string {
	if isCacheReference(value) {
		index := cacheIndex(value)
		if index >= 0 && index < len(p.cache) {
			return p.cache[index]
		}

		return value
	}

	if isCacheable(value, asKey) {
		if len(p.cache) == maxCacheEntries {
			p.cache = p.cache[:0]
		}

		p.cache = append(p.cache, value)
	}

	return value
}

func (p *transitParser) decodeString(value string) (interface{}, error) {
	if len(value) < 2 || value[0] != '~' {
		return value, nil
	}

	payload := value[2:]

	switch value[1] {
	case '~', '^', '`':
		return value[1:], nil
	case ':':
		return Keyword(payload), nil
	case '$':
		return Symbol(payload), nil
	case '_':
		return nil, nil
	case '?':
		return payload == "t", nil
	case 'i':
		if intValue, err := strconv.ParseInt(payload, 10, 64); err == nil {
			return intValue, nil
		}
		return parseBigInt(payload)
	case 'n':
		return parseBigInt(payload)
	case 'd', 'f':
		floatValue, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit decimal %q", value)
		}
		return floatValue, nil
	case 'z':
		switch payload {
		case "NaN":
			return math.NaN(), nil
		case "INF":
			return math.Inf(1), nil
		case "-INF":
			return math.Inf(-1), nil
		}
		return nil, errors.Errorf("Invalid transit special number %q", value)
	case 'm':
		milliseconds, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit timestamp %q", value)
		}
		return time.UnixMilli(milliseconds).UTC(), nil
	case 't':
		timestamp, err := time.Parse(time.RFC3339Nano, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit instant %q", value)
		}
		return timestamp.UTC(), nil
	case 'u':
		parsedUUID, err := uuid.Parse(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit uuid %q", value)
		}
		return parsedUUID, nil
	case 'b':
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit binary %q", value)
		}
		return decoded, nil
	case 'r':
		parsedURL, err := url.Parse(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid transit uri %q", value)
		}
		return parsedURL, nil
	case 'c':
		return payload, nil
	case '#':
		return value, nil
	default:
		return TaggedValue{Tag: value[1:2], Value: payload}, nil
	}
}

func decodeTagged(tag string, representation interface{}) (interface{}, error) {
	switch tag {
	case "'":
		return representation, nil
	case "set", "list", "cmap":
		elements, isArray := representation.([]interface{})
		if !isArray {
			return nil, errors.Errorf("Transit %s must be an array, got %T", tag, representation)
		}

		switch tag {
		case "set":
			return Set(elements), nil
		case "list":
			return List(elements), nil
		}

		entries := make([]MapEntry, 0, len(elements)/2)
		for index := 0; index+1 < len(elements); index += 2 {
			entries = append(entries, MapEntry{Key: elements[index], Value: elements[index+1]})
		}
		return buildMap(entries), nil
	default:
		return TaggedValue{Tag: tag, Value: representation}, nil
	}
}

func parseBigInt(value string) (interface{}, error) {
	bigValue, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errors.Errorf("Invalid transit integer %q", value)
	}

	return bigValue, nil
}

func isCacheReference(value string) bool {
	return len(value) > 1 && len(value) < 4 && value[0] == '^' && value != transitMapMarker
}

func isCacheable(value string, asKey bool) bool {
	if len(value) <= 3 {
		return false
	}

	return asKey ||
		strings.HasPrefix(value, "~:") ||
		strings.HasPrefix(value, "~$") ||
		strings.HasPrefix(value, transitTagPrefix)
}

func cacheIndex(reference string) int {
	if len(reference) == 2 {
		return int(reference[1]) - cacheBaseChar
	}

	return (int(reference[1])-cacheBaseChar)*cacheCodeDigits + int(reference[2]) - cacheBaseChar
}

// readJSONDocument decodes a single JSON value, keeping object entries in order
func readJSONDocument(data []byte) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := readJSONValue(decoder)
	if err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("Unexpected data after top-level value")
	}

	return value, nil
}

func readJSONValue(decoder *json.Decoder) (interface{}, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delimiter, isDelimiter := token.(json.Delim)
	if !isDelimiter {
		return token, nil
	}

	switch delimiter {
	case '{':
		object := orderedMap{}
		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			value, err := readJSONValue(decoder)
			if err != nil {
				return nil, err
			}

			object = append(object, MapEntry{Key: keyToken, Value: value})
		}

		// closing brace
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}

		return object, nil

	case '[':
		array := []interface{}{}
		for decoder.More() {
			value, err := readJSONValue(decoder)
			if err != nil {
				return nil, err
			}

			array = append(array, value)
		}

		// closing bracket
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}

		return array, nil

	default:
		return nil, errors.Errorf("Unexpected JSON delimiter %s", delimiter)
	}
}

// readMsgpackValue decodes a single msgpack value, keeping map entries in order
func readMsgpackValue(decoder *msgpack.Decoder) (interface{}, error) {
	code, err := decoder.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case codes.IsFixedMap(code) || code == codes.Map16 || code == codes.Map32:
		length, err := decoder.DecodeMapLen()
		if err != nil {
			return nil, err
		}

		object := make(orderedMap, 0, length)
		for index := 0; index < length; index++ {
			key, err := readMsgpackValue(decoder)
			if err != nil {
				return nil, err
			}

			value, err := readMsgpackValue(decoder)
			if err != nil {
				return nil, err
			}

			object = append(object, MapEntry{Key: key, Value: value})
		}

		return object, nil

	case codes.IsFixedArray(code) || code == codes.Array16 || code == codes.Array32:
		length, err := decoder.DecodeArrayLen()
		if err != nil {
			return nil, err
		}

		array := make([]interface{}, 0, length)
		for index := 0; index < length; index++ {
			value, err := readMsgpackValue(decoder)
			if err != nil {
				return nil, err
			}

			array = append(array, value)
		}

		return array, nil

	default:
		value, err := decoder.DecodeInterface()
		if err != nil {
			return nil, err
		}

		return normalizeNumber(value), nil
	}
}
