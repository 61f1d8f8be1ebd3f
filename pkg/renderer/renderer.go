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

package renderer

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/nuclio/ajax/pkg/format"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nuclio/errors"
	"sigs.k8s.io/yaml"
)

const (
	OutputFormatText = "text"
	OutputFormatWide = "wide"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

type Renderer struct {
	output io.Writer
}

func NewRenderer(output io.Writer) *Renderer {
	return &Renderer{
		output: output,
	}
}

// Render writes items as JSON or YAML, or calls renderText for the text formats
func (r *Renderer) Render(outputFormat string, items interface{}, renderText func(wide bool) error) error {
	switch outputFormat {
	case OutputFormatText, "":
		return renderText(false)
	case OutputFormatWide:
		return renderText(true)
	case OutputFormatJSON:
		return r.RenderJSON(items)
	case OutputFormatYAML:
		return r.RenderYAML(items)
	default:
		return errors.Errorf("Unsupported output format: %s", outputFormat)
	}
}

func (r *Renderer) RenderTable(header []interface{}, records [][]interface{}) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(r.output)
	tableWriter.SetStyle(table.Style{
		Name: "Conduit",
		Box: table.BoxStyle{
			MiddleVertical: "|",
			PaddingLeft:    " ",
			PaddingRight:   " ",
		},
		Options: table.Options{
			DoNotColorBordersAndSeparators: true,
			SeparateColumns:                true,
		},
		Color:  table.ColorOptionsDefault,
		Format: table.FormatOptionsDefault,
		HTML:   table.DefaultHTMLOptions,
		Title:  table.TitleOptionsDefault,
	})

	tableWriter.AppendHeader(table.Row(header))
	for _, record := range records {
		tableWriter.AppendRow(table.Row(record))
	}

	tableWriter.Render()
}

func (r *Renderer) RenderYAML(items interface{}) error {
	body, err := yaml.Marshal(ToRenderable(items))
	if err != nil {
		return errors.Wrap(err, "Failed to render YAML")
	}

	fmt.Fprint(r.output, string(body)) // nolint: errcheck

	return nil
}

func (r *Renderer) RenderJSON(items interface{}) error {
	body, err := json.MarshalIndent(ToRenderable(items), "", "\t")
	if err != nil {
		return errors.Wrap(err, "Failed to render JSON")
	}

	fmt.Fprintln(r.output, string(body)) // nolint: errcheck

	return nil
}

// ToRenderable converts decoded response values (keyword maps, transit sets and tagged values) to
// values JSON can encode. Structs are returned as is
func ToRenderable(value interface{}) interface{} {
	switch typedValue := value.(type) {
	case nil:
		return nil
	case format.Keyword:
		return ":" + string(typedValue)
	case format.Symbol:
		return string(typedValue)
	case format.Set:
		return toRenderableSlice(typedValue)
	case format.List:
		return toRenderableSlice(typedValue)
	case format.TaggedValue:
		return map[string]interface{}{
			"tag":   typedValue.Tag,
			"value": ToRenderable(typedValue.Value),
		}
	case format.CompositeMap:
		entries := make([]interface{}, 0, len(typedValue))
		for _, entry := range typedValue {
			entries = append(entries, []interface{}{ToRenderable(entry.Key), ToRenderable(entry.Value)})
		}
		return entries
	case []byte:
		return string(typedValue)
	case time.Time, fmt.Stringer:
		return typedValue
	}

	reflectedValue := reflect.ValueOf(value)

	switch reflectedValue.Kind() {
	case reflect.Map:
		result := make(map[string]interface{}, reflectedValue.Len())

		mapIterator := reflectedValue.MapRange()
		for mapIterator.Next() {
			result[renderableKey(mapIterator.Key().Interface())] = ToRenderable(mapIterator.Value().Interface())
		}

		return result
	case reflect.Slice, reflect.Array:
		result := make([]interface{}, reflectedValue.Len())
		for index := range result {
			result[index] = ToRenderable(reflectedValue.Index(index).Interface())
		}

		return result
	default:
		return value
	}
}

func toRenderableSlice(values []interface{}) []interface{} {
	result := make([]interface{}, len(values))
	for index, value := range values {
		result[index] = ToRenderable(value)
	}

	return result
}

func renderableKey(key interface{}) string {
	switch typedKey := key.(type) {
	case string:
		return typedKey
	case format.Keyword:
		return string(typedKey)
	default:
		return fmt.Sprint(typedKey)
	}
}
