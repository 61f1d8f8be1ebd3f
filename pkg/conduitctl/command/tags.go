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
	"github.com/nuclio/ajax/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type tagsCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	output         string
}

func newTagsCommandeer(rootCommandeer *RootCommandeer) *tagsCommandeer {
	commandeer := &tagsCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List popular tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			tags, err := rootCommandeer.conduitClient.ListTags(rootCommandeer.context())
			if err != nil {
				return errors.Wrap(err, "Failed to get tags")
			}

			rendererInstance := renderer.NewRenderer(cmd.OutOrStdout())

			return rendererInstance.Render(commandeer.output, tags, func(wide bool) error {
				rendererInstance.RenderTable([]interface{}{"Tag"}, lo.Map(tags, func(tag string, _ int) []interface{} {
					return []interface{}{tag}
				}))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatText, "Output format - \"text\", \"yaml\", or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}
