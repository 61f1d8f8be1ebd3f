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
	"context"

	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/ajax/interceptors"
	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/conduit"
	"github.com/nuclio/ajax/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

type requestCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	params         []string
	headers        []string
	body           string
	requestFormat  string
	responseFormat string
	keywords       bool
	output         string
}

func newRequestCommandeer(rootCommandeer *RootCommandeer) *requestCommandeer {
	commandeer := &requestCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "request method path",
		Short: "Send an arbitrary request and display the parsed response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			response, err := commandeer.send(rootCommandeer.context(), args[0], args[1])
			if err != nil {
				return err
			}

			return renderer.NewRenderer(cmd.OutOrStdout()).Render(commandeer.output, response, func(wide bool) error {
				return renderer.NewRenderer(cmd.OutOrStdout()).RenderJSON(response)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&commandeer.params, "param", "p", nil, "Request parameter (key=value). Repeatable")
	cmd.Flags().StringSliceVarP(&commandeer.headers, "header", "H", nil, "Request header (name=value). Repeatable")
	cmd.Flags().StringVarP(&commandeer.body, "body", "d", "", "Pre-serialized request body. Params are ignored when set")
	cmd.Flags().StringVarP(&commandeer.requestFormat, "format", "f", "json", "Request format - \"json\", \"transit\", \"text\" or \"url\"")
	cmd.Flags().StringVarP(&commandeer.responseFormat, "response-format", "r", "detect", "Response format - \"json\", \"transit\", \"text\", \"raw\" or \"detect\"")
	cmd.Flags().BoolVarP(&commandeer.keywords, "keywords", "k", false, "Keywordize JSON object keys")
	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatJSON, "Output format - \"json\" or \"yaml\"")

	commandeer.cmd = cmd

	return commandeer
}

func (r *requestCommandeer) send(ctx context.Context, method string, path string) (interface{}, error) {
	params, err := common.StringSliceToStringMap(r.params, "=")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse params")
	}

	headers, err := common.StringSliceToStringMap(r.headers, "=")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse headers")
	}

	uri := common.ResolveURI(r.rootCommandeer.configuration.BaseURL, path)

	type requestResult struct {
		value   interface{}
		failure *ajax.Failure
	}

	resultChan := make(chan requestResult, 1)

	keysAndValues := []interface{}{
		"format", r.requestFormat,
		"response-format", r.responseFormat,
		"keywords", r.keywords,
		"headers", headers,
		"interceptors", []ajax.Interceptor{
			interceptors.NewAuthorization(r.rootCommandeer.conduitClient.GetToken),
		},
		"handler", func(response interface{}) {
			resultChan <- requestResult{value: response}
		},
		"error-handler", func(failure *ajax.Failure) {
			resultChan <- requestResult{failure: failure}
		},
	}

	if len(params) > 0 {
		keysAndValues = append(keysAndValues, "params", params)
	}

	if r.body != "" {
		keysAndValues = append(keysAndValues, "body", r.body)
	}

	if _, err := r.rootCommandeer.ajaxClient.DoKV(ctx, method, uri, keysAndValues...); err != nil {
		return nil, errors.Wrapf(err, "Failed to send %s %s", method, uri)
	}

	result := <-resultChan
	if result.failure != nil {
		return nil, conduit.FailureToError(result.failure)
	}

	return result.value, nil
}
