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
	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/conduit"
	"github.com/nuclio/ajax/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/nuclio/nuclio-sdk-go"
	"github.com/spf13/cobra"
)

type loginCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	credentials    conduit.Credentials
	output         string
}

func newLoginCommandeer(rootCommandeer *RootCommandeer) *loginCommandeer {
	commandeer := &loginCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the token to set as CONDUIT_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if commandeer.credentials.Email == "" || commandeer.credentials.Password == "" {
				return nuclio.NewErrBadRequest("Email and password are required")
			}

			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			common.RedactValues(rootCommandeer.loggerInstance, commandeer.credentials.Password)

			user, err := rootCommandeer.conduitClient.Login(rootCommandeer.context(), &commandeer.credentials)
			if err != nil {
				return errors.Wrap(err, "Failed to login")
			}

			rendererInstance := renderer.NewRenderer(cmd.OutOrStdout())

			return rendererInstance.Render(commandeer.output, user, func(wide bool) error {
				header := []interface{}{"Username", "Email", "Token"}
				record := []interface{}{user.Username, user.Email, user.Token}

				if wide {
					expires := "-"
					if expiry, err := conduit.TokenExpiry(user.Token); err == nil && !expiry.IsZero() {
						expires = expiry.Format(timeFormat)
					}

					header = append(header, "Expires")
					record = append(record, expires)
				}

				rendererInstance.RenderTable(header, [][]interface{}{record})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&commandeer.credentials.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&commandeer.credentials.Password, "password", "", "Account password")
	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatText, "Output format - \"text\", \"wide\", \"yaml\", or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}
