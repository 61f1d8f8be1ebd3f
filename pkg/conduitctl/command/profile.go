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
	"github.com/nuclio/ajax/pkg/conduit"
	"github.com/nuclio/ajax/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/nuclio/nuclio-sdk-go"
	"github.com/spf13/cobra"
)

type profileCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	follow         bool
	unfollow       bool
	output         string
}

func newProfileCommandeer(rootCommandeer *RootCommandeer) *profileCommandeer {
	commandeer := &profileCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "profile username",
		Short: "Display a user's profile, optionally (un)following them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if commandeer.follow && commandeer.unfollow {
				return nuclio.NewErrBadRequest("--follow and --unfollow are mutually exclusive")
			}

			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			ctx := rootCommandeer.context()

			var profile *conduit.Profile
			var err error

			switch {
			case commandeer.follow:
				profile, err = rootCommandeer.conduitClient.Follow(ctx, args[0])
			case commandeer.unfollow:
				profile, err = rootCommandeer.conduitClient.Unfollow(ctx, args[0])
			default:
				profile, err = rootCommandeer.conduitClient.GetProfile(ctx, args[0])
			}

			if err != nil {
				return errors.Wrap(err, "Failed to get profile")
			}

			rendererInstance := renderer.NewRenderer(cmd.OutOrStdout())

			return rendererInstance.Render(commandeer.output, profile, func(wide bool) error {
				rendererInstance.RenderTable([]interface{}{"Username", "Following", "Bio"},
					[][]interface{}{{profile.Username, profile.Following, profile.Bio}})
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&commandeer.follow, "follow", false, "Follow the user")
	cmd.Flags().BoolVar(&commandeer.unfollow, "unfollow", false, "Unfollow the user")
	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatText, "Output format - \"text\", \"yaml\", or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}
