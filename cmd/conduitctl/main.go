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

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/conduitctl/command"

	"github.com/fatih/color"
	"github.com/nuclio/errors"
)

func main() {
	if err := command.NewRootCommandeer().Execute(); err != nil {
		statusCode := common.ResolveErrorStatusCodeOrDefault(err, 0)

		errorPrinter := color.New(color.FgRed, color.Bold)
		if statusCode != 0 && statusCode < http.StatusInternalServerError {
			errorPrinter = color.New(color.FgYellow)
		}

		errorPrinter.Fprintln(os.Stderr, "Error:", err.Error()) // nolint: errcheck
		errors.PrintErrorStack(os.Stderr, err, 5)

		if statusCode != 0 {
			fmt.Fprintf(os.Stderr, "(status %d %s)\n", statusCode, http.StatusText(statusCode)) // nolint: errcheck
		}

		os.Exit(1)
	}

	os.Exit(0)
}
