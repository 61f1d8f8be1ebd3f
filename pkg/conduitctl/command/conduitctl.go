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
	"io"
	"os"

	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/ajax/interceptors"
	"github.com/nuclio/ajax/pkg/clientconfig"
	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/common/headers"
	"github.com/nuclio/ajax/pkg/conduit"
	"github.com/nuclio/ajax/pkg/transport"
	"github.com/nuclio/ajax/pkg/transport/factory"
	"github.com/nuclio/ajax/pkg/version"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type RootCommandeer struct {
	loggerInstance    logger.Logger
	cmd               *cobra.Command
	configurationPath string
	baseURL           string
	token             string
	transportKind     string
	verbose           bool
	configuration     *clientconfig.Config
	ajaxClient        *ajax.Client
	conduitClient     *conduit.Client
	metricRegistry    *prometheus.Registry

	// overrides the configured transport, for tests
	transportFactory transport.Factory
	logOutput        io.Writer
}

func NewRootCommandeer() *RootCommandeer {
	commandeer := &RootCommandeer{
		logOutput: os.Stderr,
	}

	cmd := &cobra.Command{
		Use:           "conduitctl [command]",
		Short:         "Conduit command-line interface",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			commandeer.logMetrics()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().StringVarP(&commandeer.configurationPath, "config", "c", "", "Path to a configuration file (default ~/.conduit/config.yaml)")
	cmd.PersistentFlags().StringVarP(&commandeer.baseURL, "url", "u", "", "Conduit API address (overrides configuration)")
	cmd.PersistentFlags().StringVarP(&commandeer.token, "token", "t", "", "JWT to authenticate with (overrides configuration)")
	cmd.PersistentFlags().StringVarP(&commandeer.transportKind, "transport", "", "", "Transport kind - \"http\" or \"fasthttp\" (overrides configuration)")

	cmd.AddCommand(
		newRequestCommandeer(commandeer).cmd,
		newArticlesCommandeer(commandeer).cmd,
		newArticleCommandeer(commandeer).cmd,
		newTagsCommandeer(commandeer).cmd,
		newLoginCommandeer(commandeer).cmd,
		newProfileCommandeer(commandeer).cmd,
		newVersionCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// Execute uses os.Args to execute the command
func (rc *RootCommandeer) Execute() error {
	return rc.cmd.Execute()
}

// GetCmd returns the underlying cobra command
func (rc *RootCommandeer) GetCmd() *cobra.Command {
	return rc.cmd
}

func (rc *RootCommandeer) initialize() error {
	var err error

	rc.configuration, err = rc.readConfiguration()
	if err != nil {
		return errors.Wrap(err, "Failed to read configuration")
	}

	rc.loggerInstance, err = rc.createLogger()
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	version.Log(rc.loggerInstance)

	// never log the token
	common.RedactValues(rc.loggerInstance, rc.configuration.Token)

	transportFactory := rc.transportFactory
	if transportFactory == nil {
		transportFactory, err = factory.CreateTransportFactory(rc.loggerInstance, &rc.configuration.Transport)
		if err != nil {
			return errors.Wrap(err, "Failed to create transport factory")
		}
	}

	rc.ajaxClient, err = ajax.NewClient(rc.loggerInstance, transportFactory)
	if err != nil {
		return errors.Wrap(err, "Failed to create ajax client")
	}

	defaultInterceptors, err := rc.createDefaultInterceptors()
	if err != nil {
		return errors.Wrap(err, "Failed to create default interceptors")
	}

	rc.ajaxClient.SetDefaultInterceptors(defaultInterceptors...)

	timeout, err := rc.configuration.Transport.GetTimeout()
	if err != nil {
		return errors.Wrap(err, "Failed to resolve timeout")
	}

	rc.ajaxClient.SetDefaults(ajax.Defaults{Timeout: timeout})

	rc.conduitClient, err = conduit.NewClient(rc.loggerInstance, rc.ajaxClient, rc.configuration.BaseURL)
	if err != nil {
		return errors.Wrap(err, "Failed to create conduit client")
	}

	rc.conduitClient.SetToken(rc.configuration.Token)

	rc.loggerInstance.DebugWith("Initialized",
		"baseURL", rc.configuration.BaseURL,
		"transport", rc.configuration.Transport.Kind,
		"authenticated", rc.configuration.Token != "")

	return nil
}

func (rc *RootCommandeer) readConfiguration() (*clientconfig.Config, error) {
	configurationReader, err := clientconfig.NewReader()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create configuration reader")
	}

	configurationPath := rc.configurationPath
	if configurationPath == "" {
		configurationPath, err = clientconfig.GetDefaultConfigurationPath()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to resolve configuration path")
		}
	}

	configuration, err := configurationReader.ReadFileOrDefault(configurationPath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read configuration file")
	}

	// flags take precedence
	if rc.baseURL != "" {
		configuration.BaseURL = rc.baseURL
	}

	if rc.token != "" {
		configuration.Token = rc.token
	}

	if rc.transportKind != "" {
		configuration.Transport.Kind = transport.Kind(rc.transportKind)
	}

	return configuration, nil
}

func (rc *RootCommandeer) createLogger() (logger.Logger, error) {
	loggerLevel := nucliozap.GetLevelByName(rc.configuration.Logger.Level)
	if rc.verbose {
		loggerLevel = nucliozap.DebugLevel
	}

	loggerInstance, err := nucliozap.NewNuclioZapCmd("conduitctl",
		loggerLevel,
		common.GetRedactorInstance(rc.logOutput))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger")
	}

	return loggerInstance, nil
}

func (rc *RootCommandeer) createDefaultInterceptors() ([]ajax.Interceptor, error) {
	defaultHeaders := map[string]string{
		headers.UserAgent: version.UserAgent("conduitctl"),
	}

	for name, value := range rc.configuration.DefaultHeaders {
		defaultHeaders[name] = value
	}

	defaultInterceptors := []ajax.Interceptor{
		interceptors.NewLogging(rc.loggerInstance),
		interceptors.NewDefaultHeaders(defaultHeaders),
	}

	if rc.configuration.RequestID.Enabled {
		defaultInterceptors = append(defaultInterceptors,
			interceptors.NewRequestID(rc.configuration.RequestID.Header))
	}

	if rc.configuration.Metrics.Enabled {
		rc.metricRegistry = prometheus.NewRegistry()

		metrics, err := interceptors.NewMetrics(rc.metricRegistry)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create metrics interceptor")
		}

		defaultInterceptors = append(defaultInterceptors, metrics)
	}

	return defaultInterceptors, nil
}

// logMetrics logs the request counters gathered during the command, if metrics are enabled
func (rc *RootCommandeer) logMetrics() {
	if rc.metricRegistry == nil || rc.loggerInstance == nil {
		return
	}

	metricFamilies, err := rc.metricRegistry.Gather()
	if err != nil {
		rc.loggerInstance.WarnWith("Failed to gather metrics", "err", err.Error())
		return
	}

	for _, metricFamily := range metricFamilies {
		for _, metric := range metricFamily.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			rc.loggerInstance.InfoWith("Metric",
				"name", metricFamily.GetName(),
				"labels", labels,
				"value", metric.GetCounter().GetValue())
		}
	}
}

func (rc *RootCommandeer) context() context.Context {
	if rc.cmd != nil && rc.cmd.Context() != nil {
		return rc.cmd.Context()
	}

	return context.Background()
}
