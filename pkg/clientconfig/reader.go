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

package clientconfig

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/mitchellh/go-homedir"
	"github.com/nuclio/errors"
	"sigs.k8s.io/yaml"
)

const (
	BaseURLEnvVar = "CONDUIT_API_URL"
	TokenEnvVar   = "CONDUIT_TOKEN"
	MetricsEnvVar = "CONDUIT_METRICS"
)

type Reader struct{}

func NewReader() (*Reader, error) {
	return &Reader{}, nil
}

func (r *Reader) Read(reader io.Reader, config *Config) error {
	configBytes, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrap(err, "Failed to read client configuration")
	}

	if err := yaml.Unmarshal(configBytes, config); err != nil {
		return errors.Wrap(err, "Failed to unmarshal client configuration")
	}

	r.enrich(config)

	return nil
}

func (r *Reader) ReadFileOrDefault(configurationPath string) (*Config, error) {
	var clientConfiguration Config

	// if there's no configuration file, return a default configuration. otherwise try to parse it
	clientConfigurationFile, err := os.Open(configurationPath)
	if err != nil {
		return r.GetDefaultConfiguration(), nil
	}

	// close after
	defer clientConfigurationFile.Close() // nolint: errcheck

	if err := r.Read(clientConfigurationFile, &clientConfiguration); err != nil {
		return nil, errors.Wrap(err, "Failed to read configuration file")
	}

	return &clientConfiguration, nil
}

func (r *Reader) GetDefaultConfiguration() *Config {
	config := &Config{}
	r.enrich(config)

	return config
}

// GetDefaultConfigurationPath returns ~/.conduit/config.yaml
func GetDefaultConfigurationPath() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "Failed to resolve home directory")
	}

	return filepath.Join(homeDir, ".conduit", "config.yaml"), nil
}

func (r *Reader) enrich(config *Config) {
	config.BaseURL = common.GetEnvOrDefaultString(BaseURLEnvVar, config.BaseURL)
	config.Token = common.GetEnvOrDefaultString(TokenEnvVar, config.Token)
	config.Metrics.Enabled = common.GetEnvOrDefaultBool(MetricsEnvVar, config.Metrics.Enabled)

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Transport.Kind == "" {
		config.Transport.Kind = transport.DefaultKind
	}

	if config.Transport.Timeout == "" {
		config.Transport.Timeout = DefaultRequestTimeout
	}

	if config.Logger.Level == "" {
		config.Logger.Level = DefaultLoggerLevel
	}

	if config.RequestID.Enabled && config.RequestID.Header == "" {
		config.RequestID.Header = DefaultRequestIDHeader
	}
}
