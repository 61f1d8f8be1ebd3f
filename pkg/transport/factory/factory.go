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

package factory

import (
	"github.com/nuclio/ajax/pkg/clientconfig"
	"github.com/nuclio/ajax/pkg/transport"
	"github.com/nuclio/ajax/pkg/transport/fastclient"
	"github.com/nuclio/ajax/pkg/transport/nethttp"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// CreateTransportFactory creates a transport factory by a given configuration
func CreateTransportFactory(parentLogger logger.Logger,
	transportConfiguration *clientconfig.Transport) (transport.Factory, error) {

	timeout, err := transportConfiguration.GetTimeout()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to resolve transport timeout")
	}

	switch transportConfiguration.Kind {
	case transport.KindHTTP, "":
		return nethttp.NewFactory(parentLogger, timeout, transportConfiguration.InsecureSkipVerify), nil

	case transport.KindFastHTTP:
		return fastclient.NewFactory(parentLogger,
			timeout,
			transportConfiguration.InsecureSkipVerify,
			transportConfiguration.MaxConnsPerHost), nil

	default:
		return nil, errors.Errorf("Unsupported transport kind: %s", transportConfiguration.Kind)
	}
}
