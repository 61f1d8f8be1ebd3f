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

package interceptors

import (
	"strconv"

	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/transport"

	"github.com/nuclio/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts requests by method and responses by status
type Metrics struct {
	requestsTotal  *prometheus.CounterVec
	responsesTotal *prometheus.CounterVec
}

func NewMetrics(metricRegistry *prometheus.Registry) (*Metrics, error) {
	newMetrics := &Metrics{}

	newMetrics.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ajax_requests_total",
		Help: "Total number of requests sent",
	}, []string{"method"})

	newMetrics.responsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ajax_responses_total",
		Help: "Total number of responses received",
	}, []string{"status"})

	for _, collector := range []prometheus.Collector{
		newMetrics.requestsTotal,
		newMetrics.responsesTotal,
	} {
		if err := metricRegistry.Register(collector); err != nil {
			return nil, errors.Wrap(err, "Failed to register metric")
		}
	}

	return newMetrics, nil
}

func (m *Metrics) ProcessRequest(request *ajax.Request) (ajax.Step, error) {
	m.requestsTotal.With(prometheus.Labels{
		"method": request.Method,
	}).Inc()

	return ajax.Continue(request), nil
}

func (m *Metrics) ProcessResponse(response interface{}) interface{} {
	status := "unknown"

	switch typedResponse := response.(type) {
	case transport.Response:
		status = strconv.Itoa(typedResponse.Status())
	case ajax.Outcome:
		status = "outcome"
	}

	m.responsesTotal.With(prometheus.Labels{
		"status": status,
	}).Inc()

	return response
}

func (m *Metrics) String() string {
	return "metrics"
}
