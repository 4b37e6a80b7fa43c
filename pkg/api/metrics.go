/*
Copyright 2026.

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

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deploymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageforge_deployments_total",
		Help: "Deployment requests by outcome (success, rejected, failed).",
	}, []string{"outcome"})

	callbackDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageforge_callback_deliveries_total",
		Help: "Result callback deliveries by outcome (success, failed).",
	}, []string{"outcome"})

	pagesPollResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageforge_pages_poll_total",
		Help: "Pages availability polls by result (live, timeout).",
	}, []string{"result"})
)
