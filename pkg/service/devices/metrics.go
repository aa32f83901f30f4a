//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package devices

import (
	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// Total number of applied pin actions per pin & state
	pinActionsTotal = metrics.MustRegisterCounterVec(subSystem,
		"pin_actions_total",
		"Total number of applied pin actions per pin & state",
		"pin", "state")
	// Current state of configured pins (1=HIGH, 0=LOW)
	pinStateGauge = metrics.MustRegisterGaugeVec(subSystem,
		"pin_state",
		"Current state of configured pins (1=HIGH, 0=LOW)",
		"pin")
	// Total number of failed provider operations per operation
	providerErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"provider_errors_total",
		"Total number of failed provider operations per operation",
		"op")
)

// stateValue converts a state into a gauge value.
func stateValue(s model.PinState) float64 {
	if s {
		return 1
	}
	return 0
}
