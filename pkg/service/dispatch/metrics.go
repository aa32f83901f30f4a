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

package dispatch

import (
	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/metrics"
)

const (
	subSystem = "dispatch"
)

var (
	// Total number of messages sent per endpoint scheme & result
	messagesTotal = metrics.MustRegisterCounterVec(subSystem,
		"messages_total",
		"Total number of messages sent per endpoint scheme & result",
		"scheme", "result")
	// Total number of find-one lookups per collection & result
	lookupsTotal = metrics.MustRegisterCounterVec(subSystem,
		"lookups_total",
		"Total number of find-one lookups per collection & result",
		"collection", "result")
	// Total number of ignored pin action headers
	ignoredActionHeadersTotal = metrics.MustRegisterCounter(subSystem,
		"ignored_action_headers_total",
		"Total number of pin action headers that disagreed with the endpoint action")
)

// resultLabel converts an error into a metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case model.IsNotFound(err):
		return "not_found"
	case model.IsInvalidArgument(err):
		return "invalid"
	default:
		return "error"
	}
}
