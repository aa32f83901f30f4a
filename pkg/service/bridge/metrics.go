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

package bridge

import (
	"github.com/binkynet/LocalCloudlet/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Total number of pin writes per bridge type
	pinWritesTotal = metrics.MustRegisterCounterVec(subSystem,
		"pin_writes_total",
		"Total number of pin writes",
		"bridge")
	// Total number of failed pin writes per bridge type
	pinWriteErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"pin_write_errors_total",
		"Total number of pin writes that failed",
		"bridge")
)

// countWrite updates the write metrics of given bridge type.
func countWrite(bridgeType string, err error) {
	pinWritesTotal.WithLabelValues(bridgeType).Inc()
	if err != nil {
		pinWriteErrorsTotal.WithLabelValues(bridgeType).Inc()
	}
}
