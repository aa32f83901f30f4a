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

package documents

import (
	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/metrics"
)

const (
	subSystem = "documents"
)

var (
	// Total number of store operations per store type, operation & result
	storeOperationsTotal = metrics.MustRegisterCounterVec(subSystem,
		"store_operations_total",
		"Total number of store operations per store type, operation & result",
		"store", "op", "result")
)

// countOperation records the result of a store operation.
func countOperation(storeType, op string, err error) {
	result := "ok"
	if model.IsNotFound(err) {
		result = "not_found"
	} else if err != nil {
		result = "error"
	}
	storeOperationsTotal.WithLabelValues(storeType, op, result).Inc()
}
