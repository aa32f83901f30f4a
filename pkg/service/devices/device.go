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
	"context"
	"time"

	"github.com/binkynet/LocalCloudlet/model"
)

// DigitalOutputController contains the API that is supported by
// all providers of addressable digital pins.
type DigitalOutputController interface {
	// SetMode configures the pin at given address in the given mode.
	// Returns InvalidPinError when the address is unknown.
	SetMode(ctx context.Context, addr model.PinAddress, mode model.PinMode) error
	// ApplyAction sets the logical state of the pin at given address.
	// A pin that was never configured is configured as digital output.
	ApplyAction(ctx context.Context, addr model.PinAddress, action model.PinState) error
	// Execute configures the pin of the command and applies its action.
	Execute(ctx context.Context, cmd model.PinCommand) error
	// GetState returns the last applied state of the pin at given address.
	// Addresses that were never written (even unknown ones) report LOW.
	GetState(addr model.PinAddress) (model.PinState, error)
	// Shutdown brings all pins back to a safe state and releases
	// the underlying hardware.
	// Every call made after Shutdown fails with ProviderClosedError.
	Shutdown(ctx context.Context) error
}

// PinInfo describes the current situation of a single pin.
type PinInfo struct {
	Address model.PinAddress `json:"address"`
	Mode    model.PinMode    `json:"mode"`
	State   model.PinState   `json:"state"`
}

// PinChange is published every time the state of a pin changes.
type PinChange struct {
	Address  model.PinAddress
	Previous model.PinState
	State    model.PinState
	// Time the change was applied, taken while the pin was locked
	At time.Time
}
