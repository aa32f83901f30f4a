// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PinAddress identifies a single digital I/O line (0...).
type PinAddress int

const pinAddressPrefix = "GPIO_"

// String returns the symbolic name of the address, e.g. "GPIO_06".
func (a PinAddress) String() string {
	return fmt.Sprintf("%s%02d", pinAddressPrefix, int(a))
}

// ParsePinAddress parses "6", "06", "GPIO_06" or "gpio6" into a PinAddress.
func ParsePinAddress(s string) (PinAddress, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "GPIO")
	raw = strings.TrimPrefix(raw, "_")
	nr, err := strconv.Atoi(raw)
	if err != nil || nr < 0 {
		return 0, InvalidArgument("invalid pin address '%s'", s)
	}
	return PinAddress(nr), nil
}

// PinState is the logical state of a digital pin.
type PinState bool

const (
	PinStateLow  PinState = false
	PinStateHigh PinState = true
)

// String returns "HIGH" or "LOW".
func (s PinState) String() string {
	if s {
		return "HIGH"
	}
	return "LOW"
}

// Bool returns the state as a boolean (HIGH=true).
func (s PinState) Bool() bool {
	return bool(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s PinState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PinState) UnmarshalText(text []byte) error {
	v, err := ParsePinState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParsePinState parses HIGH/LOW (case insensitive).
func ParsePinState(s string) (PinState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return PinStateHigh, nil
	case "LOW":
		return PinStateLow, nil
	default:
		return PinStateLow, InvalidArgument("invalid pin state '%s'", s)
	}
}

// PinMode is the configured mode of a pin.
type PinMode string

const (
	PinModeDigitalOutput PinMode = "DIGITAL_OUTPUT"
	PinModeDigitalInput  PinMode = "DIGITAL_INPUT"
)

// Validate the given mode, returning nil on ok,
// or an error upon validation issues.
func (m PinMode) Validate() error {
	switch m {
	case PinModeDigitalOutput, PinModeDigitalInput:
		return nil
	default:
		return InvalidArgument("invalid pin mode '%s'", string(m))
	}
}

// ParsePinMode parses a pin mode (case insensitive).
func ParsePinMode(s string) (PinMode, error) {
	m := PinMode(strings.ToUpper(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// PinCommand is an explicit request to put a pin in a mode and state.
// Action is authoritative; no message metadata overrides it.
type PinCommand struct {
	Address PinAddress
	Mode    PinMode
	Action  PinState
}

// String returns a human readable form of the command.
func (c PinCommand) String() string {
	return fmt.Sprintf("%s %s=%s", c.Address, c.Mode, c.Action)
}
