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
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/binkynet/LocalCloudlet/model"
)

const virtualBridgeType = "virtual"

// VirtualBridge simulates a set of digital I/O lines in memory.
// It is used on development machines and in tests.
type VirtualBridge struct {
	mutex    sync.Mutex
	pinCount int
	levels   map[int]bool
	greenLED bool
	redLED   bool
	closed   bool
}

// NewVirtualBridge implements the bridge for a virtual worker
// with the given number of pins.
func NewVirtualBridge(pinCount int) *VirtualBridge {
	return &VirtualBridge{
		pinCount: pinCount,
		levels:   make(map[int]bool),
	}
}

// Returns number of local pins
func (p *VirtualBridge) PinCount() int {
	return p.pinCount
}

// Input initializes a GPIO input pin with the given pin number.
func (p *VirtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	return &virtualPin{bridge: p, number: pinNumber, activeLow: activeLow}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *VirtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	pin := &virtualPin{bridge: p, number: pinNumber, activeLow: activeLow}
	if err := pin.Write(initialValue); err != nil {
		return nil, err
	}
	return pin, nil
}

// Level returns the electrical level of the pin with given number.
// Lines that were never driven read low.
func (p *VirtualBridge) Level(pinNumber int) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.levels[pinNumber]
}

// LEDs returns the current state of the green & red status leds.
func (p *VirtualBridge) LEDs() (green, red bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.greenLED, p.redLED
}

// Turn Green status led on/off
func (p *VirtualBridge) SetGreenLED(on bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.greenLED = on
	return nil
}

// Turn Red status led on/off
func (p *VirtualBridge) SetRedLED(on bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.redLED = on
	return nil
}

// Blink Green status led with given duration between on/off
func (p *VirtualBridge) BlinkGreenLED(delay time.Duration) error {
	return p.SetGreenLED(true)
}

// Blink Red status led with given duration between on/off
func (p *VirtualBridge) BlinkRedLED(delay time.Duration) error {
	return p.SetRedLED(true)
}

// Close releases all lines.
func (p *VirtualBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.closed = true
	p.levels = make(map[int]bool)
	return nil
}

// checkPin returns an error if the given pin number is out of range
// or the bridge is closed.
func (p *VirtualBridge) checkPin(pinNumber int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return errors.Wrap(model.ProviderClosedError, "virtual bridge closed")
	}
	if pinNumber < 0 || pinNumber >= p.pinCount {
		return errors.Wrapf(model.InvalidPinError, "pin %d out of range [0..%d)", pinNumber, p.pinCount)
	}
	return nil
}

type virtualPin struct {
	bridge    *VirtualBridge
	number    int
	activeLow bool
}

// Read the logical value of the pin.
func (vp *virtualPin) Read() (bool, error) {
	vp.bridge.mutex.Lock()
	defer vp.bridge.mutex.Unlock()
	return vp.bridge.levels[vp.number] != vp.activeLow, nil
}

// Write the logical value of the pin.
func (vp *virtualPin) Write(value bool) error {
	vp.bridge.mutex.Lock()
	defer vp.bridge.mutex.Unlock()
	if vp.bridge.closed {
		countWrite(virtualBridgeType, model.ProviderClosedError)
		return errors.Wrapf(model.ProviderClosedError, "write to pin %d", vp.number)
	}
	vp.bridge.levels[vp.number] = value != vp.activeLow
	countWrite(virtualBridgeType, nil)
	return nil
}
