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
	"context"
	"sync"
	"time"

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"

	"github.com/binkynet/LocalCloudlet/model"
)

const (
	greenLedPin     = 23
	redLedPin       = 24
	rpiBridgeType   = "rpi"
	defaultPinCount = 28
)

type statusLed struct {
	sync.Mutex
	pin         gpio.OutputPin
	cancelBlink func()
}

// Turn led on/off, cancel blink
func (l *statusLed) Set(on bool) error {
	l.Mutex.Lock()
	defer l.Mutex.Unlock()

	if cancel := l.cancelBlink; cancel != nil {
		l.cancelBlink = nil
		cancel()
	}
	if err := l.pin.Write(on); err != nil {
		return errors.Wrap(err, "Write failed")
	}
	return nil
}

// Blink led on/off
func (l *statusLed) Blink(delay time.Duration) error {
	l.Mutex.Lock()
	defer l.Mutex.Unlock()

	if cancel := l.cancelBlink; cancel != nil {
		l.cancelBlink = nil
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelBlink = cancel
	go func() {
		value := true
		for {
			l.Mutex.Lock()
			if ctx.Err() == nil {
				l.pin.Write(value)
				value = !value
			}
			l.Mutex.Unlock()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

type piBridge struct {
	greenLed statusLed
	redLed   statusLed
	pinCount int
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's.
// Pins 0...pinCount-1 are available, except for the status led pins.
func NewRaspberryPiBridge(pinCount int) (API, error) {
	if pinCount <= 0 {
		pinCount = defaultPinCount
	}
	activeLow := true
	initialValue := false
	greenLed, err := gpio.Output(greenLedPin, activeLow, initialValue)
	if err != nil {
		return nil, errors.Wrap(err, "Output[greenLed] failed")
	}
	redLed, err := gpio.Output(redLedPin, activeLow, initialValue)
	if err != nil {
		return nil, errors.Wrap(err, "Output[redLed] failed")
	}
	return &piBridge{
		greenLed: statusLed{pin: greenLed},
		redLed:   statusLed{pin: redLed},
		pinCount: pinCount,
	}, nil
}

// Returns number of local pins
func (p *piBridge) PinCount() int {
	return p.pinCount
}

// Input initializes a GPIO input pin with the given pin number.
func (p *piBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	return gpio.Input(pinNumber, activeLow)
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *piBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	pin, err := gpio.Output(pinNumber, activeLow, initialValue)
	if err != nil {
		return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
	}
	return &piOutputPin{pin: pin}, nil
}

// checkPin returns an InvalidPinError for pins that cannot be used.
func (p *piBridge) checkPin(pinNumber int) error {
	if pinNumber < 0 || pinNumber >= p.pinCount {
		return errors.Wrapf(model.InvalidPinError, "pin %d out of range [0..%d)", pinNumber, p.pinCount)
	}
	if pinNumber == greenLedPin || pinNumber == redLedPin {
		return errors.Wrapf(model.InvalidPinError, "pin %d is reserved for a status led", pinNumber)
	}
	return nil
}

// Turn Green status led on/off
func (p *piBridge) SetGreenLED(on bool) error {
	if err := p.greenLed.Set(on); err != nil {
		return errors.Wrap(err, "Set[greenLed] failed")
	}
	return nil
}

// Turn Red status led on/off
func (p *piBridge) SetRedLED(on bool) error {
	if err := p.redLed.Set(on); err != nil {
		return errors.Wrap(err, "Set[redLed] failed")
	}
	return nil
}

// Blink Green status led with given duration between on/off
func (p *piBridge) BlinkGreenLED(delay time.Duration) error {
	if err := p.greenLed.Blink(delay); err != nil {
		return errors.Wrap(err, "Blink[greenLed] failed")
	}
	return nil
}

// Blink Red status led with given duration between on/off
func (p *piBridge) BlinkRedLED(delay time.Duration) error {
	if err := p.redLed.Blink(delay); err != nil {
		return errors.Wrap(err, "Blink[redLed] failed")
	}
	return nil
}

// Close turns off the status leds.
func (p *piBridge) Close() error {
	if err := p.greenLed.Set(false); err != nil {
		return errors.Wrap(err, "Close[greenLed] failed")
	}
	if err := p.redLed.Set(false); err != nil {
		return errors.Wrap(err, "Close[redLed] failed")
	}
	return nil
}

type piOutputPin struct {
	pin gpio.OutputPin
}

// Write the logical value of the pin.
func (o *piOutputPin) Write(value bool) error {
	err := o.pin.Write(value)
	countWrite(rpiBridgeType, err)
	return err
}
