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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
)

// Provider implements DigitalOutputController on top of a bridge.
type Provider struct {
	log       zerolog.Logger
	bAPI      bridge.API
	activeLow bool
	changes   *pubsub.PubSub

	activeCount uint32

	subscribersMutex sync.Mutex
	subscribers      map[uint64]func(PinChange)
	lastSubscriberID uint64

	// mutex guards the lifetime of the pin table.
	// Operations hold a read lock, Shutdown a write lock.
	mutex  sync.RWMutex
	closed bool

	pinsMutex sync.Mutex
	pins      map[model.PinAddress]*pin
}

// pin holds the state of a single line.
// All fields are guarded by mutex.
type pin struct {
	mutex  sync.Mutex
	mode   model.PinMode
	state  model.PinState
	output bridge.OutputPin
	input  bridge.InputPin
}

var _ DigitalOutputController = &Provider{}

// NewProvider creates a provider for all pins of the given bridge.
func NewProvider(bAPI bridge.API, activeLow bool, log zerolog.Logger) *Provider {
	p := &Provider{
		log:         log.With().Str("component", "pin-provider").Logger(),
		bAPI:        bAPI,
		activeLow:   activeLow,
		changes:     pubsub.New(),
		subscribers: make(map[uint64]func(PinChange)),
		pins:        make(map[model.PinAddress]*pin),
	}
	p.changes.Sub(p.notifySubscribers)
	return p
}

// PinCount returns the number of addressable pins.
func (p *Provider) PinCount() int {
	return p.bAPI.PinCount()
}

// IsClosed returns true once Shutdown has been called.
func (p *Provider) IsClosed() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.closed
}

// SetMode configures the pin at given address in the given mode.
func (p *Provider) SetMode(ctx context.Context, addr model.PinAddress, mode model.PinMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		return errors.Wrapf(model.ProviderClosedError, "set mode of %s", addr)
	}
	pn, err := p.pin(addr)
	if err != nil {
		return err
	}
	p.onActive()

	pn.mutex.Lock()
	defer pn.mutex.Unlock()
	if err := p.configure(pn, addr, mode); err != nil {
		providerErrorsTotal.WithLabelValues("set_mode").Inc()
		return err
	}
	return nil
}

// ApplyAction sets the logical state of the pin at given address.
func (p *Provider) ApplyAction(ctx context.Context, addr model.PinAddress, action model.PinState) error {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		return errors.Wrapf(model.ProviderClosedError, "apply %s to %s", action, addr)
	}
	pn, err := p.pin(addr)
	if err != nil {
		return err
	}
	p.onActive()

	pn.mutex.Lock()
	defer pn.mutex.Unlock()
	if err := p.apply(pn, addr, action); err != nil {
		providerErrorsTotal.WithLabelValues("apply_action").Inc()
		return err
	}
	return nil
}

// Execute configures the pin of the command and applies its action.
// Commands in input mode only configure the pin.
func (p *Provider) Execute(ctx context.Context, cmd model.PinCommand) error {
	if err := cmd.Mode.Validate(); err != nil {
		return err
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		return errors.Wrapf(model.ProviderClosedError, "execute %s", cmd)
	}
	pn, err := p.pin(cmd.Address)
	if err != nil {
		return err
	}
	p.onActive()

	pn.mutex.Lock()
	defer pn.mutex.Unlock()
	if err := p.configure(pn, cmd.Address, cmd.Mode); err != nil {
		providerErrorsTotal.WithLabelValues("execute").Inc()
		return err
	}
	if cmd.Mode != model.PinModeDigitalOutput {
		return nil
	}
	if err := p.apply(pn, cmd.Address, cmd.Action); err != nil {
		providerErrorsTotal.WithLabelValues("execute").Inc()
		return err
	}
	return nil
}

// GetState returns the last applied state of the pin at given address.
// Pins in input mode are read from the hardware.
// Reading an address that was never written returns LOW, also when the
// address is not a valid pin. This keeps verification code simple.
func (p *Provider) GetState(addr model.PinAddress) (model.PinState, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		return model.PinStateLow, errors.Wrapf(model.ProviderClosedError, "get state of %s", addr)
	}
	p.pinsMutex.Lock()
	pn, found := p.pins[addr]
	p.pinsMutex.Unlock()
	if !found {
		return model.PinStateLow, nil
	}

	pn.mutex.Lock()
	defer pn.mutex.Unlock()
	if pn.input != nil {
		value, err := pn.input.Read()
		if err != nil {
			providerErrorsTotal.WithLabelValues("get_state").Inc()
			return model.PinStateLow, errors.Wrapf(err, "read %s", addr)
		}
		return model.PinState(value), nil
	}
	return pn.state, nil
}

// Pins returns information about all pins that have been used,
// sorted by address.
func (p *Provider) Pins() ([]PinInfo, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		return nil, errors.Wrap(model.ProviderClosedError, "list pins")
	}
	p.pinsMutex.Lock()
	entries := lo.Entries(p.pins)
	p.pinsMutex.Unlock()

	result := lo.Map(entries, func(e lo.Entry[model.PinAddress, *pin], _ int) PinInfo {
		e.Value.mutex.Lock()
		defer e.Value.mutex.Unlock()
		return PinInfo{Address: e.Key, Mode: e.Value.mode, State: e.Value.state}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })
	return result, nil
}

// SubscribeChanges registers a callback that is invoked (asynchronously)
// for every state change.
// Callbacks may be invoked out of order; use PinChange.At to order changes.
func (p *Provider) SubscribeChanges(cb func(PinChange)) context.CancelFunc {
	p.subscribersMutex.Lock()
	defer p.subscribersMutex.Unlock()
	p.lastSubscriberID++
	id := p.lastSubscriberID
	p.subscribers[id] = cb
	return func() {
		p.subscribersMutex.Lock()
		defer p.subscribersMutex.Unlock()
		delete(p.subscribers, id)
	}
}

// notifySubscribers passes the given change to all current subscribers.
func (p *Provider) notifySubscribers(change PinChange) {
	p.subscribersMutex.Lock()
	callbacks := make([]func(PinChange), 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		callbacks = append(callbacks, cb)
	}
	p.subscribersMutex.Unlock()
	for _, cb := range callbacks {
		cb(change)
	}
}

// Run updates the blinking status leds when pins are used,
// until the given context is canceled.
func (p *Provider) Run(ctx context.Context) error {
	lastActiveCount := uint32(0)
	count := 0
	for {
		select {
		case <-ctx.Done():
			// Context canceled
			return nil
		case <-time.After(time.Second / 10):
			newActiveCount := atomic.LoadUint32(&p.activeCount)
			if newActiveCount != lastActiveCount {
				lastActiveCount = newActiveCount
				p.bAPI.BlinkRedLED(time.Second / 10)
				count = 0
			} else if count < 20 {
				count++
			} else {
				count = 0
				p.bAPI.SetRedLED(false)
			}
		}
	}
}

// Shutdown drives all output pins LOW and closes the bridge.
// Calling Shutdown more than once is allowed.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var ae aerr.AggregateError
	p.pinsMutex.Lock()
	for addr, pn := range p.pins {
		pn.mutex.Lock()
		if pn.output != nil && pn.state != model.PinStateLow {
			if err := pn.output.Write(false); err != nil {
				ae.Add(errors.Wrapf(err, "reset %s", addr))
			}
		}
		pinStateGauge.DeleteLabelValues(addr.String())
		pn.mutex.Unlock()
	}
	p.pins = make(map[model.PinAddress]*pin)
	p.pinsMutex.Unlock()

	if err := p.bAPI.Close(); err != nil {
		ae.Add(errors.Wrap(err, "close bridge"))
	}
	if err := ae.AsError(); err != nil {
		p.log.Warn().Err(err).Msg("Shutdown of pin provider failed")
		return err
	}
	p.log.Info().Msg("Pin provider shut down")
	return nil
}

// pin returns the entry for the given address, creating it when needed.
// Returns InvalidPinError when the address is out of range.
func (p *Provider) pin(addr model.PinAddress) (*pin, error) {
	if count := p.bAPI.PinCount(); addr < 0 || int(addr) >= count {
		return nil, errors.Wrapf(model.InvalidPinError, "%s out of range [0..%d)", addr, count)
	}
	p.pinsMutex.Lock()
	defer p.pinsMutex.Unlock()
	pn, found := p.pins[addr]
	if !found {
		pn = &pin{}
		p.pins[addr] = pn
	}
	return pn, nil
}

// configure puts the pin in the given mode.
// Reconfiguring a pin in its current mode is a no-op.
// Must be called with the pin locked.
func (p *Provider) configure(pn *pin, addr model.PinAddress, mode model.PinMode) error {
	if pn.mode == mode {
		return nil
	}
	switch mode {
	case model.PinModeDigitalOutput:
		output, err := p.bAPI.Output(int(addr), p.activeLow, pn.state.Bool())
		if err != nil {
			return errors.Wrapf(err, "configure %s as output", addr)
		}
		pn.input, pn.output = nil, output
		pinStateGauge.WithLabelValues(addr.String()).Set(stateValue(pn.state))
	case model.PinModeDigitalInput:
		input, err := p.bAPI.Input(int(addr), p.activeLow)
		if err != nil {
			return errors.Wrapf(err, "configure %s as input", addr)
		}
		pn.input, pn.output = input, nil
		pinStateGauge.DeleteLabelValues(addr.String())
	default:
		return model.InvalidArgument("invalid pin mode '%s'", string(mode))
	}
	pn.mode = mode
	p.log.Debug().
		Str("pin", addr.String()).
		Str("mode", string(mode)).
		Msg("Configured pin")
	return nil
}

// apply writes the given state to the pin.
// An unconfigured pin is configured as output first.
// Must be called with the pin locked.
func (p *Provider) apply(pn *pin, addr model.PinAddress, action model.PinState) error {
	if pn.mode == "" {
		// Use the requested action as initial value
		pn.state = action
		if err := p.configure(pn, addr, model.PinModeDigitalOutput); err != nil {
			pn.state = model.PinStateLow
			return err
		}
		pinActionsTotal.WithLabelValues(addr.String(), action.String()).Inc()
		if action != model.PinStateLow {
			p.changes.Pub(PinChange{Address: addr, Previous: model.PinStateLow, State: action, At: time.Now()})
		}
		p.log.Debug().
			Str("pin", addr.String()).
			Str("state", action.String()).
			Msg("Applied pin action")
		return nil
	}
	if pn.output == nil {
		return errors.Wrapf(model.InvalidDirectionError, "%s does not have mode %s", addr, model.PinModeDigitalOutput)
	}
	if err := pn.output.Write(action.Bool()); err != nil {
		return errors.Wrapf(err, "write %s to %s", action, addr)
	}
	previous := pn.state
	pn.state = action
	pinActionsTotal.WithLabelValues(addr.String(), action.String()).Inc()
	pinStateGauge.WithLabelValues(addr.String()).Set(stateValue(action))
	if previous != action {
		p.changes.Pub(PinChange{Address: addr, Previous: previous, State: action, At: time.Now()})
	}
	p.log.Debug().
		Str("pin", addr.String()).
		Str("state", action.String()).
		Msg("Applied pin action")
	return nil
}

// onActive is called when a pin is used.
func (p *Provider) onActive() {
	atomic.AddUint32(&p.activeCount, 1)
}
