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
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
)

// pinEndpoint drives a single pin:
//
//	gpio://6?mode=DIGITAL_OUTPUT&state=LOW&action=HIGH
//
// mode defaults to DIGITAL_OUTPUT. state is the initial state, applied
// once when the endpoint configures the pin. action is applied for every
// message. Without an action the endpoint only configures (and reads) the pin.
type pinEndpoint struct {
	log        zerolog.Logger
	controller devices.DigitalOutputController
	address    model.PinAddress
	mode       model.PinMode
	initial    *model.PinState
	action     *model.PinState

	mutex      sync.Mutex
	configured bool
}

func newPinEndpoint(u *url.URL, controller devices.DigitalOutputController, log zerolog.Logger) (*pinEndpoint, error) {
	addr, err := model.ParsePinAddress(hostOrOpaque(u))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	ep := &pinEndpoint{
		log:        log.With().Str("pin", addr.String()).Logger(),
		controller: controller,
		address:    addr,
		mode:       model.PinModeDigitalOutput,
	}
	if raw := q.Get("mode"); raw != "" {
		if ep.mode, err = model.ParsePinMode(raw); err != nil {
			return nil, err
		}
	}
	if ep.initial, err = optionalState(q.Get("state")); err != nil {
		return nil, err
	}
	if ep.action, err = optionalState(q.Get("action")); err != nil {
		return nil, err
	}
	if ep.mode == model.PinModeDigitalInput && ep.action != nil {
		return nil, model.InvalidArgument("action not allowed on pin %s in mode %s", addr, ep.mode)
	}
	return ep, nil
}

// Process the given message.
// The HeaderPinAction header of the message is ignored.
func (e *pinEndpoint) Process(ctx context.Context, msg *Message) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.configured {
		if err := e.controller.SetMode(ctx, e.address, e.mode); err != nil {
			return err
		}
		if e.initial != nil && e.mode == model.PinModeDigitalOutput {
			if err := e.controller.ApplyAction(ctx, e.address, *e.initial); err != nil {
				return err
			}
		}
		e.configured = true
	}

	if e.action != nil {
		if header := msg.Header(HeaderPinAction); header != "" && header != e.action.String() {
			ignoredActionHeadersTotal.Inc()
			e.log.Debug().
				Str("header", header).
				Str("action", e.action.String()).
				Str("message_id", msg.ID).
				Msg("Ignoring pin action header that differs from endpoint action")
		}
		if err := e.controller.ApplyAction(ctx, e.address, *e.action); err != nil {
			return err
		}
	}

	state, err := e.controller.GetState(e.address)
	if err != nil {
		return err
	}
	msg.SetHeader(HeaderPinState, state.String())
	return nil
}

// optionalState parses the given state, returning nil when empty.
func optionalState(raw string) (*model.PinState, error) {
	if raw == "" {
		return nil, nil
	}
	s, err := model.ParsePinState(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
