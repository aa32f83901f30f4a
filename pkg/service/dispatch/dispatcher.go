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

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
)

const (
	SchemeGPIO     = "gpio"
	SchemeDocument = "document"
	SchemeLog      = "log"
)

// Endpoint is the target of a message.
type Endpoint interface {
	// Process the given message.
	Process(ctx context.Context, msg *Message) error
}

// Dispatcher resolves endpoint URIs and sends messages to them.
// Endpoints are created on first use and reused for the same URI.
type Dispatcher struct {
	log        zerolog.Logger
	controller devices.DigitalOutputController
	store      documents.Store

	mutex     sync.Mutex
	endpoints map[string]Endpoint
}

// New creates a dispatcher for the given controller & store.
func New(controller devices.DigitalOutputController, store documents.Store, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		log:        log.With().Str("component", "dispatcher").Logger(),
		controller: controller,
		store:      store,
		endpoints:  make(map[string]Endpoint),
	}
}

// Send the given message to the endpoint with given URI.
func (d *Dispatcher) Send(ctx context.Context, uri string, msg *Message) error {
	ep, scheme, err := d.endpoint(uri)
	if err != nil {
		messagesTotal.WithLabelValues(scheme, resultLabel(err)).Inc()
		return err
	}
	err = ep.Process(ctx, msg)
	messagesTotal.WithLabelValues(scheme, resultLabel(err)).Inc()
	if err != nil {
		d.log.Debug().Err(err).
			Str("uri", uri).
			Str("message_id", msg.ID).
			Msg("Failed to process message")
		return err
	}
	return nil
}

// endpoint returns the endpoint for given URI, creating it when needed.
func (d *Dispatcher) endpoint(uri string) (Endpoint, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", model.InvalidArgument("invalid endpoint uri '%s': %v", uri, err)
	}
	scheme := u.Scheme
	key := u.String()

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if ep, found := d.endpoints[key]; found {
		return ep, scheme, nil
	}
	var ep Endpoint
	switch scheme {
	case SchemeGPIO:
		if d.controller == nil {
			return nil, scheme, errors.Wrap(model.InvalidArgumentError, "no pin controller configured")
		}
		ep, err = newPinEndpoint(u, d.controller, d.log)
	case SchemeDocument:
		if d.store == nil {
			return nil, scheme, errors.Wrap(model.InvalidArgumentError, "no document store configured")
		}
		ep, err = newDocumentEndpoint(u, d)
	case SchemeLog:
		ep = newLogEndpoint(u, d.log)
	default:
		err = model.InvalidArgument("unknown endpoint scheme '%s'", scheme)
	}
	if err != nil {
		return nil, scheme, err
	}
	d.endpoints[key] = ep
	return ep, scheme, nil
}

// hostOrOpaque returns the part of the URI after the scheme,
// for both "gpio://6" and "gpio:6" forms.
func hostOrOpaque(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host
}
