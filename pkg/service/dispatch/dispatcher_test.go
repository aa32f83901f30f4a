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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *devices.Provider, documents.Store) {
	provider := devices.NewProvider(bridge.NewVirtualBridge(17), false, zerolog.Nop())
	store := documents.NewMemoryStore()
	t.Cleanup(func() {
		provider.Shutdown(context.Background())
		store.Close()
	})
	return New(provider, store, zerolog.Nop()), provider, store
}

func TestSendDigitalOutputAction(t *testing.T) {
	ctx := context.Background()
	d, provider, _ := newTestDispatcher(t)

	msg := NewMessage("")
	require.NoError(t, d.Send(ctx, "log:cloudlet?showAll=true", msg))
	msg.SetHeader(HeaderPinAction, "HIGH")
	require.NoError(t, d.Send(ctx, "gpio://6?mode=DIGITAL_OUTPUT&state=LOW&action=LOW", msg))
	assert.Equal(t, "LOW", msg.Header(HeaderPinState))
	msg.SetHeader(HeaderPinAction, "LOW")
	require.NoError(t, d.Send(ctx, "gpio://7?mode=DIGITAL_OUTPUT&state=LOW&action=HIGH", msg))
	assert.Equal(t, "HIGH", msg.Header(HeaderPinState))

	// The endpoint action wins over the header
	state, err := provider.GetState(6)
	require.NoError(t, err)
	assert.Equal(t, model.PinStateLow, state)
	state, err = provider.GetState(7)
	require.NoError(t, err)
	assert.Equal(t, model.PinStateHigh, state)

	require.NoError(t, provider.Shutdown(ctx))
	_, err = provider.GetState(6)
	assert.True(t, model.IsProviderClosed(err))
	assert.True(t, model.IsProviderClosed(d.Send(ctx, "gpio://6?action=HIGH", NewMessage(nil))))
}

func TestSendInitialStateAppliedOnce(t *testing.T) {
	ctx := context.Background()
	d, provider, _ := newTestDispatcher(t)

	uri := "gpio://3?state=HIGH"
	require.NoError(t, d.Send(ctx, uri, NewMessage(nil)))
	state, err := provider.GetState(3)
	require.NoError(t, err)
	assert.Equal(t, model.PinStateHigh, state)

	require.NoError(t, provider.ApplyAction(ctx, 3, model.PinStateLow))
	msg := NewMessage(nil)
	require.NoError(t, d.Send(ctx, uri, msg))
	assert.Equal(t, "LOW", msg.Header(HeaderPinState))
}

func TestSendOpaqueAndSymbolicAddress(t *testing.T) {
	ctx := context.Background()
	d, provider, _ := newTestDispatcher(t)

	require.NoError(t, d.Send(ctx, "gpio:12?action=HIGH", NewMessage(nil)))
	state, err := provider.GetState(12)
	require.NoError(t, err)
	assert.Equal(t, model.PinStateHigh, state)
}

func TestSendInvalidURIs(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDispatcher(t)

	for _, uri := range []string{
		"ftp://somewhere",
		"gpio://x?action=HIGH",
		"gpio://6?mode=PWM",
		"gpio://6?action=MAYBE",
		"gpio://6?mode=DIGITAL_INPUT&action=HIGH",
		"document://drop?collection=users",
		"document://findOne",
	} {
		err := d.Send(ctx, uri, NewMessage(nil))
		assert.True(t, model.IsInvalidArgument(err), uri)
	}
	assert.True(t, model.IsInvalidPin(d.Send(ctx, "gpio://17?action=HIGH", NewMessage(nil))))
}

func TestSendInputPin(t *testing.T) {
	ctx := context.Background()
	d, provider, _ := newTestDispatcher(t)

	msg := NewMessage(nil)
	require.NoError(t, d.Send(ctx, "gpio://2?mode=DIGITAL_INPUT", msg))
	assert.Equal(t, "LOW", msg.Header(HeaderPinState))
	assert.True(t, model.IsInvalidDirection(provider.ApplyAction(ctx, 2, model.PinStateHigh)))
}

func TestFindOne(t *testing.T) {
	ctx := context.Background()
	d, _, store := newTestDispatcher(t)
	_, err := store.Save(ctx, "invoices", documents.Document{"id": "inv-1", "amount": 100.0})
	require.NoError(t, err)

	doc, err := d.FindOne(ctx, model.NewLookupRequest("invoices", "inv-1"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, doc["amount"])

	_, err = d.FindOne(ctx, model.NewLookupRequest("invoices", "inv-2"))
	assert.True(t, model.IsNotFound(err))

	_, err = d.FindOne(ctx, model.NewLookupRequest("", "inv-1"))
	assert.True(t, model.IsInvalidArgument(err))
	_, err = d.FindOne(ctx, model.NewLookupRequest("invoices", ""))
	assert.True(t, model.IsInvalidArgument(err))
}

func TestDocumentEndpoints(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDispatcher(t)

	msg := NewMessage(map[string]interface{}{"name": "alice"})
	require.NoError(t, d.Send(ctx, "document://save?collection=users", msg))
	id := msg.Header(HeaderDocumentID)
	require.NotEmpty(t, id)

	found := NewMessage(nil)
	found.SetHeader(HeaderDocumentID, id)
	require.NoError(t, d.Send(ctx, "document://findOne?collection=users", found))
	doc, ok := found.Body.(documents.Document)
	require.True(t, ok)
	assert.Equal(t, "alice", doc["name"])

	count := NewMessage(nil)
	require.NoError(t, d.Send(ctx, "document://count?collection=users", count))
	assert.Equal(t, int64(1), count.Body)

	missing := NewMessage(nil)
	assert.True(t, model.IsNotFound(d.Send(ctx, "document://findOne?collection=users&id=nope", missing)))
	assert.True(t, model.IsInvalidArgument(d.Send(ctx, "document://save?collection=users", NewMessage("text"))))
}
