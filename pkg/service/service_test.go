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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/config"
	"github.com/binkynet/LocalCloudlet/pkg/service/bridge"
)

func newTestService(t *testing.T) (*Service, *bridge.VirtualBridge) {
	cfg := config.Default()
	cfg.Provider.PinCount = 17
	cfg.Seed = map[string][]map[string]interface{}{
		"users": {
			{"id": "u1", "name": "alice"},
			{"id": "u2", "name": "bob"},
		},
	}
	vb := bridge.NewVirtualBridge(cfg.Provider.PinCount)
	s, err := NewService(context.Background(), Config{
		Config:         cfg,
		ProgramVersion: "test",
		HostID:         "host1",
	}, Dependencies{
		Logger: zerolog.Nop(),
		Bridge: vb,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close(context.Background())
	})
	return s, vb
}

func TestServiceSeed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	doc, err := s.FindOne(ctx, model.NewLookupRequest("users", "u2"))
	require.NoError(t, err)
	assert.Equal(t, "bob", doc["name"])
	n, err := s.CountDocuments(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestServicePins(t *testing.T) {
	ctx := context.Background()
	s, vb := newTestService(t)

	require.NoError(t, s.ExecutePin(ctx, model.PinCommand{Address: 6, Mode: model.PinModeDigitalOutput, Action: model.PinStateHigh}))
	state, err := s.GetPinState(6)
	require.NoError(t, err)
	assert.Equal(t, model.PinStateHigh, state)
	assert.True(t, vb.Level(6))

	pins, err := s.Pins()
	require.NoError(t, err)
	assert.Len(t, pins, 1)
}

func TestServiceRunAndClose(t *testing.T) {
	s, vb := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		green, _ := vb.LEDs()
		return green
	}, time.Second, time.Millisecond*10)
	assert.True(t, s.IsServing())
	status := s.Status()
	assert.Equal(t, "host1", status.HostID)
	assert.True(t, status.ProviderOpen)
	assert.Equal(t, 17, status.PinCount)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, s.IsServing())
	_, err := s.GetPinState(1)
	assert.True(t, model.IsProviderClosed(err))
	assert.NoError(t, s.Close(context.Background()))
}

func TestCreateHostID(t *testing.T) {
	id, err := createHostID()
	require.NoError(t, err)
	assert.Len(t, id, 10)
}
