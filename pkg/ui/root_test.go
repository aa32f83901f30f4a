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

package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
)

type fakeSource struct {
	pins []devices.PinInfo
	err  error
}

func (f fakeSource) Status() service.Status {
	return service.Status{
		HostID:       "host1",
		ProviderType: "virtual",
		ProviderOpen: true,
		PinCount:     17,
		StoreType:    "memory",
	}
}

func (f fakeSource) Pins() ([]devices.PinInfo, error) {
	return f.pins, f.err
}

func refreshed(t *testing.T, src Source, msgs ...tea.Msg) Root {
	var m tea.Model = NewRoot(src, "xterm")
	cmd := m.Init()
	require.NotNil(t, cmd)
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	m, _ = m.Update(cmd())
	return m.(Root)
}

func TestRootShowsPins(t *testing.T) {
	src := fakeSource{pins: []devices.PinInfo{
		{Address: 6, Mode: model.PinModeDigitalOutput, State: model.PinStateLow},
		{Address: 7, Mode: model.PinModeDigitalOutput, State: model.PinStateHigh},
	}}
	r := refreshed(t, src, tea.WindowSizeMsg{Width: 80, Height: 24})
	view := r.View()
	assert.Contains(t, view, "host1")
	assert.Contains(t, view, "virtual")
	assert.Contains(t, view, "GPIO_06")
	assert.Contains(t, view, "GPIO_07")
	assert.Contains(t, view, "HIGH")
}

func TestRootWithoutPins(t *testing.T) {
	r := refreshed(t, fakeSource{})
	assert.Contains(t, r.View(), "No pins in use")
}

func TestRootShowsError(t *testing.T) {
	r := refreshed(t, fakeSource{err: errors.New("provider is closed")})
	assert.Contains(t, r.View(), "provider is closed")
}

func TestRootQuit(t *testing.T) {
	r := NewRoot(fakeSource{}, "xterm")
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestRootRefreshKey(t *testing.T) {
	r := NewRoot(fakeSource{}, "xterm")
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.IsType(t, refreshMsg{}, cmd())
}
