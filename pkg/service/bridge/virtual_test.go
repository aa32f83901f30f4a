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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
)

func TestVirtualBridgeOutput(t *testing.T) {
	b := NewVirtualBridge(8)
	assert.Equal(t, 8, b.PinCount())

	out, err := b.Output(3, false, true)
	require.NoError(t, err)
	assert.True(t, b.Level(3))

	require.NoError(t, out.Write(false))
	assert.False(t, b.Level(3))
	assert.False(t, b.Level(4))
}

func TestVirtualBridgeActiveLow(t *testing.T) {
	b := NewVirtualBridge(8)
	out, err := b.Output(1, true, true)
	require.NoError(t, err)
	assert.False(t, b.Level(1))

	in, err := b.Input(1, true)
	require.NoError(t, err)
	v, err := in.Read()
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, out.Write(false))
	assert.True(t, b.Level(1))
}

func TestVirtualBridgeInvalidPin(t *testing.T) {
	b := NewVirtualBridge(8)
	_, err := b.Output(8, false, false)
	assert.True(t, model.IsInvalidPin(err))
	_, err = b.Input(-1, false)
	assert.True(t, model.IsInvalidPin(err))
}

func TestVirtualBridgeClose(t *testing.T) {
	b := NewVirtualBridge(8)
	out, err := b.Output(2, false, true)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	assert.True(t, model.IsProviderClosed(out.Write(true)))
	_, err = b.Output(2, false, false)
	assert.True(t, model.IsProviderClosed(err))
	assert.False(t, b.Level(2))
}

func TestVirtualBridgeLEDs(t *testing.T) {
	b := NewVirtualBridge(1)
	require.NoError(t, b.SetGreenLED(true))
	require.NoError(t, b.BlinkRedLED(0))
	green, red := b.LEDs()
	assert.True(t, green)
	assert.True(t, red)
}
