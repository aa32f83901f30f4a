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
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Provider: ProviderConfig{Type: ProviderTypeVirtual, PinCount: 17},
		Store:    StoreConfig{Type: StoreTypeMemory},
		Server:   ServerConfig{Host: "0.0.0.0", HTTPPort: 7130},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.Provider.Type = "arduino"
	assert.True(t, IsValidation(c.Validate()))

	c = validConfig()
	c.Provider.PinCount = 0
	assert.True(t, IsValidation(c.Validate()))

	c = validConfig()
	c.Provider.Type = ProviderTypeMQTT
	assert.True(t, IsValidation(c.Validate()))
	c.Provider.MQTT.Host = "broker"
	c.Provider.MQTT.Port = 1883
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.Store.Type = StoreTypeRedis
	assert.True(t, IsValidation(c.Validate()))

	c = validConfig()
	c.Store.Type = StoreTypeSQLite
	assert.True(t, IsValidation(c.Validate()))

	c = validConfig()
	c.History.Enabled = true
	assert.True(t, IsValidation(c.Validate()))

	c = validConfig()
	c.Server.HTTPPort = 0
	assert.True(t, IsValidation(c.Validate()))
}
