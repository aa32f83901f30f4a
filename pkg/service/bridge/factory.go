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
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
)

// New creates the bridge for the given provider configuration.
func New(cfg model.ProviderConfig, log zerolog.Logger) (API, error) {
	switch cfg.Type {
	case model.ProviderTypeVirtual:
		return NewVirtualBridge(cfg.PinCount), nil
	case model.ProviderTypeRaspberryPi:
		b, err := NewRaspberryPiBridge(cfg.PinCount)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize Raspberry Pi bridge")
		}
		return b, nil
	case model.ProviderTypeMQTT:
		b, err := NewMQTTBridge(cfg.MQTT, cfg.PinCount, log)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize MQTT bridge")
		}
		return b, nil
	default:
		return nil, model.InvalidArgument("unknown provider type '%s'", string(cfg.Type))
	}
}
