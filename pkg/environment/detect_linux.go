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

package environment

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/binkynet/LocalCloudlet/model"
)

const gpioMemDevice = "/dev/gpiomem"

// AutoDetectProviderType detects the default provider type based on the environment.
// Arm boards that expose GPIO memory use the Raspberry Pi provider,
// everything else falls back to the virtual provider.
func AutoDetectProviderType(log zerolog.Logger) model.ProviderType {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		log.Debug().Err(err).Msg("Uname failed")
		return model.ProviderTypeVirtual
	}
	machine := strings.TrimRight(string(name.Machine[:]), "\x00")
	if !strings.HasPrefix(machine, "arm") && machine != "aarch64" {
		return model.ProviderTypeVirtual
	}
	if _, err := os.Stat(gpioMemDevice); err != nil {
		log.Debug().Str("machine", machine).Msg("No GPIO memory device found")
		return model.ProviderTypeVirtual
	}
	return model.ProviderTypeRaspberryPi
}
