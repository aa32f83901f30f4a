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

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/binkynet/LocalCloudlet/model"
)

const (
	// EnvPrefix is the prefix of all environment overrides.
	EnvPrefix = "CLOUDLET_"

	DefaultHTTPPort = 7130
	DefaultGRPCPort = 7131
	DefaultSSHPort  = 7132
	DefaultPinCount = 28
)

// Default returns a configuration with sensible defaults.
func Default() model.Config {
	return model.Config{
		Logging: model.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Provider: model.ProviderConfig{
			Type:     model.ProviderTypeVirtual,
			PinCount: DefaultPinCount,
			MQTT: model.MQTTConfig{
				Port:        1883,
				ClientID:    "cloudlet",
				TopicPrefix: "/cloudlet/",
			},
		},
		Store: model.StoreConfig{
			Type: model.StoreTypeMemory,
			Redis: model.RedisConfig{
				Address: "localhost:6379",
				Prefix:  "cloudlet:documents:",
			},
			Path: "cloudlet.db",
		},
		History: model.HistoryConfig{
			Org:    "cloudlet",
			Bucket: "pins",
		},
		Server: model.ServerConfig{
			Host:           "0.0.0.0",
			HTTPPort:       DefaultHTTPPort,
			GRPCPort:       DefaultGRPCPort,
			SSHPort:        DefaultSSHPort,
			SSHHostKeyPath: ".ssh/id_ed25519",
		},
	}
}

// Load the configuration.
// It starts with defaults, then reads the file at given path (if any),
// then applies environment overrides and finally validates the result.
// Files ending with .toml are parsed as TOML, all others as YAML.
func Load(path string) (model.Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Config{}, errors.Wrap(err, "reading config file")
		}
		if err := parse(path, data, &cfg); err != nil {
			return model.Config{}, err
		}
	}
	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return model.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, errors.Wrap(err, "validating config")
	}
	return cfg, nil
}

// parse the given file content into cfg.
func parse(path string, data []byte, cfg *model.Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errors.Wrapf(model.ValidationError, "parsing config file '%s': %v", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(model.ValidationError, "parsing config file '%s': %v", path, err)
		}
	}
	return nil
}

type lookupEnvFunc func(key string) (string, bool)

// applyEnvOverrides overrides settings from CLOUDLET_<SECTION>_<KEY>
// environment variables.
func applyEnvOverrides(cfg *model.Config, lookup lookupEnvFunc) error {
	str := func(key string, target *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*target = v
		}
	}
	var ae []string
	integer := func(key string, target *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				ae = append(ae, EnvPrefix+key)
				return
			}
			*target = n
		}
	}
	boolean := func(key string, target *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				ae = append(ae, EnvPrefix+key)
				return
			}
			*target = b
		}
	}

	// Logging
	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)
	str("LOGGING_MQTT_TOPIC", &cfg.Logging.MQTTTopic)

	// Provider
	var providerType string
	str("PROVIDER_TYPE", &providerType)
	if providerType != "" {
		cfg.Provider.Type = model.ProviderType(providerType)
	}
	integer("PROVIDER_PIN_COUNT", &cfg.Provider.PinCount)
	boolean("PROVIDER_ACTIVE_LOW", &cfg.Provider.ActiveLow)
	str("PROVIDER_MQTT_HOST", &cfg.Provider.MQTT.Host)
	integer("PROVIDER_MQTT_PORT", &cfg.Provider.MQTT.Port)
	str("PROVIDER_MQTT_USERNAME", &cfg.Provider.MQTT.UserName)
	str("PROVIDER_MQTT_PASSWORD", &cfg.Provider.MQTT.Password)
	str("PROVIDER_MQTT_CLIENT_ID", &cfg.Provider.MQTT.ClientID)

	// Store
	var storeType string
	str("STORE_TYPE", &storeType)
	if storeType != "" {
		cfg.Store.Type = model.StoreType(storeType)
	}
	str("STORE_PATH", &cfg.Store.Path)
	str("STORE_REDIS_ADDRESS", &cfg.Store.Redis.Address)
	str("STORE_REDIS_PASSWORD", &cfg.Store.Redis.Password)
	integer("STORE_REDIS_DB", &cfg.Store.Redis.DB)

	// History
	boolean("HISTORY_ENABLED", &cfg.History.Enabled)
	str("HISTORY_URL", &cfg.History.URL)
	str("HISTORY_TOKEN", &cfg.History.Token)
	str("HISTORY_ORG", &cfg.History.Org)
	str("HISTORY_BUCKET", &cfg.History.Bucket)

	// Server
	str("SERVER_HOST", &cfg.Server.Host)
	integer("SERVER_HTTP_PORT", &cfg.Server.HTTPPort)
	integer("SERVER_GRPC_PORT", &cfg.Server.GRPCPort)
	integer("SERVER_SSH_PORT", &cfg.Server.SSHPort)
	str("SERVER_SSH_HOST_KEY_PATH", &cfg.Server.SSHHostKeyPath)

	if len(ae) > 0 {
		return errors.Wrapf(model.ValidationError, "invalid value in environment variables %s", strings.Join(ae, ", "))
	}
	return nil
}
