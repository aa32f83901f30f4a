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
	"github.com/pkg/errors"
)

// Config holds the configuration of a single cloudlet worker.
type Config struct {
	Logging  LoggingConfig  `json:"logging" yaml:"logging" toml:"logging"`
	Provider ProviderConfig `json:"provider" yaml:"provider" toml:"provider"`
	Store    StoreConfig    `json:"store" yaml:"store" toml:"store"`
	History  HistoryConfig  `json:"history" yaml:"history" toml:"history"`
	Server   ServerConfig   `json:"server" yaml:"server" toml:"server"`
	// Documents to save into the store on startup, keyed by collection.
	Seed map[string][]map[string]interface{} `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// LoggingConfig holds the log settings.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level" toml:"level"`
	Format    string `json:"format" yaml:"format" toml:"format"`             // console|json
	MQTTTopic string `json:"mqtt_topic" yaml:"mqtt_topic" toml:"mqtt_topic"` // mqtt provider only
}

// ProviderType identifies the kind of hardware provider.
type ProviderType string

const (
	ProviderTypeVirtual     ProviderType = "virtual"
	ProviderTypeRaspberryPi ProviderType = "rpi"
	ProviderTypeMQTT        ProviderType = "mqtt"
)

// ProviderConfig holds the settings of the pin provider.
type ProviderConfig struct {
	Type ProviderType `json:"type" yaml:"type" toml:"type"`
	// Number of addressable pins (0...PinCount-1)
	PinCount  int        `json:"pin_count" yaml:"pin_count" toml:"pin_count"`
	ActiveLow bool       `json:"active_low" yaml:"active_low" toml:"active_low"`
	MQTT      MQTTConfig `json:"mqtt" yaml:"mqtt" toml:"mqtt"`
}

// MQTTConfig holds the MQTT broker settings of an MQTT provider.
type MQTTConfig struct {
	Host        string `json:"host" yaml:"host" toml:"host"`
	Port        int    `json:"port" yaml:"port" toml:"port"`
	UserName    string `json:"username" yaml:"username" toml:"username"`
	Password    string `json:"password" yaml:"password" toml:"password"`
	ClientID    string `json:"client_id" yaml:"client_id" toml:"client_id"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix" toml:"topic_prefix"`
}

// StoreType identifies the kind of document store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// StoreConfig holds the settings of the document store.
type StoreConfig struct {
	Type  StoreType   `json:"type" yaml:"type" toml:"type"`
	Redis RedisConfig `json:"redis" yaml:"redis" toml:"redis"`
	// Path of the SQLite database file (sqlite only)
	Path string `json:"path" yaml:"path" toml:"path"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Address  string `json:"address" yaml:"address" toml:"address"`
	Password string `json:"password" yaml:"password" toml:"password"`
	DB       int    `json:"db" yaml:"db" toml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix" toml:"prefix"`
}

// HistoryConfig holds the settings of the pin state history (InfluxDB).
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	URL     string `json:"url" yaml:"url" toml:"url"`
	Token   string `json:"token" yaml:"token" toml:"token"`
	Org     string `json:"org" yaml:"org" toml:"org"`
	Bucket  string `json:"bucket" yaml:"bucket" toml:"bucket"`
}

// ServerConfig holds the settings of the API servers.
type ServerConfig struct {
	Host           string `json:"host" yaml:"host" toml:"host"`
	HTTPPort       int    `json:"http_port" yaml:"http_port" toml:"http_port"`
	GRPCPort       int    `json:"grpc_port" yaml:"grpc_port" toml:"grpc_port"`
	SSHPort        int    `json:"ssh_port" yaml:"ssh_port" toml:"ssh_port"` // 0 disables the SSH dashboard
	SSHHostKeyPath string `json:"ssh_host_key_path" yaml:"ssh_host_key_path" toml:"ssh_host_key_path"`
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c Config) Validate() error {
	if err := c.Provider.Validate(); err != nil {
		return maskAny(err)
	}
	if err := c.Store.Validate(); err != nil {
		return maskAny(err)
	}
	if err := c.History.Validate(); err != nil {
		return maskAny(err)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return errors.Wrapf(ValidationError, "invalid http port %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return errors.Wrapf(ValidationError, "invalid grpc port %d", c.Server.GRPCPort)
	}
	if c.Server.SSHPort < 0 || c.Server.SSHPort > 65535 {
		return errors.Wrapf(ValidationError, "invalid ssh port %d", c.Server.SSHPort)
	}
	for collection := range c.Seed {
		if collection == "" {
			return errors.Wrap(ValidationError, "seed collection name is empty")
		}
	}
	return nil
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderTypeVirtual, ProviderTypeRaspberryPi:
	case ProviderTypeMQTT:
		if c.MQTT.Host == "" {
			return errors.Wrap(ValidationError, "mqtt host is empty")
		}
		if c.MQTT.Port <= 0 {
			return errors.Wrapf(ValidationError, "invalid mqtt port %d", c.MQTT.Port)
		}
	default:
		return errors.Wrapf(ValidationError, "invalid provider type '%s'", string(c.Type))
	}
	if c.PinCount <= 0 {
		return errors.Wrapf(ValidationError, "pin count must be positive, got %d", c.PinCount)
	}
	return nil
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c StoreConfig) Validate() error {
	switch c.Type {
	case StoreTypeMemory:
		return nil
	case StoreTypeRedis:
		if c.Redis.Address == "" {
			return errors.Wrap(ValidationError, "redis address is empty")
		}
		return nil
	case StoreTypeSQLite:
		if c.Path == "" {
			return errors.Wrap(ValidationError, "sqlite path is empty")
		}
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid store type '%s'", string(c.Type))
	}
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c HistoryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return errors.Wrap(ValidationError, "history url is empty")
	}
	if c.Bucket == "" {
		return errors.Wrap(ValidationError, "history bucket is empty")
	}
	return nil
}
