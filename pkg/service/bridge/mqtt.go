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
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
)

const (
	mqttBridgeType     = "mqtt"
	mqttPublishTimeout = time.Millisecond * 200
	mqttConnectTimeout = time.Second * 10
)

// mqttBridge drives remote pins by publishing commands on
// <prefix>pin<N>/command and tracking <prefix>pin<N>/state.
type mqttBridge struct {
	log         zerolog.Logger
	mutex       sync.Mutex
	client      mqttapi.Client
	topicPrefix string
	pinCount    int
	states      map[int]bool
}

// NewMQTTBridge connects to the configured broker and implements
// the bridge for pins that are attached over MQTT.
func NewMQTTBridge(cfg model.MQTTConfig, pinCount int, log zerolog.Logger) (API, error) {
	opts := mqttapi.NewClientOptions().
		AddBroker("tcp://" + cfg.Host + ":" + strconv.Itoa(cfg.Port)).
		SetClientID(cfg.ClientID)
	if cfg.UserName != "" {
		opts.SetUsername(cfg.UserName)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})

	client := mqttapi.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, errors.Errorf("timeout connecting to mqtt broker %s:%d", cfg.Host, cfg.Port)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to mqtt")
	}
	b, err := newMQTTBridge(client, cfg.TopicPrefix, pinCount, log)
	if err != nil {
		client.Disconnect(250)
		return nil, err
	}
	return b, nil
}

// newMQTTBridge creates a bridge on an already connected client.
func newMQTTBridge(client mqttapi.Client, topicPrefix string, pinCount int, log zerolog.Logger) (*mqttBridge, error) {
	if topicPrefix == "" {
		topicPrefix = "/cloudlet/"
	}
	b := &mqttBridge{
		log:         log.With().Str("component", "mqtt-bridge").Logger(),
		client:      client,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/") + "/",
		pinCount:    pinCount,
		states:      make(map[int]bool),
	}
	topic := b.topicPrefix + "#"
	if token := client.Subscribe(topic, 0, b.onMessage); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "failed to subscribe to '%s'", topic)
	}
	b.log.Debug().Str("topic", topic).Msg("Subscribed to MQTT topic")
	return b, nil
}

// commandTopic returns the topic used to command the given pin.
func (b *mqttBridge) commandTopic(pinNumber int) string {
	return fmt.Sprintf("%spin%d/command", b.topicPrefix, pinNumber)
}

// Receive state messages
func (b *mqttBridge) onMessage(client mqttapi.Client, msg mqttapi.Message) {
	topic := strings.TrimPrefix(msg.Topic(), b.topicPrefix)
	if !strings.HasPrefix(topic, "pin") || !strings.HasSuffix(topic, "/state") {
		return
	}
	nr, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(topic, "pin"), "/state"))
	if err != nil {
		return
	}
	value, err := parseBool(string(msg.Payload()))
	if err != nil {
		b.log.Debug().Err(err).Str("topic", msg.Topic()).Msg("Ignoring invalid state payload")
		return
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.states[nr] = value
}

// Returns number of local pins
func (b *mqttBridge) PinCount() int {
	return b.pinCount
}

// Input initializes a GPIO input pin with the given pin number.
func (b *mqttBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if err := b.checkPin(pinNumber); err != nil {
		return nil, err
	}
	return &mqttPin{bridge: b, number: pinNumber, activeLow: activeLow}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (b *mqttBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if err := b.checkPin(pinNumber); err != nil {
		return nil, err
	}
	pin := &mqttPin{bridge: b, number: pinNumber, activeLow: activeLow}
	if err := pin.Write(initialValue); err != nil {
		return nil, err
	}
	return pin, nil
}

func (b *mqttBridge) checkPin(pinNumber int) error {
	if pinNumber < 0 || pinNumber >= b.pinCount {
		return errors.Wrapf(model.InvalidPinError, "pin %d out of range [0..%d)", pinNumber, b.pinCount)
	}
	return nil
}

// Status leds are not available on remote pins.
func (b *mqttBridge) SetGreenLED(on bool) error { return nil }
func (b *mqttBridge) SetRedLED(on bool) error { return nil }
func (b *mqttBridge) BlinkGreenLED(delay time.Duration) error { return nil }
func (b *mqttBridge) BlinkRedLED(delay time.Duration) error { return nil }

// Close disconnects from the broker.
func (b *mqttBridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.client != nil {
		b.client.Unsubscribe(b.topicPrefix + "#")
		b.client.Disconnect(250)
		b.client = nil
	}
	return nil
}

// PublishLog publishes a log line (not retained) on the given topic.
func (b *mqttBridge) PublishLog(ctx context.Context, topic string, payload []byte) error {
	b.mutex.Lock()
	client := b.client
	b.mutex.Unlock()
	if client == nil {
		return errors.Wrap(model.ProviderClosedError, "publish log")
	}
	token := client.Publish(topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-time.After(mqttPublishTimeout):
		return errors.Errorf("timeout publishing log to '%s'", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

type mqttPin struct {
	bridge    *mqttBridge
	number    int
	activeLow bool
}

// Read the last reported value of the pin.
func (p *mqttPin) Read() (bool, error) {
	p.bridge.mutex.Lock()
	defer p.bridge.mutex.Unlock()
	return p.bridge.states[p.number] != p.activeLow, nil
}

// Write publishes a retained command for the pin.
func (p *mqttPin) Write(value bool) error {
	p.bridge.mutex.Lock()
	client := p.bridge.client
	p.bridge.mutex.Unlock()
	if client == nil {
		countWrite(mqttBridgeType, model.ProviderClosedError)
		return errors.Wrapf(model.ProviderClosedError, "write to pin %d", p.number)
	}

	topic := p.bridge.commandTopic(p.number)
	payload := formatBool(value != p.activeLow)
	retain := true
	token := client.Publish(topic, 0, retain, payload)
	var err error
	if !token.WaitTimeout(mqttPublishTimeout) {
		err = errors.Errorf("timeout delivering MQTT command to '%s'", topic)
	} else if tErr := token.Error(); tErr != nil {
		err = errors.Wrapf(tErr, "failed to deliver MQTT command to '%s'", topic)
	}
	countWrite(mqttBridgeType, err)
	if err != nil {
		p.bridge.log.Error().Err(err).
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT command")
		return err
	}
	return nil
}

// Parse a string into a bool
func parseBool(str string) (bool, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	switch str {
	case "1", "t", "true", "on", "yes", "high":
		return true, nil
	case "0", "f", "false", "off", "no", "low":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value '%s'", str)
}

// format a bool as string
func formatBool(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
