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
	"errors"
	"sync"
	"testing"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/LocalCloudlet/model"
)

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} { c := make(chan struct{}); close(c); return c }
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  string
}

// fakeClient records publishes and lets tests deliver messages.
type fakeClient struct {
	mqttapi.Client

	mutex      sync.Mutex
	handler    mqttapi.MessageHandler
	subscribed string
	published  []published
	publishErr error
	disconnect bool
}

func (c *fakeClient) Subscribe(topic string, qos byte, cb mqttapi.MessageHandler) mqttapi.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.subscribed = topic
	c.handler = cb
	return fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqttapi.Token {
	return fakeToken{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqttapi.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var text string
	switch p := payload.(type) {
	case string:
		text = p
	case []byte:
		text = string(p)
	}
	c.published = append(c.published, published{topic: topic, retained: retained, payload: text})
	return fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnect = true
}

func (c *fakeClient) deliver(topic, payload string) {
	c.handler(c, &fakeMessage{topic: topic, payload: []byte(payload)})
}

type fakeMessage struct {
	mqttapi.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

func TestMQTTBridgeOutputPublishesCommands(t *testing.T) {
	client := &fakeClient{}
	b, err := newMQTTBridge(client, "/worker1", 16, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "/worker1/#", client.subscribed)

	out, err := b.Output(6, false, false)
	require.NoError(t, err)
	require.NoError(t, out.Write(true))

	require.Len(t, client.published, 2)
	assert.Equal(t, published{topic: "/worker1/pin6/command", retained: true, payload: "OFF"}, client.published[0])
	assert.Equal(t, published{topic: "/worker1/pin6/command", retained: true, payload: "ON"}, client.published[1])
}

func TestMQTTBridgeInputTracksState(t *testing.T) {
	client := &fakeClient{}
	b, err := newMQTTBridge(client, "/worker1/", 16, zerolog.Nop())
	require.NoError(t, err)

	in, err := b.Input(7, false)
	require.NoError(t, err)
	v, _ := in.Read()
	assert.False(t, v)

	client.deliver("/worker1/pin7/state", "ON")
	client.deliver("/worker1/pin8/state", "garbage")
	client.deliver("/worker1/other/state", "ON")
	v, _ = in.Read()
	assert.True(t, v)

	client.deliver("/worker1/pin7/state", "off")
	v, _ = in.Read()
	assert.False(t, v)
}

func TestMQTTBridgePublishError(t *testing.T) {
	client := &fakeClient{}
	b, err := newMQTTBridge(client, "", 16, zerolog.Nop())
	require.NoError(t, err)
	out, err := b.Output(1, false, false)
	require.NoError(t, err)

	client.publishErr = errors.New("broker gone")
	assert.Error(t, out.Write(true))
}

func TestMQTTBridgeClose(t *testing.T) {
	client := &fakeClient{}
	b, err := newMQTTBridge(client, "/w", 4, zerolog.Nop())
	require.NoError(t, err)
	out, err := b.Output(1, false, false)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.True(t, client.disconnect)
	assert.True(t, model.IsProviderClosed(out.Write(true)))

	_, err = b.Output(4, false, false)
	assert.True(t, model.IsInvalidPin(err))
}

func TestMQTTBridgePublishLog(t *testing.T) {
	client := &fakeClient{}
	b, err := newMQTTBridge(client, "/w", 4, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.PublishLog(context.Background(), "/w/logs", []byte(`{"message":"hi"}`)))
	require.Len(t, client.published, 1)
	assert.Equal(t, published{topic: "/w/logs", retained: false, payload: `{"message":"hi"}`}, client.published[0])

	require.NoError(t, b.Close())
	assert.True(t, model.IsProviderClosed(b.PublishLog(context.Background(), "/w/logs", nil)))
}
