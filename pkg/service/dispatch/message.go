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

package dispatch

import (
	"sync"

	"github.com/google/uuid"
)

const (
	// HeaderPinAction is an action attached to a message by upstream
	// processing. Pin endpoints never use it; the action in the
	// endpoint URI is authoritative.
	HeaderPinAction = "PinAction"
	// HeaderPinState holds the state of the pin after a gpio endpoint
	// processed the message.
	HeaderPinState = "PinState"
	// HeaderDocumentID holds the id of the document saved or found
	// by a document endpoint.
	HeaderDocumentID = "DocumentID"
)

// Message is the unit of data sent to an endpoint.
type Message struct {
	ID   string
	Body interface{}

	mutex   sync.Mutex
	headers map[string]string
}

// NewMessage creates a message with given body and a new unique ID.
func NewMessage(body interface{}) *Message {
	return &Message{
		ID:      uuid.NewString(),
		Body:    body,
		headers: make(map[string]string),
	}
}

// SetHeader sets the header with given key.
func (m *Message) SetHeader(key, value string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.headers == nil {
		m.headers = make(map[string]string)
	}
	m.headers[key] = value
}

// Header returns the header with given key, or "" if not set.
func (m *Message) Header(key string) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.headers[key]
}

// Headers returns a copy of all headers.
func (m *Message) Headers() map[string]string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	result := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		result[k] = v
	}
	return result
}
