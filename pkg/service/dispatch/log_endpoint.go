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
	"context"
	"net/url"

	"github.com/rs/zerolog"
)

// logEndpoint writes every message to the log (log:<name>).
// With ?showAll=true the body and headers are included.
type logEndpoint struct {
	log     zerolog.Logger
	showAll bool
}

func newLogEndpoint(u *url.URL, log zerolog.Logger) *logEndpoint {
	return &logEndpoint{
		log:     log.With().Str("endpoint", hostOrOpaque(u)).Logger(),
		showAll: u.Query().Get("showAll") == "true",
	}
}

// Process the given message.
func (e *logEndpoint) Process(ctx context.Context, msg *Message) error {
	ev := e.log.Info().Str("message_id", msg.ID)
	if e.showAll {
		ev = ev.Interface("body", msg.Body).Interface("headers", msg.Headers())
	}
	ev.Msg("Message")
	return nil
}
