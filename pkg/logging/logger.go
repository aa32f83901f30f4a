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

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/binkynet/LocalCloudlet/model"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates the root logger for the given configuration.
// Log lines go to stderr and to all given extra writers.
func New(cfg model.LoggingConfig, extra ...io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), model.InvalidArgument("invalid log level '%s'", cfg.Level)
		}
		level = l
	}

	var primary io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole:
		primary = zerolog.ConsoleWriter{Out: os.Stderr}
	case FormatJSON:
		primary = os.Stderr
	default:
		return zerolog.Nop(), model.InvalidArgument("invalid log format '%s'", cfg.Format)
	}

	out := primary
	if len(extra) > 0 {
		out = NewMultiWriter(append([]io.Writer{primary}, extra...)...)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
