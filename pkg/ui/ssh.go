// Copyright 2024-2026 Ewout Prangsma
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

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
)

// Dashboard creates a dashboard model for every SSH session.
type Dashboard struct {
	source Source
}

// NewDashboard creates a dashboard on the given source.
func NewDashboard(source Source) *Dashboard {
	return &Dashboard{source: source}
}

// Handler creates the model for the given session.
func (d *Dashboard) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	return NewRoot(d.source, pty.Term), []tea.ProgramOption{tea.WithAltScreen()}
}
