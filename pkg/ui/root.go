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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service"
	"github.com/binkynet/LocalCloudlet/pkg/service/devices"
)

const refreshInterval = time.Second * 2

// Source provides the information shown in the dashboard.
type Source interface {
	// Status returns the current status of the service.
	Status() service.Status
	// Pins returns information about all used pins.
	Pins() ([]devices.PinInfo, error)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Underline(true)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Root is the dashboard model of a single SSH session.
type Root struct {
	source Source
	term   string
	width  int
	height int

	status service.Status
	pins   []devices.PinInfo
	err    error

	pinView struct {
		ready    bool
		viewPort viewport.Model
	}
}

var _ tea.Model = Root{}

// NewRoot creates a dashboard for the given terminal.
func NewRoot(source Source, term string) Root {
	return Root{
		source: source,
		term:   term,
	}
}

// Init is the first function that will be called.
func (r Root) Init() tea.Cmd {
	return doRefresh(r.source)
}

// Update is called when a message is received.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case refreshMsg:
		r.status = msg.status
		r.pins = msg.pins
		r.err = msg.err
		r.pinView.viewPort.SetContent(r.pinsView())
		cmds = append(cmds, doTick())
	case tickMsg:
		return r, doRefresh(r.source)
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		pinHeight := r.height - lipgloss.Height(r.headerView()) - lipgloss.Height(r.footerView())
		if !r.pinView.ready {
			r.pinView.viewPort = viewport.New(r.width, pinHeight)
			r.pinView.ready = true
		} else {
			r.pinView.viewPort.Width = r.width
			r.pinView.viewPort.Height = pinHeight
		}
		r.pinView.viewPort.SetContent(r.pinsView())
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case "r":
			return r, doRefresh(r.source)
		}
	}

	// Handle scrolling in the pin list
	if r.pinView.ready {
		var cmd tea.Cmd
		r.pinView.viewPort, cmd = r.pinView.viewPort.Update(msg)
		cmds = append(cmds, cmd)
	}
	return r, tea.Batch(cmds...)
}

// View renders the dashboard.
func (r Root) View() string {
	body := r.pinsView()
	if r.pinView.ready {
		body = r.pinView.viewPort.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, r.headerView(), body, r.footerView())
}

func (r Root) headerView() string {
	st := r.status
	state := "open"
	if !st.ProviderOpen {
		state = "closed"
	}
	lines := []string{
		titleStyle.Render("BinkyNet Local Cloudlet"),
		fmt.Sprintf("Host %s, version %s, started %s", st.HostID, st.ProgramVersion, st.Uptime),
		fmt.Sprintf("Provider %s (%d pins, %s), store %s", st.ProviderType, st.PinCount, state, st.StoreType),
	}
	if r.err != nil {
		lines = append(lines, errorStyle.Render(r.err.Error()))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (r Root) pinsView() string {
	if len(r.pins) == 0 {
		return "No pins in use\n"
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-15s %-5s", "Pin", "Mode", "State")))
	sb.WriteString("\n")
	for _, p := range r.pins {
		state := p.State.String()
		if p.State == model.PinStateHigh {
			state = highStyle.Render(state)
		}
		fmt.Fprintf(&sb, "%-8s %-15s %s\n", p.Address, p.Mode, state)
	}
	return sb.String()
}

func (r Root) footerView() string {
	return helpStyle.Render("r - Refresh, q - Disconnect")
}

type refreshMsg struct {
	status service.Status
	pins   []devices.PinInfo
	err    error
}

type tickMsg time.Time

func doRefresh(source Source) tea.Cmd {
	return func() tea.Msg {
		pins, err := source.Pins()
		return refreshMsg{
			status: source.Status(),
			pins:   pins,
			err:    err,
		}
	}
}

func doTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
