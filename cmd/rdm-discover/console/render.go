package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#43BF6D")
	warningColor = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#626262")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	mutedFlagStyle = lipgloss.NewStyle().
			Foreground(successColor)

	unmutedFlagStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// RenderTOD draws the table of devices as a bordered list.
func RenderTOD(entries []tod.Entry) string {
	title := titleStyle.Render(fmt.Sprintf("Table of devices (%d)", len(entries)))
	if len(entries) == 0 {
		return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("no devices")))
	}

	rows := []string{title, mutedStyle.Render("  #  UID            MUTED")}
	for i, e := range entries {
		flag := unmutedFlagStyle.Render("no")
		if e.Muted {
			flag = mutedFlagStyle.Render("yes")
		}
		rows = append(rows, fmt.Sprintf("%3d  %s  %s", i+1, e.UID, flag))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderStats draws the counters of a pass.
func RenderStats(s discovery.Stats) string {
	rows := []string{titleStyle.Render("Discovery statistics")}
	for _, kv := range []struct {
		key   string
		value int
	}{
		{"branches", s.Branches},
		{"valid", s.Valid},
		{"collisions", s.Collisions},
		{"no response", s.NoResponses},
		{"late responses", s.LateResponses},
		{"mutes sent", s.MutesSent},
		{"mute failures", s.MuteFailures},
		{"added", s.Added},
		{"removed", s.Removed},
		{"max stack depth", s.MaxStackDepth},
	} {
		rows = append(rows, fmt.Sprintf("%s %d", mutedStyle.Render(fmt.Sprintf("%-16s", kv.key)), kv.value))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
