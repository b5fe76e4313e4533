package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// cmdFetch fetches under ctx so quitting cancels an in-flight request.
func cmdFetch(ctx context.Context, deps Deps) tea.Cmd {
	return func() tea.Msg {
		if deps.Source == nil {
			return snapshotMsg{err: errors.New("no snapshot source configured"), at: time.Now()}
		}
		snap, err := deps.Source.Fetch(ctx)
		return snapshotMsg{snap: snap, err: err, at: time.Now()}
	}
}

func cmdTick(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}
