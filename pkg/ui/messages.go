package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/silsila/pkg/model"
)

// frameTickMsg drives the simulation and repaint loop.
type frameTickMsg time.Time

// hoverExpireMsg fires when the hover linger delay elapses. Gen is the
// token the manager issued; a stale token is ignored.
type hoverExpireMsg struct{ gen uint64 }

// suppressExpireMsg discards the post-drag click suppression after one
// event-loop tick.
type suppressExpireMsg struct{ gen uint64 }

// releasePinMsg frees a dropped body after the release grace period.
type releasePinMsg struct{ gen uint64 }

// centerRetryMsg re-checks a deferred view-centering request.
type centerRetryMsg struct{ gen uint64 }

// statusExpireMsg clears a transient status-bar message.
type statusExpireMsg struct{ gen uint64 }

// DatasetReloadedMsg carries a freshly loaded dataset after the watcher
// saw the file change, or the load error if the new file was bad.
type DatasetReloadedMsg struct {
	Dataset *model.Dataset
	Err     error
}

const frameInterval = 50 * time.Millisecond

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func after(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
