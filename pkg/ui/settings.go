package ui

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/silsila/pkg/config"
)

// SettingsOverlay wraps a huh form for the tunables a user reasonably
// changes at runtime: hover linger, drag release grace, and label
// visibility. Confirmed values are written back into the config.
type SettingsOverlay struct {
	form   *huh.Form
	active bool

	hoverLinger  string
	releaseGrace string
	showLabels   bool
}

// Open builds a fresh form seeded from cfg and activates the overlay.
func (s *SettingsOverlay) Open(cfg *config.Config) tea.Cmd {
	s.hoverLinger = strconv.Itoa(int(cfg.HoverLinger.Milliseconds()))
	s.releaseGrace = strconv.Itoa(int(cfg.ReleaseGrace.Milliseconds()))
	s.showLabels = cfg.ShowLabels

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hover linger (ms)").
				Description("How long the detail panel outlives the pointer").
				Value(&s.hoverLinger).
				Validate(validatePositiveMillis),
			huh.NewInput().
				Title("Release grace (ms)").
				Description("How long a dropped node stays pinned").
				Value(&s.releaseGrace).
				Validate(validatePositiveMillis),
			huh.NewConfirm().
				Title("Show node labels").
				Value(&s.showLabels),
		),
	).WithTheme(huh.ThemeDracula())

	s.active = true
	return s.form.Init()
}

func validatePositiveMillis(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if n <= 0 {
		return strconv.ErrRange
	}
	return nil
}

// Active reports whether the overlay is capturing input.
func (s *SettingsOverlay) Active() bool { return s.active }

// Update feeds a message to the form. done is true when the form was
// confirmed or aborted; on confirm the parsed values are written to cfg.
func (s *SettingsOverlay) Update(msg tea.Msg, cfg *config.Config) (done bool, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		s.active = false
		return true, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		if ms, err := strconv.Atoi(s.hoverLinger); err == nil {
			cfg.HoverLinger = config.Duration(time.Duration(ms) * time.Millisecond)
		}
		if ms, err := strconv.Atoi(s.releaseGrace); err == nil {
			cfg.ReleaseGrace = config.Duration(time.Duration(ms) * time.Millisecond)
		}
		cfg.ShowLabels = s.showLabels
		s.active = false
		return true, cmd
	}
	if s.form.State == huh.StateAborted {
		s.active = false
		return true, cmd
	}
	return false, cmd
}

// View renders the form.
func (s *SettingsOverlay) View() string {
	if s.form == nil {
		return ""
	}
	return s.form.View()
}
