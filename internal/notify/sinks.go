// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/models"
)

// LogSink writes events to the structured log.
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink returns a [Sink] logging through l.
func NewLogSink(l *logger.Logger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) OnProgress(percent int) {
	s.logger.Debug().Int("percent", percent).Msg("sync progress")
}

func (s *LogSink) OnConflict(c models.Conflict) {
	s.logger.Warn().
		Str("entity_id", c.EntityID).
		Str("entity_type", string(c.EntityType)).
		Int64("local_version", c.LocalSyncVersion).
		Int64("remote_version", c.RemoteSyncVersion).
		Str("recommended", string(c.Recommended)).
		Str("reason", c.Reason).
		Msg("sync conflict detected")
}

func (s *LogSink) OnError(kind models.ErrorKind, message string) {
	s.logger.Error().Str("kind", string(kind)).Msg(message)
}

func (s *LogSink) OnComplete(sum models.Summary) {
	s.logger.Info().
		Str("state", string(sum.State)).
		Int("uploaded", sum.Uploaded).
		Int("rejected", len(sum.Rejected)).
		Int("downloaded", sum.Downloaded).
		Int("merged", sum.Merged).
		Int("conflicts", sum.Conflicts).
		Dur("duration", sum.Duration).
		Msg("sync cycle finished")
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	conflictStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const progressBarWidth = 20

// ConsoleSink renders events as styled lines for an interactive terminal.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
	// lastPercent suppresses repeated progress lines.
	lastPercent int
}

// NewConsoleSink returns a [Sink] writing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out, lastPercent: -1}
}

func (s *ConsoleSink) OnProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	percent = ClampPercent(percent)
	if percent == s.lastPercent {
		return
	}
	s.lastPercent = percent
	fmt.Fprintf(s.out, "%s %s\n", titleStyle.Render("sync"), ProgressBar(percent, progressBarWidth))
}

func (s *ConsoleSink) OnConflict(c models.Conflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	title := c.Local.Title()
	if title == "" {
		title = c.EntityID
	}
	body := fmt.Sprintf("%s %s\nlocal v%d · remote v%d\nrecommended: %s (%s)",
		conflictStyle.Render("conflict"), title,
		c.LocalSyncVersion, c.RemoteSyncVersion, c.Recommended, c.Reason)
	fmt.Fprintln(s.out, boxStyle.Render(body))
}

func (s *ConsoleSink) OnError(kind models.ErrorKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s %s\n", errorStyle.Render("error ["+string(kind)+"]"), message)
}

func (s *ConsoleSink) OnComplete(sum models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPercent = -1

	style := okStyle
	switch sum.State {
	case models.StateError:
		style = errorStyle
	case models.StateConflictsPending:
		style = conflictStyle
	}
	fmt.Fprintf(s.out, "%s %s\n", style.Render(string(sum.State)),
		helpStyle.Render(fmt.Sprintf("↑%d ↓%d merged %d conflicts %d in %s",
			sum.Uploaded, sum.Downloaded, sum.Merged, sum.Conflicts, sum.Duration.Round(time.Millisecond))))
}

// ProgressBar renders percent as a fixed-width text bar.
func ProgressBar(percent, width int) string {
	percent = ClampPercent(percent)
	if width <= 0 {
		width = progressBarWidth
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + fmt.Sprintf("] %3d%%", percent)
}
