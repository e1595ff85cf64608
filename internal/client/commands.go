// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MKhiriev/go-conn-sync/internal/sanitizer"
	"github.com/MKhiriev/go-conn-sync/internal/service"
	"github.com/MKhiriev/go-conn-sync/models"
)

const (
	CommandSync       = "sync"
	CommandStatus     = "status"
	CommandConflicts  = "conflicts"
	CommandHistory    = "history"
	CommandResolve    = "resolve"
	CommandResolveAll = "resolve-all"
	CommandResume     = "resume"

	CommandAdd    = "add"
	CommandEdit   = "edit"
	CommandRemove = "rm"
	CommandList   = "ls"
	CommandShow   = "show"
)

const defaultHistoryLimit = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(22)
)

// Commands runs one-shot operations against the sync engine and the local
// records and prints the result to out.
type Commands struct {
	engine   service.SyncEngine
	entities service.ClientEntityService
	out      io.Writer
}

func NewCommands(engine service.SyncEngine, entities service.ClientEntityService, out io.Writer) *Commands {
	return &Commands{engine: engine, entities: entities, out: out}
}

// Execute dispatches args[0] with the remaining arguments.
func (c *Commands) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUnknownCommand
	}

	switch name, rest := args[0], args[1:]; name {
	case CommandSync:
		return c.sync(ctx)
	case CommandStatus:
		return c.status(ctx)
	case CommandConflicts:
		return c.conflicts(ctx)
	case CommandHistory:
		return c.history(ctx, rest)
	case CommandResolve:
		return c.resolve(ctx, rest)
	case CommandResolveAll:
		return c.resolveAll(ctx, rest)
	case CommandResume:
		if err := c.engine.Resume(ctx); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		fmt.Fprintln(c.out, "sync resumed")
		return nil
	case CommandAdd:
		return c.add(ctx, rest)
	case CommandEdit:
		return c.edit(ctx, rest)
	case CommandRemove:
		return c.remove(ctx, rest)
	case CommandList:
		return c.list(ctx, rest)
	case CommandShow:
		return c.show(ctx, rest)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

func (c *Commands) sync(ctx context.Context) error {
	sum, err := c.engine.SyncNow(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	// cycle details reach the console through the notification sink
	fmt.Fprintf(c.out, "sync finished: %s\n", sum.State)
	return nil
}

func (c *Commands) status(ctx context.Context) error {
	snap, err := c.engine.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	m := snap.Metadata
	lastSync := "never"
	if m.LastSyncAt != nil {
		lastSync = m.LastSyncAt.Local().Format(time.DateTime)
	}
	rows := [][2]string{
		{"device", m.DeviceID},
		{"state", string(m.State)},
		{"last sync", lastSync},
		{"cursor", m.Cursor},
		{"pending changes", strconv.Itoa(snap.Pending)},
		{"open conflicts", strconv.Itoa(len(snap.Conflicts))},
		{"consecutive failures", strconv.Itoa(m.ConsecutiveFailures)},
	}
	if m.Paused {
		rows = append(rows, [2]string{"paused", "yes, run \"" + CommandResume + "\" after refreshing credentials"})
	}
	if m.LastError != "" {
		rows = append(rows, [2]string{"last error", fmt.Sprintf("[%s] %s", m.LastErrorKind, m.LastError)})
	}

	for _, r := range rows {
		fmt.Fprintln(c.out, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]), r[1]))
	}
	return nil
}

func (c *Commands) conflicts(ctx context.Context) error {
	conflicts, err := c.engine.Conflicts(ctx)
	if err != nil {
		return fmt.Errorf("list conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		fmt.Fprintln(c.out, "no open conflicts")
		return nil
	}

	t := newTable("ENTITY", "TYPE", "TITLE", "LOCAL", "REMOTE", "RECOMMENDED", "REASON")
	for _, cf := range conflicts {
		t.Row(cf.EntityID, string(cf.EntityType), conflictTitle(cf),
			"v"+strconv.FormatInt(cf.LocalSyncVersion, 10),
			"v"+strconv.FormatInt(cf.RemoteSyncVersion, 10),
			string(cf.Recommended), cf.Reason)
	}
	fmt.Fprintln(c.out, t.Render())
	return nil
}

func (c *Commands) history(ctx context.Context, args []string) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: history limit %q", ErrInvalidArgument, args[0])
		}
		limit = n
	}

	logs, err := c.engine.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(logs) == 0 {
		fmt.Fprintln(c.out, "no sync history")
		return nil
	}

	t := newTable("SYNCED AT", "STATE", "PUSHED", "PULLED", "CONFLICTS", "ERROR")
	for _, l := range logs {
		t.Row(l.SyncedAt.Local().Format(time.DateTime), string(l.State),
			strconv.Itoa(l.Pushed), strconv.Itoa(l.Pulled), strconv.Itoa(l.Conflicts), l.Error)
	}
	fmt.Fprintln(c.out, t.Render())
	return nil
}

func (c *Commands) resolve(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: %s <entity-id> <local|remote|keep-both>", ErrInvalidArgument, CommandResolve)
	}

	res, err := c.engine.ResolveConflict(ctx, args[0], models.Strategy(args[1]))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	c.printResolution(res)
	return nil
}

func (c *Commands) resolveAll(ctx context.Context, args []string) error {
	var strategy models.Strategy
	if len(args) > 0 {
		strategy = models.Strategy(args[0])
	}

	resolutions, err := c.engine.ResolveAll(ctx, strategy)
	if err != nil {
		return fmt.Errorf("resolve all: %w", err)
	}
	if len(resolutions) == 0 {
		fmt.Fprintln(c.out, "no open conflicts")
		return nil
	}
	for _, res := range resolutions {
		c.printResolution(res)
	}
	return nil
}

func (c *Commands) printResolution(res models.Resolution) {
	fmt.Fprintf(c.out, "%s resolved with %s\n", res.Entity.ID, res.Strategy)
	if res.Copy != nil {
		fmt.Fprintf(c.out, "  local version kept as %s (%s)\n", res.Copy.ID, res.Copy.Title())
	}
}

// ── records ──────────────────────────────────────────────────────────────────

func (c *Commands) add(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: %s <%s|%s> <json>", ErrInvalidArgument, CommandAdd, models.EntityConnection, models.EntitySavedQuery)
	}
	payload, err := parsePayload(args[1])
	if err != nil {
		return err
	}

	entity, err := c.entities.Create(ctx, models.EntityType(args[0]), payload)
	if err != nil {
		return fmt.Errorf("add %s: %w", args[0], err)
	}
	fmt.Fprintf(c.out, "created %s (%s)\n", entity.ID, entity.Title())
	return nil
}

func (c *Commands) edit(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: %s <id> <json>", ErrInvalidArgument, CommandEdit)
	}
	payload, err := parsePayload(args[1])
	if err != nil {
		return err
	}

	entity, err := c.entities.Update(ctx, args[0], payload)
	if err != nil {
		return fmt.Errorf("edit %s: %w", args[0], err)
	}
	fmt.Fprintf(c.out, "updated %s (%s)\n", entity.ID, entity.Title())
	return nil
}

func (c *Commands) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: %s <id>", ErrInvalidArgument, CommandRemove)
	}
	if err := c.entities.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("rm %s: %w", args[0], err)
	}
	fmt.Fprintf(c.out, "deleted %s\n", args[0])
	return nil
}

func (c *Commands) list(ctx context.Context, args []string) error {
	var entityType models.EntityType
	if len(args) > 0 {
		entityType = models.EntityType(args[0])
	}

	entities, err := c.entities.List(ctx, entityType)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(entities) == 0 {
		fmt.Fprintln(c.out, "no records")
		return nil
	}

	t := newTable("ID", "TYPE", "TITLE", "VERSION", "UPDATED")
	for _, e := range entities {
		t.Row(e.ID, string(e.Type), e.Title(),
			"v"+strconv.FormatInt(e.SyncVersion, 10),
			e.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(c.out, t.Render())
	return nil
}

// show prints one record with its secrets redacted.
func (c *Commands) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: %s <id>", ErrInvalidArgument, CommandShow)
	}
	entity, err := c.entities.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("show %s: %w", args[0], err)
	}

	raw, err := json.MarshalIndent(sanitizer.Sanitize(entity.Payload), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", entity.ID, err)
	}
	fmt.Fprintf(c.out, "%s %s v%d\n%s\n", entity.Type, entity.ID, entity.SyncVersion, raw)
	return nil
}

func parsePayload(arg string) (models.Payload, error) {
	payload, err := models.UnmarshalPayload([]byte(arg))
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %w", ErrInvalidArgument, err)
	}
	return payload, nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func conflictTitle(c models.Conflict) string {
	if t := c.Local.Title(); t != "" {
		return t
	}
	return c.Remote.Title()
}
