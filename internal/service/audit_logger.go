package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rod1202/print-inv/internal/core"
)

// Mirror is an optional secondary sink for audit events, used for fast
// queries and retention. Insert must be idempotent.
type Mirror interface {
	Insert(ctx context.Context, e core.AuditEvent) error
	List(ctx context.Context, f Filter) ([]core.AuditEvent, error)
}

// AuditLogger prepends events to the append-only log document, newest
// first. Append is best-effort by contract: a failed fetch or write is
// logged and swallowed so it can never fail the save that produced the
// events.
type AuditLogger struct {
	store  DocumentStore
	mirror Mirror
	path   string
	logger *slog.Logger
}

func NewAuditLogger(store DocumentStore, mirror Mirror, path string, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{store: store, mirror: mirror, path: path, logger: logger}
}

// Append writes each event in order. Every event refetches the log document
// so the second event of a replacement sees the first one's token.
func (l *AuditLogger) Append(ctx context.Context, events ...core.AuditEvent) {
	for _, e := range events {
		if err := l.append(ctx, e); err != nil {
			l.logger.Error("audit_append_failed", "accion", e.Accion, "serie", e.Serie, "err", err)
		}
		if l.mirror != nil {
			if err := l.mirror.Insert(ctx, e); err != nil {
				l.logger.Error("audit_mirror_failed", "accion", e.Accion, "serie", e.Serie, "err", err)
			}
		}
	}
}

func (l *AuditLogger) append(ctx context.Context, e core.AuditEvent) error {
	current, token := l.fetch(ctx)
	next := append([]core.AuditEvent{e}, current...)
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Log: %s - %s", e.Accion, e.Serie)
	_, err = l.store.Write(ctx, l.path, raw, token, msg)
	return err
}

// List returns events newest first, preferring the mirror when configured.
func (l *AuditLogger) List(ctx context.Context, f Filter) ([]core.AuditEvent, error) {
	f.Normalize()
	if l.mirror != nil {
		return l.mirror.List(ctx, f)
	}
	all, _ := l.fetch(ctx)
	var out []core.AuditEvent
	skipped := 0
	for _, e := range all {
		if !f.matches(e) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, e)
		if len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (l *AuditLogger) fetch(ctx context.Context) ([]core.AuditEvent, string) {
	raw, token, err := l.store.Fetch(ctx, l.path)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Warn("audit_fetch_degraded", "err", err)
		}
		return nil, ""
	}
	var events []core.AuditEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		l.logger.Warn("audit_decode_degraded", "err", err)
		return nil, ""
	}
	return events, token
}
