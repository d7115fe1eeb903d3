package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Rod1202/print-inv/internal/core"
)

var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
	ErrSync         = errors.New("sync_failed")
)

// DocumentStore is a versioned document backend. Fetch returns the raw
// document and its version token, or ErrNotFound. Write conditionally
// replaces the document: the expected token must match the stored revision
// (empty means create-if-absent) or the store answers ErrConflict. The new
// token is returned; chained writes must refetch or capture it.
type DocumentStore interface {
	Fetch(ctx context.Context, path string) (content []byte, token string, err error)
	Write(ctx context.Context, path string, content []byte, expectedToken, message string) (newToken string, err error)
}

// Durability picks what a failed or conflicting inventory write means.
type Durability string

const (
	// BestEffort absorbs write failures as a logged soft success so the
	// local editing flow stays usable. Concurrent sessions can silently
	// overwrite each other under this mode.
	BestEffort Durability = "best-effort"
	// Strict fails the save with ErrSync and leaves no local trace.
	Strict Durability = "strict"
)

// Save pipeline phases, surfaced in logs.
const (
	phaseFetching = "fetching"
	phaseMerging  = "merging"
	phaseWriting  = "writing"
	phaseLogging  = "logging"
	phaseDone     = "done"
	phaseErrored  = "errored"
)

type Config struct {
	InventoryPath string
	Durability    Durability
	Users         map[string]string
	Seed          core.Collection
}

// Service sequences every save: fetch the current collection, merge the
// submitted records, write back under the fetched version token, then append
// audit events best-effort.
type Service struct {
	store    DocumentStore
	audit    *AuditLogger
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func New(store DocumentStore, audit *AuditLogger, cfg Config, logger *slog.Logger) *Service {
	if cfg.Durability == "" {
		cfg.Durability = BestEffort
	}
	return &Service{
		store:    store,
		audit:    audit,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SaveRequest is one submitted form state. SerieReemplazo is only consulted
// when Uso is "Reemplazo" and is never persisted.
type SaveRequest struct {
	core.Record
	SerieReemplazo string `json:"serieReemplazo,omitempty"`
}

// SaveResult carries the merged collection, the record the caller should
// keep editing, and the audit events that were emitted for the change.
type SaveResult struct {
	Inventory core.Collection   `json:"inventory"`
	Active    core.Record       `json:"active"`
	Events    []core.AuditEvent `json:"events"`
}

// Login checks the static credentials and bootstraps the session's
// collection. When the remote document is missing, unreachable or empty the
// bundled seed is returned instead, so a fresh or disconnected store still
// yields a workable session.
func (s *Service) Login(ctx context.Context, username, password string) (core.Collection, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: usuario y contraseña requeridos", ErrValidation)
	}
	pw, ok := s.cfg.Users[username]
	if !ok || pw != password {
		return nil, ErrUnauthorized
	}
	col, _ := s.fetchInventory(ctx)
	if len(col) == 0 {
		s.logger.Warn("inventory_seed_fallback", "user", username)
		return slices.Clone(s.cfg.Seed), nil
	}
	s.logger.Info("login_ok", "user", username, "records", len(col))
	return col, nil
}

// Inventory returns the current collection, falling back to the seed when
// the remote document yields nothing.
func (s *Service) Inventory(ctx context.Context) core.Collection {
	col, _ := s.fetchInventory(ctx)
	if len(col) == 0 {
		return slices.Clone(s.cfg.Seed)
	}
	return col
}

// Save runs one registration through the pipeline. With Uso "Reemplazo" it
// switches to the two-record replacement workflow; otherwise the record is
// upserted by serie, receiving a fresh n_item when no record matches.
func (s *Service) Save(ctx context.Context, actor string, req SaveRequest) (SaveResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Uso == core.UsoReemplazo {
		return s.saveReplacement(ctx, actor, req)
	}

	rec := req.Record
	rec.OperadorRegistro = actor
	rec.FechaModificacion = s.now().Format(core.TimeLayout)

	s.phase(phaseFetching, rec.Serie)
	col, token := s.fetchInventory(ctx)

	s.phase(phaseMerging, rec.Serie)
	prev, existed := col.Find(rec.Serie)
	if existed {
		if rec.NItem == "" {
			rec.NItem = prev.NItem
		}
	} else {
		rec.NItem = core.NextItemNumber(col)
	}
	merged := core.Upsert(col, rec)

	s.phase(phaseWriting, rec.Serie)
	msg := fmt.Sprintf("Actualización de inventario: Serie %s", rec.Serie)
	if err := s.writeInventory(ctx, merged, token, msg); err != nil {
		s.phase(phaseErrored, rec.Serie)
		return SaveResult{}, err
	}

	s.phase(phaseLogging, rec.Serie)
	var events []core.AuditEvent
	if !existed {
		events = append(events, core.AuditEvent{
			Usuario: actor,
			Fecha:   rec.FechaModificacion,
			Accion:  core.ActionCreate,
			Serie:   rec.Serie,
			Detalle: "Creación de nuevo registro",
		})
	} else if changes := core.Diff(prev, rec); len(changes) > 0 {
		events = append(events, core.AuditEvent{
			Usuario: actor,
			Fecha:   rec.FechaModificacion,
			Accion:  core.ActionEdit,
			Serie:   rec.Serie,
			Detalle: detail(changes),
		})
	}
	s.audit.Append(ctx, events...)

	s.phase(phaseDone, rec.Serie)
	return SaveResult{Inventory: merged, Active: rec, Events: events}, nil
}

// saveReplacement retires the submitted record under Uso "Reemplazo" and
// creates its successor with the supplied serial and a fresh n_item, both
// merged into a single write. The new id is computed before either upsert,
// which is safe because the retired record is an update, never an insert
// that could consume the number.
func (s *Service) saveReplacement(ctx context.Context, actor string, req SaveRequest) (SaveResult, error) {
	newSerie := strings.TrimSpace(req.SerieReemplazo)
	if newSerie == "" {
		return SaveResult{}, fmt.Errorf("%w: serie del equipo nuevo requerida", ErrValidation)
	}
	stamp := s.now().Format(core.TimeLayout)

	old := req.Record
	old.OperadorRegistro = actor
	old.FechaModificacion = stamp

	s.phase(phaseFetching, old.Serie)
	col, token := s.fetchInventory(ctx)

	s.phase(phaseMerging, old.Serie)
	if prev, ok := col.Find(old.Serie); ok && old.NItem == "" {
		old.NItem = prev.NItem
	}
	newID := core.NextItemNumber(col)

	succ := req.Record
	succ.Serie = newSerie
	succ.NItem = newID
	succ.Uso = core.UsoProduccion
	succ.OperadorRegistro = actor
	succ.FechaModificacion = stamp

	merged := core.Upsert(core.Upsert(col, old), succ)

	s.phase(phaseWriting, old.Serie)
	if err := s.writeInventory(ctx, merged, token, "Actualización por lotes (2 items)"); err != nil {
		s.phase(phaseErrored, old.Serie)
		return SaveResult{}, err
	}

	s.phase(phaseLogging, old.Serie)
	events := []core.AuditEvent{
		{
			Usuario: actor,
			Fecha:   stamp,
			Accion:  core.ActionReplace,
			Serie:   old.Serie,
			Detalle: fmt.Sprintf("Equipo reemplazado por: %s", succ.Serie),
		},
		{
			Usuario: actor,
			Fecha:   stamp,
			Accion:  core.ActionReplaceCreate,
			Serie:   succ.Serie,
			Detalle: fmt.Sprintf("Registro creado automáticamente al reemplazar a %s (ID: %s)", old.Serie, newID),
		},
	}
	s.audit.Append(ctx, events...)

	s.phase(phaseDone, old.Serie)
	return SaveResult{Inventory: merged, Active: succ, Events: events}, nil
}

// Audits lists audit events, newest first.
func (s *Service) Audits(ctx context.Context, f Filter) ([]core.AuditEvent, error) {
	return s.audit.List(ctx, f)
}

// fetchInventory reads the inventory document, degrading any transport or
// decode failure to an empty collection without a token. The system must
// stay usable against a fresh or missing store.
func (s *Service) fetchInventory(ctx context.Context) (core.Collection, string) {
	raw, token, err := s.store.Fetch(ctx, s.cfg.InventoryPath)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("inventory_fetch_degraded", "err", err)
		}
		return core.Collection{}, ""
	}
	var col core.Collection
	if err := json.Unmarshal(raw, &col); err != nil {
		s.logger.Warn("inventory_decode_degraded", "err", err)
		return core.Collection{}, ""
	}
	return col, token
}

// writeInventory serializes the whole collection and writes it under the
// fetched token. Under BestEffort a conflict or transport failure is logged
// and treated as success for local-state purposes.
func (s *Service) writeInventory(ctx context.Context, col core.Collection, token, message string) error {
	raw, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return err
	}
	if _, err := s.store.Write(ctx, s.cfg.InventoryPath, raw, token, message); err != nil {
		if s.cfg.Durability == Strict {
			return fmt.Errorf("%w: %v", ErrSync, err)
		}
		s.logger.Warn("inventory_write_degraded", "err", err, "durability", s.cfg.Durability)
	}
	return nil
}

func (s *Service) phase(name, serie string) {
	s.logger.Debug("save_phase", "phase", name, "serie", serie)
}

func detail(changes []core.FieldChange) string {
	parts := make([]string, len(changes))
	for i, ch := range changes {
		parts[i] = fmt.Sprintf("Cambio en %s: '%s' -> '%s'", ch.Field, ch.Before, ch.After)
	}
	return strings.Join(parts, " | ")
}
