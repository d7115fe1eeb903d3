package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Rod1202/print-inv/internal/config"
	"github.com/Rod1202/print-inv/internal/core"
	mongorepo "github.com/Rod1202/print-inv/internal/repo/mongo"
	"github.com/Rod1202/print-inv/internal/seed"
	"github.com/Rod1202/print-inv/internal/service"
	"github.com/Rod1202/print-inv/internal/store/github"
	"github.com/Rod1202/print-inv/pkg/rate"
)

// NewMux wires the document store, the optional audit mirror and the sync
// service behind the HTTP surface.
func NewMux(logger *slog.Logger, cfg *config.Config) (http.Handler, error) {
	inv := cfg.Inventario

	store := github.New(github.Config{
		BaseURL: inv.GitHub.BaseURL,
		Owner:   inv.GitHub.Owner,
		Repo:    inv.GitHub.Repo,
		Token:   inv.GitHub.Token,
		Timeout: inv.GitHub.Timeout,
	})

	var mirror service.Mirror
	if inv.Mongo.URI != "" {
		repo, err := mongorepo.New(context.Background(), mongorepo.Config{
			URI:           inv.Mongo.URI,
			DB:            inv.Mongo.DB,
			Collection:    inv.Mongo.Collection,
			RetentionDays: inv.Mongo.RetentionDays,
		})
		if err != nil {
			return nil, err
		}
		mirror = repo
	}

	audit := service.NewAuditLogger(store, mirror, inv.GitHub.LogPath, logger)
	svc := service.New(store, audit, service.Config{
		InventoryPath: inv.GitHub.InventoryPath,
		Durability:    service.Durability(inv.Durability),
		Users:         cfg.Users(),
		Seed:          seed.Inventory(),
	}, logger)

	sessions := NewSessions()
	loginLimit := rate.New(inv.Auth.LoginRate, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().UTC()})
	})

	mux.Handle("POST /v1/login", withRate(loginLimit, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := readJSON(w, r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		col, err := svc.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			writeErr(w, status(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":     sessions.Issue(in.Username),
			"inventory": col,
		})
	})))

	mux.Handle("GET /v1/inventory", sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		col := svc.Inventory(r.Context())
		if q := r.URL.Query().Get("serie"); q != "" {
			col = col.Search(q)
		}
		if col == nil {
			col = core.Collection{}
		}
		writeJSON(w, http.StatusOK, col)
	})))

	mux.Handle("POST /v1/inventory", sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.SaveRequest
		if err := readJSON(w, r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		out, err := svc.Save(r.Context(), actor(r), req)
		if err != nil {
			writeErr(w, status(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, out)
	})))

	mux.Handle("GET /v1/audits", sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := service.Filter{
			Usuario: q.Get("usuario"),
			Accion:  q.Get("accion"),
			Serie:   q.Get("serie"),
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				f.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				f.Offset = n
			}
		}
		list, err := svc.Audits(r.Context(), f)
		if err != nil {
			writeErr(w, http.StatusBadGateway, "audit_unavailable")
			return
		}
		if list == nil {
			list = []core.AuditEvent{}
		}
		writeJSON(w, http.StatusOK, list)
	})))

	return withRecover(withLogging(logger, mux)), nil
}

func status(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSync):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
