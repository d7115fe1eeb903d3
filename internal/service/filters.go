package service

import (
	"strings"

	"github.com/Rod1202/print-inv/internal/core"
)

// Filter narrows audit event listings.
type Filter struct {
	Usuario string
	Accion  string
	Serie   string
	Limit   int
	Offset  int
}

// Normalize applies sane defaults and bounds
func (f *Filter) Normalize() {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func (f Filter) matches(e core.AuditEvent) bool {
	if f.Usuario != "" && e.Usuario != f.Usuario {
		return false
	}
	if f.Accion != "" && string(e.Accion) != f.Accion {
		return false
	}
	if f.Serie != "" && !strings.EqualFold(e.Serie, f.Serie) {
		return false
	}
	return true
}
