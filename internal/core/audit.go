package core

// Action identifies the kind of change an audit event records.
type Action string

const (
	ActionCreate        Action = "Creación"
	ActionEdit          Action = "Edición"
	ActionReplace       Action = "Reemplazo"
	ActionReplaceCreate Action = "Creación (Reemplazo)"
)

// AuditEvent is one immutable entry in the append-only change log. Events
// are stored newest-first in their own document, independent of the
// inventory collection.
type AuditEvent struct {
	Usuario string `json:"usuario"`
	Fecha   string `json:"fecha"`
	Accion  Action `json:"accion"`
	Serie   string `json:"serie"`
	Detalle string `json:"detalle"`
}
