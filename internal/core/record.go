package core

// TimeLayout is the stamp written into fecha_modificacion and audit events.
const TimeLayout = "02/01/2006 15:04:05"

// Uso values recognized by the registration flow. UsoReemplazo triggers the
// replacement workflow; UsoProduccion is the state assigned to a successor
// record.
const (
	UsoProduccion   = "Produccion"
	UsoBackup       = "Backup"
	UsoReemplazo    = "Reemplazo"
	UsoRetiro       = "Retiro"
	UsoCustodia     = "Custodia"
	UsoContingencia = "Contingencia"
)

// Record is one inventoried device. Serie is the natural key of a
// Collection; NItem is a store-wide incrementing id assigned once at
// creation and never reassigned. OperadorRegistro and FechaModificacion are
// audit metadata stamped by the service, not user input.
type Record struct {
	Serie         string `json:"serie"          validate:"required"`
	NItem         string `json:"n_item"`
	Operador      string `json:"operador"`
	UnidadNegocio string `json:"unidad_negocio"`
	Zona          string `json:"zona"`
	Provincia     string `json:"provincia"`
	Distrito      string `json:"distrito"`
	Direccion     string `json:"direccion"`
	Sede          string `json:"sede"`
	Piso          string `json:"piso"`
	Area          string `json:"area"`
	Subarea       string `json:"subarea"`
	Categoria     string `json:"categoria"`
	Tecnologia    string `json:"tecnologia"`
	Marca         string `json:"marca"`
	Color         string `json:"color"`
	Modelo        string `json:"modelo"`
	Uso           string `json:"uso"`
	Criticidad    string `json:"criticidad"`
	IP            string `json:"ip"             validate:"omitempty,ip"`
	PrintServer   string `json:"print_server"`
	Servicio      string `json:"servicio"`

	OperadorRegistro  string `json:"operador_registro,omitempty"`
	FechaModificacion string `json:"fecha_modificacion,omitempty"`
}

// FieldChange is one field-level difference between two revisions of a
// record.
type FieldChange struct {
	Field  string
	Before string
	After  string
}

// fields enumerates every diffable field. Audit metadata is deliberately
// absent so re-stamping a record never counts as a semantic change.
var fields = []struct {
	name string
	get  func(*Record) string
}{
	{"serie", func(r *Record) string { return r.Serie }},
	{"n_item", func(r *Record) string { return r.NItem }},
	{"operador", func(r *Record) string { return r.Operador }},
	{"unidad_negocio", func(r *Record) string { return r.UnidadNegocio }},
	{"zona", func(r *Record) string { return r.Zona }},
	{"provincia", func(r *Record) string { return r.Provincia }},
	{"distrito", func(r *Record) string { return r.Distrito }},
	{"direccion", func(r *Record) string { return r.Direccion }},
	{"sede", func(r *Record) string { return r.Sede }},
	{"piso", func(r *Record) string { return r.Piso }},
	{"area", func(r *Record) string { return r.Area }},
	{"subarea", func(r *Record) string { return r.Subarea }},
	{"categoria", func(r *Record) string { return r.Categoria }},
	{"tecnologia", func(r *Record) string { return r.Tecnologia }},
	{"marca", func(r *Record) string { return r.Marca }},
	{"color", func(r *Record) string { return r.Color }},
	{"modelo", func(r *Record) string { return r.Modelo }},
	{"uso", func(r *Record) string { return r.Uso }},
	{"criticidad", func(r *Record) string { return r.Criticidad }},
	{"ip", func(r *Record) string { return r.IP }},
	{"print_server", func(r *Record) string { return r.PrintServer }},
	{"servicio", func(r *Record) string { return r.Servicio }},
}

// Diff compares two revisions of a record field by field. An empty result
// means the change is not semantic and no audit event is owed.
func Diff(before, after Record) []FieldChange {
	var out []FieldChange
	for _, f := range fields {
		b, a := f.get(&before), f.get(&after)
		if b != a {
			out = append(out, FieldChange{Field: f.name, Before: b, After: a})
		}
	}
	return out
}
