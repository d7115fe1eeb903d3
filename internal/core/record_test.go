package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffReportsChangedFields(t *testing.T) {
	before := Record{Serie: "A1", Modelo: "M428fdw", IP: "10.0.0.1"}
	after := Record{Serie: "A1", Modelo: "E52645dn", IP: "10.0.0.2"}

	changes := Diff(before, after)

	require.Len(t, changes, 2)
	assert.Equal(t, FieldChange{Field: "modelo", Before: "M428fdw", After: "E52645dn"}, changes[0])
	assert.Equal(t, FieldChange{Field: "ip", Before: "10.0.0.1", After: "10.0.0.2"}, changes[1])
}

func TestDiffIgnoresAuditMetadata(t *testing.T) {
	before := Record{Serie: "A1", OperadorRegistro: "ana", FechaModificacion: "01/01/2025 10:00:00"}
	after := Record{Serie: "A1", OperadorRegistro: "luis", FechaModificacion: "02/02/2025 11:00:00"}

	assert.Empty(t, Diff(before, after))
}

func TestDiffIdenticalRecords(t *testing.T) {
	r := Record{Serie: "A1", NItem: "3", Uso: UsoProduccion}
	assert.Empty(t, Diff(r, r))
}
