package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Collection {
	return Collection{
		{Serie: "A1", NItem: "3", Uso: UsoProduccion, Modelo: "M428fdw"},
		{Serie: "B7", NItem: "7", Uso: UsoBackup, Modelo: "fi-7160"},
	}
}

func TestNextItemNumber(t *testing.T) {
	assert.Equal(t, "1", NextItemNumber(Collection{}))
	assert.Equal(t, "8", NextItemNumber(sample()))

	// non-numeric and missing values count as zero
	c := Collection{{Serie: "X", NItem: "abc"}, {Serie: "Y"}, {Serie: "Z", NItem: "2"}}
	assert.Equal(t, "3", NextItemNumber(c))
}

func TestNextItemNumberStrictlyGreater(t *testing.T) {
	c := sample()
	next := NextItemNumber(c)
	for _, r := range c {
		assert.NotEqual(t, r.NItem, next)
	}
}

func TestUpsertAppendsUnknownSerial(t *testing.T) {
	c := sample()
	r := Record{Serie: "C9", NItem: "8"}

	out := Upsert(c, r)

	require.Len(t, out, 3)
	assert.Equal(t, c[0], out[0])
	assert.Equal(t, c[1], out[1])
	assert.Equal(t, r, out[2])
	// the input collection is never touched
	require.Len(t, c, 2)
}

func TestUpsertReplacesMatchInPlace(t *testing.T) {
	c := sample()
	r := Record{Serie: "A1", NItem: "3", Uso: UsoRetiro, Modelo: "M428fdw"}

	out := Upsert(c, r)

	require.Len(t, out, 2)
	assert.Equal(t, UsoRetiro, out[0].Uso)
	assert.Equal(t, c[1], out[1])
}

func TestUpsertMatchesCaseInsensitively(t *testing.T) {
	out := Upsert(sample(), Record{Serie: "a1", NItem: "3", Uso: UsoCustodia})

	require.Len(t, out, 2)
	// incoming casing wins on the stored value
	assert.Equal(t, "a1", out[0].Serie)
	assert.Equal(t, UsoCustodia, out[0].Uso)
}

func TestUpsertKeepsItemNumberWhenIncomingBlank(t *testing.T) {
	out := Upsert(sample(), Record{Serie: "A1", Uso: UsoProduccion})

	assert.Equal(t, "3", out[0].NItem)
}

func TestUpsertSequentialBatch(t *testing.T) {
	// a later record in the same batch sees the earlier insertion
	c := Collection{}
	c = Upsert(c, Record{Serie: "A1", NItem: "1"})
	c = Upsert(c, Record{Serie: "A1", NItem: "1", Uso: UsoReemplazo})
	c = Upsert(c, Record{Serie: "B2", NItem: "2"})

	require.Len(t, c, 2)
	assert.Equal(t, UsoReemplazo, c[0].Uso)
	assert.Equal(t, "B2", c[1].Serie)
}

func TestFind(t *testing.T) {
	c := sample()

	r, ok := c.Find("b7")
	require.True(t, ok)
	assert.Equal(t, "B7", r.Serie)

	_, ok = c.Find("nope")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	c := Collection{{Serie: "VNB3K05677"}, {Serie: "CNBJQ8C2QZ"}, {Serie: "X5T2019044"}}

	assert.Len(t, c.Search("nb"), 2)
	assert.Len(t, c.Search("x5t"), 1)
	assert.Empty(t, c.Search("zzz"))
	assert.Empty(t, c.Search(""))
}
