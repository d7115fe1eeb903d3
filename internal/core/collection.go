package core

import (
	"strconv"
	"strings"
)

// Collection is the full set of inventory records persisted as one
// document. Order carries no meaning beyond merge stability.
type Collection []Record

// Find returns the record matching serie. Lookup is case-insensitive; the
// stored value keeps whatever casing was last written.
func (c Collection) Find(serie string) (Record, bool) {
	if i := c.index(serie); i >= 0 {
		return c[i], true
	}
	return Record{}, false
}

func (c Collection) index(serie string) int {
	for i := range c {
		if strings.EqualFold(c[i].Serie, serie) {
			return i
		}
	}
	return -1
}

// Search returns the records whose serie contains q, case-insensitively.
// An empty query matches nothing.
func (c Collection) Search(q string) Collection {
	if q == "" {
		return nil
	}
	q = strings.ToLower(q)
	var out Collection
	for _, r := range c {
		if strings.Contains(strings.ToLower(r.Serie), q) {
			out = append(out, r)
		}
	}
	return out
}

// NextItemNumber returns the next store-wide item number as a decimal
// string: one past the largest numeric n_item in the collection. Missing or
// non-numeric values count as 0, so an empty collection yields "1". Retired
// numbers are never reused.
func NextItemNumber(c Collection) string {
	max := 0
	for _, r := range c {
		if n, err := strconv.Atoi(r.NItem); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// Upsert merges r into c by serie and returns the next collection state.
// A matching record is replaced in place by the merge of r over it; with no
// match, r is appended. The input slice is never modified, so a batch can be
// applied sequentially with each step seeing the previous one's insertion.
func Upsert(c Collection, r Record) Collection {
	out := make(Collection, len(c))
	copy(out, c)
	if i := out.index(r.Serie); i >= 0 {
		out[i] = merge(out[i], r)
		return out
	}
	return append(out, r)
}

// merge lays the incoming record over the existing one. The incoming side
// wins wholesale except n_item, which sticks to the value assigned at
// creation when the incoming form left it blank.
func merge(existing, incoming Record) Record {
	out := incoming
	if out.NItem == "" {
		out.NItem = existing.NItem
	}
	return out
}
