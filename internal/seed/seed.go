// Package seed bundles the fallback inventory used when the remote
// document is empty or unreachable. It keeps local development and demos
// working without a reachable repository; it is not a durable store.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Rod1202/print-inv/internal/core"
)

//go:embed inventario.json
var raw []byte

// Inventory returns a fresh copy of the bundled collection on every call so
// callers may mutate theirs freely.
func Inventory() core.Collection {
	var col core.Collection
	if err := json.Unmarshal(raw, &col); err != nil {
		panic(fmt.Sprintf("seed: bundled inventory is invalid: %v", err))
	}
	return col
}
