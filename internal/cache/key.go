package cache

import (
	"fmt"
	"strings"
)

const keyNamespace = "names"

// Key derives the deterministic cache key for a variant query. The name is
// normalized (trim + lowercase) so queries differing only in casing or
// surrounding whitespace share an entry; the model and API version tags keep
// entries from one model generation from being served after an upgrade.
func Key(modelID, apiVersion, name string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return fmt.Sprintf("%s:%s:%s:%s:%d", keyNamespace, modelID, apiVersion, normalized, limit)
}
