package graph

import (
	"strings"
	"sync"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// branch key canonicalization is a registry of aliases so new handle
// vocabularies are a registration, not a conditional

var (
	aliasMu sync.RWMutex
	aliases = map[string]node.BranchKey{
		"":      node.BranchDefault,
		"yes":   node.BranchYes,
		"no":    node.BranchNo,
		"true":  node.BranchYes,
		"false": node.BranchNo,
	}
)

// RegisterBranchAlias maps a source-handle value onto a canonical key
func RegisterBranchAlias(handle string, key node.BranchKey) {
	aliasMu.Lock()
	defer aliasMu.Unlock()
	aliases[strings.ToLower(strings.TrimSpace(handle))] = key
}

// NormalizeBranch canonicalizes a source-handle value: nil/empty maps to
// default, known aliases map to their key, anything else is lowercased.
// Idempotent: normalizing a canonical key returns it unchanged.
func NormalizeBranch(handle *string) node.BranchKey {
	if handle == nil {
		return node.BranchDefault
	}
	lowered := strings.ToLower(strings.TrimSpace(*handle))

	aliasMu.RLock()
	key, ok := aliases[lowered]
	aliasMu.RUnlock()
	if ok {
		return key
	}
	return node.BranchKey(lowered)
}
