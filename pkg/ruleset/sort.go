// pkg/ruleset/sort.go - key-list renumbering after VirtualStore augmentation.

package ruleset

import (
	"sort"
	"strings"
)

// sortKey maps '|' to a byte that sorts below every other value character,
// so "A|x" < "A|y" but neither interleaves with "B|...": the separator
// breaks ties within a segment instead of comparing like an ordinary
// character would.
func sortKey(v string) string {
	return strings.ReplaceAll(v, "|", "\x00")
}

// Renumber sorts the list's keys ascending by value, pipe-aware. Positional
// names are derived from list order at write time, so sorting is the whole
// of "renumbering": indices always come out as a contiguous 1..N afterward.
func (kl *KeyList) Renumber() {
	if kl == nil || len(kl.Keys) < 2 {
		return
	}
	sort.SliceStable(kl.Keys, func(i, j int) bool {
		return sortKey(kl.Keys[i].Value) < sortKey(kl.Keys[j].Value)
	})
}
