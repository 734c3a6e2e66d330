// pkg/ruleset/write.go - serializes a Ruleset back to the winapp2.ini dialect.

package ruleset

import (
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"
)

// isUnnumbered reports whether role is written as a bare key ("DetectOS",
// "SpecialDetect") rather than a positional one ("FileKey1", "FileKey2", ...)
// in the winapp2.ini dialect. classify() in parse.go already accepts both a
// bare and a positional form for every role, so a bare key round-trips
// correctly either way; this only controls the shape Save emits.
func isUnnumbered(role Role) bool {
	return role == RoleDetectOS || role == RoleSpecialDetect
}

// Save writes the ruleset to path, preserving entry order and each entry's
// original key layout except for role blocks, which are re-emitted in their
// list's current (possibly re-sorted) order.
func (rs *Ruleset) Save(path string) error {
	f := ini.Empty(ini.LoadOptions{})

	for _, entry := range rs.Entries {
		sec, err := f.NewSection(entry.Name)
		if err != nil {
			return fmt.Errorf("writing section %s: %w", entry.Name, err)
		}

		for _, b := range entry.blocks {
			switch b.kind {
			case blockExtra:
				if _, err := sec.NewKey(b.extra.Name, b.extra.Value); err != nil {
					return fmt.Errorf("writing key %s in %s: %w", b.extra.Name, entry.Name, err)
				}
			case blockRole:
				list := entry.List(b.role)
				prefix := b.role.prefix()
				for i, k := range list.Keys {
					name := prefix
					if !isUnnumbered(b.role) || len(list.Keys) > 1 {
						name = prefix + strconv.Itoa(i+1)
					}
					if _, err := sec.NewKey(name, k.Value); err != nil {
						return fmt.Errorf("writing key %s in %s: %w", name, entry.Name, err)
					}
				}
			}
		}
	}

	ini.PrettyFormat = false
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("saving ruleset %s: %w", path, err)
	}
	return nil
}
