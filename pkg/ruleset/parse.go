// pkg/ruleset/parse.go - loads a winapp2.ini-style file into the Entry/KeyList model.

package ruleset

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

var positionalSuffix = regexp.MustCompile(`^[0-9]+$`)

// rolePrefixOrder must be checked in this order: DetectFile and DetectOS
// both start with "Detect", so the longer, more specific prefixes have to be
// tried before the bare "Detect" registry-detection prefix.
var rolePrefixOrder = []Role{
	RoleDetectOS,
	RoleDetectFiles,
	RoleSpecialDetect,
	RoleDetects,
	RoleFileKeys,
	RoleRegKeys,
	RoleExcludeKeys,
}

// classify reports the role a raw key name belongs to. The name must be a
// role prefix alone or a role prefix followed by a positional number; any
// other name reports false.
func classify(name string) (Role, bool) {
	for _, role := range rolePrefixOrder {
		prefix := role.prefix()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		if rest == "" || positionalSuffix.MatchString(rest) {
			return role, true
		}
	}
	return "", false
}

// Load reads an INI file at path and returns its parsed Ruleset.
//
// An empty file (no sections at all) is reported as an error so the driver
// can decline to run per the documented empty-input policy.
func Load(path string) (*Ruleset, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:    true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("loading ruleset %s: %w", path, err)
	}
	return fromFile(f)
}

func fromFile(f *ini.File) (*Ruleset, error) {
	rs := &Ruleset{}

	for _, sec := range f.Sections() {
		// go-ini always has an implicit "DEFAULT" section; skip it unless it
		// actually carries keys (an empty winapp2.ini has only DEFAULT).
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}

		entry := &Entry{Name: sec.Name()}
		seen := map[Role]bool{}

		for _, k := range sec.Keys() {
			role, ok := classify(k.Name())
			if !ok {
				entry.blocks = append(entry.blocks, block{kind: blockExtra, extra: extraKey{Name: k.Name(), Value: k.Value()}})
				continue
			}
			list := entry.List(role)
			list.Role = role
			list.Keys = append(list.Keys, Key{Value: k.Value()})
			if !seen[role] {
				seen[role] = true
				entry.blocks = append(entry.blocks, block{kind: blockRole, role: role})
			}
		}

		rs.Entries = append(rs.Entries, entry)
	}

	if len(rs.Entries) == 0 {
		return nil, ErrEmptyRuleset
	}
	return rs, nil
}

// LoadAuxSet reads an includes.ini/excludes.ini style file and returns the
// set of section names it declares. Key contents are irrelevant; only
// section names matter for include/exclude overrides.
func LoadAuxSet(path string) (map[string]struct{}, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading auxiliary set %s: %w", path, err)
	}
	set := make(map[string]struct{})
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		set[sec.Name()] = struct{}{}
	}
	return set, nil
}
