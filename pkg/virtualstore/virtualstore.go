// pkg/virtualstore/virtualstore.go - synthesizes VirtualStore-mirror keys
// for a retained entry's FileKeys, ExcludeKeys, and RegKeys, per spec.md
// §4.5. The augmenter only ever adds keys; it makes no retain/discard
// decisions.

package virtualstore

import (
	"strings"

	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/pathresolver"
	"github.com/windowsadmins/winapp2trim/pkg/ruleset"
)

// row is one substitution rule mapping a source prefix to its
// VirtualStore-mirror prefix.
type row struct {
	from            string
	to              string
	caseInsensitive bool
}

// fileRows applies to FileKeys and ExcludeKeys.
var fileRows = []row{
	{from: `%ProgramFiles%`, to: `%LocalAppData%\VirtualStore\Program Files*`},
	{from: `%CommonAppData%`, to: `%LocalAppData%\VirtualStore\ProgramData`},
	{from: `%CommonProgramFiles%`, to: `%LocalAppData%\VirtualStore\Program Files*\Common Files`},
	{from: `HKLM\Software`, to: `HKCU\Software\Classes\VirtualStore\MACHINE\SOFTWARE`, caseInsensitive: true},
}

// regRows applies to RegKeys: only the HKLM\Software row is relevant to a
// registry-rooted value.
var regRows = fileRows[3:4]

// Augment mutates entry in place, appending any VirtualStore-mirror keys
// that exist on the host to FileKeys, ExcludeKeys, and RegKeys. Applying
// Augment twice is a no-op the second time: every candidate it would add
// is already present, so the duplicate-detection set rejects it.
func Augment(entry *ruleset.Entry, probe *hostprobe.Probe) {
	augmentList(entry, ruleset.RoleFileKeys, &entry.FileKeys, fileRows, probe)
	augmentList(entry, ruleset.RoleExcludeKeys, &entry.ExcludeKeys, fileRows, probe)
	augmentList(entry, ruleset.RoleRegKeys, &entry.RegKeys, regRows, probe)
}

func augmentList(entry *ruleset.Entry, role ruleset.Role, list *ruleset.KeyList, rows []row, probe *hostprobe.Probe) {
	if list.Len() == 0 {
		return
	}

	seen := make(map[string]struct{}, list.Len())
	for _, k := range list.Keys {
		seen[k.Value] = struct{}{}
	}

	// Snapshot before mutation: newly appended candidates must never seed
	// further candidates within the same pass.
	original := append([]ruleset.Key(nil), list.Keys...)

	added := false
	for _, k := range original {
		for _, r := range rows {
			candidate, ok := substitute(k.Value, r)
			if !ok || candidate == k.Value {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			if !probeCandidate(candidate, probe) {
				continue
			}
			entry.AppendKey(role, candidate)
			seen[candidate] = struct{}{}
			added = true
		}
	}

	if added {
		list.Renumber()
	}
}

// substitute replaces r.from with r.to in value, once, reporting whether
// the prefix was present at all.
func substitute(value string, r row) (string, bool) {
	if r.caseInsensitive {
		idx := strings.Index(strings.ToUpper(value), strings.ToUpper(r.from))
		if idx < 0 {
			return "", false
		}
		return value[:idx] + r.to + value[idx+len(r.from):], true
	}
	if !strings.Contains(value, r.from) {
		return "", false
	}
	return strings.Replace(value, r.from, r.to, 1), true
}

// probeCandidate checks whether a synthesized value exists on the host,
// dispatching to the registry probe or the path resolver (which handles
// the %LocalAppData% expansion and the "Program Files*" wildcard the file
// rows introduce).
func probeCandidate(value string, probe *hostprobe.Probe) bool {
	if strings.HasPrefix(value, "HK") {
		return probe.RegExists(value)
	}
	ok, err := pathresolver.Resolve(value, probe)
	if err != nil {
		return false
	}
	return ok
}
