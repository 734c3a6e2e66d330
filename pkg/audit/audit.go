// pkg/audit/audit.go - combines an entry's detection clauses into a single
// retain/discard decision, per spec.md §4.4's seven-rule precedence.

package audit

import (
	"github.com/windowsadmins/winapp2trim/pkg/criteria"
	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/logging"
	"github.com/windowsadmins/winapp2trim/pkg/ruleset"
)

// Sets bundles the include/exclude override lists and their activation
// flags, loaded once by the driver and read-only for the rest of the run.
type Sets struct {
	UseIncludes bool
	Includes    map[string]struct{}
	UseExcludes bool
	Excludes    map[string]struct{}
}

func (s Sets) included(name string) bool {
	if !s.UseIncludes || s.Includes == nil {
		return false
	}
	_, ok := s.Includes[name]
	return ok
}

func (s Sets) excluded(name string) bool {
	if !s.UseExcludes || s.Excludes == nil {
		return false
	}
	_, ok := s.Excludes[name]
	return ok
}

// Retain decides whether entry should survive the trim, applying spec.md
// §4.4's rules in order:
//
//  1. UseIncludes and the includes set names this entry  -> retain
//  2. UseExcludes and the excludes set names this entry  -> discard
//  3. DetectOS is declared and evaluates false            -> discard
//  4. Detects, DetectFiles, or SpecialDetect evaluates true -> retain
//  5. only DetectOS is declared (and it was satisfied)    -> retain
//  6. no detection clauses at all                          -> retain
//  7. otherwise                                             -> discard
//
// Every recovered warning encountered while evaluating (a malformed %VAR%
// reference) is logged before Retain returns.
func Retain(entry *ruleset.Entry, probe *hostprobe.Probe, sets Sets) bool {
	if sets.included(entry.Name) {
		logging.Debug("retained by includes override", "entry", entry.Name)
		return true
	}
	if sets.excluded(entry.Name) {
		logging.Debug("discarded by excludes override", "entry", entry.Name)
		return false
	}

	osDeclared := entry.DetectOS.Len() > 0
	var osOK bool
	if osDeclared {
		osOK, _ = criteria.Evaluate(ruleset.RoleDetectOS, &entry.DetectOS, probe)
		if !osOK {
			logging.Debug("discarded: DetectOS unsatisfied", "entry", entry.Name)
			return false
		}
	}

	detectsOK, w1 := criteria.Evaluate(ruleset.RoleDetects, &entry.Detects, probe)
	filesOK, w2 := criteria.Evaluate(ruleset.RoleDetectFiles, &entry.DetectFiles, probe)
	specialOK, w3 := criteria.Evaluate(ruleset.RoleSpecialDetect, &entry.SpecialDetect, probe)
	logWarnings(entry.Name, w1, w2, w3)

	if detectsOK || filesOK || specialOK {
		logging.Debug("retained: detection criterion matched", "entry", entry.Name)
		return true
	}

	hasOtherClauses := entry.Detects.Len() > 0 || entry.DetectFiles.Len() > 0 || entry.SpecialDetect.Len() > 0
	if osDeclared && !hasOtherClauses {
		logging.Debug("retained: DetectOS-only entry satisfied", "entry", entry.Name)
		return true
	}
	if !entry.HasDetectionClauses() {
		logging.Debug("retained: no detection clauses declared", "entry", entry.Name)
		return true
	}

	logging.Debug("discarded: no detection criterion matched", "entry", entry.Name)
	return false
}

func logWarnings(entryName string, groups ...[]criteria.Warning) {
	for _, g := range groups {
		for _, w := range g {
			logging.Warn("malformed variable reference, retaining entry", "entry", entryName, "value", w.Value, "detail", w.Message)
		}
	}
}
