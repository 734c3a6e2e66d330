// pkg/criteria/criteria.go - evaluates one detection clause (a role-tagged
// key list) against the host, using the path resolver and host probe.

package criteria

import (
	"math"
	"strconv"
	"strings"

	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/logging"
	"github.com/windowsadmins/winapp2trim/pkg/pathresolver"
	"github.com/windowsadmins/winapp2trim/pkg/ruleset"
)

// Warning describes a recovered, non-fatal problem encountered while
// evaluating a key list — currently only a malformed or unresolved %VAR%
// reference.
type Warning struct {
	Value   string
	Message string
}

// Evaluate returns true iff any key in list satisfies role's predicate.
// The role is passed explicitly rather than read off list.Role, since an
// entry that declares no keys for a role never sets it on the (empty)
// KeyList. An empty key list always evaluates false. A malformed %VAR%
// reference in a DetectFiles or SpecialDetect value counts as a match
// (spec.md §7: the owning entry must be retained, not silently dropped)
// and is reported back as a Warning for the caller to log.
func Evaluate(role ruleset.Role, list *ruleset.KeyList, probe *hostprobe.Probe) (bool, []Warning) {
	switch role {
	case ruleset.RoleDetectOS:
		return evaluateDetectOS(list, probe), nil
	case ruleset.RoleDetects:
		return evaluateDetects(list, probe), nil
	case ruleset.RoleDetectFiles:
		return evaluateDetectFiles(list, probe)
	case ruleset.RoleSpecialDetect:
		return evaluateSpecialDetect(list, probe)
	default:
		return false, nil
	}
}

// evaluateDetectOS implements the "|V", "V|", "V1|V2" mini-language: the
// missing side of the pipe means "unbounded" in that direction. A bound
// that is present but not a valid decimal parses as 0.
func evaluateDetectOS(list *ruleset.KeyList, probe *hostprobe.Probe) bool {
	for _, k := range list.Keys {
		lower, upper := parseOSRange(k.Value)
		host := probe.OSVersion()
		if host >= lower && host <= upper {
			return true
		}
	}
	return false
}

func parseOSRange(value string) (lower, upper float64) {
	before, after, _ := strings.Cut(value, "|")
	lower = math.Inf(-1)
	upper = math.Inf(1)
	if before != "" {
		lower = parseDecimal(before)
	}
	if after != "" {
		upper = parseDecimal(after)
	}
	return lower, upper
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func evaluateDetects(list *ruleset.KeyList, probe *hostprobe.Probe) bool {
	for _, k := range list.Keys {
		if probe.RegExists(k.Value) {
			return true
		}
	}
	return false
}

func evaluateDetectFiles(list *ruleset.KeyList, probe *hostprobe.Probe) (bool, []Warning) {
	for _, k := range list.Keys {
		ok, err := pathresolver.Resolve(k.Value, probe)
		if err != nil {
			return true, []Warning{{Value: k.Value, Message: err.Error()}}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// chromeTargets is the authoritative DET_CHROME detection list from
// spec.md §6: a mix of file paths (resolved through pkg/pathresolver) and
// registry keys (checked directly against the probe).
var chromeTargets = []string{
	`%AppData%\ChromePlus\chrome.exe`,
	`%LocalAppData%\Chromium\Application\chrome.exe`,
	`%LocalAppData%\Chromium\chrome.exe`,
	`%LocalAppData%\Flock\Application\flock.exe`,
	`%LocalAppData%\Google\Chrome SxS\Application\chrome.exe`,
	`%LocalAppData%\Google\Chrome\Application\chrome.exe`,
	`%LocalAppData%\RockMelt\Application\rockmelt.exe`,
	`%LocalAppData%\SRWare Iron\iron.exe`,
	`%ProgramFiles%\Chromium\Application\chrome.exe`,
	`%ProgramFiles%\SRWare Iron\iron.exe`,
	`%ProgramFiles%\Chromium\chrome.exe`,
	`%ProgramFiles%\Flock\Application\flock.exe`,
	`%ProgramFiles%\Google\Chrome SxS\Application\chrome.exe`,
	`%ProgramFiles%\Google\Chrome\Application\chrome.exe`,
	`%ProgramFiles%\RockMelt\Application\rockmelt.exe`,
	`HKCU\Software\Chromium`,
	`HKCU\Software\SuperBird`,
	`HKCU\Software\Torch`,
	`HKCU\Software\Vivaldi`,
}

func evaluateSpecialDetect(list *ruleset.KeyList, probe *hostprobe.Probe) (bool, []Warning) {
	for _, k := range list.Keys {
		if ok, w := evaluateSpecialTag(k.Value, probe); ok {
			return true, w
		}
	}
	return false, nil
}

func evaluateSpecialTag(tag string, probe *hostprobe.Probe) (bool, []Warning) {
	switch tag {
	case "DET_CHROME":
		return probeAny(chromeTargets, probe)
	case "DET_MOZILLA":
		return probeAny([]string{`%AppData%\Mozilla\Firefox`}, probe)
	case "DET_THUNDERBIRD":
		return probeAny([]string{`%AppData%\Thunderbird`}, probe)
	case "DET_OPERA":
		return probeAny([]string{`%AppData%\Opera Software`}, probe)
	default:
		logging.Debug("unknown SpecialDetect tag", "tag", tag)
		return false, nil
	}
}

// probeAny checks a fixed target list, routing registry keys straight to
// the probe and everything else through the path resolver.
func probeAny(targets []string, probe *hostprobe.Probe) (bool, []Warning) {
	for _, t := range targets {
		if strings.HasPrefix(t, "HK") {
			if probe.RegExists(t) {
				return true, nil
			}
			continue
		}
		ok, err := pathresolver.Resolve(t, probe)
		if err != nil {
			return true, []Warning{{Value: t, Message: err.Error()}}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
