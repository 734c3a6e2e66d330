// pkg/pathresolver/resolver.go - expands %VAR% placeholders and *
// wildcards in a raw detection value into a boolean "something matching
// this exists on the host."

package pathresolver

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
)

// Resolve expands raw and reports whether the expansion exists on the
// host. The returned error is non-nil only when raw's leading %VAR%
// reference is malformed (no closing '%') or unresolved (see expandVars);
// the criterion evaluator must then retain the owning entry rather than
// treat this as a miss.
func Resolve(raw string, probe *hostprobe.Probe) (bool, error) {
	expanded, err := expandVars(raw, probe)
	if err != nil {
		return false, err
	}

	if exists(expanded, probe) {
		return true, nil
	}

	// spec.md §4.2: a %ProgramFiles% value that misses is retried once
	// against %ProgramFiles(x86)%.
	if strings.Contains(raw, "%ProgramFiles%") {
		alt := strings.Replace(raw, "%ProgramFiles%", "%ProgramFiles(x86)%", 1)
		altExpanded, err := expandVars(alt, probe)
		if err == nil && exists(altExpanded, probe) {
			return true, nil
		}
	}
	return false, nil
}

// expandVars substitutes the single leading %VAR% placeholder in raw, if
// any, and returns the result unchanged otherwise. Only the first
// placeholder is resolved: whatever the substitution produces is not
// itself re-scanned for further '%' expansion (spec.md §9).
//
// An unresolved placeholder — either a missing closing '%', or a name
// outside the known pseudo-variable vocabulary whose host environment
// variable isn't set — is reported as an error. The criterion evaluator
// treats both the same way: the owning entry is retained with a warning
// rather than silently discarded because a detector value happened to be
// broken (spec.md §7, §8 scenario 7).
func expandVars(raw string, probe *hostprobe.Probe) (string, error) {
	if !strings.HasPrefix(raw, "%") {
		return raw, nil
	}

	parts := strings.SplitN(raw, "%", 3)
	if len(parts) < 3 {
		return "", fmt.Errorf("pathresolver: malformed variable reference %q", raw)
	}

	name, rest := parts[1], parts[2]
	value, ok := lookupVar(name, probe)
	if !ok {
		return "", fmt.Errorf("pathresolver: unresolved variable %%%s%% in %q", name, raw)
	}
	return value + rest, nil
}

// lookupVar resolves a single %NAME% placeholder's bare name to its
// substitution value, per the table in spec.md §4.2. ok is false only for
// the "any other %X%" fallback: a name outside the known pseudo-variable
// vocabulary whose host environment variable is unset. A known
// pseudo-variable is always ok, even if the underlying environment
// variable it's built from happens to be empty.
func lookupVar(name string, probe *hostprobe.Probe) (string, bool) {
	userProfile := os.Getenv("UserProfile")
	xp := isXP(probe)

	switch name {
	case "ProgramFiles":
		return os.Getenv("ProgramFiles"), true
	case "Documents":
		if xp {
			return join(userProfile, "My Documents"), true
		}
		return join(userProfile, "Documents"), true
	case "CommonAppData":
		allUsers := os.Getenv("AllUsersProfile")
		if xp {
			return join(allUsers, "Application Data") + `\`, true
		}
		return strings.TrimRight(allUsers, `\`) + `\`, true
	case "LocalLowAppData":
		local := os.Getenv("LocalAppData")
		return replaceTrailingLocal(local), true
	case "Pictures":
		if xp {
			return join(join(userProfile, "My Documents"), "My Pictures"), true
		}
		return join(userProfile, "Pictures"), true
	case "Music":
		if xp {
			return join(join(userProfile, "My Documents"), "My Music"), true
		}
		return join(userProfile, "Music"), true
	case "Video":
		if xp {
			return join(join(userProfile, "My Documents"), "My Videos"), true
		}
		return join(userProfile, "Videos"), true
	default:
		v := os.Getenv(name)
		return v, v != ""
	}
}

// isXP reports whether the host's OS version places it in the Windows
// XP/Server 2003 family (5.1 or 5.2), the branch point spec.md §4.2's
// variable table hinges on.
func isXP(probe *hostprobe.Probe) bool {
	v := probe.OSVersion()
	return v == 5.1 || v == 5.2
}

// join concatenates a directory and a child name with exactly one
// backslash between them.
func join(dir, child string) string {
	return strings.TrimRight(dir, `\`) + `\` + child
}

// replaceTrailingLocal rewrites a path's final "Local" path component to
// "LocalLow", the substitution %LocalLowAppData% specifies over
// %LocalAppData%'s value.
func replaceTrailingLocal(path string) string {
	trimmed := strings.TrimRight(path, `\`)
	idx := strings.LastIndex(trimmed, `\`)
	if idx < 0 {
		return trimmed
	}
	last := trimmed[idx+1:]
	if !strings.EqualFold(last, "Local") {
		return trimmed
	}
	return trimmed[:idx+1] + "LocalLow"
}

// exists reports whether path — after variable expansion, before this
// call — resolves to something present on the host, expanding any '*'
// wildcard segments along the way.
func exists(path string, probe *hostprobe.Probe) bool {
	if !strings.Contains(path, "*") {
		return probe.PathExists(path)
	}
	return wildcardExists(path, probe)
}

// wildcardExists implements spec.md §4.2's segment-by-segment wildcard
// expansion: a working set of real prefixes is narrowed (literal
// segments) or fanned out (wildcard segments) until every path segment
// has been consumed.
func wildcardExists(path string, probe *hostprobe.Probe) bool {
	segments := strings.Split(path, `\`)
	if len(segments) == 0 {
		return false
	}

	working := []string{segments[0]}
	for i := 1; i < len(segments); i++ {
		if len(working) == 0 {
			return false
		}
		seg := segments[i]
		last := i == len(segments)-1

		next, hit := advance(working, seg, last, probe)
		if hit {
			return true
		}
		working = next
		if len(working) == 0 {
			return false
		}
	}

	for _, p := range working {
		if probe.PathExists(p) {
			return true
		}
	}
	return false
}

// advance applies one path segment to every prefix in the working set.
// hit reports a definitive existence match discovered mid-expansion (an
// UnauthorizedAccess enumerating a wildcard directory, spec.md §4.2 step
// 4) that short-circuits the rest of the scan.
func advance(prefixes []string, seg string, last bool, probe *hostprobe.Probe) (next []string, hit bool) {
	if !strings.Contains(seg, "*") {
		for _, p := range prefixes {
			candidate := p + `\` + seg
			if last {
				// The final segment may be a file; deciding "exists" is
				// deferred to the caller's post-loop check.
				next = append(next, candidate)
				continue
			}
			isDir, permissionDenied := probe.DirExists(candidate)
			if permissionDenied {
				return nil, true
			}
			if isDir {
				next = append(next, candidate)
			}
		}
		return next, false
	}

	re := wildcardRegexp(seg)
	for _, p := range prefixes {
		entries, err := os.ReadDir(p)
		if err != nil {
			if hostprobe.IsPermissionDenied(err) {
				return nil, true
			}
			// Missing directory or illegal characters (ArgumentException
			// in the reference tool): this prefix contributes nothing.
			continue
		}
		for _, e := range entries {
			if re.MatchString(e.Name()) {
				next = append(next, p+`\`+e.Name())
			}
		}
	}
	return next, false
}

// wildcardRegexp compiles a shell-style '*' pattern into a case-insensitive
// anchored regular expression matching a single path segment name.
func wildcardRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	expr := "(?i)^" + strings.Join(quoted, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return regexp.MustCompile(`^\x00$`) // matches nothing
	}
	return re
}
