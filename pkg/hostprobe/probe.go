// pkg/hostprobe/probe.go - answers "does this path or registry key exist on
// this machine", the lowest-level collaborator for detection criteria.
//
// Unauthorized access to a filesystem or registry location is treated as
// evidence the target exists: a cleanup rule that can't be confirmed absent
// must not be trimmed out from under a user who simply lacks read rights.

package hostprobe

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"
	"github.com/windowsadmins/winapp2trim/pkg/logging"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// Probe is a cached view onto the local machine's filesystem, registry, and
// OS version. Safe for concurrent use; the OS-version cache is written once.
type Probe struct {
	osVersionOnce sync.Once
	osVersion     float64
}

// New returns a Probe bound to the local machine.
func New() *Probe {
	return &Probe{}
}

// NewWithVersion returns a Probe whose OSVersion() is pinned to v instead
// of being read from the registry, for tests of DetectOS logic that must
// not depend on the host actually running Windows.
func NewWithVersion(v float64) *Probe {
	p := &Probe{osVersion: v}
	p.osVersionOnce.Do(func() {})
	return p
}

// roots maps the registry root prefixes a winapp2.ini value may use to their
// golang.org/x/sys/windows/registry handles.
var roots = map[string]registry.Key{
	"HKCU": registry.CURRENT_USER,
	"HKLM": registry.LOCAL_MACHINE,
	"HKU":  registry.USERS,
	"HKCR": registry.CLASSES_ROOT,
}

// Dispatch routes a raw detection value to RegExists or PathExists based on
// whether it begins with the registry-root marker "HK".
func (p *Probe) Dispatch(path string) bool {
	if strings.HasPrefix(path, "HK") {
		return p.RegExists(path)
	}
	return p.PathExists(path)
}

// PathExists reports whether path resolves to an existing file or
// directory. Permission errors are treated as a hit.
func (p *Probe) PathExists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if isPermissionDenied(err) {
		return true
	}
	return false
}

// DirExists reports whether path exists as a directory, and separately
// whether the stat failed because of a permission error. The two-valued
// return lets the wildcard expander in pkg/pathresolver honor a
// permission-denied hit without conflating it with an ordinary miss, the
// same "control flow that looks like exceptions" shape as regKeyExists.
func (p *Probe) DirExists(path string) (exists bool, permissionDenied bool) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), false
	}
	if isPermissionDenied(err) {
		return false, true
	}
	return false, false
}

// IsPermissionDenied classifies err the same way the probe's own
// existence checks do. Exported for pkg/pathresolver's wildcard
// expansion, which performs its own directory enumeration.
func IsPermissionDenied(err error) bool {
	return isPermissionDenied(err)
}

// RegExists reports whether path (rooted at HKCU, HKLM, HKU, or HKCR)
// resolves to an existing registry key. An HKLM\Software\... miss is
// retried under HKLM\Software\WOW6432Node\... before giving up. Permission
// errors are treated as a hit; an unrecognized root is a logged miss.
func (p *Probe) RegExists(path string) bool {
	root, sub, ok := splitRegPath(path)
	if !ok {
		logging.Warn("unrecognized registry root", "path", path)
		return false
	}

	if exists, permDenied := regKeyExists(root, sub); exists || permDenied {
		return true
	}

	if wow, ok := wow6432Fallback(sub); ok && root == registry.LOCAL_MACHINE {
		if exists, permDenied := regKeyExists(root, wow); exists || permDenied {
			return true
		}
	}
	return false
}

// splitRegPath separates a raw "HKLM\Software\Acme" style value into its
// root handle and the registry-relative subpath.
func splitRegPath(path string) (registry.Key, string, bool) {
	idx := strings.IndexByte(path, '\\')
	var rootName, sub string
	if idx < 0 {
		rootName, sub = path, ""
	} else {
		rootName, sub = path[:idx], path[idx+1:]
	}
	root, ok := roots[strings.ToUpper(rootName)]
	return root, sub, ok
}

// wow6432Fallback rewrites an "HKLM\Software\..." registry-relative subpath
// into its WOW6432Node mirror. The comparison is case-insensitive; the
// rewrite happens on the "Software" segment only, never on a doubled root.
func wow6432Fallback(sub string) (string, bool) {
	const prefix = "software\\"
	if len(sub) < len(prefix) || !strings.EqualFold(sub[:len(prefix)], prefix) {
		return "", false
	}
	return "Software\\WOW6432Node\\" + sub[len(prefix):], true
}

// regKeyExists opens a registry key for read and reports whether it exists,
// and separately whether the failure was permission-related (a "treat as
// hit" signal the caller must honor even though the key couldn't be read).
func regKeyExists(root registry.Key, sub string) (exists bool, permissionDenied bool) {
	k, err := registry.OpenKey(root, sub, registry.READ)
	if err == nil {
		k.Close()
		return true, false
	}
	if isPermissionDenied(err) {
		return false, true
	}
	return false, false
}

// isPermissionDenied classifies an OS-level error as access-denied, the one
// error class this package swallows and maps to "exists".
func isPermissionDenied(err error) bool {
	if os.IsPermission(err) {
		return true
	}
	return errors.Is(err, windows.ERROR_ACCESS_DENIED)
}

// OSVersion returns the host's major.minor Windows version as a decimal,
// e.g. 6.1, 10.0. The value is read once, on first call, and cached.
func (p *Probe) OSVersion() float64 {
	p.osVersionOnce.Do(func() {
		p.osVersion = readOSVersion()
	})
	return p.osVersion
}

// readOSVersion reads CurrentMajorVersionNumber/CurrentMinorVersionNumber
// from the CurrentVersion registry key, falling back to parsing the legacy
// "CurrentVersion" string value (e.g. "6.1") on older hosts that don't carry
// the split DWORD values.
func readOSVersion() float64 {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.READ)
	if err != nil {
		logging.Warn("unable to open CurrentVersion registry key", "error", err)
		return 0
	}
	defer k.Close()

	if major, _, err := k.GetIntegerValue("CurrentMajorVersionNumber"); err == nil {
		minor, _, _ := k.GetIntegerValue("CurrentMinorVersionNumber")
		v, _ := strconv.ParseFloat(strconv.FormatUint(major, 10)+"."+strconv.FormatUint(minor, 10), 64)
		return v
	}

	if s, _, err := k.GetStringValue("CurrentVersion"); err == nil {
		if v, ok := majorMinor(s); ok {
			return v
		}
	}

	logging.Warn("unable to determine host OS version")
	return 0
}

// majorMinor normalizes a possibly multi-component version string (e.g. a
// legacy "CurrentVersion" registry value like "6.1" or a verbose
// "6.1.7601.17514") down to the major.minor decimal spec.md's DetectOS
// comparison expects. go-version handles the segment parsing so a trailing
// build/revision component doesn't break strconv.ParseFloat.
func majorMinor(s string) (float64, bool) {
	v, err := version.NewVersion(s)
	if err != nil {
		return 0, false
	}
	segments := v.Segments64()
	if len(segments) == 0 {
		return 0, false
	}
	major := segments[0]
	var minor int64
	if len(segments) > 1 {
		minor = segments[1]
	}
	f, err := strconv.ParseFloat(strconv.FormatInt(major, 10)+"."+strconv.FormatInt(minor, 10), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
