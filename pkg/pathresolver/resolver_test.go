package pathresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
)

func TestResolve_LiteralPathExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "chrome.exe")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))

	ok, err := Resolve(f, hostprobe.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolve_LiteralPathMissing(t *testing.T) {
	dir := t.TempDir()
	ok, err := Resolve(filepath.Join(dir, "nope.exe"), hostprobe.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_EnvVariableExpansion(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Mozilla", "Firefox")
	require.NoError(t, os.MkdirAll(sub, 0755))
	t.Setenv("AppData", dir)

	ok, err := Resolve(`%AppData%\Mozilla\Firefox`, hostprobe.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolve_MalformedVariable(t *testing.T) {
	_, err := Resolve(`%NotAVariable\x`, hostprobe.New())
	assert.Error(t, err)
}

func TestResolve_UnresolvedNonStandardVariable(t *testing.T) {
	// spec.md §8 scenario 7: a well-formed but unrecognized %X% whose host
	// environment variable is unset must not be silently treated as a miss
	// against "\x" — Resolve reports it as unresolved so the criterion
	// evaluator can retain the entry with a warning instead of discarding it.
	t.Setenv("NotAVariable", "")
	os.Unsetenv("NotAVariable")
	_, err := Resolve(`%NotAVariable%\x`, hostprobe.New())
	assert.Error(t, err)
}

func TestResolve_KnownPseudoVariableNeverUnresolved(t *testing.T) {
	// Unlike an arbitrary unknown name, ProgramFiles is a recognized
	// pseudo-variable: an empty underlying env var is a plain miss, not an
	// unresolved-reference error.
	t.Setenv("ProgramFiles", "")
	ok, err := Resolve(`%ProgramFiles%\Acme\acme.exe`, hostprobe.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_ProgramFilesFallback(t *testing.T) {
	pf := t.TempDir()
	pfx86 := t.TempDir()
	t.Setenv("ProgramFiles", pf)
	t.Setenv("ProgramFiles(x86)", pfx86)

	target := filepath.Join(pfx86, "Acme", "acme.exe")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	ok, err := Resolve(`%ProgramFiles%\Acme\acme.exe`, hostprobe.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolve_ProgramFilesFallback_BothMiss(t *testing.T) {
	t.Setenv("ProgramFiles", t.TempDir())
	t.Setenv("ProgramFiles(x86)", t.TempDir())

	ok, err := Resolve(`%ProgramFiles%\DoesNotExist\x.exe`, hostprobe.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_WildcardSegment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Program Files (x86)", "Common Files"), 0755))
	t.Setenv("LocalAppData", dir)

	ok, err := Resolve(`%LocalAppData%\Program Files*\Common Files`, hostprobe.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolve_WildcardSegment_NoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Other"), 0755))
	t.Setenv("LocalAppData", dir)

	ok, err := Resolve(`%LocalAppData%\Program Files*\Common Files`, hostprobe.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupVar_BareNamePictures(t *testing.T) {
	// spec.md §9's pinned bug: %Pictures%/%Music%/%Video% must be matched
	// on the bare name, not the percent-wrapped literal, or they silently
	// fall through to an unset "Pictures" env var.
	t.Setenv("UserProfile", `C:\Users\bob`)
	probe := hostprobe.NewWithVersion(10.0)
	pictures, ok := lookupVar("Pictures", probe)
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\Pictures`, pictures)
	music, ok := lookupVar("Music", probe)
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\Music`, music)
	video, ok := lookupVar("Video", probe)
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\Videos`, video)
}

func TestLookupVar_XPBranch(t *testing.T) {
	t.Setenv("UserProfile", `C:\Users\bob`)
	probe := hostprobe.NewWithVersion(5.1)
	documents, ok := lookupVar("Documents", probe)
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\My Documents`, documents)
	pictures, ok := lookupVar("Pictures", probe)
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\My Documents\My Pictures`, pictures)
}

func TestLookupVar_LocalLowAppData(t *testing.T) {
	t.Setenv("LocalAppData", `C:\Users\bob\AppData\Local`)
	localLow, ok := lookupVar("LocalLowAppData", hostprobe.NewWithVersion(10.0))
	assert.True(t, ok)
	assert.Equal(t, `C:\Users\bob\AppData\LocalLow`, localLow)
}

func TestLookupVar_UnknownNameUnresolvedWhenEnvUnset(t *testing.T) {
	os.Unsetenv("SomeMadeUpVariable")
	_, ok := lookupVar("SomeMadeUpVariable", hostprobe.New())
	assert.False(t, ok)
}

func TestLookupVar_UnknownNameResolvedWhenEnvSet(t *testing.T) {
	t.Setenv("SomeMadeUpVariable", `C:\Custom`)
	value, ok := lookupVar("SomeMadeUpVariable", hostprobe.New())
	assert.True(t, ok)
	assert.Equal(t, `C:\Custom`, value)
}

func TestWildcardRegexp(t *testing.T) {
	re := wildcardRegexp("Program Files*")
	assert.True(t, re.MatchString("Program Files (x86)"))
	assert.True(t, re.MatchString("PROGRAM FILES"))
	assert.False(t, re.MatchString("Other"))
}
