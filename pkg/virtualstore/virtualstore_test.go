package virtualstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/ruleset"
)

func TestAugment_AddsExistingVirtualStoreMirror(t *testing.T) {
	programFiles := t.TempDir()
	localAppData := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(programFiles, "Common Files"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(localAppData, "VirtualStore", "Program Files (x86)", "Common Files"), 0755))
	t.Setenv("ProgramFiles", programFiles)
	t.Setenv("LocalAppData", localAppData)

	entry := &ruleset.Entry{
		Name: "Acme",
		FileKeys: ruleset.KeyList{
			Role: ruleset.RoleFileKeys,
			Keys: []ruleset.Key{{Value: `%ProgramFiles%\Common Files`}},
		},
	}

	Augment(entry, hostprobe.New())

	assert.Equal(t, 2, entry.FileKeys.Len())
	values := entry.FileKeys.Values()
	assert.Contains(t, values, `%ProgramFiles%\Common Files`)
	assert.Contains(t, values, `%LocalAppData%\VirtualStore\Program Files*\Common Files`)
}

func TestAugment_NoMirrorWhenTargetMissing(t *testing.T) {
	programFiles := t.TempDir()
	localAppData := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(programFiles, "Common Files"), 0755))
	t.Setenv("ProgramFiles", programFiles)
	t.Setenv("LocalAppData", localAppData)

	entry := &ruleset.Entry{
		Name: "Acme",
		FileKeys: ruleset.KeyList{
			Role: ruleset.RoleFileKeys,
			Keys: []ruleset.Key{{Value: `%ProgramFiles%\Common Files`}},
		},
	}

	Augment(entry, hostprobe.New())

	assert.Equal(t, 1, entry.FileKeys.Len())
}

func TestAugment_NeverRemovesKeys(t *testing.T) {
	entry := &ruleset.Entry{
		Name: "NoOverlap",
		FileKeys: ruleset.KeyList{
			Role: ruleset.RoleFileKeys,
			Keys: []ruleset.Key{{Value: `C:\Windows\Temp\foo.log`}},
		},
	}
	before := entry.FileKeys.Len()
	Augment(entry, hostprobe.New())
	assert.GreaterOrEqual(t, entry.FileKeys.Len(), before)
}

func TestAugment_IdempotentOnSecondPass(t *testing.T) {
	programFiles := t.TempDir()
	localAppData := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(programFiles, "Common Files"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(localAppData, "VirtualStore", "Program Files (x86)", "Common Files"), 0755))
	t.Setenv("ProgramFiles", programFiles)
	t.Setenv("LocalAppData", localAppData)

	entry := &ruleset.Entry{
		Name: "Acme",
		FileKeys: ruleset.KeyList{
			Role: ruleset.RoleFileKeys,
			Keys: []ruleset.Key{{Value: `%ProgramFiles%\Common Files`}},
		},
	}

	Augment(entry, hostprobe.New())
	afterFirst := append([]ruleset.Key(nil), entry.FileKeys.Keys...)
	Augment(entry, hostprobe.New())

	assert.Equal(t, afterFirst, entry.FileKeys.Keys)
}

func TestAugment_RegKeysKeepSourceValue(t *testing.T) {
	entry := &ruleset.Entry{
		Name: "Acme",
		RegKeys: ruleset.KeyList{
			Role: ruleset.RoleRegKeys,
			Keys: []ruleset.Key{{Value: `HKLM\Software\Acme`}},
		},
	}
	// Registry probing needs the real Windows registry; here we only
	// assert the augmenter doesn't panic or mangle the source list when
	// the candidate can't be confirmed present.
	Augment(entry, hostprobe.New())
	assert.GreaterOrEqual(t, entry.RegKeys.Len(), 1)
	assert.Equal(t, `HKLM\Software\Acme`, entry.RegKeys.Keys[0].Value)
}
