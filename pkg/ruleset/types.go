// pkg/ruleset/types.go - the entry/key-list data model for a winapp2.ini-style ruleset.

package ruleset

// Role identifies what an entry's key list is used for.
type Role string

const (
	RoleDetectOS       Role = "DetectOS"
	RoleDetects        Role = "Detects"       // registry detection, key prefix "Detect"
	RoleDetectFiles    Role = "DetectFiles"    // filesystem detection, key prefix "DetectFile"
	RoleSpecialDetect  Role = "SpecialDetect"
	RoleFileKeys       Role = "FileKeys"       // cleanup targets, key prefix "FileKey"
	RoleRegKeys        Role = "RegKeys"        // cleanup targets, key prefix "RegKey"
	RoleExcludeKeys    Role = "ExcludeKeys"    // cleanup exclusions, key prefix "ExcludeKey"
)

// prefix returns the positional key-name prefix used to serialize this role,
// e.g. RoleDetectFiles -> "DetectFile1", "DetectFile2", ...
func (r Role) prefix() string {
	switch r {
	case RoleDetectOS:
		return "DetectOS"
	case RoleDetects:
		return "Detect"
	case RoleDetectFiles:
		return "DetectFile"
	case RoleSpecialDetect:
		return "SpecialDetect"
	case RoleFileKeys:
		return "FileKey"
	case RoleRegKeys:
		return "RegKey"
	case RoleExcludeKeys:
		return "ExcludeKey"
	default:
		return string(r)
	}
}

// Key is a single positional value within a role's key list.
type Key struct {
	Value string
}

// KeyList is an ordered, role-tagged list of keys. Order is significant: it
// governs short-circuit evaluation order and is observable in logs.
type KeyList struct {
	Role Role
	Keys []Key
}

// Values returns the raw values of every key in the list, in order.
func (kl *KeyList) Values() []string {
	if kl == nil {
		return nil
	}
	out := make([]string, len(kl.Keys))
	for i, k := range kl.Keys {
		out[i] = k.Value
	}
	return out
}

// Len reports the number of keys, treating a nil list as empty.
func (kl *KeyList) Len() int {
	if kl == nil {
		return 0
	}
	return len(kl.Keys)
}

// extraKey is a passthrough key that the engine does not interpret
// (e.g. Section, LangSecRef, Warning) but must round-trip on write.
type extraKey struct {
	Name  string
	Value string
}

// blockKind distinguishes the two kinds of serialization blocks that make up
// an entry's original key order.
type blockKind int

const (
	blockRole blockKind = iota
	blockExtra
)

// block anchors a role's key-list, or a single passthrough key, at the
// position it first appeared in the source file, so a rewritten entry keeps
// its original key layout except where augmentation requires renumbering.
type block struct {
	kind  blockKind
	role  Role
	extra extraKey
}

// Entry is one named section of the ruleset: an application or component,
// together with its detection criteria and cleanup targets.
type Entry struct {
	Name string

	DetectOS      KeyList
	Detects       KeyList
	DetectFiles   KeyList
	SpecialDetect KeyList
	FileKeys      KeyList
	RegKeys       KeyList
	ExcludeKeys   KeyList

	blocks []block
}

// List returns a pointer to the named role's key list on this entry.
func (e *Entry) List(role Role) *KeyList {
	switch role {
	case RoleDetectOS:
		return &e.DetectOS
	case RoleDetects:
		return &e.Detects
	case RoleDetectFiles:
		return &e.DetectFiles
	case RoleSpecialDetect:
		return &e.SpecialDetect
	case RoleFileKeys:
		return &e.FileKeys
	case RoleRegKeys:
		return &e.RegKeys
	case RoleExcludeKeys:
		return &e.ExcludeKeys
	default:
		return nil
	}
}

// ensureBlock makes sure the entry will serialize the given role's key
// list, adding a block for it if this is the first time it gains a key
// (e.g. the VirtualStore augmenter introducing a RegKeys list where none
// existed in the source file).
func (e *Entry) ensureBlock(role Role) {
	for _, b := range e.blocks {
		if b.kind == blockRole && b.role == role {
			return
		}
	}
	e.blocks = append(e.blocks, block{kind: blockRole, role: role})
}

// AppendKey adds value to role's key list, creating the list's
// serialization block the first time the role gains a key (e.g. the
// VirtualStore augmenter introducing a RegKeys list where none existed in
// the source file).
func (e *Entry) AppendKey(role Role, value string) {
	list := e.List(role)
	list.Role = role
	list.Keys = append(list.Keys, Key{Value: value})
	e.ensureBlock(role)
}

// HasDetectionClauses reports whether the entry declares any criterion at
// all (DetectOS, Detects, DetectFiles, or SpecialDetect).
func (e *Entry) HasDetectionClauses() bool {
	return e.DetectOS.Len() > 0 || e.Detects.Len() > 0 || e.DetectFiles.Len() > 0 || e.SpecialDetect.Len() > 0
}

// Ruleset is an ordered collection of entries, as read from winapp2.ini.
// Section order and intra-section entry order are preserved on output.
type Ruleset struct {
	Entries []*Entry
}
