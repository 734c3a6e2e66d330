package ruleset

import "errors"

// ErrEmptyRuleset is returned by Load when the source file declares no
// sections at all. The driver must decline to run rather than trim nothing.
var ErrEmptyRuleset = errors.New("ruleset: input file has no entries")
