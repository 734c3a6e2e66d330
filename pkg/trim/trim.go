// pkg/trim/trim.go - iterates a ruleset's entries, auditing and augmenting
// each, and rebuilds the reduced ruleset. Per spec.md §4.6, the whole run
// is single-threaded and synchronous: entries are visited in declared
// order, and that order is preserved on output.

package trim

import (
	"fmt"
	"math"

	"github.com/windowsadmins/winapp2trim/pkg/audit"
	"github.com/windowsadmins/winapp2trim/pkg/config"
	"github.com/windowsadmins/winapp2trim/pkg/download"
	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/logging"
	"github.com/windowsadmins/winapp2trim/pkg/ruleset"
	"github.com/windowsadmins/winapp2trim/pkg/virtualstore"
)

// Summary reports the outcome of a trim run.
type Summary struct {
	InitialCount   int
	FinalCount     int
	Removed        int
	PercentRemoved int
}

// Run loads (or downloads) the ruleset named by cfg.InputPath, audits every
// entry against probe, augments the retained ones, and writes the reduced ruleset to
// cfg.OutputPath. An input file with no entries at all is reported back
// as ruleset.ErrEmptyRuleset without touching anything.
func Run(cfg *config.Configuration, probe *hostprobe.Probe) (Summary, error) {
	if cfg.DownloadFileToTrim {
		if !download.Online() {
			return Summary{}, fmt.Errorf("%w: cannot fetch %s", download.ErrOffline, cfg.SourceURL)
		}
		logging.Info("downloading ruleset", "url", cfg.SourceURL, "destination", cfg.InputPath)
		if err := download.File(cfg.SourceURL, cfg.InputPath); err != nil {
			return Summary{}, fmt.Errorf("downloading ruleset: %w", err)
		}
	}

	rs, err := ruleset.Load(cfg.InputPath)
	if err != nil {
		return Summary{}, err
	}

	sets, err := loadSets(cfg)
	if err != nil {
		return Summary{}, err
	}

	initial := len(rs.Entries)
	logging.Info("trim starting", "input", cfg.InputPath, "entries", initial)

	retained := make([]*ruleset.Entry, 0, len(rs.Entries))
	for _, entry := range rs.Entries {
		if !audit.Retain(entry, probe, sets) {
			continue
		}
		virtualstore.Augment(entry, probe)
		retained = append(retained, entry)
	}
	rs.Entries = retained

	if err := rs.Save(cfg.OutputPath); err != nil {
		return Summary{}, err
	}

	summary := newSummary(initial, len(rs.Entries))
	logging.Info("trim complete",
		"initial", summary.InitialCount, "final", summary.FinalCount,
		"removed", summary.Removed, "percent_removed", summary.PercentRemoved)
	return summary, nil
}

func loadSets(cfg *config.Configuration) (audit.Sets, error) {
	sets := audit.Sets{UseIncludes: cfg.UseIncludes, UseExcludes: cfg.UseExcludes}
	if cfg.UseIncludes {
		set, err := ruleset.LoadAuxSet(cfg.IncludesPath)
		if err != nil {
			return audit.Sets{}, fmt.Errorf("loading includes: %w", err)
		}
		sets.Includes = set
	}
	if cfg.UseExcludes {
		set, err := ruleset.LoadAuxSet(cfg.ExcludesPath)
		if err != nil {
			return audit.Sets{}, fmt.Errorf("loading excludes: %w", err)
		}
		sets.Excludes = set
	}
	return sets, nil
}

func newSummary(initial, final int) Summary {
	removed := initial - final
	percent := 0
	if initial > 0 {
		percent = int(math.Round(float64(removed) / float64(initial) * 100))
	}
	return Summary{InitialCount: initial, FinalCount: final, Removed: removed, PercentRemoved: percent}
}
