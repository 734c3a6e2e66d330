// cmd/winapp2trim/main.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/windowsadmins/winapp2trim/pkg/config"
	"github.com/windowsadmins/winapp2trim/pkg/hostprobe"
	"github.com/windowsadmins/winapp2trim/pkg/logging"
	"github.com/windowsadmins/winapp2trim/pkg/trim"
	"github.com/windowsadmins/winapp2trim/pkg/utils"
	"github.com/windowsadmins/winapp2trim/pkg/version"
)

func main() {
	utils.PatchWindowsArgs()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	inputPath := pflag.String("input", cfg.InputPath, "Ruleset file to trim.")
	outputPath := pflag.String("output", cfg.OutputPath, "Destination for the reduced ruleset.")
	useIncludes := pflag.Bool("use-includes", cfg.UseIncludes, "Force-retain entries named in the includes file.")
	includesPath := pflag.String("includes", cfg.IncludesPath, "Includes file path (active only with --use-includes).")
	useExcludes := pflag.Bool("use-excludes", cfg.UseExcludes, "Force-discard entries named in the excludes file.")
	excludesPath := pflag.String("excludes", cfg.ExcludesPath, "Excludes file path (active only with --use-excludes).")
	downloadFlag := pflag.Bool("download", cfg.DownloadFileToTrim, "Fetch the ruleset from --source-url instead of reading --input.")
	sourceURL := pflag.String("source-url", cfg.SourceURL, "Remote ruleset URL, used with --download.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	fullFlag := pflag.Bool("full", false, "With --version, also print branch, revision, build date, and Go version.")
	saveConfigFlag := pflag.Bool("save-config", false, "Persist the resolved flags to the configuration file and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv).")
	pflag.Parse()

	if *versionFlag {
		if *fullFlag {
			version.PrintFull()
		} else {
			version.Print()
		}
		os.Exit(0)
	}

	cfg.InputPath = *inputPath
	cfg.OutputPath = *outputPath
	cfg.UseIncludes = *useIncludes
	cfg.IncludesPath = *includesPath
	cfg.UseExcludes = *useExcludes
	cfg.ExcludesPath = *excludesPath
	cfg.DownloadFileToTrim = *downloadFlag
	cfg.SourceURL = *sourceURL

	if *saveConfigFlag {
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save configuration: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Each -v raises the level one step above what the config file or
	// default set, up to DEBUG.
	if verbosity > 0 {
		level := logging.ParseLevel(cfg.LogLevel) + logging.LogLevel(verbosity)
		if level > logging.LevelDebug {
			level = logging.LevelDebug
		}
		cfg.LogLevel = level.String()
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel))

	probe := hostprobe.New()
	summary, err := trim.Run(cfg, probe)
	if err != nil {
		logging.Error("trim failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Initial entries: %d\n", summary.InitialCount)
	fmt.Printf("Final entries:   %d\n", summary.FinalCount)
	fmt.Printf("Removed:         %d (%d%%)\n", summary.Removed, summary.PercentRemoved)
}
