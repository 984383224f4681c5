package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/netreduce/rgcidr/internal/config"
	"github.com/netreduce/rgcidr/internal/engine"
	"github.com/netreduce/rgcidr/internal/fileset"
	"github.com/netreduce/rgcidr/internal/ipindex"
	"github.com/netreduce/rgcidr/internal/lineio"
	"github.com/netreduce/rgcidr/internal/pattern"
	"github.com/netreduce/rgcidr/internal/patternfile"
	"github.com/netreduce/rgcidr/internal/policy"
)

var rootCmd = &cobra.Command{
	Use:   "rgcidr [options] PATTERN [FILE...]",
	Short: "Select lines whose IP addresses match a set of network patterns.",
	Long: `rgcidr is a command-line filter that selects lines of text based on
whether they contain IP addresses (IPv4 or IPv6) matching a user-specified
set of network patterns — a modern reimplementation of grepcidr.`,
	Args: cobra.ArbitraryArgs,
	Run:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&cliConfig.Count, "count", "c", false, "suppress line output; print match count")
	flags.BoolVarP(&cliConfig.Invert, "invert", "v", false, "select non-matching lines")
	flags.BoolVarP(&cliConfig.StrictAlign, "strict", "s", false, "require strict CIDR alignment")
	flags.BoolVarP(&cliConfig.IncludeNonIP, "include-non-ip", "i", false, "include lines with no IP address; invert semantics on lines that have one")
	flags.BoolVarP(&cliConfig.ExactAtStart, "exact", "x", false, "only consider the line-initial IP address")
	flags.StringVarP(&cliConfig.PatternFile, "file", "f", "", "read patterns from PATH, one per line")
	flags.BoolVarP(&cliConfig.Version, "version", "V", false, "print version and exit")
	flags.StringVar(&cliConfig.ConfigPath, "config", "", "path to defaults config file (default $XDG_CONFIG_HOME/rgcidr/config.yaml)")
	flags.BoolVarP(&cliConfig.Watch, "watch", "w", false, "tail a single growing FILE, scanning newly appended lines")
	flags.IntVar(&cliConfig.MaxWorkers, "max-workers", 0, "max files scanned concurrently (0 = default)")
	flags.BoolVar(&cliConfig.Debug, "debug", false, "enable debug output")
	flags.BoolVar(&cliConfig.Verbose, "verbose", false, "enable verbose output")
}

func setupLogger() *slog.Logger {
	if cliConfig.Debug {
		level := new(slog.LevelVar)
		level.Set(slog.LevelDebug)
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(2)
}

func run(cmd *cobra.Command, args []string) {
	logger := setupLogger()
	verbosePrintln("[VERBOSE] Verbose output enabled.")
	debugPrintln("[DEBUG] Debug output enabled.")

	if cliConfig.Version {
		fmt.Printf("rgcidr version %s\n", config.Version)
		os.Exit(0)
	}

	debugPrintln("[DEBUG] Loading config from:", cliConfig.ConfigPath)
	cfg, err := config.Load(cliConfig.ConfigPath)
	if err != nil {
		fatal(logger, "loading config", err)
	}
	applyConfigDefaults(cmd, cfg)

	flags := policy.Flags{
		Invert:       cliConfig.Invert,
		IncludeNonIP: cliConfig.IncludeNonIP,
		Count:        cliConfig.Count,
		ExactAtStart: cliConfig.ExactAtStart,
	}

	if cliConfig.Watch && cliConfig.Count {
		fatal(logger, "usage", fmt.Errorf("--watch is incompatible with -c"))
	}

	patterns, files, err := resolvePatternsAndFiles(args)
	if err != nil {
		fatal(logger, "compiling patterns", err)
	}
	if cliConfig.Watch && len(files) != 1 {
		fatal(logger, "usage", fmt.Errorf("--watch requires exactly one FILE"))
	}

	v4, v6 := pattern.ToIndexLists(patterns)
	idx := ipindex.Build(v4, v6)

	opts := engine.Options{
		BufferClass:      bufferClassFor(cliConfig.Count, files),
		SmallBufferBytes: cfg.Output.SmallBufferBytes,
		LargeBufferBytes: cfg.Output.LargeBufferBytes,
		FlushFraction:    cfg.Output.FlushThresholdFraction,
	}

	ctx := context.Background()
	verbosePrintlnf("[VERBOSE] %d pattern(s) compiled, %d file(s) to scan\n", len(patterns), len(files))

	var result struct {
		EmittedAny bool
		Count      int64
	}

	switch {
	case cliConfig.Watch:
		err = fileset.Watch(ctx, files[0], os.Stdout, idx, flags, opts, cfg.Watch.PollIntervalMS)
		if err != nil {
			fatal(logger, "watching file", err)
		}
		os.Exit(0)

	case len(files) == 0:
		res, runErr := engine.Run(ctx, os.Stdin, os.Stdout, idx, flags, opts)
		if runErr != nil {
			fatal(logger, "scanning stdin", runErr)
		}
		result.EmittedAny, result.Count = res.EmittedAny, res.Count

	case len(files) == 1:
		f, openErr := os.Open(files[0])
		if openErr != nil {
			fatal(logger, "opening input file", openErr)
		}
		res, runErr := engine.Run(ctx, f, os.Stdout, idx, flags, opts)
		_ = f.Close()
		if runErr != nil {
			fatal(logger, "scanning file", runErr)
		}
		result.EmittedAny, result.Count = res.EmittedAny, res.Count

	default:
		res, runErr := fileset.Run(ctx, files, os.Stdout, idx, flags, opts, cliConfig.MaxWorkers)
		if runErr != nil {
			fatal(logger, "scanning files", runErr)
		}
		result.EmittedAny, result.Count = res.EmittedAny, res.Count
	}

	if cliConfig.Count {
		fmt.Printf("%d\n", result.Count)
	}
	os.Exit(policy.ExitCode(result.EmittedAny))
}

// applyConfigDefaults fills in flags the user did not explicitly set from
// the loaded defaults file; explicit flags always win.
func applyConfigDefaults(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("strict") {
		cliConfig.StrictAlign = cfg.DefaultFlags.StrictAlign
	}
	if !cmd.Flags().Changed("include-non-ip") {
		cliConfig.IncludeNonIP = cfg.DefaultFlags.IncludeNonIP
	}
}

// resolvePatternsAndFiles compiles the pattern source (either -f PATH or
// the first positional argument) and returns the remaining FILE arguments.
func resolvePatternsAndFiles(args []string) ([]pattern.Pattern, []string, error) {
	if cliConfig.PatternFile != "" {
		patterns, err := patternfile.Load(cliConfig.PatternFile, cliConfig.StrictAlign)
		if err != nil {
			return nil, nil, fmt.Errorf("loading pattern file %s: %w", cliConfig.PatternFile, err)
		}
		return patterns, args, nil
	}
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("missing PATTERN argument (or -f PATTERNFILE)")
	}
	patterns, err := pattern.CompileBatch(args[0], cliConfig.StrictAlign)
	if err != nil {
		return nil, nil, err
	}
	return patterns, args[1:], nil
}

func bufferClassFor(count bool, files []string) lineio.BufferClass {
	if count || len(files) == 0 {
		return lineio.SmallBuffer
	}
	return lineio.LargeBuffer
}
