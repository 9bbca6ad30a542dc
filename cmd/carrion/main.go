package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/fatih/color"
	"github.com/praxos/carrion/internal/analyzer"
	"github.com/praxos/carrion/internal/baseline"
	"github.com/praxos/carrion/internal/output"
	"github.com/praxos/carrion/internal/progress"
	"github.com/praxos/carrion/internal/scanner"
	"github.com/praxos/carrion/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig resolves the effective config: an explicit --config path is
// authoritative, otherwise standard locations are searched.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

func main() {
	app := &cli.App{
		Name:     "carrion",
		Usage:    "Dead code and hygiene analysis for Python codebases",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Carrion finds unused functions, classes, imports, and variables in
Python source trees, with optional scanners for hardcoded secrets,
dangerous calls, and deeply nested code.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CARRION_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				// Store file handle for cleanup
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC() // Get up-to-date statistics
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			scanCmd(),
			initCmd(),
			configCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Aliases:   []string{"analyze"},
		Usage:     "Detect unused functions, classes, imports, and variables",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "confidence",
				Value: 60,
				Usage: "Minimum confidence threshold (0-100)",
			},
			&cli.BoolFlag{
				Name:  "secrets",
				Usage: "Scan for hardcoded secrets",
			},
			&cli.BoolFlag{
				Name:  "danger",
				Usage: "Scan for dangerous calls (eval, exec, shell=True)",
			},
			&cli.BoolFlag{
				Name:  "quality",
				Usage: "Scan for deeply nested code",
			},
			&cli.StringFlag{
				Name:  "baseline",
				Usage: "Suppress findings recorded in a baseline file",
			},
			&cli.StringFlag{
				Name:  "write-baseline",
				Usage: "Write current findings to a baseline file",
			},
		},
		Action: runScanCmd,
	}
}

func runScanCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("confidence") || cfg.Analysis.Confidence == 0 {
		cfg.Analysis.Confidence = c.Int("confidence")
	}
	cfg.Analysis.Secrets = cfg.Analysis.Secrets || c.Bool("secrets")
	cfg.Analysis.Danger = cfg.Analysis.Danger || c.Bool("danger")
	cfg.Analysis.Quality = cfg.Analysis.Quality || c.Bool("quality")

	baselinePath := cfg.Baseline.File
	if c.IsSet("baseline") {
		baselinePath = c.String("baseline")
	}

	scan := scanner.NewScanner(cfg)
	spinner := progress.NewSpinner("Scanning files...")

	var files []string
	var root string
	for i, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			spinner.FinishError(err)
			return fmt.Errorf("invalid path %s: %w", path, err)
		}
		if i == 0 {
			root = absPath
		}
		found, err := scan.ScanDir(absPath)
		if err != nil {
			spinner.FinishError(err)
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		files = append(files, found...)
	}
	spinner.FinishSuccess()

	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}
	if c.Bool("verbose") {
		fmt.Fprintf(os.Stderr, "Analyzing %d files\n", len(files))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := analyzer.New(analyzer.Options{
		Confidence: cfg.Analysis.Confidence,
		Secrets:    cfg.Analysis.Secrets,
		Danger:     cfg.Analysis.Danger,
		Quality:    cfg.Analysis.Quality,
	})

	tracker := progress.NewTracker("Analyzing...", len(files))
	result, err := a.AnalyzeProject(ctx, root, files, tracker.Tick)
	tracker.FinishSuccess()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if path := c.String("write-baseline"); path != "" {
		if err := baseline.FromResult(result).Write(path); err != nil {
			return err
		}
		formatter.Success("Baseline written to %s (%d entries)", path, result.TotalUnused())
	}

	suppressed := 0
	if baselinePath != "" {
		b, err := baseline.Load(baselinePath)
		if err != nil {
			return err
		}
		suppressed = b.Filter(result)
	}

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(result)
	}

	if err := renderUnusedTables(formatter, result); err != nil {
		return err
	}
	if err := renderFindingTables(formatter, result); err != nil {
		return err
	}

	fmt.Fprintf(formatter.Writer(), "\nSummary: %d unused symbols across %d files\n",
		result.TotalUnused(), result.Summary.TotalFiles)
	if suppressed > 0 {
		fmt.Fprintf(formatter.Writer(), "Baseline suppressed %d known findings\n", suppressed)
	}
	if cfg.Analysis.Secrets || cfg.Analysis.Danger || cfg.Analysis.Quality {
		fmt.Fprintf(formatter.Writer(), "Rules: %d secrets, %d dangerous calls, %d quality issues\n",
			result.Summary.SecretsCount, result.Summary.DangerCount, result.Summary.QualityCount)
	}

	return nil
}
