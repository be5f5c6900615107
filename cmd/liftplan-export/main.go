package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/liftplan/internal/export"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/workbook"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	outDir := flag.String("out", "", "directory for workbooks (default: next to each plan file)")
	force := flag.Bool("force", false, "re-export files even if unchanged")
	dryRun := flag.Bool("dry-run", false, "parse and print outlines but don't write workbooks")
	watch := flag.Bool("watch", false, "keep running and re-export plan files when they change")
	quiet := flag.Bool("quiet", false, "don't print outline tables")
	stateDir := flag.String("state-dir", "", "state database directory (default: ~/.liftplan-export)")
	serverURL := flag.String("server", "", "LiftPlan server URL to push exported plans to (optional)")
	apiKey := flag.String("api-key", os.Getenv("LIFTPLAN_API_KEY"), "API key for -server")
	detailsSheet := flag.String("details-sheet", workbook.DetailsSheet, "name of the details sheet")
	planSheet := flag.String("plan-sheet", workbook.PlanSheet, "name of the plan sheet")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftplan-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: liftplan-export [-out DIR] [-force] [-watch] [-server URL] <plan file or dir>...\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	builder := workbook.Builder{DetailsName: *detailsSheet, PlanName: *planSheet}
	if err := builder.Validate(); err != nil {
		log.Error("invalid sheet names", "error", err)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".liftplan-export")
	}
	state, err := export.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	opts := export.Options{
		OutDir:  *outDir,
		Force:   *force,
		DryRun:  *dryRun,
		Loadout: plan.StandardLoadout,
		Builder: builder,
	}
	if !*quiet {
		opts.Outline = os.Stdout
	}
	if *serverURL != "" && !*dryRun {
		opts.Client = export.NewClient(*serverURL, *apiKey)
	}
	if *dryRun {
		log.Info("DRY RUN mode: outlines are printed but no workbook is written")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter := export.New(state, opts, log)
	stats, err := exporter.Run(ctx, paths...)
	if err != nil {
		log.Error("export failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	if *watch {
		var dirs []string
		for _, p := range paths {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				dirs = append(dirs, p)
			} else {
				dirs = append(dirs, filepath.Dir(p))
			}
		}
		if err := exporter.Watch(ctx, export.DefaultDebounce, dirs...); err != nil {
			log.Error("watch failed", "error", err)
			os.Exit(1)
		}
		s := exporter.Stats()
		stats = &s
	}

	printStats(stats)
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
}

func printStats(stats *export.Stats) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "=== Export Summary ===")
	fmt.Fprintf(os.Stderr, "  Files total:      %d\n", stats.FilesTotal)
	fmt.Fprintf(os.Stderr, "  Files exported:   %d\n", stats.FilesExported)
	fmt.Fprintf(os.Stderr, "  Files skipped:    %d (unchanged)\n", stats.FilesSkipped)
	fmt.Fprintf(os.Stderr, "  Files errored:    %d\n", stats.FilesErrored)
	fmt.Fprintf(os.Stderr, "  Plans pushed:     %d\n", stats.PlansPushed)
	fmt.Fprintf(os.Stderr, "  Outline warnings: %d\n", stats.Warnings)
	fmt.Fprintln(os.Stderr)
}
