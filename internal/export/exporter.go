// Package export turns plan files on disk into workbooks, remembering what
// it already exported in a local SQLite database.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/workbook"
)

// ErrOutputClash is returned when a plan file's workbook path already
// belongs to another plan file that still exists.
var ErrOutputClash = errors.New("output already written by another plan file")

// Stats tracks export progress.
type Stats struct {
	FilesTotal    int
	FilesExported int
	FilesSkipped  int
	FilesErrored  int
	PlansPushed   int
	Warnings      int
}

// Options configures an Exporter. Zero values fall back to the standard
// plate set and the default sheet names; an empty OutDir writes each
// workbook next to its plan file.
type Options struct {
	OutDir  string
	Force   bool
	DryRun  bool
	Loadout plan.Loadout
	Builder workbook.Builder
	// Outline receives a rendered outline table per exported file. Nil
	// disables rendering.
	Outline io.Writer
	// Client pushes each exported plan to a server. Nil disables pushing.
	Client *Client
}

// Exporter converts plan files into xlsx workbooks.
type Exporter struct {
	opts  Options
	state *StateDB
	log   *slog.Logger
	stats Stats
}

// New creates a new Exporter.
func New(state *StateDB, opts Options, log *slog.Logger) *Exporter {
	if len(opts.Loadout.Plates) == 0 {
		opts.Loadout = plan.StandardLoadout
	}
	if opts.Builder == (workbook.Builder{}) {
		opts.Builder = workbook.DefaultBuilder
	}
	if opts.OutDir != "" {
		if abs, err := filepath.Abs(opts.OutDir); err == nil {
			opts.OutDir = abs
		}
	}
	return &Exporter{opts: opts, state: state, log: log}
}

// Stats returns the counters accumulated so far.
func (e *Exporter) Stats() Stats {
	return e.stats
}

// Run exports every plan file under paths. Directories are walked
// recursively; files are exported directly. A bad plan file is counted and
// logged and does not stop the run.
func (e *Exporter) Run(ctx context.Context, paths ...string) (*Stats, error) {
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if !IsPlanFile(path) {
				return nil
			}
			e.exportCounted(ctx, path)
			return nil
		})
		if err != nil {
			return &e.stats, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return &e.stats, nil
}

// exportCounted exports one file and folds the outcome into the stats.
func (e *Exporter) exportCounted(ctx context.Context, path string) {
	e.stats.FilesTotal++
	exported, err := e.ExportFile(ctx, path)
	switch {
	case err != nil:
		e.log.Warn("export failed", "file", path, "error", err)
		e.stats.FilesErrored++
	case exported:
		e.stats.FilesExported++
	default:
		e.stats.FilesSkipped++
	}
}

// ExportFile builds the workbook for one plan file. It returns false when
// the file is unchanged since its last export and Force is off.
func (e *Exporter) ExportFile(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false, err
	}
	hash, err := HashFile(abs)
	if err != nil {
		return false, fmt.Errorf("hashing: %w", err)
	}
	output := e.OutputPath(abs)
	if err := e.claimOutput(abs, output); err != nil {
		return false, err
	}

	if !e.opts.Force && fileExists(output) {
		done, err := e.state.IsExported(abs, info.Size(), hash, output)
		if err != nil {
			return false, fmt.Errorf("checking state: %w", err)
		}
		if done {
			return false, nil
		}
	}

	pf, err := ReadPlanFile(abs)
	if err != nil {
		return false, err
	}
	wb, err := e.opts.Builder.Build(pf.Exercises)
	if err != nil {
		return false, fmt.Errorf("building workbook: %w", err)
	}
	for _, w := range wb.Warnings {
		e.log.Warn("export warning", "file", abs, "kind", w.Kind, "message", w.Message)
	}

	if e.opts.Outline != nil {
		o := e.opts.Loadout.Outline(pf.Exercises)
		if _, err := io.WriteString(e.opts.Outline, RenderOutline(pf.Name, o)); err != nil {
			return false, fmt.Errorf("writing outline: %w", err)
		}
		e.stats.Warnings += len(o.Warnings)
	}

	if e.opts.DryRun {
		e.log.Info("dry run: workbook not written", "file", abs, "output", output)
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return false, fmt.Errorf("creating output dir: %w", err)
	}
	if err := wb.SaveAs(output); err != nil {
		return false, err
	}
	if err := e.state.MarkExported(abs, info.Size(), hash, output, len(wb.Warnings)); err != nil {
		return false, fmt.Errorf("recording export: %w", err)
	}
	e.log.Info("exported", "file", abs, "output", output, "exercises", len(pf.Exercises), "weeks", wb.Weeks)

	if e.opts.Client != nil {
		id, err := e.opts.Client.SavePlan(ctx, pf)
		if err != nil {
			return true, fmt.Errorf("pushing plan: %w", err)
		}
		e.stats.PlansPushed++
		e.log.Info("plan pushed", "file", abs, "plan_id", id)
	}
	return true, nil
}

// claimOutput fails when another plan file still on disk owns output. A
// record whose plan file is gone releases the output to path.
func (e *Exporter) claimOutput(path, output string) error {
	owner, ok, err := e.state.OutputOwner(output, path)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if !ok {
		return nil
	}
	if fileExists(owner) {
		return fmt.Errorf("%w: %s is exported by %s", ErrOutputClash, output, owner)
	}
	e.log.Info("releasing output of removed plan file", "file", owner, "output", output)
	return e.state.Forget(owner)
}

// Remove forgets a deleted plan file and deletes the workbook it produced.
// A workbook another plan file also claims is left in place.
func (e *Exporter) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	output, ok, err := e.state.Output(abs)
	if err != nil || !ok {
		return err
	}
	_, shared, err := e.state.OutputOwner(output, abs)
	if err != nil {
		return err
	}
	if !e.opts.DryRun && !shared {
		if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", output, err)
		}
	}
	return e.state.Forget(abs)
}

// OutputPath returns where the workbook for the plan file at path goes.
func (e *Exporter) OutputPath(path string) string {
	dir := filepath.Dir(path)
	if e.opts.OutDir != "" {
		dir = e.opts.OutDir
	}
	return filepath.Join(dir, baseName(path)+".xlsx")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
