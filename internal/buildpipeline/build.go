// Package buildpipeline compiles many source files concurrently and reports
// per-file progress events.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"dlc/internal/config"
	"dlc/internal/driver"
	"dlc/internal/trace"
)

// ConfigFunc returns the configuration governing one source file.
type ConfigFunc func(file string) (config.Config, error)

// BuildRequest configures a multi-file build.
type BuildRequest struct {
	Files []string
	// BaseDir shortens file names in progress events.
	BaseDir string
	// Jobs bounds concurrent compilations; GOMAXPROCS when <= 0.
	Jobs int
	// Options is the template for every file; Config and PhaseObserver
	// are set per file, DOT writers are ignored.
	Options driver.Options
	// Config defaults to dlc.toml discovery from the file's directory.
	Config ConfigFunc
	// NoWrite skips writing the sibling listings.
	NoWrite  bool
	Progress ProgressSink
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path       string
	Display    string
	OutputPath string
	Result     *driver.Result
	Err        error
	Timings    Timings
}

// BuildResult collects file outcomes in request order.
type BuildResult struct {
	Files   []FileResult
	Elapsed time.Duration
}

// Failed returns the number of files that did not compile.
func (r BuildResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the per-file errors, nil when every file compiled.
func (r BuildResult) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Display, f.Err))
		}
	}
	return errors.Join(errs...)
}

// Build compiles req.Files. A failing file does not stop the others; only
// cancellation of ctx aborts the build and is returned as the error.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no input files")
	}
	start := time.Now()

	base := req.BaseDir
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	result.Files = make([]FileResult, len(req.Files))
	display := make([]string, len(req.Files))
	for i, f := range req.Files {
		display[i] = displayName(f, base)
		result.Files[i] = FileResult{Path: f, Display: display[i]}
	}
	emitQueued(req.Progress, display)

	span, ctx := trace.BeginCtx(ctx, trace.ScopeDriver, "build")
	defer span.End("")

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			buildOne(gctx, req, &result.Files[i])
			return nil
		})
	}
	err := g.Wait()
	result.Elapsed = time.Since(start)

	failed := result.Failed()
	span.WithExtra("files", fmt.Sprint(len(req.Files))).WithExtra("failed", fmt.Sprint(failed))
	status := StatusDone
	if failed > 0 || err != nil {
		status = StatusError
	}
	emitStage(req.Progress, nil, StageWrite, status, err, result.Elapsed)
	return result, err
}

func buildOne(ctx context.Context, req *BuildRequest, fr *FileResult) {
	fr.Err = compileOne(ctx, req, fr)
	if req.Progress == nil {
		return
	}
	if fr.Err != nil {
		req.Progress.OnEvent(Event{File: fr.Display, Stage: StageWrite, Status: StatusError, Err: fr.Err})
		return
	}
	req.Progress.OnEvent(Event{File: fr.Display, Stage: StageWrite, Status: StatusDone, Elapsed: fr.Timings.Sum(StageParse, StageOptimize, StageLower, StageWrite)})
}

func compileOne(ctx context.Context, req *BuildRequest, fr *FileResult) error {
	cfgFor := req.Config
	if cfgFor == nil {
		cfgFor = func(file string) (config.Config, error) {
			return config.Discover(filepath.Dir(file))
		}
	}
	cfg, err := cfgFor(fr.Path)
	if err != nil {
		return err
	}

	obs := &phaseObserver{sink: req.Progress, file: fr.Display, timings: &fr.Timings}
	opts := req.Options
	opts.Config = cfg
	opts.PhaseObserver = obs.OnPhase
	opts.DotBefore, opts.DotAfter = nil, nil

	fr.Result, err = driver.Compile(ctx, fr.Path, &opts)
	if err != nil {
		return err
	}
	if req.NoWrite {
		return nil
	}

	if req.Progress != nil {
		req.Progress.OnEvent(Event{File: fr.Display, Stage: StageWrite, Status: StatusWorking})
	}
	writeStart := time.Now()
	fr.OutputPath = driver.OutputPath(fr.Path, cfg.Compile.Extension)
	err = driver.WriteOutput(fr.OutputPath, fr.Result)
	fr.Timings.Set(StageWrite, time.Since(writeStart))
	return err
}
