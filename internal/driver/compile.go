// Package driver runs the single-file compilation pipeline: load, parse,
// optional verification, optimization and lowering to a DIS listing.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"fortio.org/safecast"

	"dlc/internal/backend"
	"dlc/internal/config"
	"dlc/internal/diag"
	"dlc/internal/igr"
	"dlc/internal/lexer"
	"dlc/internal/observ"
	"dlc/internal/opt"
	"dlc/internal/oracle"
	"dlc/internal/parser"
	"dlc/internal/source"
	"dlc/internal/trace"
)

// ErrSourceErrors is returned when the source file produced diagnostics of
// error severity; Result.Bag holds them.
var ErrSourceErrors = errors.New("source errors")

// ErrInvalidGraph wraps igr.Validate failures found by Options.Verify.
var ErrInvalidGraph = errors.New("invalid graph")

// Options controls Compile.
type Options struct {
	Config config.Config
	// NoOpt skips the optimizer regardless of Config.Optimize.Passes.
	NoOpt bool
	// Verify runs igr.Validate before lowering.
	Verify         bool
	MaxDiagnostics int
	// DotBefore and DotAfter receive Graphviz dumps around the optimizer.
	DotBefore io.Writer
	DotAfter  io.Writer
	// Oracle replaces the dvm process for the dvm engine.
	Oracle        oracle.Oracle
	PhaseObserver PhaseObserver
}

// Result holds everything a compilation produced, also on failure.
type Result struct {
	FileSet  *source.FileSet
	File     *source.File
	Bag      *diag.Bag
	Graph    *igr.Graph
	Optimize opt.Report
	Lowered  *backend.Result
	Timings  observ.Report
}

// Compile loads path and compiles it.
func Compile(ctx context.Context, path string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{Config: config.Default()}
	}
	fs := source.NewFileSet()
	ph := &phases{timer: observ.NewTimer(), observer: opts.PhaseObserver}

	span, ctx := trace.BeginCtx(ctx, trace.ScopeDriver, "compile")
	span.WithExtra("path", path)
	defer span.End("")

	_, end := ph.begin(ctx, PhaseLoad)
	fileID, err := fs.Load(path)
	end("", err)
	if err != nil {
		return &Result{FileSet: fs, Timings: ph.timer.Report()}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return compileFile(ctx, fs, fileID, opts, ph)
}

// CompileSource compiles an in-memory source registered under name.
func CompileSource(ctx context.Context, name string, content []byte, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{Config: config.Default()}
	}
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, content)
	span, ctx := trace.BeginCtx(ctx, trace.ScopeDriver, "compile")
	span.WithExtra("path", name)
	defer span.End("")
	return compileFile(ctx, fs, fileID, opts, &phases{timer: observ.NewTimer(), observer: opts.PhaseObserver})
}

func compileFile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts *Options, ph *phases) (res *Result, err error) {
	cfg := opts.Config
	res = &Result{FileSet: fs, File: fs.Get(fileID)}
	defer func() { res.Timings = ph.timer.Report() }()

	pctx, end := ph.begin(ctx, PhaseParse)
	res.Graph, res.Bag, err = Parse(pctx, fs, fileID, cfg.Compile.Entry, opts.MaxDiagnostics)
	if err == nil && res.Bag.HasErrors() {
		err = fmt.Errorf("%s: %w", res.File.DisplayPath(), ErrSourceErrors)
	}
	end(strconv.Itoa(res.Bag.Len())+" diagnostics", err)
	if err != nil {
		return res, err
	}

	if opts.DotBefore != nil {
		if err := igr.WriteDot(opts.DotBefore, res.Graph); err != nil {
			return res, fmt.Errorf("dot: %w", err)
		}
	}

	if err := optimize(ctx, res, opts, ph); err != nil {
		return res, err
	}

	if opts.DotAfter != nil {
		if err := igr.WriteDot(opts.DotAfter, res.Graph); err != nil {
			return res, fmt.Errorf("dot: %w", err)
		}
	}

	if opts.Verify {
		_, end := ph.begin(ctx, PhaseVerify)
		err := igr.Validate(res.Graph)
		end("", err)
		if err != nil {
			return res, fmt.Errorf("verify: %w: %w", ErrInvalidGraph, err)
		}
	}

	_, end = ph.begin(ctx, PhaseLower)
	res.Lowered, err = backend.Lower(res.Graph, backend.Options{Entry: cfg.Compile.Entry})
	end("", err)
	return res, err
}

func optimize(ctx context.Context, res *Result, opts *Options, ph *phases) error {
	cfg := opts.Config
	if opts.NoOpt || len(cfg.Optimize.Passes) == 0 {
		return nil
	}
	ev, err := evaluator(cfg.Oracle, opts.Oracle)
	if err != nil {
		return err
	}
	pipeline, err := opt.NewPipeline(opt.Config{
		Passes:          cfg.Optimize.Passes,
		Entry:           cfg.Compile.Entry,
		InlineThreshold: cfg.Optimize.InlineThreshold,
		MaxRounds:       cfg.Optimize.MaxRounds,
		Evaluator:       ev,
	})
	if err != nil {
		return err
	}

	octx, end := ph.begin(ctx, PhaseOptimize)
	res.Optimize, err = pipeline.Run(octx, res.Graph)
	note := strconv.Itoa(res.Optimize.Rounds) + " rounds"
	if !res.Optimize.Converged {
		note += ", not converged"
	}
	if oe, ok := ev.(opt.OracleEvaluator); ok {
		if cn := oracle.CacheNote(oe.Oracle); cn != "" {
			note += ", " + cn
		}
	}
	end(note, err)
	return err
}

// Parse runs the lexer and parser over one file of fs. The returned error
// is non-nil only for invalid options; source problems land in the bag.
func Parse(ctx context.Context, fs *source.FileSet, fileID source.FileID, entry string, maxDiagnostics int) (*igr.Graph, *diag.Bag, error) {
	bag := diag.NewBag(maxDiagnostics)
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, bag, err
	}

	file := fs.Get(fileID)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	result := parser.ParseFile(fs, lx, parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
		Entry:     entry,
	})
	trace.PointCtx(ctx, trace.ScopeModule, "functions", strconv.Itoa(len(result.Graph.FunctionNames())))
	return result.Graph, bag, nil
}
