// Package codegen turns the message schema into a Go package and a browser
// client. Each target independently ends in one of three outcomes, and no
// outcome fails the build: only configuration and output I/O errors do.
package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/canvasproto/internal/config"
	"github.com/danmuck/canvasproto/internal/logging"
	"github.com/danmuck/canvasproto/internal/observability"
	"github.com/danmuck/canvasproto/internal/schema"
	"github.com/danmuck/canvasproto/internal/toolchain"
)

// Generator runs one configured generation pass.
type Generator struct {
	cfg    config.Config
	runner toolchain.CommandRunner
	now    func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRunner replaces the process runner used for protoc and verifiers.
func WithRunner(r toolchain.CommandRunner) Option {
	return func(g *Generator) {
		g.runner = r
	}
}

// WithClock replaces the clock used for stamp timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func New(cfg config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, runner: toolchain.ExecRunner{}, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// target is one output runtime and how to produce it.
type target struct {
	name     Target
	output   string
	compiler toolchain.Compiler
	render   func(Input) ([]byte, error)
	verify   []string
	// descriptor receives a copy of the protoc descriptor set when set.
	descriptor string
}

func (g *Generator) targets() []target {
	var out []target
	if n := g.cfg.Native; n.Enabled {
		out = append(out, target{
			name:       TargetNative,
			output:     n.Output,
			compiler:   toolchain.Compiler{Runner: g.runner, Protoc: n.Protoc, Includes: n.Includes},
			render:     RenderGo,
			descriptor: n.Descriptor,
		})
	}
	if b := g.cfg.Browser; b.Enabled {
		out = append(out, target{
			name:     TargetBrowser,
			output:   b.Output,
			compiler: toolchain.Compiler{Runner: g.runner, Protoc: b.Protoc, Includes: b.Includes},
			render:   RenderJS,
			verify:   b.Verify,
		})
	}
	return out
}

// source is the schema as read once per run and shared by all targets.
type source struct {
	path    string
	name    string
	src     []byte
	hash    string
	readErr error

	scanned  *schema.Schema
	scanErr  error
	scanDone bool
}

// lenient returns the scanner's view of the schema, computed once.
func (s *source) lenient(log zerolog.Logger) (schema.Schema, error) {
	if !s.scanDone {
		s.scanDone = true
		sc, dropped, err := schema.Parse(s.name, s.src)
		for _, note := range dropped {
			log.Warn().Str("construct", note).Msg("codegen: scanner dropped unsupported construct")
		}
		if err == nil {
			err = schema.Validate(sc)
		}
		s.scanned, s.scanErr = &sc, err
	}
	return *s.scanned, s.scanErr
}

// Run generates every enabled target. Unless force is set, targets whose
// stamp shows the current schema was already handled are skipped.
func (g *Generator) Run(force bool) (Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logging.Logger().With().Str("run", runID).Logger()
	defer func() { observability.RecordCodegenRun(time.Since(start)) }()

	src := &source{path: g.cfg.Schema, name: filepath.Base(g.cfg.Schema)}
	src.src, src.readErr = schema.Read(g.cfg.Schema)
	if src.readErr == nil {
		src.hash = schema.Hash(src.src)
	}
	report := Report{RunID: runID, SchemaHash: src.hash}

	stamp, err := LoadStamp(g.cfg.Stamp)
	if err != nil {
		log.Warn().Err(err).Msg("codegen: ignoring unreadable stamp")
	}

	dirty := false
	for _, t := range g.targets() {
		tlog := log.With().Str("target", string(t.name)).Logger()
		if !force {
			if entry, ok := stamp.Fresh(t.name, src.hash, t.output); ok {
				outcome, _ := ParseOutcome(entry.Outcome)
				tlog.Info().Str("outcome", entry.Outcome).Str("output", t.output).Msg("codegen: up to date")
				report.Results = append(report.Results, Result{
					Target:  t.name,
					Outcome: outcome,
					Output:  t.output,
					Skipped: true,
				})
				observability.RecordCodegenResult(string(t.name), outcome.String(), true)
				continue
			}
		}

		res, err := g.generate(t, src, tlog)
		if err != nil {
			return report, err
		}
		logResult(tlog, res)
		observability.RecordCodegenResult(string(res.Target), res.Outcome.String(), false)
		report.Results = append(report.Results, res)
		stamp.Record(res, src.hash, runID, g.now())
		dirty = true
	}

	if dirty {
		if err := stamp.Save(g.cfg.Stamp); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (g *Generator) generate(t target, src *source, log zerolog.Logger) (Result, error) {
	if src.readErr != nil {
		return g.placeholder(t, src, src.readErr, false)
	}

	strict, descriptor, err := g.strict(t, src)
	if err != nil {
		return g.fallback(t, src, err, log)
	}
	if strict.Empty() {
		return g.placeholder(t, src, &schema.Error{Path: src.path, Kind: schema.KindEmpty}, false)
	}

	res, err := g.emit(t, Input{Schema: strict, Outcome: OutcomeGenerated, Hash: src.hash, GoPackage: g.cfg.Native.Package})
	var ioErr *outputError
	switch {
	case errors.As(err, &ioErr):
		return Result{}, err
	case err != nil:
		return g.fallback(t, src, err, log)
	}
	if t.descriptor != "" {
		if _, err := writeIfChanged(t.descriptor, descriptor); err != nil {
			return Result{}, fmt.Errorf("codegen: write descriptor set %s: %w", t.descriptor, err)
		}
	}
	return res, nil
}

// strict compiles the schema with protoc and loads the descriptor set.
func (g *Generator) strict(t target, src *source) (schema.Schema, []byte, error) {
	b, file, err := t.compiler.DescriptorSet(src.path)
	if err != nil {
		return schema.Schema{}, nil, err
	}
	s, err := schema.FromDescriptorSet(b, file)
	if err != nil {
		return schema.Schema{}, nil, err
	}
	if err := schema.Validate(s); err != nil {
		return schema.Schema{}, nil, err
	}
	return s, b, nil
}

func (g *Generator) fallback(t target, src *source, cause error, log zerolog.Logger) (Result, error) {
	scanned, err := src.lenient(log)
	if err != nil {
		return g.placeholder(t, src, errors.Join(cause, err), true)
	}
	if scanned.Empty() {
		return g.placeholder(t, src, errors.Join(cause, &schema.Error{Path: src.path, Kind: schema.KindEmpty}), true)
	}
	res, err := g.emit(t, Input{Schema: scanned, Outcome: OutcomeFallback, Hash: src.hash, GoPackage: g.cfg.Native.Package})
	if err != nil {
		return Result{}, err
	}
	res.Reason = cause
	res.Retry = true
	return res, nil
}

func (g *Generator) placeholder(t target, src *source, cause error, retry bool) (Result, error) {
	res, err := g.emit(t, Input{
		Schema:    PlaceholderSchema(src.name),
		Outcome:   OutcomePlaceholder,
		Hash:      src.hash,
		GoPackage: g.cfg.Native.Package,
	})
	if err != nil {
		return Result{}, err
	}
	res.Reason = cause
	res.Retry = retry
	return res, nil
}

// outputError marks a failure to write a target's output, which is the only
// kind of target failure that aborts a run.
type outputError struct {
	path string
	err  error
}

func (e *outputError) Error() string {
	return fmt.Sprintf("codegen: write %s: %v", e.path, e.err)
}

func (e *outputError) Unwrap() error {
	return e.err
}

// emit renders in, verifies the rendering when the target has a checker, and
// writes it. Render and verify failures are returned unwrapped so a
// generated rendering can fall back; write failures are *outputError.
func (g *Generator) emit(t target, in Input) (Result, error) {
	out, err := t.render(in)
	if err != nil {
		return Result{}, err
	}
	if in.Outcome == OutcomeGenerated && len(t.verify) > 0 {
		if err := g.verify(t, out); err != nil {
			return Result{}, err
		}
	}
	written, err := writeIfChanged(t.output, out)
	if err != nil {
		return Result{}, &outputError{path: t.output, err: err}
	}
	return Result{Target: t.name, Outcome: in.Outcome, Output: t.output, Written: written}, nil
}

// verify runs the target's checker over a temporary copy of the rendering,
// so a rejected rendering never reaches the output path.
func (g *Generator) verify(t target, out []byte) error {
	tmp, err := os.CreateTemp("", "canvasproto-verify-*"+filepath.Ext(t.output))
	if err != nil {
		return fmt.Errorf("codegen: verify temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("codegen: verify temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("codegen: verify temp file: %w", err)
	}
	return toolchain.Verify(g.runner, t.verify, tmp.Name())
}

func logResult(log zerolog.Logger, res Result) {
	switch res.Outcome {
	case OutcomeGenerated:
		log.Info().
			Str("outcome", res.Outcome.String()).
			Str("output", res.Output).
			Bool("written", res.Written).
			Msg("codegen: generated binary codec")
	case OutcomeFallback:
		log.Warn().
			Str("outcome", res.Outcome.String()).
			Str("tool", toolName(res.Reason)).
			Str("output", res.Output).
			Err(res.Reason).
			Msg("codegen: schema compiler unavailable, emitted JSON fallback codec")
	case OutcomePlaceholder:
		log.Warn().
			Str("outcome", res.Outcome.String()).
			Str("output", res.Output).
			Err(res.Reason).
			Msg("codegen: no usable schema, emitted placeholder types")
	}
}

// toolName names the external tool behind a degraded result.
func toolName(err error) string {
	var te *toolchain.ToolchainError
	if errors.As(err, &te) {
		return te.Tool
	}
	var ue *schema.UnsupportedError
	if errors.As(err, &ue) {
		return "schema loader"
	}
	return "renderer"
}
