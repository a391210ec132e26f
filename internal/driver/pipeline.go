package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/check/borrow"
	"github.com/sushi-lang/sushic/internal/check/scope"
	"github.com/sushi-lang/sushic/internal/check/types"
	"github.com/sushi-lang/sushic/internal/codegen/llvmir"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/instantiate"
	"github.com/sushi-lang/sushic/internal/link"
	"github.com/sushi-lang/sushic/internal/manifest"
	"github.com/sushi-lang/sushic/internal/mir"
	"github.com/sushi-lang/sushic/internal/monomorphize"
	"github.com/sushi-lang/sushic/internal/rewrite"
	"github.com/sushi-lang/sushic/internal/symbols"
)

// Result is what Compile reports back to the CLI layer: the exit code to
// use (§6: 0 success, 1 user errors, 2 internal compiler error) and the
// diagnostics collected along the way.
type Result struct {
	ExitCode    int
	Diagnostics []diag.Diagnostic
	Executable  string
	ManifestOut string
}

// Compile runs the full pipeline of §4 in order (§5's ordering
// requirement): parse every source path via the injected Frontend,
// collect symbols, scan/monomorphize generic instantiations, resolve
// remaining types and derive hashes, analyze scope, type-check,
// borrow-check, lower to MIR, emit LLVM IR, optionally merge stdlib
// bitcode, optimize, compile to an object file, and system-link. A pass
// that reports any error stops further passes (§5 "Cancellation") after
// draining the current pass's errors.
func (s *Session) Compile(ctx context.Context, sourcePaths []string) Result {
	if s.Frontend == nil {
		s.Log.Error("internal error: no frontend wired; cannot parse source files")
		return Result{ExitCode: 2, Diagnostics: nil}
	}

	files := make([]*ast.File, 0, len(sourcePaths))
	for _, path := range sourcePaths {
		src, err := os.ReadFile(path)
		if err != nil {
			s.Log.WithError(err).WithField("path", path).Error("failed to read source file")
			return Result{ExitCode: 2}
		}
		file, err := s.Frontend(path, src)
		if err != nil {
			s.Log.WithError(err).WithField("path", path).Error("frontend failed to parse source file")
			return Result{ExitCode: 2}
		}
		files = append(files, file)
	}

	reporter := diag.NewReporter()

	collector := symbols.NewCollector(reporter)
	collector.Collect(files)
	collector.SeedSyntheticHashable()
	tables := collector.Tables
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	scanner := instantiate.NewScanner(tables)
	initial := scanner.Scan(files)

	mono := monomorphize.NewMonomorphizer(tables, reporter, map[string]monomorphize.PerkBounds{})
	mono.Run(initial)
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	rewrite.NewTransformer(tables, reporter).Run()
	rewrite.NewHashDeriver(tables, reporter).Run()
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	scope.NewAnalyzer(tables, reporter).Run()
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	types.NewChecker(tables, reporter).Run()
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	borrow.NewChecker(tables, reporter).Run()
	if reporter.HasErrors() {
		return s.userErrorResult(reporter)
	}

	module := mir.NewLowerer(tables).LowerModule()

	gen := llvmir.NewGenerator()
	llvmModule := gen.LowerModule(module)
	irText := llvmModule.String()

	if s.Config.EmitLL {
		fmt.Println(irText)
	}

	var unitPaths []string
	for _, use := range tables.StdlibUses {
		unitPaths = append(unitPaths, use.ModulePath)
	}

	out, err := s.writeAndLink(ctx, irText, unitPaths)
	if err != nil {
		s.Log.WithError(err).Error("link pipeline failed")
		return Result{ExitCode: 2, Diagnostics: reporter.Diagnostics()}
	}

	res := Result{ExitCode: 0, Diagnostics: reporter.Diagnostics(), Executable: out}

	if s.Config.LibraryName != "" {
		manifestPath := s.Config.LibraryName + ".sushilib"
		m := manifest.BuildFromTables(tables, s.Config.LibraryName, s.compiledAt(), s.Config.CompilerVers)
		if err := manifest.Write(manifestPath, m); err != nil {
			s.Log.WithError(err).Warn("failed to write .sushilib manifest")
		} else {
			res.ManifestOut = manifestPath
		}
	}

	return res
}

func (s *Session) userErrorResult(r *diag.Reporter) Result {
	return Result{ExitCode: 1, Diagnostics: r.Diagnostics()}
}

// writeAndLink spills the generated IR to a temp file and runs §4.8's
// stdlib-merge/optimize/object/system-link steps in order. unitPaths are
// the `use` module paths the collector recorded (tables.StdlibUses),
// resolved against Config.StdlibDist before merging.
func (s *Session) writeAndLink(ctx context.Context, irText string, unitPaths []string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "sushic-*")
	if err != nil {
		return "", err
	}

	irPath := filepath.Join(tmpDir, "module.ll")
	if err := os.WriteFile(irPath, []byte(irText), 0o644); err != nil {
		return "", err
	}

	opts := link.Options{
		CC:         s.Config.CC,
		OptLevel:   s.Config.OptLevel,
		DebugInfo:  s.Config.DebugInfo,
		KeepObject: s.Config.KeepObject,
		StdlibDist: s.Config.StdlibDist,
		Log:        s.Log,
	}

	merged := irPath
	if len(unitPaths) > 0 && opts.StdlibDist != "" {
		bcFiles, err := link.ResolveUnits(opts.StdlibDist, link.Platform(), unitPaths)
		if err != nil {
			return "", err
		}
		merged, err = link.MergeBitcode(ctx, opts, irPath, bcFiles)
		if err != nil {
			return "", err
		}
	}

	optimized := link.Optimize(ctx, opts, merged)

	objFile, err := link.CompileObject(ctx, opts, optimized)
	if err != nil {
		return "", err
	}

	output := s.Config.Output
	if output == "" {
		output = "a.out"
	}
	if err := link.SystemLink(ctx, opts, []string{objFile}, output); err != nil {
		return "", err
	}

	link.Cleanup(opts, objFile, optimized)
	if optimized != merged {
		link.Cleanup(opts, merged)
	}
	return output, nil
}

// nowUTC is overridable in tests so manifest output stays deterministic
// without depending on wall-clock time.
var nowUTC = func() time.Time { return time.Now().UTC() }

func (s *Session) compiledAt() string {
	return nowUTC().Format("2006-01-02T15:04:05Z")
}
