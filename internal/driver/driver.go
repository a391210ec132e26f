// Package driver wires together one compiler invocation's configuration
// and logging, the ambient layer `cmd/sushic` binds its flags into before
// running the pipeline of §4. The teacher has no comparable session
// abstraction — cmd/malphas/main.go logs via a bare debugLog helper
// gated on an environment variable and carries no per-run identifier —
// so this package's structured-logging-plus-run-ID shape is adopted from
// the example pack instead (manifest-only entries such as
// other_examples/manifests/encoredev-encore/go.mod pair
// github.com/sirupsen/logrus with github.com/google/uuid for exactly this
// "tag every log line from one run with its run ID" purpose).
package driver

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sushi-lang/sushic/internal/ast"
)

// Config collects the CLI-level settings of §6 that the driver needs to
// run a compilation, independent of cobra's flag-binding mechanics.
type Config struct {
	Sources      []string // positional source paths or a project root
	Output       string   // -o, default "a.out"
	CC           string   // --cc, default "cc"
	OptLevel     string   // --opt, default "mem2reg"
	EmitLL       bool     // --emit-ll
	DebugInfo    bool     // -g
	KeepObject   bool     // --keep-object
	Verbose      bool     // extra driver-level logging
	CompilerVers string

	// StdlibDist is <install>/stdlib/dist (§6 "Environment"), the root
	// under which platform-specific bitcode units live. The `use` module
	// paths to resolve against it come from the collected symbol tables
	// (tables.StdlibUses), not from this config.
	StdlibDist string

	// LibraryName, when non-empty, requests a `.sushilib` manifest be
	// written alongside the build (§6 "library builds").
	LibraryName string
}

// DefaultConfig returns the §6-mandated flag defaults.
func DefaultConfig() Config {
	return Config{
		Output:   "a.out",
		CC:       "cc",
		OptLevel: "mem2reg",
	}
}

// Frontend turns one source file's path and bytes into a parsed AST file.
// §1 places the surface-syntax parser out of scope ("specified only as an
// external collaborator at §6"): this repo's `internal/ast` is consumed
// as a pre-parsed tree, so Session holds an injectable Frontend rather
// than owning a lexer/parser itself. A caller that never implemented a
// Sushi front-end (this repo does not) gets a clear "no frontend wired"
// internal error instead of a nil-pointer panic.
type Frontend func(path string, src []byte) (*ast.File, error)

// Session is one compiler invocation's identity and logger, created once
// per `sushic` run and threaded through the pipeline so every diagnostic
// or warning a pass logs (not the same as a user-facing diag.Diagnostic,
// which the formatter prints directly) carries the same run ID.
type Session struct {
	ID       string
	Config   Config
	Log      *logrus.Entry
	Frontend Frontend
}

// NewSession creates a Session with a fresh run ID and a logger
// pre-populated with it, at the verbosity level the config requests.
func NewSession(cfg Config) *Session {
	base := logrus.New()
	if cfg.Verbose {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.WarnLevel)
	}

	id := uuid.NewString()
	return &Session{
		ID:     id,
		Config: cfg,
		Log:    base.WithField("run_id", id),
	}
}
