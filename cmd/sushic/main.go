// Command sushic is the CLI driver of §6, gluing cobra-bound flags onto
// internal/driver.Session. Command structure (a root command carrying the
// build flags plus a separate `version` subcommand) is grounded on the
// pack's `saferwall-pe/cmd/pedumper.go`, a cobra CLI with exactly this
// shape (root command takes file/dir arguments and flags, a sibling
// `version` command prints a version string) — the teacher's own
// `cmd/malphas/main.go` dispatches subcommands by hand over the stdlib
// `flag` package instead of cobra.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/driver"
)

var formatter = diag.NewFormatter()

// compilerVersion is stamped at release time; the teacher's own
// `runVersion` prints a literal string the same way.
const compilerVersion = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := driver.DefaultConfig()
	var verbose bool
	var libraryName string

	rootCmd := &cobra.Command{
		Use:   "sushic [flags] <source-files-or-project-root>...",
		Short: "Compile Sushi source to a native executable",
		Long:  "sushic lowers Sushi source through the semantic middle-end to LLVM IR, optimizes it, and links a native executable.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Sources = args
			cfg.Verbose = verbose
			cfg.LibraryName = libraryName
			cfg.CompilerVers = compilerVersion

			s := driver.NewSession(cfg)
			res := s.Compile(context.Background(), args)
			for _, d := range res.Diagnostics {
				formatter.Format(d)
			}
			if res.ExitCode != 0 {
				cmd.SilenceUsage = true
				return exitCodeError(res.ExitCode)
			}
			if res.ManifestOut != "" {
				fmt.Fprintf(os.Stdout, "wrote %s\n", res.ManifestOut)
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output executable path")
	flags.StringVar(&cfg.CC, "cc", cfg.CC, "C driver used for final link")
	flags.StringVar(&cfg.OptLevel, "opt", cfg.OptLevel, "optimization tier: none|mem2reg|o1|o2|o3")
	flags.BoolVar(&cfg.EmitLL, "emit-ll", cfg.EmitLL, "print post-optimization IR to stdout")
	flags.BoolVarP(&cfg.DebugInfo, "debug-info", "g", cfg.DebugInfo, "request debug info from the C driver")
	flags.BoolVar(&cfg.KeepObject, "keep-object", cfg.KeepObject, "retain the .o file after link")
	flags.StringVar(&cfg.StdlibDist, "stdlib-dist", cfg.StdlibDist, "path to the stdlib bitcode distribution root")
	flags.StringVar(&libraryName, "library", "", "write a .sushilib manifest for this library name")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print compiler version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "sushic %s\n", compilerVersion)
		},
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitCodeError); ok {
			return int(code)
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// exitCodeError threads §6's exit-code contract (0/1/2) through cobra's
// error-returning RunE without cobra printing a redundant error line for
// what is already a reported-diagnostics exit.
type exitCodeError int

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
