// Package config resolves build options from the environment. Command-line
// flags override whatever is found here.
package config

import (
	"fmt"

	"github.com/xyproto/env/v2"

	"github.com/lhaig/pybat/internal/batch"
)

// Environment variables read by FromEnv.
const (
	EnvCRLF    = "PYBAT_CRLF"
	EnvOutDir  = "PYBAT_OUT_DIR"
	EnvVerbose = "PYBAT_VERBOSE"
	EnvIndent  = "PYBAT_INDENT"
)

// MaxIndent bounds the indent width accepted from the environment or flags.
const MaxIndent = 16

// Options holds the settings shared by every subcommand.
type Options struct {
	CRLF    bool   // write \r\n line endings
	OutDir  string // directory for generated scripts; empty means next to the input
	Verbose bool   // report lowering statistics on stderr
	Indent  int    // spaces per block level
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{Indent: batch.DefaultIndent}
}

// FromEnv starts from Default and applies any PYBAT_* variables that are set.
func FromEnv() Options {
	opts := Default()
	if env.Has(EnvCRLF) {
		opts.CRLF = env.Bool(EnvCRLF)
	}
	if env.Has(EnvVerbose) {
		opts.Verbose = env.Bool(EnvVerbose)
	}
	opts.OutDir = env.Str(EnvOutDir, opts.OutDir)
	opts.Indent = env.Int(EnvIndent, opts.Indent)
	return opts
}

// Validate reports settings the emitter cannot honour.
func (o Options) Validate() error {
	if o.Indent < 1 || o.Indent > MaxIndent {
		return fmt.Errorf("indent must be between 1 and %d, got %d", MaxIndent, o.Indent)
	}
	return nil
}

// Batch returns the emitter options.
func (o Options) Batch() batch.Options {
	return batch.Options{CRLF: o.CRLF, Indent: o.Indent}
}
