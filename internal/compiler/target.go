package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lhaig/pybat/internal/batch"
)

// ScriptExtension is appended to the input's base name.
const ScriptExtension = ".bat"

// OutputPath returns where the script for inputPath goes: the input's
// base name with a .bat extension, in outDir when given, otherwise next to
// the input.
func OutputPath(inputPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ScriptExtension
	if outDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}
	return filepath.Join(outDir, base)
}

// Build compiles source and writes the script to outPath. Nothing is
// written when compilation fails; the returned error carries the
// formatted diagnostics.
func Build(source, filename, outPath string, opts batch.Options) (*Result, error) {
	res := Compile(source, opts)
	if res.Diagnostics.HasErrors() {
		return res, fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format(filename))
	}
	if err := WriteAtomic(outPath, res.Script); err != nil {
		return res, err
	}
	return res, nil
}

// WriteAtomic writes text to path atomically: it goes to a temp
// file in the same directory which is then renamed over path, so a reader
// never sees a partial file.
func WriteAtomic(path, text string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}
