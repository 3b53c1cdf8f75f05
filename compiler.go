package mlfairy

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Compiler turns a verified artifact into a runtime-loadable model.
// Implementations are a black box to the acquisition task: given a source
// path they either produce a compiled form or fail.
type Compiler interface {
	// Compile produces the loadable form of the artifact at sourcePath.
	Compile(ctx context.Context, sourcePath string) (CompiledModel, error)
}

// CompilerFunc adapts a plain function to the Compiler interface.
type CompilerFunc func(ctx context.Context, sourcePath string) (CompiledModel, error)

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, sourcePath string) (CompiledModel, error) {
	return f(ctx, sourcePath)
}

// copyCompiler is the default Compiler. It copies the artifact to a
// ".compiled" sibling and returns that path as the model handle. Real
// deployments replace it via WithCompiler with a backend that actually
// loads the model.
type copyCompiler struct{}

// Ensure copyCompiler implements Compiler.
var _ Compiler = copyCompiler{}

// Compile copies sourcePath to sourcePath+".compiled".
func (copyCompiler) Compile(ctx context.Context, sourcePath string) (CompiledModel, error) {
	if err := ctx.Err(); err != nil {
		return CompiledModel{}, err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return CompiledModel{}, fmt.Errorf("opening artifact: %w", err)
	}
	defer src.Close()

	compiledPath := sourcePath + ".compiled"
	dst, err := os.Create(compiledPath)
	if err != nil {
		return CompiledModel{}, fmt.Errorf("creating compiled file: %w", err)
	}

	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(compiledPath)
		return CompiledModel{}, fmt.Errorf("writing compiled file: %w", err)
	}

	return CompiledModel{Path: compiledPath, Model: compiledPath}, nil
}
