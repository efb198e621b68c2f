package compile

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// Source is a document waiting for compilation.
type Source struct {
	// Name is path of the document relative to processed directory or
	// archive, it drives output naming.
	Name string
	// Origin is directory, archive or file the document came from.
	Origin string
	Open   func() (io.ReadCloser, error)
}

// SinkFunc receives every successfully compiled document.
type SinkFunc func(ctx context.Context, src Source, res *Result) error

// CompileAll compiles sources passing results to sink. With more than one
// worker documents are processed concurrently. Failure of one document never
// stops processing of others, all failures are combined into returned error.
// Cancellation stops scheduling of new documents.
func (e *Engine) CompileAll(ctx context.Context, sources []Source, workers int, enc encoding.Encoding, sink SinkFunc) error {
	if workers < 1 {
		workers = 1
	}

	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	sem := make(chan struct{}, workers)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			if err := e.compileSource(ctx, src, enc, sink); err != nil {
				e.log.Error("Unable to process document",
					zap.String("origin", src.Origin), zap.String("document", src.Name), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.Name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}

func (e *Engine) compileSource(ctx context.Context, src Source, enc encoding.Encoding, sink SinkFunc) (rerr error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Document processing ended with panic",
				zap.String("document", src.Name), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		}
	}()

	r, err := src.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := e.Compile(ctx, r, src.Name, enc)
	if err != nil {
		return err
	}
	return sink(ctx, src, res)
}
