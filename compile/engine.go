// Package compile turns authored documents into email ready HTML: it runs
// compiler passes, inlines styles, fills document head and serializes
// results. It also implements compile and watch commands.
package compile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding"

	"bte/compiler"
	"bte/config"
	"bte/css"
	"bte/dom"
	"bte/helper"
	"bte/inline"
	"bte/templates"
)

// custom properties of the stylesheet overriding configuration
const (
	varGridColumns       = "--grid-columns"
	varContainerMaxWidth = "--container-max-width"
)

// Engine holds everything shared by compilations: templates, compiled
// stylesheet rules and prepared head styles. It is immutable after creation
// and safe for concurrent use.
type Engine struct {
	reg         *templates.Registry
	inliner     *inline.Inliner
	opts        compiler.Options
	diagnostics bool
	headStyle   string
	extracted   string
	log         *zap.Logger
}

// Result of a single document compilation.
type Result struct {
	ID       uuid.UUID
	Input    []byte
	Output   []byte
	Warnings []compiler.Warning
	Doc      *html.Node
}

// NewEngine loads templates and prepares stylesheets. Main stylesheet is
// split into rules to be inlined and rules extracted into head, head
// stylesheet is injected as is.
func NewEngine(cfg *config.CompilerConfig, stylesheet, headStylesheet []byte, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("engine")

	reg, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("unable to load templates: %w", err)
	}

	sheet := css.NewParser(log).Parse(stylesheet, "stylesheet")
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem", zap.String("problem", w))
	}
	inlined, extracted := sheet.Split()

	opts := compiler.Options{
		Columns:                cfg.GridColumns,
		ContainerWidth:         cfg.ContainerWidth,
		ContainerWidthFallback: cfg.ContainerWidthFallback,
		Components:             cfg.Components,
	}
	if n, ok := sheet.IntVariable(varGridColumns); ok && n > 0 {
		opts.Columns = n
	}
	if n, ok := sheet.IntVariable(varContainerMaxWidth); ok && n > 0 {
		opts.ContainerWidth = n
	}

	e := &Engine{
		reg:         reg,
		inliner:     inline.New(inlined, log),
		opts:        opts,
		diagnostics: cfg.Diagnostics,
		log:         log,
	}

	e.headStyle = string(headStylesheet)
	if !extracted.IsEmpty() {
		e.extracted = extracted.String()
	}
	if cfg.MinifyHead {
		if e.headStyle, err = minifyCSS(e.headStyle); err != nil {
			return nil, fmt.Errorf("unable to minify head stylesheet: %w", err)
		}
		if e.extracted, err = minifyCSS(e.extracted); err != nil {
			return nil, fmt.Errorf("unable to minify extracted styles: %w", err)
		}
	}

	log.Debug("Engine ready",
		zap.Int("columns", opts.Columns), zap.Int("container_width", opts.ContainerWidth),
		zap.Int("head_bytes", len(e.headStyle)), zap.Int("extracted_bytes", len(e.extracted)))
	return e, nil
}

// Options returns compiler options in effect.
func (e *Engine) Options() compiler.Options {
	return e.opts
}

// Compile processes single document read from r. When enc is not nil input
// is decoded with it, otherwise encoding is detected. Name is used for
// logging only. Panics are recovered and returned as errors.
func (e *Engine) Compile(ctx context.Context, r io.Reader, name string, enc encoding.Encoding) (res *Result, rerr error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate document id: %w", err)
	}
	log := e.log.With(zap.String("document", name), zap.Stringer("id", id))

	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			res, rerr = nil, fmt.Errorf("compilation panic: %v", r)
		}
	}(time.Now())

	input, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", name, err)
	}
	doc, err := dom.Parse(bytes.NewReader(input), "text/html", enc)
	if err != nil {
		return nil, err
	}

	h := helper.New(e.reg, e.diagnostics, log)
	c := compiler.New(doc, h, e.opts, log)
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("unable to compile %s: %w", name, err)
	}

	e.inliner.Apply(doc)
	injectHead(doc, e.headStyle, e.extracted)

	var buf bytes.Buffer
	if err := dom.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("unable to render %s: %w", name, err)
	}

	return &Result{
		ID:       id,
		Input:    input,
		Output:   buf.Bytes(),
		Warnings: c.Warnings(),
		Doc:      doc,
	}, nil
}

func minifyCSS(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	return m.String("text/css", s)
}
