package compile

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"bte/archive"
	"bte/dom"
	"bte/state"
)

// Stdio is the source name selecting standard input and output.
const Stdio = "-"

// Run implements compile command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src, dst, err := prepare(env, cmd, log)
	if err != nil {
		return err
	}

	e, err := newEngine(env)
	if err != nil {
		return err
	}

	if src == Stdio {
		return compileStream(ctx, e, os.Stdin, os.Stdout, env)
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, e, src, dst, env, log)
}

// prepare handles arguments and flags shared by compile and watch commands.
func prepare(env *state.LocalEnv, cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src != Stdio {
		if src, err = filepath.Abs(src); err != nil {
			return "", "", err
		}
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	if cmd.Bool("diagnostics") {
		env.Cfg.Compiler.Diagnostics = true
	}

	// Legacy documents may lack proper charset declaration, let user force
	// one
	if cp := cmd.String("charset"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully decoding all input documents", zap.String("charset", n))
		}
	}
	return src, dst, nil
}

// newEngine reads configured stylesheets falling back to embedded ones.
func newEngine(env *state.LocalEnv) (*Engine, error) {
	stylesheet, err := readStylesheet(env.Cfg.Compiler.StylesheetPath, env.DefaultStylesheet)
	if err != nil {
		return nil, err
	}
	headStylesheet, err := readStylesheet(env.Cfg.Compiler.HeadStylesheetPath, env.DefaultHeadStylesheet)
	if err != nil {
		return nil, err
	}
	return NewEngine(&env.Cfg.Compiler, stylesheet, headStylesheet, env.Log)
}

func readStylesheet(path string, def []byte) ([]byte, error) {
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet from %q: %w", path, err)
	}
	return data, nil
}

// compileStream compiles single document from r into w.
func compileStream(ctx context.Context, e *Engine, r io.Reader, w io.Writer, env *state.LocalEnv) error {
	res, err := e.Compile(ctx, r, "stdin", env.CodePage)
	if err != nil {
		return err
	}
	storeReport(env, "stdin", res)
	if _, err := w.Write(res.Output); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	return nil
}

// process determines the input type (directory, archive, or single file),
// collects documents to compile and compiles them.
func process(ctx context.Context, e *Engine, src, dst string, env *state.LocalEnv, log *zap.Logger) error {
	sources, err := collect(ctx, src, env, log)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Info("Nothing to process", zap.String("source", src))
		return nil
	}

	sink := func(_ context.Context, s Source, res *Result) error {
		return writeResult(s, res, dst, env, log)
	}
	if err := e.CompileAll(ctx, sources, env.Cfg.Compiler.Workers, env.CodePage, sink); err != nil {
		return fmt.Errorf("some documents were not compiled: %w", err)
	}
	return nil
}

// collect walks source path from the end looking for existing file system
// object: path could point inside of an archive.
func collect(ctx context.Context, src string, env *state.LocalEnv, log *zap.Logger) ([]Source, error) {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return collectDir(ctx, head, env, log)
		}

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			return collectArchive(ctx, head, filepath.ToSlash(tail), "", env, log)
		}

		isHTML, err := isHTMLFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check file type: %w", err)
		}
		if isHTML && len(tail) == 0 {
			return []Source{fileSource(head, filepath.Base(head))}, nil
		}
		return nil, fmt.Errorf("input was not recognized as HTML document (%s)", head)
	}
	return nil, fmt.Errorf("input source was not found (%s)", src)
}

func fileSource(path, name string) Source {
	return Source{
		Name:   name,
		Origin: path,
		Open:   func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// collectDir walks directory tree finding documents matching include
// patterns. Archives are looked into. Results are in natural order.
func collectDir(ctx context.Context, dir string, env *state.LocalEnv, log *zap.Logger) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			found, err := collectArchive(ctx, path, "", filepath.Dir(rel), env, log)
			if err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			sources = append(sources, found...)
			return nil
		}

		if !archive.Included(filepath.ToSlash(rel), env.Cfg.Input.Include) {
			log.Debug("Skipping file, not included", zap.String("file", path))
			return nil
		}
		isHTML, err := isHTMLFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !isHTML {
			log.Debug("Skipping file, not recognized as HTML", zap.String("file", path))
			return nil
		}
		sources = append(sources, fileSource(path, rel))
		return nil
	})
	slices.SortStableFunc(sources, func(a, b Source) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		default:
			return 1
		}
	})
	return sources, err
}

// collectArchive reads documents under pathIn inside archive. Documents are
// small, they are kept in memory so archive could be closed right away.
func collectArchive(ctx context.Context, path, pathIn, pathOut string, env *state.LocalEnv, log *zap.Logger) ([]Source, error) {
	var sources []Source
	err := archive.Walk(path, pathIn, env.Cfg.Input.Include, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := f.Open()
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		if !looksLikeHTML(data) {
			log.Debug("Skipping file, not recognized as HTML", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}

		name := f.Name
		if cp := env.CodePage; cp != nil && f.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			} else {
				log.Warn("Unable to convert archive name from specified encoding", zap.String("path", name), zap.Error(err))
			}
		}

		sources = append(sources, Source{
			Name:   filepath.Join(pathOut, filepath.FromSlash(name)),
			Origin: arc,
			Open:   func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
		})
		return nil
	})
	return sources, err
}

// writeResult stores compiled document next to its siblings under dst.
func writeResult(src Source, res *Result, dst string, env *state.LocalEnv, log *zap.Logger) error {
	outputName := buildOutputPath(res, src.Name, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, res.Output, 0644); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	storeReport(env, src.Name, res)

	log.Info("Document compiled", zap.String("from", src.Name), zap.String("to", outputName),
		zap.Stringer("id", res.ID), zap.Int("warnings", len(res.Warnings)))
	return nil
}

// storeReport saves compilation details for debugging.
func storeReport(env *state.LocalEnv, name string, res *Result) {
	if env.Rpt == nil {
		return
	}
	prefix := fmt.Sprintf("documents/%s/", res.ID)
	env.Rpt.StoreData(prefix+"source.txt", []byte(name))
	env.Rpt.StoreData(prefix+"input.html", res.Input)
	env.Rpt.StoreData(prefix+"result.html", res.Output)
	env.Rpt.StoreData(prefix+"tree.txt", []byte(dom.Dump(res.Doc)))
	if len(res.Warnings) > 0 {
		var buf bytes.Buffer
		for _, w := range res.Warnings {
			buf.WriteString(w.String())
			buf.WriteByte('\n')
		}
		env.Rpt.StoreData(prefix+"warnings.txt", buf.Bytes())
	}
}
