package compile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bte/archive"
	"bte/state"
)

// editors tend to produce several events for a single save
const debounceDelay = 300 * time.Millisecond

// Watch implements watch command: everything is compiled once, then changed
// documents are recompiled until interrupted. Changes of configured
// stylesheets rebuild the engine and recompile everything.
func Watch(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	src, dst, err := prepare(env, cmd, log)
	if err != nil {
		return err
	}
	if src == Stdio {
		return errors.New("standard input could not be watched")
	}
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("only existing files and directories could be watched: %w", err)
	}
	dir := src
	if !fi.IsDir() {
		dir = filepath.Dir(src)
	}
	if within(dst, dir) {
		return fmt.Errorf("destination (%s) must be outside of watched directory (%s)", dst, dir)
	}
	// results of previous round are always replaced
	env.Overwrite = true

	e, err := newEngine(env)
	if err != nil {
		return err
	}
	if err := process(ctx, e, src, dst, env, log); err != nil {
		log.Error("Initial compilation incomplete", zap.Error(err))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer w.Close()

	if err := addRecursive(w, dir, fi.IsDir()); err != nil {
		return err
	}

	styles := make(map[string]bool)
	for _, p := range []string{env.Cfg.Compiler.StylesheetPath, env.Cfg.Compiler.HeadStylesheetPath} {
		if p == "" {
			continue
		}
		if p, err = filepath.Abs(p); err != nil {
			continue
		}
		styles[p] = true
		if err := w.Add(filepath.Dir(p)); err != nil {
			log.Warn("Unable to watch stylesheet", zap.String("file", p), zap.Error(err))
		}
	}

	log.Info("Watching for changes", zap.String("source", src), zap.String("destination", dst))

	pending := make(map[string]bool)
	timer := time.NewTimer(debounceDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watching stopped")
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher problem", zap.Error(err))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if ev.Has(fsnotify.Create) && fi.IsDir() {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := addRecursive(w, ev.Name, true); err != nil {
						log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if styles[ev.Name] || ev.Name == src || (fi.IsDir() && within(ev.Name, src)) {
				pending[ev.Name] = true
				timer.Reset(debounceDelay)
			}

		case <-timer.C:
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)

			if slices.ContainsFunc(changed, func(p string) bool { return styles[p] }) {
				log.Info("Stylesheet changed, recompiling everything")
				ne, err := newEngine(env)
				if err != nil {
					log.Error("Unable to reload stylesheets, keeping previous ones", zap.Error(err))
				} else {
					e = ne
				}
				if err := process(ctx, e, src, dst, env, log); err != nil {
					log.Error("Compilation incomplete", zap.Error(err))
				}
				continue
			}

			if !fi.IsDir() {
				if err := process(ctx, e, src, dst, env, log); err != nil {
					log.Error("Compilation incomplete", zap.Error(err))
				}
				continue
			}
			recompile(ctx, e, src, dst, changed, env, log)
		}
	}
}

// recompile processes changed files of watched directory, archives are
// processed completely.
func recompile(ctx context.Context, e *Engine, root, dst string, changed []string, env *state.LocalEnv, log *zap.Logger) {
	var sources []Source
	for _, path := range changed {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if isArchive, err := isArchiveFile(path); err == nil && isArchive {
			found, err := collectArchive(ctx, path, "", filepath.Dir(rel), env, log)
			if err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			sources = append(sources, found...)
			continue
		}
		if !archive.Included(filepath.ToSlash(rel), env.Cfg.Input.Include) {
			continue
		}
		if ok, err := isHTMLFile(path); err != nil || !ok {
			continue
		}
		sources = append(sources, fileSource(path, rel))
	}
	if len(sources) == 0 {
		return
	}

	log.Info("Recompiling changed documents", zap.Int("count", len(sources)))
	sink := func(_ context.Context, s Source, res *Result) error {
		return writeResult(s, res, dst, env, log)
	}
	if err := e.CompileAll(ctx, sources, env.Cfg.Compiler.Workers, env.CodePage, sink); err != nil {
		log.Error("Compilation incomplete", zap.Error(err))
	}
}

// addRecursive adds dir and, when requested, all directories under it.
func addRecursive(w *fsnotify.Watcher, dir string, recursive bool) error {
	if !recursive {
		return w.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("unable to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// within reports whether path is root or is located under it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
