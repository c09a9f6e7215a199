package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/partbench/partbench/internal/config"
)

// settle is how long Watch waits after the last event before rerunning.
// Editors and the benchmark tools often emit several writes per save.
var settle = 200 * time.Millisecond

// WatchPaths returns the files a rerun depends on: the config file (when
// cfgPath is set) and every source input. Files the pipeline itself writes
// are excluded so a run never triggers the next one.
func WatchPaths(cfgPath string, cfg *config.Config) []string {
	outputs := map[string]bool{
		filepath.Clean(cfg.Speedup.Output): true,
	}
	if cfg.Speedup.Exposition != "" {
		outputs[filepath.Clean(cfg.Speedup.Exposition)] = true
	}
	if cfg.Bench.Enabled {
		outputs[filepath.Clean(cfg.Bench.PartitionOutput)] = true
		outputs[filepath.Clean(cfg.Bench.ThresholdOutput)] = true
	}
	for _, ch := range cfg.Charts {
		outputs[filepath.Clean(ch.Output)] = true
	}

	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if outputs[p] || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if cfgPath != "" {
		add(cfgPath)
	}
	add(cfg.Speedup.Input)
	for _, ch := range cfg.Charts {
		if !isBuiltin(ch.Input) {
			add(ch.Input)
		}
	}
	return paths
}

// Watch runs the pipeline once, then again every time one of WatchPaths
// changes, until ctx is cancelled. onRun receives the result of every run.
//
// A change to cfgPath reloads the config first. If the reload fails the error
// is logged, the previous config stays active and no run happens unless a
// source input changed too. An empty cfgPath means cfg was not loaded from a
// file and only source inputs are watched.
//
// Parent directories are watched rather than the files themselves so that
// atomic saves (write to temp, rename over) and files that do not exist yet
// are both seen.
//
// opts apply to every Runner Watch builds, including after a reload.
func Watch(ctx context.Context, cfgPath string, cfg *config.Config, onRun func(error), opts ...Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	r := New(cfg, opts...)
	cfgClean := ""
	if cfgPath != "" {
		cfgClean = filepath.Clean(cfgPath)
	}

	targets, err := addTargets(watcher, WatchPaths(cfgPath, cfg))
	if err != nil {
		return err
	}
	slog.Info("runner: watching for changes", "paths", keys(targets))

	onRun(r.Run(ctx))

	var (
		fire          <-chan time.Time
		reload, input bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !targets[name] {
				continue
			}
			slog.Debug("runner: change detected", "path", name, "op", event.Op.String())
			if name == cfgClean {
				reload = true
			} else {
				input = true
			}
			fire = time.After(settle)

		case <-fire:
			fire = nil
			if reload {
				reload = false
				updated, err := config.Load(cfgPath)
				if err != nil {
					slog.Error("runner: config reload failed, keeping previous config",
						"path", cfgPath, "err", err)
				} else {
					slog.Info("runner: config reloaded", "path", cfgPath)
					r = New(updated, opts...)
					targets, err = addTargets(watcher, WatchPaths(cfgPath, updated))
					if err != nil {
						return err
					}
					input = true
				}
			}
			if !input {
				continue
			}
			input = false
			onRun(r.Run(ctx))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("runner: watcher error", "err", err)
		}
	}
}

// addTargets watches the parent directory of every path and returns the set
// of paths whose events matter. Directories that do not exist are skipped
// with a warning.
func addTargets(w *fsnotify.Watcher, paths []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(paths))
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, err := os.Stat(dir); err != nil {
			slog.Warn("runner: cannot watch directory", "dir", dir, "path", p, "err", err)
			continue
		}
		if err := w.Add(dir); err != nil {
			return nil, err
		}
		targets[p] = true
	}
	return targets, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
