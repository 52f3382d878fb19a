// Package registry holds the field catalogs a long-running process serves, keyed by index
// name, and reloads them when their files change.
package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Rorical/indexschema/internal/logging"
	"github.com/Rorical/indexschema/internal/translate"
)

type Registry struct {
	paths []string

	mu       sync.RWMutex
	catalogs map[string]*translate.Catalog
}

// Load reads every catalog file. Two files naming the same index are an error.
func Load(paths []string) (*Registry, error) {
	r := &Registry{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		r.paths = append(r.paths, abs)
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rereads all files. On failure the previous catalogs stay in place.
func (r *Registry) Reload() error {
	next := make(map[string]*translate.Catalog, len(r.paths))
	for _, p := range r.paths {
		c, err := translate.LoadCatalogFile(p)
		if err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}
		if _, dup := next[c.Index]; dup {
			return fmt.Errorf("catalog %s: index %q declared twice", p, c.Index)
		}
		next[c.Index] = c
	}
	r.mu.Lock()
	r.catalogs = next
	r.mu.Unlock()
	return nil
}

func (r *Registry) Get(index string) (*translate.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.catalogs[index]
	return c, ok
}

// Names returns the served index names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Watch reloads the registry whenever one of its files is written or replaced, until ctx
// is done. Directories are watched rather than files so editors that save by rename keep
// working.
func (r *Registry) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer w.Close()

	dirs := map[string]struct{}{}
	for _, p := range r.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	logger := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !r.tracks(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := r.Reload(); err != nil {
				logger.Warn("catalog reload failed", "file", ev.Name, "err", err)
				continue
			}
			logger.Info("catalogs reloaded", "file", ev.Name, "indexes", r.Names())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", "err", err)
		}
	}
}

func (r *Registry) tracks(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return slices.Contains(r.paths, abs)
}
