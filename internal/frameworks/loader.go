// Package frameworks serves the compliance framework catalog.
//
// The catalog comes from a YAML or JSON file when one is configured and
// valid, and from a built-in default otherwise. A Loader can follow the
// file and swap in new content as it changes.
package frameworks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"sentinel/internal/codec"
	"sentinel/internal/domain"
	"sentinel/internal/watcher"
)

// Loader holds the current catalog
type Loader struct {
	path string

	mu  sync.RWMutex
	doc *domain.FrameworkDocument
}

// NewLoader creates a loader for path; an empty path always serves the default
func NewLoader(path string) *Loader {
	l := &Loader{path: path, doc: Default()}
	if err := l.Reload(); err != nil && path != "" {
		log.WithError(err).WithField("path", path).Warn("Using built-in frameworks")
	}
	return l
}

// Current returns the active catalog
func (l *Loader) Current() *domain.FrameworkDocument {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.doc
}

// Reload reads the file again. On failure the previous catalog stays active.
func (l *Loader) Reload() error {
	if l.path == "" {
		return nil
	}

	doc, err := load(l.path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.doc = doc
	l.mu.Unlock()

	log.WithFields(log.Fields{"path": l.path, "frameworks": len(doc.Frameworks)}).Info("Frameworks loaded")
	return nil
}

func load(path string) (*domain.FrameworkDocument, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("frameworks file %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.ParseFrameworks(f)
}

// Watch reloads the catalog whenever the file changes, until ctx is done
func (l *Loader) Watch(ctx context.Context) error {
	if l.path == "" {
		return nil
	}
	w := watcher.New(l.path, func() {
		if err := l.Reload(); err != nil {
			log.WithError(err).WithField("path", l.path).Warn("Frameworks reload failed, keeping previous catalog")
		}
	})
	return w.Watch(ctx)
}
