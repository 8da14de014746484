package guest

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
)

// DefaultExtension is the file extension of guest unit files.
const DefaultExtension = ".wasm"

type treeConfig struct {
	extension string
}

// TreeOption configures RegisterTree.
type TreeOption func(*treeConfig)

// WithExtension sets the unit file extension, including the leading dot.
func WithExtension(ext string) TreeOption {
	return func(c *treeConfig) {
		if ext != "" {
			c.extension = ext
		}
	}
}

// RegisterTree registers every unit file under root in fsys, in fs.WalkDir
// order. A unit's name is its path relative to root with the extension
// stripped and "/" replaced by the name separator, so
// "com/example/sandboxcore/Widget.wasm" becomes "com.example.sandboxcore.Widget".
//
// Paths (files or directories) for which exclude returns true are skipped;
// exclude may be nil. Files without the unit extension are ignored.
//
// Any read failure aborts the walk with *errors.LoadError, and any registration
// failure aborts it with the registration error: a partially loaded guest set
// could leave references between units dangling. It returns the number of units
// registered before returning.
func (r *Registry) RegisterTree(fsys fs.FS, root string, exclude func(relPath string) bool, opts ...TreeOption) (int, error) {
	if r.frozen.Load() {
		return 0, &errors.FrozenError{Component: "guest registry", Operation: "register tree"}
	}

	cfg := treeConfig{extension: DefaultExtension}
	for _, opt := range opts {
		opt(&cfg)
	}
	if root == "" {
		root = "."
	}

	count := 0
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &errors.LoadError{Path: p, Err: walkErr}
		}
		if p == root {
			return nil
		}

		rel := relativeTo(root, p)
		if exclude != nil && exclude(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(rel, cfg.extension) {
			return nil
		}

		payload, err := fs.ReadFile(fsys, p)
		if err != nil {
			return &errors.LoadError{Path: p, Err: err}
		}

		name := NameFromPath(rel, cfg.extension)
		if err := r.Register(name, payload); err != nil {
			return fmt.Errorf("register %s: %w", p, err)
		}
		count++
		return nil
	})
	return count, err
}

// NameFromPath derives a qualified name from a slash-separated relative path.
func NameFromPath(relPath, extension string) string {
	trimmed := strings.TrimSuffix(path.Clean(relPath), extension)
	return entities.JoinName(strings.Split(trimmed, "/")...)
}

func relativeTo(root, p string) string {
	if root == "." {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}
