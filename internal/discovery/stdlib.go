// # internal/discovery/stdlib.go
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// StdlibFile is one standard-library include found under the configured
// root. Name is the directive spelling that resolves to it (`#include <Name>`).
type StdlibFile struct {
	Path string // absolute OS path
	Name string // relative, slash-separated, extension stripped
}

// StdlibIncludes enumerates every .inc file below root. A missing root is
// not an error; the engine just runs without a standard library.
func StdlibIncludes(root string) ([]StdlibFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**/*.inc")
	if err != nil {
		return nil, err
	}

	files := make([]StdlibFile, 0, len(matches))
	for _, rel := range matches {
		files = append(files, StdlibFile{
			Path: filepath.Join(root, filepath.FromSlash(rel)),
			Name: strings.TrimSuffix(rel, ".inc"),
		})
	}
	return files, nil
}

// ProjectSources enumerates project files carrying one of the extensions,
// skipping excluded directory names.
func ProjectSources(root string, extensions, excludeDirs []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, err
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}
	skip := make(map[string]bool, len(excludeDirs))
	for _, dir := range excludeDirs {
		skip[dir] = true
	}

	var sources []string
	fsys := os.DirFS(root)
	err = doublestar.GlobWalk(fsys, "**/*.*", func(rel string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if !wanted[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}
		for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
			if skip[part] {
				return nil
			}
		}
		sources = append(sources, filepath.Join(root, filepath.FromSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}
