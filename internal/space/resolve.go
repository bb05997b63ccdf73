package space

import (
	"path/filepath"
	"strings"
)

// Resolver maps a (variant, mode) pair to the external program built for it.
// Resolution never touches the filesystem.
type Resolver struct {
	BaseDir string
}

// NewResolver returns a Resolver rooted at baseDir.
func NewResolver(baseDir string) Resolver {
	return Resolver{BaseDir: baseDir}
}

// Name returns the program identifier, e.g. "default_openMP_parallel_for".
func (Resolver) Name(v Variant, m Mode) string {
	return v.DisplayName() + "_" + m.Suffix()
}

// Path returns the program path under BaseDir. A bare name is made relative
// so it is never looked up on PATH.
func (r Resolver) Path(v Variant, m Mode) string {
	p := filepath.Join(r.BaseDir, r.Name(v, m))
	if !strings.ContainsRune(p, filepath.Separator) {
		p = "." + string(filepath.Separator) + p
	}
	return p
}
