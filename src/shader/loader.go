// Package shader loads WGSL shader sources by logical name and compiles
// them to SPIR-V.
package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed wgsl/*.wgsl
var embedded embed.FS

// Extension is appended to a logical shader name to find its source file.
const Extension = ".wgsl"

// Loader reads shader sources from a file system. Names are logical, such
// as "hex.vert"; the file read is name + Extension.
type Loader struct {
	fsys fs.FS
}

// NewLoader returns a loader over the sources built into the binary.
func NewLoader() *Loader {
	sub, err := fs.Sub(embedded, "wgsl")
	if err != nil {
		panic(err)
	}
	return &Loader{fsys: sub}
}

// NewDirLoader returns a loader that reads sources from dir.
func NewDirLoader(dir string) *Loader {
	return &Loader{fsys: os.DirFS(dir)}
}

// NewFSLoader returns a loader over fsys.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

func (l *Loader) Source(name string) (string, error) {
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("shader: invalid name %q", name)
	}
	data, err := fs.ReadFile(l.fsys, path.Clean(name)+Extension)
	if err != nil {
		return "", fmt.Errorf("shader: load %s: %w", name, err)
	}
	return string(data), nil
}
