package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for an output extension with no writer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

type writerFunc func(path string, s *Scene, nodes []Node) error

var writers = map[string]writerFunc{
	".obj":  writeOBJ,
	".stl":  writeSTL,
	".dxf":  writeDXF,
	".json": writeJSON,
	".svg":  writeSVG,
}

// Formats lists the supported output extensions.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for ext := range writers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Write exports the scene, choosing the format from the file extension.
func (s *Scene) Write(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	w, ok := writers[ext]
	if !ok {
		return fmt.Errorf("scene: %q: %w", ext, ErrUnsupportedFormat)
	}
	if err := w(path, s, s.Nodes()); err != nil {
		return fmt.Errorf("scene: write %s: %w", path, err)
	}
	return nil
}
