package translator

import (
	"fmt"
	"os"
	"strings"

	"github.com/graphtran/graphtran/promptmgr"
)

// Ensures FileSource implements the prompt manager seam.
var _ promptmgr.SourceProvider = (*FileSource)(nil)

// FileSource supplies auxiliary reference material by concatenating files
// (e.g. the headers the translated code must compile against). Contents are
// read once at construction; a FileSource is immutable afterwards.
type FileSource struct {
	material string
}

// NewFileSource reads paths and joins their contents. With no paths it
// returns a no-op source.
func NewFileSource(paths ...string) (*FileSource, error) {
	var b strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("translator: read source file: %w", err)
		}
		b.WriteString("// File: " + path + "\n")
		b.Write(data)
		b.WriteString("\n\n")
	}
	return &FileSource{material: strings.TrimSpace(b.String())}, nil
}

// SourceMaterial implements promptmgr.SourceProvider.
func (f *FileSource) SourceMaterial() (string, bool) {
	return f.material, f.material != ""
}
