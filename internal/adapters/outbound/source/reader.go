package source

import (
	"bufio"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single source line; longer lines end the file's scan.
const maxLineSize = 1 << 20

// Reader implements domain.SourceReader over the local filesystem.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

// ReadLines reads the given project-relative files. Files that are missing,
// unreadable or outside the project are omitted.
func (r *Reader) ReadLines(projectPath string, files []string) (map[string][]string, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(files))
	for _, rel := range files {
		if _, done := out[rel]; done {
			continue
		}
		clean := filepath.FromSlash(rel)
		if !filepath.IsLocal(clean) {
			continue
		}
		lines, err := readFile(filepath.Join(root, clean))
		if err != nil {
			continue // unreadable files have no suppressions
		}
		out[rel] = lines
	}
	return out, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
