package intent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one intent file loaded from a Library.
type Document struct {
	Name string
	Text string
}

// Library is a directory of intent files (*.intent, *.txt, *.html).
type Library struct {
	Directory string
	Options   SourceOptions
}

func NewLibrary(dir string) *Library {
	return &Library{Directory: dir}
}

var libraryExts = map[string]bool{
	".intent": true,
	".txt":    true,
	".html":   true,
}

// Load reads every intent file in the directory, sorted by file name so batch
// runs always see the same order.
func (l *Library) Load() ([]Document, error) {
	entries, err := os.ReadDir(l.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !libraryExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		doc, err := l.loadFile(filepath.Join(l.Directory, e.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no intent files found in %s", l.Directory)
	}
	return docs, nil
}

func (l *Library) loadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open intent file: %w", err)
	}
	defer f.Close()

	opts := l.Options
	if strings.EqualFold(filepath.Ext(path), ".html") {
		opts.Sanitize = true
	}
	text, err := ReadSource(f, opts)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Text: text}, nil
}

// LoadFile reads a single intent file.
func LoadFile(path string, opts SourceOptions) (Document, error) {
	l := &Library{Directory: filepath.Dir(path), Options: opts}
	return l.loadFile(path)
}
