// Package fileindex builds a CSV-exportable index of study material files
// under the configured base directory. It only reads the filesystem; it
// never touches the record collections.
package fileindex

import (
	"bytes"
	"encoding/csv"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zestyzy/CampusStudyHub/storage"
)

const modifiedLayout = "2006-01-02 15:04"

// Entry is one indexed study material file.
type Entry struct {
	Course   string `json:"course"`
	FileType string `json:"type"`
	Filename string `json:"filename"`
	FullPath string `json:"full_path"`
	Modified string `json:"modified"`
}

// Scan walks baseDir and indexes every regular file. The first path segment
// below baseDir that matches a configured course names the entry's course;
// everything else files under "Uncategorized". A missing base directory
// yields an empty index, matching first-run behavior elsewhere.
func Scan(baseDir string, courses []string) ([]Entry, error) {
	entries := []Entry{}
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Course:   courseFor(rel, courses),
			FileType: fileType(path),
			Filename: d.Name(),
			FullPath: path,
			Modified: info.ModTime().Format(modifiedLayout),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func courseFor(rel string, courses []string) string {
	segment := rel
	if i := strings.IndexRune(rel, filepath.Separator); i >= 0 {
		segment = rel[:i]
	}
	for _, course := range courses {
		if strings.EqualFold(course, segment) {
			return course
		}
	}
	return "Uncategorized"
}

func fileType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "other"
	}
	return ext
}

// WriteCSV exports the index atomically with a header row.
func WriteCSV(path string, entries []Entry) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"course", "type", "filename", "full_path", "modified"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Course, e.FileType, e.Filename, e.FullPath, e.Modified}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
