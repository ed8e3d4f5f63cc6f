// Package workspace finds articles on disk and archives published ones.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListArticles returns every Markdown file under dir, skipping dotfiles and
// dot-directories, sorted by path. A missing dir yields no articles.
func ListArticles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

var unsafeChars = strings.NewReplacer(
	"/", "-", `\`, "-", ":", "-", "*", "-", "?", "-",
	`"`, "-", "<", "-", ">", "-", "|", "-",
)

// SafeName turns a title into a file name.
func SafeName(title string) string {
	name := strings.TrimSpace(unsafeChars.Replace(title))
	if name == "" {
		return "untitled"
	}
	return name
}

// Archive moves src to targetDir/<safe title>.md and returns the new path.
func Archive(src, targetDir, title string) (string, error) {
	if targetDir == "" {
		return "", errors.New("archive: no target directory")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}
	dst := filepath.Join(targetDir, SafeName(title)+".md")

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Rename fails across devices.
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
