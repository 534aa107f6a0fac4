package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trayfolders/internal/errors"
)

// RootsFile is the list of root directories, one path per line. Blank lines
// and lines starting with # are ignored.
type RootsFile struct {
	path string
}

// NewRootsFile returns the roots file at path
func NewRootsFile(path string) *RootsFile {
	return &RootsFile{path: path}
}

// DefaultRootsFile returns ~/.config/trayfolders/folders.cfg
func DefaultRootsFile() (*RootsFile, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewRootsFile(filepath.Join(dir, RootsFileName)), nil
}

// Path returns the file location
func (f *RootsFile) Path() string {
	return f.path
}

// Exists reports whether the file is present
func (f *RootsFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads the roots in file order. A missing file yields no roots.
func (f *RootsFile) Load() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.NewFileError("cannot read roots file", f.path, errors.FileAccessDenied, err)
	}
	defer file.Close()

	roots, err := ParseRoots(file)
	if err != nil {
		return nil, errors.NewFileError("cannot read roots file", f.path, errors.FileAccessDenied, err)
	}

	// Relative roots are relative to the roots file, not the working directory
	base, err := filepath.Abs(filepath.Dir(f.path))
	if err != nil {
		return nil, errors.NewFileError("cannot resolve roots file directory", f.path, errors.InvalidPath, err)
	}
	for i, root := range roots {
		if !isRooted(root) {
			roots[i] = filepath.Join(base, root)
		}
	}
	return roots, nil
}

// isRooted reports whether p names a location independent of the working
// directory. On Windows that includes \dir on the current drive.
func isRooted(p string) bool {
	return filepath.IsAbs(p) || strings.HasPrefix(p, string(filepath.Separator))
}

// ParseRoots reads one root per line. Environment variables and a leading
// ~ are expanded.
func ParseRoots(r io.Reader) ([]string, error) {
	roots := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		roots = append(roots, expandPath(line))
	}
	return roots, scanner.Err()
}

func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}

// DefaultRoots are the folders offered on first run
func DefaultRoots(home string) []string {
	return []string{
		filepath.Join(home, "Documents"),
		filepath.Join(home, "Downloads"),
		filepath.Join(home, "Desktop"),
	}
}

// WriteDefault creates the file with the default roots below home. An
// existing file is left untouched and reported as an error.
func (f *RootsFile) WriteDefault(home string) ([]string, error) {
	if f.Exists() {
		return nil, errors.NewFileError("roots file already exists", f.path, errors.InvalidPath, nil)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	roots := DefaultRoots(home)
	var b strings.Builder
	b.WriteString("# One folder per line. Lines starting with # are ignored.\n")
	for _, r := range roots {
		b.WriteString(r + "\n")
	}
	if err := os.WriteFile(f.path, []byte(b.String()), 0644); err != nil {
		return nil, fmt.Errorf("failed to write roots file: %w", err)
	}
	return roots, nil
}
