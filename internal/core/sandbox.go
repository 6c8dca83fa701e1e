package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
)

// Sandbox implements the file operations. Every operation resolves its own
// target through the path checker before touching the filesystem.
type Sandbox struct {
	paths *security.PathChecker
}

// NewSandbox creates a sandbox bound to the checker's working root.
func NewSandbox(paths *security.PathChecker) *Sandbox {
	return &Sandbox{paths: paths}
}

// Root returns the working root.
func (s *Sandbox) Root() string {
	return s.paths.Root()
}

// Read returns the full content of a regular file.
func (s *Sandbox) Read(path string) (action.Result, error) {
	target, err := s.regularFile(path)
	if err != nil {
		return action.Result{}, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return action.Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return action.Result{
		Success: true,
		Content: string(data),
		Path:    target,
		Size:    int64(len(data)),
	}, nil
}

// Create writes content to path, creating parent directories and
// overwriting an existing file.
func (s *Sandbox) Create(path, content string) (action.Result, error) {
	target, err := s.paths.Resolve(path)
	if err != nil {
		return action.Result{}, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return action.Result{}, fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return action.Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return action.Result{
		Success: true,
		Path:    target,
		Message: fmt.Sprintf("File created: %s", path),
		Size:    int64(len(content)),
	}, nil
}

// Edit overwrites an existing regular file.
func (s *Sandbox) Edit(path, content string) (action.Result, error) {
	target, err := s.regularFile(path)
	if err != nil {
		return action.Result{}, err
	}

	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return action.Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return action.Result{
		Success: true,
		Path:    target,
		Message: fmt.Sprintf("File updated: %s", path),
		Size:    int64(len(content)),
	}, nil
}

// Delete removes a regular file. There is no backup.
func (s *Sandbox) Delete(path string) (action.Result, error) {
	target, err := s.regularFile(path)
	if err != nil {
		return action.Result{}, err
	}

	if err := os.Remove(target); err != nil {
		return action.Result{}, fmt.Errorf("failed to delete %s: %w", path, err)
	}

	return action.Result{
		Success: true,
		Path:    target,
		Message: fmt.Sprintf("File deleted: %s", path),
	}, nil
}

// List returns the direct children of a directory, sorted by name.
func (s *Sandbox) List(path string) (action.Result, error) {
	if path == "" {
		path = "."
	}
	target, err := s.paths.Resolve(path)
	if err != nil {
		return action.Result{}, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return action.Result{}, notFound(path, err)
	}
	if !info.IsDir() {
		return action.Result{}, fmt.Errorf("%w: %s", ErrNotDir, path)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return action.Result{}, fmt.Errorf("failed to list %s: %w", path, err)
	}

	items := make([]action.Item, 0, len(entries))
	for _, entry := range entries {
		item := action.Item{Name: entry.Name(), IsFile: !entry.IsDir()}
		if item.IsFile {
			if fi, err := entry.Info(); err == nil {
				item.Size = fi.Size()
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return action.Result{
		Success: true,
		Path:    target,
		Items:   items,
		Count:   len(items),
	}, nil
}

// Info returns metadata of a file or directory.
func (s *Sandbox) Info(path string) (action.Result, error) {
	target, err := s.paths.Resolve(path)
	if err != nil {
		return action.Result{}, err
	}

	fi, err := os.Stat(target)
	if err != nil {
		return action.Result{}, notFound(path, err)
	}

	return action.Result{
		Success: true,
		Path:    target,
		Info: &action.FileInfo{
			Path:     target,
			Exists:   true,
			IsFile:   fi.Mode().IsRegular(),
			IsDir:    fi.IsDir(),
			Size:     fi.Size(),
			Modified: fi.ModTime().UTC(),
		},
	}, nil
}

// WorkingDirectory reports the working root.
func (s *Sandbox) WorkingDirectory() action.Result {
	return action.Result{
		Success:    true,
		WorkingDir: s.paths.Root(),
	}
}

// regularFile resolves path and requires an existing regular file.
func (s *Sandbox) regularFile(path string) (string, error) {
	target, err := s.paths.Resolve(path)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(target)
	if err != nil {
		return "", notFound(path, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFile, path)
	}

	return target, nil
}

func notFound(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("failed to stat %s: %w", path, err)
}
