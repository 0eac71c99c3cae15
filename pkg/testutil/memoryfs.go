package testutil

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrPermission is a reusable injectable error for permission failures
var ErrPermission = fs.ErrPermission

// MemoryFS implements types.FS with in-memory storage. Parent directories
// are created implicitly on write, which keeps test setup short.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode
	dirs  map[string]bool

	// Error injection: any operation touching the path fails
	errorPaths map[string]error
}

// fileNode represents a file in memory
type fileNode struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files:      make(map[string]*fileNode),
		dirs:       map[string]bool{"/": true},
		errorPaths: make(map[string]error),
	}
}

// InjectError makes every operation on path fail with err
func (m *MemoryFS) InjectError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
}

// ClearError removes an injected error for path
func (m *MemoryFS) ClearError(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errorPaths, filepath.Clean(path))
}

func (m *MemoryFS) checkError(op, path string) error {
	if err, ok := m.errorPaths[path]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	if err := m.checkError("stat", name); err != nil {
		return nil, err
	}
	if node, ok := m.files[name]; ok {
		return &fileInfo{name: filepath.Base(name), size: int64(len(node.content)), mode: node.mode, modTime: node.modTime}, nil
	}
	if m.dirs[name] {
		return &fileInfo{name: filepath.Base(name), mode: fs.ModeDir | 0755, isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	if err := m.checkError("open", name); err != nil {
		return nil, err
	}
	node, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if err := m.checkError("write", name); err != nil {
		return err
	}
	content := make([]byte, len(data))
	copy(content, data)
	m.files[name] = &fileNode{content: content, mode: perm, modTime: time.Now()}
	m.trackParents(name)
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.checkError("mkdir", path); err != nil {
		return err
	}
	m.dirs[path] = true
	m.trackParents(filepath.Join(path, "x"))
	return nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if err := m.checkError("remove", name); err != nil {
		return err
	}
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if m.dirs[name] {
		delete(m.dirs, name)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath = filepath.Clean(oldpath)
	newpath = filepath.Clean(newpath)
	if err := m.checkError("rename", oldpath); err != nil {
		return err
	}
	if err := m.checkError("rename", newpath); err != nil {
		return err
	}
	node, ok := m.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldpath)
	m.files[newpath] = node
	m.trackParents(newpath)
	return nil
}

// trackParents records every ancestor directory of a file path
func (m *MemoryFS) trackParents(name string) {
	dir := filepath.Dir(name)
	for dir != "/" && dir != "." && !m.dirs[dir] {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// Exists reports whether a file exists at path (test convenience)
func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// List returns every file path currently stored, with the given prefix
func (m *MemoryFS) List(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// fileInfo implements fs.FileInfo for memory nodes
type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }
