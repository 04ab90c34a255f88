package sandbox

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// Store defines the operations available on a sandboxed output directory
type Store interface {
	// WriteDocument validates content and writes it to a relative path
	WriteDocument(rel, content string, createDirs bool) (SafePath, error)

	// CreateDirectory creates a directory and its parents
	CreateDirectory(rel string) (SafePath, error)

	// ReadFile returns the content of a file
	ReadFile(rel string) (string, error)

	// ListFiles returns every file under the root
	ListFiles() ([]models.SandboxEntry, error)
}

// SafePath is a location that has passed the containment check.
// Only Resolve constructs one.
type SafePath struct {
	abs string
	rel string
}

// Abs returns the absolute filesystem path
func (p SafePath) Abs() string {
	return p.abs
}

// Rel returns the path relative to the sandbox root, slash-separated
func (p SafePath) Rel() string {
	return p.rel
}

func (p SafePath) String() string {
	return p.abs
}

// Sandbox confines file operations to a single root directory
type Sandbox struct {
	root string
}

var _ Store = (*Sandbox)(nil)

// New returns a sandbox rooted at root, creating the directory if absent
func New(root string) (*Sandbox, error) {
	abs, err := cleanAbsPath(root)
	if err != nil {
		return nil, models.WrapError(models.KindIO, "open sandbox", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, models.WrapError(models.KindIO, "create sandbox root", abs, err)
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the absolute sandbox root
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve joins rel onto the root and rejects anything that lands outside
// it. No filesystem call is made.
func (s *Sandbox) Resolve(rel string) (SafePath, error) {
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || filepath.VolumeName(rel) != "" {
		return SafePath{}, models.NewError(models.KindUnsafePath, "resolve", rel, "unsafe path: absolute paths are not allowed")
	}

	abs := filepath.Clean(filepath.Join(s.root, rel))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return SafePath{}, models.NewError(models.KindUnsafePath, "resolve", rel, "unsafe path: outside sandbox root %s", s.root)
	}

	relClean, err := filepath.Rel(s.root, abs)
	if err != nil {
		return SafePath{}, models.WrapError(models.KindUnsafePath, "resolve", rel, err)
	}
	return SafePath{abs: abs, rel: filepath.ToSlash(relClean)}, nil
}

// WriteDocument validates content against the syntax implied by the file
// extension and writes it atomically. Missing parent directories are created
// only when createDirs is set. Nothing is written when validation fails.
func (s *Sandbox) WriteDocument(rel, content string, createDirs bool) (SafePath, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return SafePath{}, err
	}
	if path.abs == s.root {
		return SafePath{}, models.NewError(models.KindIO, "write document", rel, "target is the sandbox root")
	}

	if err := ValidateDocument(path.abs, []byte(content)); err != nil {
		return SafePath{}, models.WrapError(models.KindMalformed, "write document", path.rel, err)
	}

	parent := filepath.Dir(path.abs)
	info, err := os.Stat(parent)
	switch {
	case os.IsNotExist(err):
		if !createDirs {
			return SafePath{}, models.NewError(models.KindNotFound, "write document", path.rel,
				"parent directory does not exist (set create_dirs to create it)")
		}
		if err := os.MkdirAll(parent, 0755); err != nil {
			return SafePath{}, models.WrapError(models.KindIO, "create parent directory", path.rel, err)
		}
	case err != nil:
		return SafePath{}, models.WrapError(models.KindIO, "write document", path.rel, err)
	case !info.IsDir():
		return SafePath{}, models.NewError(models.KindIO, "write document", path.rel, "parent is not a directory")
	}

	if err := WriteFileAtomic(path.abs, []byte(content), 0644); err != nil {
		return SafePath{}, models.WrapError(models.KindIO, "write document", path.rel, err)
	}
	return path, nil
}

// CreateDirectory creates rel and any missing parents
func (s *Sandbox) CreateDirectory(rel string) (SafePath, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return SafePath{}, err
	}
	if err := os.MkdirAll(path.abs, 0755); err != nil {
		return SafePath{}, models.WrapError(models.KindIO, "create directory", path.rel, err)
	}
	return path, nil
}

// ReadFile returns the content of a file inside the sandbox
func (s *Sandbox) ReadFile(rel string) (string, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path.abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", models.NewError(models.KindNotFound, "read sandbox file", path.rel, "file does not exist")
		}
		return "", models.WrapError(models.KindIO, "read sandbox file", path.rel, err)
	}
	if info.IsDir() {
		return "", models.NewError(models.KindIO, "read sandbox file", path.rel, "path is a directory")
	}

	data, err := os.ReadFile(path.abs)
	if err != nil {
		return "", models.WrapError(models.KindIO, "read sandbox file", path.rel, err)
	}
	return string(data), nil
}

// ListFiles walks the sandbox and returns every regular file sorted by
// relative path. An absent root is reported as NotFound.
func (s *Sandbox) ListFiles() ([]models.SandboxEntry, error) {
	root, err := s.Resolve("")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(root.abs); err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewError(models.KindNotFound, "list sandbox", root.abs, "sandbox root does not exist")
		}
		return nil, models.WrapError(models.KindIO, "list sandbox", root.abs, err)
	}

	entries := []models.SandboxEntry{}
	err = filepath.WalkDir(root.abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed during the walk
			return nil
		}
		rel, err := filepath.Rel(root.abs, p)
		if err != nil {
			return err
		}
		entries = append(entries, models.SandboxEntry{
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, models.WrapError(models.KindIO, "list sandbox", root.abs, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})
	return entries, nil
}
