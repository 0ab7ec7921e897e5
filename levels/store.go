package levels

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const progressFile = "progress.json"

// Store persists level documents by name.
type Store interface {
	Load(name string) (*Document, error)
	Save(name string, doc *Document) error
	List() ([]string, error)
}

// DirStore reads and writes documents in Dir. Names missing on disk fall
// back to Fallback when it is set, so a disk copy overrides a bundled level.
type DirStore struct {
	Dir      string
	Fallback fs.FS
}

// NewDirStore returns a store backed by dir with the bundled levels as
// fallback.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir, Fallback: LevelsFS}
}

func (s *DirStore) Load(name string) (*Document, error) {
	file := fileName(name)
	if s.Dir != "" {
		data, err := os.ReadFile(filepath.Join(s.Dir, file))
		if err == nil {
			return decodeNamed(name, data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("levels: read %s: %w", file, err)
		}
	}
	if s.Fallback != nil {
		data, err := fs.ReadFile(s.Fallback, file)
		if err == nil {
			return decodeNamed(name, data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("levels: read bundled %s: %w", file, err)
		}
	}
	return nil, fmt.Errorf("levels: %s: %w", name, ErrNotFound)
}

func (s *DirStore) Save(name string, doc *Document) error {
	if s.Dir == "" {
		return fmt.Errorf("levels: save %s: no directory configured", name)
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("levels: save %s: %w", name, err)
	}
	if err := writeFileAtomic(filepath.Join(s.Dir, fileName(name)), data); err != nil {
		return fmt.Errorf("levels: save %s: %w", name, err)
	}
	return nil
}

// List returns the level names known to the store in play order. Level
// names sort lexically, so authored levels are numbered level_01, level_02.
func (s *DirStore) List() ([]string, error) {
	seen := make(map[string]struct{})
	if s.Fallback != nil {
		entries, err := fs.ReadDir(s.Fallback, ".")
		if err != nil {
			return nil, fmt.Errorf("levels: list bundled: %w", err)
		}
		for _, e := range entries {
			addLevelName(seen, e.Name(), e.IsDir())
		}
	}
	if s.Dir != "" {
		entries, err := os.ReadDir(s.Dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("levels: list %s: %w", s.Dir, err)
		}
		for _, e := range entries {
			addLevelName(seen, e.Name(), e.IsDir())
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Progress records which levels have been won.
type Progress struct {
	Completed map[string]bool `json:"completed"`
}

func (p *Progress) MarkCompleted(name string) {
	if p.Completed == nil {
		p.Completed = make(map[string]bool)
	}
	p.Completed[name] = true
}

func (p Progress) IsCompleted(name string) bool {
	return p.Completed[name]
}

// LoadProgress returns an empty record when nothing has been saved yet.
func (s *DirStore) LoadProgress() (Progress, error) {
	var p Progress
	if s.Dir == "" {
		return p, nil
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, progressFile))
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("levels: read progress: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Progress{}, fmt.Errorf("levels: decode progress: %w", err)
	}
	return p, nil
}

func (s *DirStore) SaveProgress(p Progress) error {
	if s.Dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("levels: encode progress: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("levels: save progress: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.Dir, progressFile), data); err != nil {
		return fmt.Errorf("levels: save progress: %w", err)
	}
	return nil
}

// LoadOrDefault loads name from store. Any failure is logged and the empty
// default level is returned together with the error.
func LoadOrDefault(store Store, name string) (*Document, error) {
	doc, err := store.Load(name)
	if err != nil {
		log.Printf("levels: load %s failed, using empty level: %v", name, err)
		return Default(), err
	}
	return doc, nil
}

// Next returns the name following current in order, or false at the end.
func Next(names []string, current string) (string, bool) {
	for i, n := range names {
		if n == current && i+1 < len(names) {
			return names[i+1], true
		}
	}
	return "", false
}

func decodeNamed(name string, data []byte) (*Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = name
	}
	return doc, nil
}

func fileName(name string) string {
	name = filepath.ToSlash(name)
	name = strings.TrimPrefix(name, "levels/")
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name
}

func addLevelName(seen map[string]struct{}, file string, dir bool) {
	if dir || file == progressFile || !strings.HasSuffix(file, ".json") {
		return
	}
	seen[strings.TrimSuffix(file, ".json")] = struct{}{}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".level-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
