package db

import (
	"context"
	"os"
	"path"
	"sync"

	"github.com/jsphweid/dreamland/constants"
	"github.com/jsphweid/dreamland/util"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type fileState struct {
	Flags map[string]bool `toml:"flags"`
}

// FileStore keeps flags in a TOML file. The file and its directory are
// created on the first write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(p string) *FileStore {
	if p == "" {
		p = path.Join(constants.GetStateDir(), "state.toml")
	}
	return &FileStore{path: p}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (fileState, error) {
	state := fileState{Flags: make(map[string]bool)}
	dat, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, errors.Wrap(err, "reading state file")
	}
	if err := toml.Unmarshal(dat, &state); err != nil {
		return state, errors.Wrapf(err, "parsing %s", s.path)
	}
	if state.Flags == nil {
		state.Flags = make(map[string]bool)
	}
	return state, nil
}

func (s *FileStore) Flag(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return false, err
	}
	return state.Flags[key], nil
}

// Flags returns every stored flag.
func (s *FileStore) Flags() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	return state.Flags, err
}

func (s *FileStore) SetFlag(_ context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return err
	}
	state.Flags[key] = value
	dat, err := toml.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}
	if err := util.EnsureDir(path.Dir(s.path)); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, dat, 0644); err != nil {
		return errors.Wrap(err, "writing state file")
	}
	return nil
}
