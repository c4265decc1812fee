package aliases

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var ErrAliasNotFound = errors.New("alias not found")

// Address encodes to YAML as a base58 string.
type Address state.Pubkey

func (a Address) MarshalYAML() (any, error) {
	return state.Pubkey(a).String(), nil
}

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrap(
			errors.New("address must be a scalar"),
			"unmarshal yaml",
		)
	}
	key, err := state.PubkeyFromString(node.Value)
	if err != nil {
		return errors.Wrap(err, "unmarshal yaml")
	}
	*a = Address(key)
	return nil
}

// Alias names a record. Kind is a free-form hint such as "pack_set" or
// "wallet".
type Alias struct {
	Address Address `yaml:"address"`
	Kind    string  `yaml:"kind,omitempty"`
}

func (a *Alias) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var addr Address
		if err := node.Decode(&addr); err != nil {
			return err
		}
		*a = Alias{Address: addr}
		return nil
	case yaml.MappingNode:
		type alias Alias
		var tmp alias
		if err := node.Decode(&tmp); err != nil {
			return err
		}
		*a = Alias(tmp)
		return nil
	default:
		return errors.Wrap(
			errors.New("alias must be a scalar or mapping"),
			"unmarshal yaml",
		)
	}
}

type File struct {
	Aliases map[string]Alias `yaml:"aliases"`
}

// Store keeps aliases in memory and persists every change to disk when it has
// a path.
type Store struct {
	mu   sync.Mutex
	data File
	path string
}

// NewInMemory creates an empty store without a path.
func NewInMemory() *Store {
	return &Store{data: File{Aliases: map[string]Alias{}}}
}

// NewOnDisk loads the store at path, creating an empty one if absent.
func NewOnDisk(path string) (*Store, error) {
	if st, err := Load(path); err == nil {
		return st, nil
	} else if !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "new on disk")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "new on disk")
	}
	s := &Store{data: File{Aliases: map[string]Alias{}}, path: path}
	if err := s.saveLocked(); err != nil {
		return nil, errors.Wrap(err, "new on disk")
	}
	return s, nil
}

// Load reads a file-backed store from path.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	defer f.Close()
	return LoadFromReader(path, f)
}

// LoadFromReader reads a store from r; a non-empty path enables saving.
func LoadFromReader(path string, r io.Reader) (*Store, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "load from reader")
	}
	if file.Aliases == nil {
		file.Aliases = make(map[string]Alias)
	}
	return &Store{data: file, path: path}, nil
}

// Put inserts or replaces an alias.
func (s *Store) Put(name string, address state.Pubkey, kind string) error {
	if name == "" {
		return errors.Wrap(errors.New("empty alias name"), "put")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Aliases[name] = Alias{Address: Address(address), Kind: kind}
	return errors.Wrap(s.saveLocked(), "put")
}

// Delete removes an alias, reporting whether it existed.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Aliases[name]; !ok {
		return false, nil
	}
	delete(s.data.Aliases, name)
	return true, errors.Wrap(s.saveLocked(), "delete")
}

// List returns sorted alias names.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data.Aliases))
	for k := range s.data.Aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) Get(name string) (Alias, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	al, ok := s.data.Aliases[name]
	return al, ok
}

// FindByAddress returns the first alias, by name order, naming address.
func (s *Store) FindByAddress(address state.Pubkey) (string, bool) {
	for _, name := range s.List() {
		if al, ok := s.Get(name); ok && state.Pubkey(al.Address) == address {
			return name, true
		}
	}
	return "", false
}

// Resolve maps an alias name to its address, or parses key as base58.
func (s *Store) Resolve(key string) (state.Pubkey, error) {
	if al, ok := s.Get(key); ok {
		return state.Pubkey(al.Address), nil
	}
	address, err := state.PubkeyFromString(key)
	if err != nil {
		return state.ZeroPubkey, errors.Wrapf(ErrAliasNotFound, "resolve %q", key)
	}
	return address, nil
}

// saveLocked writes through a temp file so a crash never truncates the
// store. In-memory stores are not persisted.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&s.data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
