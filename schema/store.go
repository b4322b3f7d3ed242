// Package schema is the reference schema store behind the concept server.
//
// A Store holds the committed schema and attribute instances. Transactions
// work on a private snapshot taken at Begin; a write transaction publishes its
// snapshot on Commit if no other write committed in between (ErrConflict
// otherwise). Mutations are therefore visible only inside their transaction
// until commit.
package schema

import (
	"strings"
	"sync"

	"github.com/zhangyunhao116/skipmap"

	"xdao.co/concept/valuekind"
)

// Root type labels. Both always exist and cannot be redefined.
const (
	RootAttribute = "attribute"
	RootEntity    = "entity"
)

// Type is a schema type record. Entity types have Kind Untyped.
type Type struct {
	Label  string
	Kind   valuekind.Kind
	Entity bool
	// Super is the direct supertype label; empty only for the roots.
	Super string
	// Regex is the full-match constraint on string values; empty means none.
	Regex string
}

// Instance is one attribute value owned by the attribute type Type.
type Instance struct {
	IID   string
	Type  string
	Value valuekind.Value
}

type state struct {
	types     *skipmap.OrderedMap[string, Type]
	instances *skipmap.OrderedMap[string, Instance]
	// owns maps ownsKey(owner, attribute) to the key flag.
	owns *skipmap.OrderedMap[string, bool]
}

func newState() *state {
	return &state{
		types:     skipmap.New[string, Type](),
		instances: skipmap.New[string, Instance](),
		owns:      skipmap.New[string, bool](),
	}
}

func (s *state) clone() *state {
	out := newState()
	s.types.Range(func(k string, v Type) bool {
		out.types.Store(k, v)
		return true
	})
	s.instances.Range(func(k string, v Instance) bool {
		out.instances.Store(k, v)
		return true
	})
	s.owns.Range(func(k string, v bool) bool {
		out.owns.Store(k, v)
		return true
	})
	return out
}

func ownsKey(owner, attribute string) string { return owner + "\x00" + attribute }

func splitOwnsKey(k string) (owner, attribute string) {
	owner, attribute, _ = strings.Cut(k, "\x00")
	return owner, attribute
}

// Store is safe for concurrent use. Each Txn must be used by one goroutine at
// a time.
type Store struct {
	mu        sync.Mutex
	version   uint64
	committed *state
}

// New returns a store holding only the root types.
func New() *Store {
	st := newState()
	st.types.Store(RootAttribute, Type{Label: RootAttribute, Kind: valuekind.Untyped})
	st.types.Store(RootEntity, Type{Label: RootEntity, Kind: valuekind.Untyped, Entity: true})
	return &Store{committed: st}
}

// Begin opens a transaction over a snapshot of the committed state.
func (s *Store) Begin(write bool) *Txn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Txn{store: s, base: s.version, st: s.committed.clone(), write: write}
}

// Version counts published commits.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) publish(t *Txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.base != s.version {
		return ErrConflict
	}
	s.committed = t.st
	s.version++
	return nil
}
