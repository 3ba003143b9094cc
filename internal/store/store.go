// Package store provides the canonical fact store: typed facts about
// entities, loaded once per build from YAML sources and indexed by
// (entity, factId). The store is read-only after load; derived-fact
// results are cached elsewhere, never written back into the store.
package store

import (
	"github.com/factstack-labs/factgraph/pkg/formula"
)

// Fact is one canonical statement about an entity. A fact is either a
// leaf (Value and/or Numeric present, no Compute) or derived (Compute
// present, Value/Numeric absent until evaluated).
type Fact struct {
	Key     formula.FactKey
	Value   string   // pre-formatted display string, e.g. "$350B"
	Numeric *float64 // canonical numeric magnitude
	AsOf    string   // when the value was observed
	Source  string   // citation
	Note    string   // free-text annotation
	Compute string   // formula, present only for derived facts
}

// Derived reports whether the fact is computed by a formula.
func (f *Fact) Derived() bool {
	return f.Compute != ""
}

// Store indexes facts by key and preserves source ordering per entity.
type Store struct {
	byKey    map[formula.FactKey]*Fact
	byEntity map[string][]*Fact
	entities []string // entity insertion order
}

// FromFacts builds a store from already-constructed facts, applying the
// same key-uniqueness check as the file loader. Useful for embedders and
// tests that do not load from disk.
func FromFacts(facts ...*Fact) (*Store, error) {
	s := &Store{
		byKey:    make(map[formula.FactKey]*Fact),
		byEntity: make(map[string][]*Fact),
	}
	for _, f := range facts {
		if err := s.add(f, "(memory)"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Fact returns the fact for (entity, factId), if present.
func (s *Store) Fact(entity, factID string) (*Fact, bool) {
	return s.Lookup(formula.FactKey{Entity: entity, Fact: factID})
}

// Lookup returns the fact for the given key, if present.
func (s *Store) Lookup(key formula.FactKey) (*Fact, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// All returns every fact, grouped by entity in load order and by source
// order within each entity.
func (s *Store) All() []*Fact {
	facts := make([]*Fact, 0, len(s.byKey))
	for _, entity := range s.entities {
		facts = append(facts, s.byEntity[entity]...)
	}
	return facts
}

// ForEntity returns the entity's facts in source order.
func (s *Store) ForEntity(entity string) []*Fact {
	return s.byEntity[entity]
}

// Entities returns entity names in load order.
func (s *Store) Entities() []string {
	return s.entities
}

// Len returns the total number of facts.
func (s *Store) Len() int {
	return len(s.byKey)
}

// add indexes a fact, enforcing key uniqueness. Only the loader calls it.
func (s *Store) add(f *Fact, file string) error {
	if _, exists := s.byKey[f.Key]; exists {
		return &DuplicateFactKeyError{File: file, Entity: f.Key.Entity, FactID: f.Key.Fact}
	}
	if _, seen := s.byEntity[f.Key.Entity]; !seen {
		s.entities = append(s.entities, f.Key.Entity)
	}
	s.byKey[f.Key] = f
	s.byEntity[f.Key.Entity] = append(s.byEntity[f.Key.Entity], f)
	return nil
}
