package review

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/japaniel/shengci/pkg/vocab"
)

// Keys under which the two word sets are persisted.
const (
	DifficultKey = "difficultWords"
	MasteredKey  = "masteredWords"
)

// KV is the persistence backend for the word sets.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store tracks difficult and mastered words by composite key. Every mutation
// writes the affected set through to the backend.
type Store struct {
	kv        KV
	difficult map[string]struct{}
	mastered  map[string]struct{}

	// Logger reports unreadable persisted sets. nil means no logging.
	Logger *log.Logger
}

// Open reads both sets from kv. A missing key is an empty set; a value that
// does not decode is logged and treated as empty.
func Open(kv KV, logger *log.Logger) (*Store, error) {
	s := &Store{kv: kv, Logger: logger}
	var err error
	if s.difficult, err = s.load(DifficultKey); err != nil {
		return nil, err
	}
	if s.mastered, err = s.load(MasteredKey); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(key string) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return set, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		if s.Logger != nil {
			s.Logger.Printf("Warning: ignoring unreadable %s: %v", key, err)
		}
		return set, nil
	}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

func (s *Store) save(key string, set map[string]struct{}) error {
	b, err := json.Marshal(sortedKeys(set))
	if err != nil {
		return err
	}
	if err := s.kv.Set(key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Add flags key as difficult.
func (s *Store) Add(key string) error {
	s.difficult[key] = struct{}{}
	return s.save(DifficultKey, s.difficult)
}

// Remove drops key from the difficult set.
func (s *Store) Remove(key string) error {
	delete(s.difficult, key)
	return s.save(DifficultKey, s.difficult)
}

// Clear empties the difficult set.
func (s *Store) Clear() error {
	s.difficult = map[string]struct{}{}
	return s.save(DifficultKey, s.difficult)
}

// MarkMastered moves key from the difficult set to the mastered set.
func (s *Store) MarkMastered(key string) error {
	if err := s.Remove(key); err != nil {
		return err
	}
	s.mastered[key] = struct{}{}
	return s.save(MasteredKey, s.mastered)
}

// Contains reports whether key is flagged difficult.
func (s *Store) Contains(key string) bool {
	_, ok := s.difficult[key]
	return ok
}

// IsMastered reports whether key has been marked mastered.
func (s *Store) IsMastered(key string) bool {
	_, ok := s.mastered[key]
	return ok
}

// Keys returns the difficult keys in sorted order.
func (s *Store) Keys() []string {
	return sortedKeys(s.difficult)
}

// MasteredKeys returns the mastered keys in sorted order.
func (s *Store) MasteredKeys() []string {
	return sortedKeys(s.mastered)
}

// Len returns the number of difficult words.
func (s *Store) Len() int { return len(s.difficult) }

// Resolve maps keys to entries of the loaded vocabulary. Keys the vocabulary
// does not contain become placeholder entries.
func Resolve(keys []string, vocabulary []vocab.Entry) []vocab.Entry {
	idx := vocab.Index(vocabulary)
	out := make([]vocab.Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := idx[k]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, vocab.Placeholder(k))
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
