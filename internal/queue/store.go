package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ErrItemNotFound is returned when an update names an id the store does not
// hold. The source this replaces silently skipped the write on a -1 index;
// that is a logic error and must surface.
var ErrItemNotFound = errors.New("queue item not found")

// State is the full persisted document: a single JSON file shaped
// {"queue": [...]}. The whole document is the unit of atomicity.
type State struct {
	Queue []Item `json:"queue"`
}

// Find returns the item with the given id.
func (s State) Find(id uuid.UUID) (Item, bool) {
	for _, it := range s.Queue {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (s State) index(id uuid.UUID) int {
	for i, it := range s.Queue {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Store persists the queue document. Every read-modify-write cycle runs
// under a single-permit semaphore so concurrent callers never interleave a
// read and a write; there is no finer-grained locking.
type Store struct {
	path string
	sem  *semaphore.Weighted
	log  zerolog.Logger
}

func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		sem:  semaphore.NewWeighted(1),
		log:  log,
	}
}

// WriteToQueue appends items to the persisted queue, creating the backing
// file lazily on first write. Every appended item's dependencies must
// reference items already in the queue or earlier in the same batch.
func (s *Store) WriteToQueue(ctx context.Context, items ...Item) error {
	return s.Update(ctx, func(state *State) error {
		known := make(map[uuid.UUID]bool, len(state.Queue)+len(items))
		for _, it := range state.Queue {
			known[it.ID] = true
		}
		for _, it := range items {
			if err := it.Action.Validate(); err != nil {
				return fmt.Errorf("item %s: %w", it.ID, err)
			}
			if known[it.ID] {
				return fmt.Errorf("item %s: duplicate id", it.ID)
			}
			for _, dep := range it.Dependencies {
				if !known[dep] {
					return fmt.Errorf("item %s: dependency %s not in queue", it.ID, dep)
				}
			}
			known[it.ID] = true
		}
		state.Queue = append(state.Queue, items...)
		return nil
	})
}

// GetQueueState returns a snapshot of the whole queue.
func (s *Store) GetQueueState(ctx context.Context) (State, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return State{}, err
	}
	defer s.sem.Release(1)
	return s.load()
}

// UpdateQueueItem replaces the item with the matching id in place.
func (s *Store) UpdateQueueItem(ctx context.Context, item Item) error {
	return s.Update(ctx, func(state *State) error {
		i := state.index(item.ID)
		if i < 0 {
			return fmt.Errorf("update item %s: %w", item.ID, ErrItemNotFound)
		}
		state.Queue[i] = item
		return nil
	})
}

// Update runs one read-modify-write cycle under the store lock. The mutation
// sees the current document and its changes are persisted atomically; any
// error leaves the file untouched.
func (s *Store) Update(ctx context.Context, mutate func(*State) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	state, err := s.load()
	if err != nil {
		return err
	}
	if err := mutate(&state); err != nil {
		return err
	}
	return s.save(state)
}

func (s *Store) load() (State, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{Queue: []Item{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read queue file: %w", err)
	}
	var state State
	if err := json.Unmarshal(b, &state); err != nil {
		return State{}, fmt.Errorf("parse queue file %s: %w", s.path, err)
	}
	if state.Queue == nil {
		state.Queue = []Item{}
	}
	return state, nil
}

// save writes the document via a same-directory temp file and rename, so a
// crash mid-write never leaves a corrupt queue behind.
func (s *Store) save(state State) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".queue-*.json")
	if err != nil {
		return fmt.Errorf("create temp queue file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		return fmt.Errorf("write temp queue file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp queue file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp queue file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace queue file: %w", err)
	}
	s.log.Debug().Int("items", len(state.Queue)).Msg("queue persisted")
	return nil
}
