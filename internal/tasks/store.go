package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adriangreen/tm-list/internal/logging"
	"github.com/adriangreen/tm-list/internal/memory"
)

// DefaultKey is the durable slot the sequence lives under
const DefaultKey = "tasks"

// record is the persisted shape of a Task. Pointer fields let decoding tell
// a missing field from a zero value; any missing field makes the value
// malformed.
type record struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Position    *int    `json:"position"`
}

// Store reads and writes the sequence as one JSON value in a memory.Memory slot
type Store struct {
	mem    memory.Memory
	key    string
	logger *slog.Logger
}

// NewStore creates a Store on mem. An empty key selects DefaultKey.
func NewStore(mem memory.Memory, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{mem: mem, key: key, logger: logger}
}

// Key returns the slot name
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored sequence, or an empty one when the slot is absent,
// unreadable or malformed. It never fails.
func (s *Store) Load(ctx context.Context) Sequence {
	data, err := s.mem.Retrieve(ctx, s.key)
	if err != nil {
		if !errors.Is(err, memory.ErrKeyNotFound) {
			s.logger.Warn("reading task slot failed, starting empty", "key", s.key, "error", err)
		}
		return Sequence{}
	}

	seq, err := decode(data)
	if err != nil {
		s.logger.Warn("stored tasks are malformed, starting empty", "key", s.key, "error", err)
		return Sequence{}
	}

	Reindex(seq)
	s.logger.Debug("tasks loaded", "key", s.key, "count", len(seq))
	return seq
}

// Save overwrites the slot with seq
func (s *Store) Save(ctx context.Context, seq Sequence) error {
	records := make([]record, len(seq))
	for i := range seq {
		desc, done, pos := seq[i].Description, seq[i].Completed, int(seq[i].Position)
		records[i] = record{Description: &desc, Completed: &done, Position: &pos}
	}

	if err := memory.StoreJSON(ctx, s.mem, s.key, records); err != nil {
		s.logger.Error("saving tasks failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func decode(data []byte) (Sequence, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after task list")
	}

	seq := make(Sequence, 0, len(records))
	for i, r := range records {
		if r.Description == nil || r.Completed == nil || r.Position == nil {
			return nil, fmt.Errorf("record %d is missing a field", i)
		}
		seq = append(seq, Task{
			Description: *r.Description,
			Completed:   *r.Completed,
			Position:    Position(*r.Position),
		})
	}
	return seq, nil
}
