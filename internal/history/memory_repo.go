package history

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory workout history, used in tests and with the memory
// storage backend.
type MemoryRepo struct {
	mu      sync.Mutex
	entries map[int]Entry
	nextID  int
}

func NewMemoryRepo(entries ...Entry) *MemoryRepo {
	r := &MemoryRepo{
		entries: make(map[int]Entry),
		nextID:  1,
	}
	for _, e := range entries {
		_, _ = r.SaveWorkout(context.Background(), e)
	}
	return r
}

func (r *MemoryRepo) SaveWorkout(_ context.Context, entry Entry) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = r.nextID
	r.nextID++
	r.entries[entry.ID] = entry
	return &entry, nil
}

func (r *MemoryRepo) Get(_ context.Context, id int) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return &e, nil
}

func (r *MemoryRepo) GetHistory(context.Context) ([]Entry, error) {
	r.mu.Lock()
	entries := make([]Entry, 0, len(r.entries))
	for id := 1; id < r.nextID; id++ {
		if e, ok := r.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	r.mu.Unlock()

	// newest id first for equal completion times, like the db query
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	SortByCompletion(entries)
	return entries, nil
}

func (r *MemoryRepo) GetHistoryForList(ctx context.Context) ([]ListItem, error) {
	entries, err := r.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	return toListItems(entries), nil
}
