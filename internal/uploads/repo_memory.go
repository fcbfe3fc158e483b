package uploads

import (
	"context"
	"sort"
	"sync"
)

type memoryEntry struct {
	file File
	seq  uint64
}

// MemoryRepo is an in-process implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	seq  uint64
	data map[string]memoryEntry
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]memoryEntry),
	}
}

// Put stores a copy of f, replacing any file with the same ID.
func (r *MemoryRepo) Put(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Data = append([]byte(nil), f.Data...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.data[f.ID] = memoryEntry{file: f, seq: r.seq}
	return nil
}

// Get returns the file with id.
func (r *MemoryRepo) Get(ctx context.Context, id string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.data[id]
	if !ok {
		return File{}, ErrNotFound
	}
	return entry.file, nil
}

// List returns summaries of all stored files, oldest upload first.
func (r *MemoryRepo) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.data))
	for _, e := range r.data {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.file.summary())
	}
	return out, nil
}

// Delete removes the file with id.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
