package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// FileRepository keeps all snapshots in a single JSON document mapping
// seller name to product id to product. Writes go through a temp file and
// rename so a crash mid-save never corrupts the store.
type FileRepository struct {
	mu        sync.RWMutex
	snapshots map[string]models.Snapshot
	filename  string
}

func NewFileRepository(filename string) (*FileRepository, error) {
	r := &FileRepository{
		snapshots: make(map[string]models.Snapshot),
		filename:  filename,
	}

	if err := r.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return r, nil
}

func (r *FileRepository) Load(_ context.Context, seller string) (models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[seller]
	if !ok {
		return models.Snapshot{}, nil
	}
	return snap.Clone(), nil
}

func (r *FileRepository) Save(_ context.Context, seller string, snap models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[seller] = snap.Clone()
	return r.save()
}

func (r *FileRepository) Close() error {
	return nil
}

func (r *FileRepository) save() error {
	data, err := json.MarshalIndent(r.snapshots, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, r.filename)
}

func (r *FileRepository) load() error {
	data, err := os.ReadFile(r.filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &r.snapshots)
}
