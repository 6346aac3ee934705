package db

import (
	"embed"
	"sync"
)

// MemoryStore is used when no database path is configured. History is lost
// on restart.
type MemoryStore struct {
	m    *sync.Mutex
	data []Play
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    new(sync.Mutex),
		data: []Play{},
	}
}

func (ms *MemoryStore) ApplyMigrations(embed.FS) error {
	return nil
}

func (ms *MemoryStore) RecordPlay(p Play) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	p.ID = int64(len(ms.data) + 1)
	ms.data = append(ms.data, p)
	return nil
}

func (ms *MemoryStore) GetRecent(limit int) ([]Play, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	pl := []Play{}
	for i := len(ms.data) - 1; i >= 0 && len(pl) < limit; i-- {
		pl = append(pl, ms.data[i])
	}
	return pl, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
