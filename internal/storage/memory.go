package storage

import (
	"sort"
	"sync"

	"deckcraft-backend/internal/model"
)

type MemoryStorage struct {
	records  map[string]*model.DeckRecord
	payloads map[string][]byte
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records:  make(map[string]*model.DeckRecord),
		payloads: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) Backup() error {
	return nil
}

func (m *MemoryStorage) SaveDeck(record *model.DeckRecord, data []byte) error {
	if record == nil || record.ID == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.ID] = record
	m.payloads[record.ID] = data
	return nil
}

func (m *MemoryStorage) GetDeck(deckID string) (*model.DeckRecord, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[deckID]
	if !exists {
		return nil, nil, ErrDeckNotFound
	}

	return record, m.payloads[deckID], nil
}

func (m *MemoryStorage) ListDecks() ([]*model.DeckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*model.DeckRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}

	// 新的在前
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (m *MemoryStorage) DeleteDeck(deckID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[deckID]; !exists {
		return ErrDeckNotFound
	}

	delete(m.records, deckID)
	delete(m.payloads, deckID)
	return nil
}

func (m *MemoryStorage) ClearDecks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]*model.DeckRecord)
	m.payloads = make(map[string][]byte)
	return nil
}
