package storage

import (
	"deckcraft-backend/internal/model"
)

type Storage interface {
	// 演示文稿记录管理
	SaveDeck(record *model.DeckRecord, data []byte) error
	GetDeck(deckID string) (*model.DeckRecord, []byte, error)
	ListDecks() ([]*model.DeckRecord, error)
	DeleteDeck(deckID string) error
	ClearDecks() error

	// 存储管理
	Init() error
	Close() error
	Backup() error
}
