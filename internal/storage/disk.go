package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"deckcraft-backend/internal/model"
	"deckcraft-backend/pkg/logger"
)

// DiskStorage 落盘存储：记录元数据存 JSON，PPTX 二进制单独成文件，
// 根目录维护 decks.json 索引，内存里保留一个有界的二进制缓存。
type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	records   map[string]*model.DeckRecord
	cache     map[string][]byte
	cacheSize int
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	return &DiskStorage{
		dataDir:   dataDir,
		records:   make(map[string]*model.DeckRecord),
		cache:     make(map[string][]byte),
		cacheSize: cacheSize,
	}
}

func (d *DiskStorage) Init() error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	if err := d.loadIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Info("Disk storage initialized successfully")
	return nil
}

func (d *DiskStorage) createDirectories() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "decks"),
		filepath.Join(d.dataDir, "files"),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) loadIndex() error {
	indexPath := filepath.Join(d.dataDir, "decks.json")

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		return d.saveIndexLocked()
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return err
	}

	var records []*model.DeckRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	for _, record := range records {
		if record == nil || record.ID == "" {
			continue
		}
		d.records[record.ID] = record
	}

	return nil
}

func (d *DiskStorage) recordPath(deckID string) string {
	return filepath.Join(d.dataDir, "decks", deckID+".json")
}

func (d *DiskStorage) payloadPath(deckID string) string {
	return filepath.Join(d.dataDir, "files", deckID+".pptx")
}

// saveIndexLocked 重写索引文件，调用方需持有写锁
func (d *DiskStorage) saveIndexLocked() error {
	indexPath := filepath.Join(d.dataDir, "decks.json")
	tempPath := indexPath + ".tmp"

	records := make([]*model.DeckRecord, 0, len(d.records))
	for _, record := range d.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, indexPath)
}

func (d *DiskStorage) saveRecordToFile(record *model.DeckRecord) error {
	recordPath := d.recordPath(record.ID)
	tempPath := recordPath + ".tmp"

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, recordPath)
}

func (d *DiskStorage) SaveDeck(record *model.DeckRecord, data []byte) error {
	if record == nil || record.ID == "" {
		return ErrInvalidData
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.saveRecordToFile(record); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := os.WriteFile(d.payloadPath(record.ID), data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.records[record.ID] = record
	d.cache[record.ID] = data
	d.evictCache()

	return d.indexOrWrap()
}

func (d *DiskStorage) GetDeck(deckID string) (*model.DeckRecord, []byte, error) {
	d.mu.RLock()
	record, exists := d.records[deckID]
	if !exists {
		d.mu.RUnlock()
		return nil, nil, ErrDeckNotFound
	}
	if data, ok := d.cache[deckID]; ok {
		d.mu.RUnlock()
		return record, data, nil
	}
	d.mu.RUnlock()

	data, err := os.ReadFile(d.payloadPath(deckID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrDeckNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.mu.Lock()
	d.cache[deckID] = data
	d.evictCache()
	d.mu.Unlock()

	return record, data, nil
}

func (d *DiskStorage) ListDecks() ([]*model.DeckRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]*model.DeckRecord, 0, len(d.records))
	for _, record := range d.records {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (d *DiskStorage) DeleteDeck(deckID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.records[deckID]; !exists {
		return ErrDeckNotFound
	}

	if err := os.Remove(d.recordPath(deckID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	if err := os.Remove(d.payloadPath(deckID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	delete(d.records, deckID)
	delete(d.cache, deckID)

	return d.indexOrWrap()
}

func (d *DiskStorage) ClearDecks() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for deckID := range d.records {
		if err := os.Remove(d.recordPath(deckID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
		if err := os.Remove(d.payloadPath(deckID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	d.records = make(map[string]*model.DeckRecord)
	d.cache = make(map[string][]byte)

	return d.indexOrWrap()
}

func (d *DiskStorage) indexOrWrap() error {
	if err := d.saveIndexLocked(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return nil
}

// evictCache 二进制缓存超限时按创建时间淘汰最旧的，调用方需持有写锁
func (d *DiskStorage) evictCache() {
	if len(d.cache) <= d.cacheSize {
		return
	}

	type cacheEntry struct {
		id        string
		createdAt time.Time
	}

	var entries []cacheEntry
	for id := range d.cache {
		createdAt := time.Time{}
		if record, ok := d.records[id]; ok {
			createdAt = record.CreatedAt
		}
		entries = append(entries, cacheEntry{id: id, createdAt: createdAt})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].createdAt.Before(entries[j].createdAt)
	})

	toEvict := len(d.cache) - d.cacheSize
	for i := 0; i < toEvict; i++ {
		delete(d.cache, entries[i].id)
	}
}

func (d *DiskStorage) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string][]byte)
	return nil
}

func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", time.Now().Unix()))

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	sourceDirs := []string{"decks", "files"}
	for _, dir := range sourceDirs {
		srcDir := filepath.Join(d.dataDir, dir)
		dstDir := filepath.Join(backupDir, dir)

		if err := os.MkdirAll(dstDir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}

		if err := d.copyDir(srcDir, dstDir); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	indexSrc := filepath.Join(d.dataDir, "decks.json")
	indexDst := filepath.Join(backupDir, "decks.json")
	if err := d.copyFile(indexSrc, indexDst); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	logger.Infof("Backup completed: %s", backupDir)
	return nil
}

func (d *DiskStorage) copyDir(src, dst string) error {
	files, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, file := range files {
		srcPath := filepath.Join(src, file.Name())
		dstPath := filepath.Join(dst, file.Name())

		if err := d.copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0644)
}
