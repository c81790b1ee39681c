// Package state хранит результат последнего прогона и накопительный журнал статистики.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maine/polymer_news/internal/news"
)

// ErrNoSnapshot возвращается, когда снапшот ещё ни разу не сохранялся.
var ErrNoSnapshot = errors.New("no saved snapshot")

// FileStore хранит снапшот прогона в JSON-файле.
type FileStore struct {
	path string
}

// NewFileStore создаёт новый файловый стор.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает снапшот из файла.
func (s *FileStore) Load(ctx context.Context) (news.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return news.Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return news.Snapshot{}, ErrNoSnapshot
		}
		return news.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap news.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Повреждённый файл откладываем в .broken для диагностики
		_ = os.WriteFile(s.path+".broken", data, 0644)
		return news.Snapshot{}, ErrNoSnapshot
	}

	return snap, nil
}

// Save записывает снапшот атомарно (через временный файл).
func (s *FileStore) Save(ctx context.Context, snap news.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp snapshot file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp snapshot file: %w", err)
	}

	return nil
}
