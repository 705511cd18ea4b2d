package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileStorage — файловая реализация Storage: все ключи в одном JSON-файле.
type FileStorage struct {
	path string
	data map[string]string
}

func NewFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return s, nil
}

func (s *FileStorage) Get(key string) (string, bool) {
	value, ok := s.data[key]
	return value, ok
}

func (s *FileStorage) Set(key, value string) error {
	s.data[key] = value
	return s.flush()
}

func (s *FileStorage) Remove(key string) error {
	delete(s.data, key)
	return s.flush()
}

func (s *FileStorage) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
