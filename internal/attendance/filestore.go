package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps all records in a single JSON document on disk. The whole
// document is one file, so every read-modify-write cycle, and every plain
// read, runs under one process-wide mutex: without it a reader could observe
// a torn write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileDoc struct {
	Records map[string]fileRecord `json:"records"`
}

type fileRecord struct {
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileStore creates a store backed by the JSON document at path. The file
// is created lazily on first write; a missing file reads as empty.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetRange returns stored entries for dates in [start, end).
func (s *FileStore) GetRange(ctx context.Context, start, end time.Time) (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	res := make(map[string]Entry)
	for key, rec := range doc.Records {
		day, err := time.Parse(DateFormat, key)
		if err != nil {
			continue // skip malformed keys rather than failing the scan
		}
		if !day.Before(start) && day.Before(end) {
			res[key] = Entry{Status: rec.Status, Reason: rec.Reason}
		}
	}
	return res, nil
}

// Upsert writes or deletes the record for date.
func (s *FileStore) Upsert(ctx context.Context, date string, status Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if status == StatusNone {
		delete(doc.Records, date)
	} else {
		doc.Records[date] = fileRecord{
			Status:    status,
			Reason:    reason,
			UpdatedAt: time.Now().UTC(),
		}
	}
	return s.save(doc)
}

// Close is a no-op; the file is opened per operation.
func (s *FileStore) Close() error { return nil }

// load reads the document; callers must hold the mutex.
func (s *FileStore) load() (*fileDoc, error) {
	doc := &fileDoc{Records: make(map[string]fileRecord)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Records == nil {
		doc.Records = make(map[string]fileRecord)
	}
	return doc, nil
}

// save writes through a temp file and rename; callers must hold the mutex.
func (s *FileStore) save(doc *fileDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".attendance-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
