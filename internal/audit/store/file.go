package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/serroba/shortlink/internal/audit"
)

// File is an audit.Store appending one JSON record per line to a file.
type File struct {
	mu   sync.Mutex
	file *os.File
}

// NewFile opens (or creates) the audit log at path in append mode.
func NewFile(path string) (*File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &File{file: file}, nil
}

type record struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (f *File) SaveLinkCreated(_ context.Context, event *audit.LinkCreatedEvent) error {
	return f.append("link_created", event)
}

func (f *File) SaveLinkUpdated(_ context.Context, event *audit.LinkUpdatedEvent) error {
	return f.append("link_updated", event)
}

func (f *File) SaveLinkDeleted(_ context.Context, event *audit.LinkDeletedEvent) error {
	return f.append("link_deleted", event)
}

func (f *File) append(kind string, data any) error {
	payload, err := json.Marshal(record{Event: kind, Data: data})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	payload = append(payload, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.Write(payload); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}

	return nil
}

// Shutdown closes the underlying file.
func (f *File) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.file.Close()
}

// Compile-time check.
var _ audit.Store = (*File)(nil)
