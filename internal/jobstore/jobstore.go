// Package jobstore keeps the most recently scraped jobs, newest first.
package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kalambet/jobfill/internal/model"
)

const (
	// Key is the storage key holding the JSON-encoded job sequence.
	Key = "storedJobs"
	// MaxJobs bounds the stored sequence.
	MaxJobs = 5
)

// KV is the persistent key-value store the job list lives in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store is a bounded, most-recent-first job history. Records are never
// deduplicated: scraping the same page twice stores it twice.
type Store struct {
	kv KV
	mu sync.Mutex
}

// New returns a Store backed by kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Append puts job at the front of the sequence and drops anything past MaxJobs.
func (s *Store) Append(ctx context.Context, job model.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.read(ctx)
	if err != nil {
		return err
	}

	jobs = append([]model.JobRecord{job}, jobs...)
	if len(jobs) > MaxJobs {
		jobs = jobs[:MaxJobs]
	}

	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encoding jobs: %w", err)
	}
	return s.kv.Set(ctx, Key, string(data))
}

// Read returns the stored jobs, newest first. An unset store yields an
// empty slice.
func (s *Store) Read(ctx context.Context) ([]model.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Latest returns the most recently stored job.
func (s *Store) Latest(ctx context.Context) (model.JobRecord, bool, error) {
	jobs, err := s.Read(ctx)
	if err != nil || len(jobs) == 0 {
		return model.JobRecord{}, false, err
	}
	return jobs[0], true, nil
}

// Clear removes every stored job.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, Key)
}

func (s *Store) read(ctx context.Context) ([]model.JobRecord, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("reading jobs: %w", err)
	}
	if !ok || raw == "" {
		return []model.JobRecord{}, nil
	}

	var jobs []model.JobRecord
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, fmt.Errorf("decoding stored jobs: %w", err)
	}
	if jobs == nil {
		jobs = []model.JobRecord{}
	}
	return jobs, nil
}
