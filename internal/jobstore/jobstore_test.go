package jobstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/storage"
)

var ctx = context.Background()

// mapKV is an in-memory KV.
type mapKV struct {
	data   map[string]string
	getErr error
}

func newMapKV() *mapKV { return &mapKV{data: make(map[string]string)} }

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func job(i int) model.JobRecord {
	return model.JobRecord{Title: fmt.Sprintf("Job %d", i), Company: "Acme"}
}

func TestRead_Empty(t *testing.T) {
	s := New(newMapKV())

	jobs, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if jobs == nil || len(jobs) != 0 {
		t.Errorf("Read = %#v, want empty slice", jobs)
	}
	if _, ok, _ := s.Latest(ctx); ok {
		t.Error("Latest ok = true on empty store")
	}
}

func TestAppend_NewestFirstAndCapped(t *testing.T) {
	s := New(newMapKV())

	for n := 1; n <= 8; n++ {
		if err := s.Append(ctx, job(n)); err != nil {
			t.Fatalf("Append(%d): %v", n, err)
		}

		jobs, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		want := min(n, MaxJobs)
		if len(jobs) != want {
			t.Fatalf("after %d appends len = %d, want %d", n, len(jobs), want)
		}
		for i, j := range jobs {
			if wantTitle := fmt.Sprintf("Job %d", n-i); j.Title != wantTitle {
				t.Errorf("after %d appends jobs[%d] = %q, want %q", n, i, j.Title, wantTitle)
			}
		}
	}
}

func TestAppend_NoDedup(t *testing.T) {
	s := New(newMapKV())
	s.Append(ctx, job(1))
	s.Append(ctx, job(1))

	jobs, _ := s.Read(ctx)
	if len(jobs) != 2 {
		t.Errorf("len = %d, want 2 (duplicates kept)", len(jobs))
	}
}

func TestClear(t *testing.T) {
	kv := newMapKV()
	s := New(kv)
	s.Append(ctx, job(1))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := kv.data[Key]; ok {
		t.Error("key still present after Clear")
	}
	jobs, _ := s.Read(ctx)
	if len(jobs) != 0 {
		t.Errorf("len = %d, want 0", len(jobs))
	}
}

func TestRead_Errors(t *testing.T) {
	kv := newMapKV()
	kv.data[Key] = "not json"
	if _, err := New(kv).Read(ctx); err == nil {
		t.Error("expected decode error")
	}

	kv = newMapKV()
	kv.getErr = errors.New("disk gone")
	if err := New(kv).Append(ctx, job(1)); err == nil {
		t.Error("expected Append to surface read error")
	}
}

func TestSQLiteBacked(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	s := New(db)
	for n := 1; n <= 6; n++ {
		if err := s.Append(ctx, job(n)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	latest, ok, err := s.Latest(ctx)
	if err != nil || !ok || latest.Title != "Job 6" {
		t.Errorf("Latest = %+v, %v, %v", latest, ok, err)
	}
	jobs, _ := s.Read(ctx)
	if len(jobs) != MaxJobs || jobs[MaxJobs-1].Title != "Job 2" {
		t.Errorf("jobs = %+v", jobs)
	}
}
