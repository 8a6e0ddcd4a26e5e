package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/plagcheck/internal/model"
)

// ErrNotFound is returned for unknown or expired analysis IDs
var ErrNotFound = errors.New("analysis not found or expired")

// ReportStore keeps reports for a limited time so a results page can be
// rendered after the analysis request returns. Nothing is written to disk.
type ReportStore struct {
	cache Cache
	ttl   time.Duration
}

// NewReportStore creates a store backed by an in-memory cache
func NewReportStore(ttl time.Duration) *ReportStore {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &ReportStore{
		cache: NewMemoryCache(ttl, cleanup),
		ttl:   ttl,
	}
}

// Put stores report under its ID
func (s *ReportStore) Put(report *model.Report) error {
	if report.ID == "" {
		return errors.New("report has no ID")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return s.cache.Set(ReportKey(report.ID), data, s.ttl)
}

// Get returns the report stored under id
func (s *ReportStore) Get(id string) (*model.Report, error) {
	data, ok := s.cache.Get(ReportKey(id))
	if !ok {
		return nil, ErrNotFound
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

// Discard removes the report stored under id
func (s *ReportStore) Discard(id string) error {
	if _, ok := s.cache.Get(ReportKey(id)); !ok {
		return ErrNotFound
	}
	return s.cache.Delete(ReportKey(id))
}
