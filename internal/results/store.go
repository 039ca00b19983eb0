// Package results persists the outcome of the latest run of every action as
// a single map, updated by merging partial records into it.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/options"
)

// OptionName is the options entry holding the whole results map.
const OptionName = "last_results"

// InterruptedMessage is recorded for entries left running by a pass that
// never finished.
const InterruptedMessage = "Interrupted before completion."

// Patch is a partial update to one result. Nil and zero fields leave the
// stored value untouched.
type Patch struct {
	Start        *time.Time
	End          *time.Time
	Status       domain.Status
	ErrorMessage *string

	// ResetEnd clears a previous End so a new start is never paired with
	// an older finish time.
	ResetEnd bool
}

// Message returns a pointer suitable for Patch.ErrorMessage.
func Message(s string) *string { return &s }

// Store is the result map contract.
type Store interface {
	// Update merges p into the entry for key, creating it first if needed,
	// and persists the whole map. It returns the merged entry.
	Update(ctx context.Context, key string, p Patch) (domain.Result, error)

	// All returns the last persisted snapshot.
	All(ctx context.Context) (map[string]domain.Result, error)
}

// OptionStore keeps the map as one JSON document in an options repository.
// Writes from separate processes are not coordinated: last write wins.
type OptionStore struct {
	repo options.Repository

	// mu serialises read-modify-write within this process only.
	mu sync.Mutex
}

// NewOptionStore returns a Store backed by repo.
func NewOptionStore(repo options.Repository) *OptionStore {
	return &OptionStore{repo: repo}
}

// Update merges a partial record into the stored map.
func (s *OptionStore) Update(ctx context.Context, key string, p Patch) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	entry, ok := all[key]
	if !ok {
		entry = domain.Result{Key: key, Status: domain.StatusSkipped}
	}
	entry = apply(entry, p)
	all[key] = entry

	if err := s.save(ctx, all); err != nil {
		return domain.Result{}, err
	}
	return entry, nil
}

// All returns the last snapshot.
func (s *OptionStore) All(ctx context.Context) (map[string]domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *OptionStore) load(ctx context.Context) (map[string]domain.Result, error) {
	raw, ok, err := s.repo.Get(ctx, OptionName)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	all := make(map[string]domain.Result)
	if !ok || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("results: failed to decode stored map: %w", err)
	}
	for k, v := range all {
		v.Key = k
		all[k] = v
	}
	return all, nil
}

func (s *OptionStore) save(ctx context.Context, all map[string]domain.Result) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("results: failed to encode map: %w", err)
	}
	if err := s.repo.Set(ctx, OptionName, string(data), 0); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	return nil
}

func apply(r domain.Result, p Patch) domain.Result {
	if p.Start != nil {
		t := *p.Start
		r.Start = &t
	}
	if p.ResetEnd {
		r.End = nil
	}
	if p.End != nil {
		t := *p.End
		r.End = &t
	}
	if p.Status != "" {
		r.Status = p.Status
	}
	if p.ErrorMessage != nil {
		r.ErrorMessage = *p.ErrorMessage
	}
	return r
}

// RecoverInterrupted resolves every entry still marked running to a
// failure. It returns the keys it changed.
func RecoverInterrupted(ctx context.Context, s Store, now time.Time) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var fixed []string
	for key, r := range all {
		if r.Status != domain.StatusRunning {
			continue
		}
		end := now
		if r.Start != nil && end.Before(*r.Start) {
			end = *r.Start
		}
		if _, err := s.Update(ctx, key, Patch{
			End:          &end,
			Status:       domain.StatusFail,
			ErrorMessage: Message(InterruptedMessage),
		}); err != nil {
			return fixed, err
		}
		fixed = append(fixed, key)
	}
	return fixed, nil
}
