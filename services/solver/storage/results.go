// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/grid"
)

// ErrNotFound is returned when a task has no stored record.
var ErrNotFound = errors.New("storage: record not found")

const (
	resultPrefix = "result/"
	predPrefix   = "pred/"
)

// Record is the stored form of one task's result.
type Record struct {
	TaskID      string `json:"task_id"`
	RunID       string `json:"run_id"`
	Solved      bool   `json:"solved"`
	Method      string `json:"method"`
	Program     string `json:"program,omitempty"`
	ProgramSize int    `json:"program_size"`
	Checked     int    `json:"checked"`

	// MDL is nil for unsolved tasks, whose score is infinite.
	MDL *float64 `json:"mdl,omitempty"`

	ElapsedMS int64     `json:"elapsed_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

// RecordOf converts a cascade result.
func RecordOf(runID string, res cascade.Result) Record {
	rec := Record{
		TaskID:      res.TaskID,
		RunID:       runID,
		Solved:      res.Solved,
		Method:      res.Method,
		ProgramSize: res.ProgramSize,
		Checked:     res.Checked,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	if res.Program != nil {
		rec.Program = res.Program.String()
	}
	if !math.IsInf(res.MDL, 0) && !math.IsNaN(res.MDL) {
		mdl := res.MDL
		rec.MDL = &mdl
	}
	return rec
}

// ResultStore keeps records under "result/<task>" and predicted test
// outputs, in the grid binary format, under "pred/<task>".
//
// Thread Safety: Safe for concurrent use.
type ResultStore struct {
	db  *DB
	now func() time.Time
}

// NewResultStore wraps an open database.
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db, now: time.Now}
}

// Put stores rec, stamping StoredAt, together with any predictions.
// A record without predictions clears previously stored ones.
func (s *ResultStore) Put(ctx context.Context, rec Record, predictions ...grid.Grid) error {
	if rec.TaskID == "" {
		return errors.New("storage: record has no task id")
	}
	rec.StoredAt = s.now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.TaskID, err)
	}
	var packed []byte
	if len(predictions) > 0 {
		if packed, err = grid.MarshalGrids(predictions...); err != nil {
			return fmt.Errorf("encode predictions %s: %w", rec.TaskID, err)
		}
	}

	return s.db.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Set([]byte(resultPrefix+rec.TaskID), data); err != nil {
			return err
		}
		if packed == nil {
			return ignoreMissing(txn.Delete([]byte(predPrefix + rec.TaskID)))
		}
		return txn.Set([]byte(predPrefix+rec.TaskID), packed)
	})
}

// Get loads the record for taskID.
func (s *ResultStore) Get(ctx context.Context, taskID string) (Record, error) {
	var rec Record
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resultPrefix + taskID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", taskID, err)
	}
	return rec, nil
}

// Predictions loads the predicted test outputs for taskID.
func (s *ResultStore) Predictions(ctx context.Context, taskID string) ([]grid.Grid, error) {
	var out []grid.Grid
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(predPrefix + taskID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			grids, err := grid.UnmarshalGrids(val)
			out = grids
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("get predictions %s: %w", taskID, err)
	}
	return out, nil
}

// List returns every record in task ID order.
func (s *ResultStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resultPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// Solved returns the IDs of stored tasks that were solved.
func (s *ResultStore) Solved(ctx context.Context) (map[string]bool, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(recs))
	for _, r := range recs {
		if r.Solved {
			out[r.TaskID] = true
		}
	}
	return out, nil
}

// Delete removes the record and predictions for taskID. Deleting a
// missing task is not an error.
func (s *ResultStore) Delete(ctx context.Context, taskID string) error {
	return s.db.update(ctx, func(txn *badger.Txn) error {
		if err := ignoreMissing(txn.Delete([]byte(resultPrefix + taskID))); err != nil {
			return err
		}
		return ignoreMissing(txn.Delete([]byte(predPrefix + taskID)))
	})
}

func ignoreMissing(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}
