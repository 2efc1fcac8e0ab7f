// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package task models ARC tasks and loads them from the standard JSON
// layout:
//
//	{
//	  "train": [{"input": [[0,1],[1,0]], "output": [[1,0],[0,1]]}, ...],
//	  "test":  [{"input": [[...]], "output": [[...]]}]
//	}
//
// A task's ID is its file name without the extension.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianARC/services/solver/grid"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrMalformedTask is returned when a task document fails validation
	// or cannot be converted into grids.
	ErrMalformedTask = errors.New("malformed task")
)

// =============================================================================
// Model
// =============================================================================

// Pair is one input/output example.
type Pair struct {
	Input  grid.Grid
	Output grid.Grid
}

// Task is a set of training pairs plus held-out pairs used only to confirm
// a solution.
type Task struct {
	ID    string
	Train []Pair
	Test  []Pair
}

// AllPairs returns training pairs followed by held-out pairs.
func (t *Task) AllPairs() []Pair {
	out := make([]Pair, 0, len(t.Train)+len(t.Test))
	out = append(out, t.Train...)
	return append(out, t.Test...)
}

// =============================================================================
// JSON Documents
// =============================================================================

// taskValidate is shared by every document validation.
var taskValidate = validator.New()

// PairDocument is the JSON form of a Pair.
type PairDocument struct {
	Input  [][]int `json:"input" validate:"required,min=1,max=30,dive,min=1,max=30,dive,gte=0,lte=9"`
	Output [][]int `json:"output" validate:"required,min=1,max=30,dive,min=1,max=30,dive,gte=0,lte=9"`
}

// Document is the JSON form of a Task.
//
// Validation:
//
//	Train needs at least one pair. Every grid must have 1..30 rows of
//	1..30 cells holding colours 0..9. Ragged rows are rejected during
//	Build.
type Document struct {
	Train []PairDocument `json:"train" validate:"required,min=1,dive"`
	Test  []PairDocument `json:"test" validate:"omitempty,dive"`
}

// Validate checks the document's structural constraints.
func (d *Document) Validate() error {
	if err := taskValidate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	return nil
}

// Build validates the document and converts it into a Task.
func (d *Document) Build(id string) (*Task, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	train, err := buildPairs(d.Train, "train")
	if err != nil {
		return nil, err
	}
	test, err := buildPairs(d.Test, "test")
	if err != nil {
		return nil, err
	}
	return &Task{ID: id, Train: train, Test: test}, nil
}

func buildPairs(docs []PairDocument, split string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(docs))
	for i, doc := range docs {
		in, err := grid.FromRows(doc.Input)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d].input: %v", ErrMalformedTask, split, i, err)
		}
		out, err := grid.FromRows(doc.Output)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d].output: %v", ErrMalformedTask, split, i, err)
		}
		pairs = append(pairs, Pair{Input: in, Output: out})
	}
	return pairs, nil
}

// DocumentOf converts a Task back into its JSON form.
func DocumentOf(t *Task) Document {
	conv := func(pairs []Pair) []PairDocument {
		out := make([]PairDocument, len(pairs))
		for i, p := range pairs {
			out[i] = PairDocument{Input: p.Input.ToRows(), Output: p.Output.ToRows()}
		}
		return out
	}
	return Document{Train: conv(t.Train), Test: conv(t.Test)}
}

// =============================================================================
// Loading
// =============================================================================

// Parse decodes a task document from JSON.
func Parse(id string, data []byte) (*Task, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	return doc.Build(id)
}

// Load reads one task file. The task ID is the file stem.
func Load(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", path, err)
	}
	t, err := Parse(stem(path), data)
	if err != nil {
		return nil, fmt.Errorf("parsing task %s: %w", path, err)
	}
	return t, nil
}

// LoadError records a task file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadDir loads every *.json file in dir in lexicographic file name order.
//
// Description:
//
//	Files that fail to load are skipped and reported through the second
//	return value; they never abort the scan. When limit is positive, at most
//	limit files are considered (counted before loading, so a skipped file
//	still uses up a slot).
//
// Outputs:
//
//	[]*Task - Loaded tasks in file order.
//	[]*LoadError - Skipped files.
//	error - Non-nil only when the directory itself cannot be read.
func LoadDir(dir string, limit int) ([]*Task, []*LoadError, error) {
	paths, err := ListDir(dir)
	if err != nil {
		return nil, nil, err
	}
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	var (
		tasks   []*Task
		skipped []*LoadError
	)
	for _, p := range paths {
		t, err := Load(p)
		if err != nil {
			skipped = append(skipped, &LoadError{Path: p, Err: err})
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped, nil
}

// ListDir returns the *.json files in dir sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading task directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
