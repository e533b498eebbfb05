/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


// Package storage persists graded submissions.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Dialects of a Submission's source.
const (
	TableDialect  = "table"
	TuringDialect = "turing"
)

// Submission is one graded attempt at an assignment.
type Submission struct {
	// Id is assigned by Put if empty.
	Id string `json:"id,omitempty"`

	Assignment string `json:"assignment"`
	Author     string `json:"author,omitempty"`

	// Dialect is TableDialect or TuringDialect.
	Dialect string `json:"dialect"`
	Source  string `json:"source"`

	Checksum int32  `json:"checksum"`
	Solved   []bool `json:"solved,omitempty"`
	Passed   bool   `json:"passed"`

	// Outcome is a short summary of the grading run.
	Outcome string `json:"outcome,omitempty"`

	At time.Time `json:"at"`
}

// ErrNotFound is returned by Get for a missing submission.
var ErrNotFound = errors.New("submission not found")

// Storage is a persistence interface for Submissions.
//
// Submissions are grouped by assignment.
type Storage interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Put writes the submission, assigning an Id if it doesn't
	// have one.
	Put(ctx context.Context, s *Submission) error

	Get(ctx context.Context, assignment, id string) (*Submission, error)

	// List returns an assignment's submissions ordered by time.
	List(ctx context.Context, assignment string) ([]*Submission, error)

	Delete(ctx context.Context, assignment, id string) error
}

// NewId generates a submission id.
func NewId() string {
	return uuid.New().String()
}

// Prepare gives the submission an Id and a time if it lacks them.
func Prepare(s *Submission) {
	if s.Id == "" {
		s.Id = NewId()
	}
	if s.At.IsZero() {
		s.At = time.Now().UTC()
	}
}
