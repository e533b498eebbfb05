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


package storage

import (
	"context"
	"sort"
	"sync"
)

// NoopStorage remembers nothing.
type NoopStorage struct {
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Put(ctx context.Context, sub *Submission) error {
	Prepare(sub)
	return nil
}

func (s *NoopStorage) Get(ctx context.Context, assignment, id string) (*Submission, error) {
	return nil, ErrNotFound
}

func (s *NoopStorage) List(ctx context.Context, assignment string) ([]*Submission, error) {
	return nil, nil
}

func (s *NoopStorage) Delete(ctx context.Context, assignment, id string) error {
	return nil
}

// MemStorage keeps submissions in memory.  Safe for concurrent use.
type MemStorage struct {
	sync.Mutex
	subs map[string]map[string]*Submission
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		subs: make(map[string]map[string]*Submission),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Put(ctx context.Context, sub *Submission) error {
	Prepare(sub)
	s.Lock()
	defer s.Unlock()
	m, have := s.subs[sub.Assignment]
	if !have {
		m = make(map[string]*Submission)
		s.subs[sub.Assignment] = m
	}
	c := *sub
	m[sub.Id] = &c
	return nil
}

func (s *MemStorage) Get(ctx context.Context, assignment, id string) (*Submission, error) {
	s.Lock()
	defer s.Unlock()
	sub, have := s.subs[assignment][id]
	if !have {
		return nil, ErrNotFound
	}
	c := *sub
	return &c, nil
}

func (s *MemStorage) List(ctx context.Context, assignment string) ([]*Submission, error) {
	s.Lock()
	acc := make([]*Submission, 0, len(s.subs[assignment]))
	for _, sub := range s.subs[assignment] {
		c := *sub
		acc = append(acc, &c)
	}
	s.Unlock()
	SortByTime(acc)
	return acc, nil
}

func (s *MemStorage) Delete(ctx context.Context, assignment, id string) error {
	s.Lock()
	defer s.Unlock()
	delete(s.subs[assignment], id)
	return nil
}

// SortByTime orders submissions by time and then by Id.
func SortByTime(subs []*Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		if a.At.Equal(b.At) {
			return a.Id < b.Id
		}
		return a.At.Before(b.At)
	})
}
