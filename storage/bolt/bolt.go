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


// Package bolt is a BoltDB Storage.
//
// Each assignment gets a bucket.  Keys are submission ids, and
// values are JSON Submissions.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/fsmgrader/storage"

	bolt "go.etcd.io/bbolt"
)

type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.filename, err)
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) Put(ctx context.Context, sub *storage.Submission) error {
	storage.Prepare(sub)
	s.logf("Put %s %s", sub.Assignment, sub.Id)

	js, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(sub.Assignment))
		if err != nil {
			return err
		}
		return b.Put([]byte(sub.Id), js)
	})
}

func (s *Storage) Get(ctx context.Context, assignment, id string) (*storage.Submission, error) {
	s.logf("Get %s %s", assignment, id)
	var sub *storage.Submission
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(assignment))
		if b == nil {
			return nil
		}
		bs := b.Get([]byte(id))
		if bs == nil {
			return nil
		}
		sub = &storage.Submission{}
		return json.Unmarshal(bs, sub)
	})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, storage.ErrNotFound
	}
	return sub, nil
}

func (s *Storage) List(ctx context.Context, assignment string) ([]*storage.Submission, error) {
	s.logf("List %s", assignment)
	subs := make([]*storage.Submission, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(assignment))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for id, bs := c.First(); id != nil; id, bs = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var sub storage.Submission
			if err := json.Unmarshal(bs, &sub); err != nil {
				return fmt.Errorf("submission %s: %w", id, err)
			}
			subs = append(subs, &sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("List %s found %d submissions", assignment, len(subs))
	storage.SortByTime(subs)
	return subs, nil
}

func (s *Storage) Delete(ctx context.Context, assignment, id string) error {
	s.logf("Delete %s %s", assignment, id)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(assignment))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}
