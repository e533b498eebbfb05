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


package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Comcast/fsmgrader/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	then := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &storage.Submission{
		Assignment: "maze1",
		Dialect:    storage.TableDialect,
		Source:     "walk 0 - - | walk 1 0 1 0 0\n",
		Checksum:   1009,
		At:         then.Add(time.Minute),
	}
	b := &storage.Submission{
		Assignment: "maze1",
		Dialect:    storage.TableDialect,
		Passed:     true,
		At:         then,
	}
	for _, sub := range []*storage.Submission{a, b} {
		if err := s.Put(ctx, sub); err != nil {
			t.Fatal(err)
		}
	}
	if a.Id == "" || a.Id == b.Id {
		t.Fatal("expected fresh ids")
	}

	got, err := s.Get(ctx, "maze1", a.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != a.Source || got.Checksum != 1009 || !got.At.Equal(a.At) {
		t.Fatal(got)
	}

	subs, err := s.List(ctx, "maze1")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0].Id != b.Id || !subs[0].Passed {
		t.Fatalf("got %d submissions", len(subs))
	}

	if err := s.Delete(ctx, "maze1", b.Id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "maze1", b.Id); err != storage.ErrNotFound {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "nope", a.Id); err != storage.ErrNotFound {
		t.Fatal(err)
	}
	if subs, err = s.List(ctx, "nope"); err != nil || len(subs) != 0 {
		t.Fatal(subs, err)
	}
}

// BenchmarkBolt is just for fun.  Bolt is slow.
func BenchmarkBolt(b *testing.B) {
	s, err := NewStorage(filepath.Join(b.TempDir(), "storage.db"))
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		b.Fatal(err)
	}
	defer s.Close(ctx)

	sub := &storage.Submission{
		Assignment: "tm1",
		Dialect:    storage.TuringDialect,
		Source:     "states A\n",
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var err error
		if i%2 == 0 {
			sub.Id = ""
			err = s.Put(ctx, sub)
		} else {
			_, err = s.List(ctx, "tm1")
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}
