package storage

import (
	"context"
	"testing"
	"time"
)

func TestImpl(t *testing.T) {
	var _ Storage = &NoopStorage{}
	var _ Storage = NewMemStorage()
}

func TestMemStorage(t *testing.T) {
	var (
		ctx = context.Background()
		s   = NewMemStorage()
		at  = time.Now()
	)
	for i, id := range []string{"c", "a", "b"} {
		sub := &Submission{
			Id:         id,
			Assignment: "tm",
			At:         at.Add(time.Duration(i%2) * time.Second),
		}
		if err := s.Put(ctx, sub); err != nil {
			t.Fatal(err)
		}
	}
	subs, err := s.List(ctx, "tm")
	if err != nil {
		t.Fatal(err)
	}
	got := ""
	for _, sub := range subs {
		got += sub.Id
	}
	if got != "bca" {
		t.Fatal(got)
	}

	subs[0].Passed = true
	if sub, _ := s.Get(ctx, "tm", "b"); sub.Passed {
		t.Fatal("storage shares submissions with callers")
	}
	if err := s.Delete(ctx, "tm", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "tm", "b"); err != ErrNotFound {
		t.Fatal(err)
	}
}

func TestPrepare(t *testing.T) {
	sub := &Submission{}
	Prepare(sub)
	if len(sub.Id) != 36 || sub.At.IsZero() {
		t.Fatal(sub)
	}
	id := sub.Id
	Prepare(sub)
	if sub.Id != id {
		t.Fatal("Prepare replaced an id")
	}
}
