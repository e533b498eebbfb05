package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/fsmgrader/core"
)

func TestRunSession(t *testing.T) {
	dir := t.TempDir()
	tableFilename := filepath.Join(dir, "ant.tt")
	if err := os.WriteFile(tableFilename, []byte(core.WallFollower), 0644); err != nil {
		t.Fatal(err)
	}
	session := `
ios:
  - inputs: "000"
    outputs: "10100"
  - inputs: "111"
    outputs: "11111"
  - inputs: "100"
    state: walk
`
	sessionFilename := filepath.Join(dir, "ant.yaml")
	if err := os.WriteFile(sessionFilename, []byte(session), 0644); err != nil {
		t.Fatal(err)
	}

	tab, err := loadTable(tableFilename, 3, 5)
	if err != nil {
		t.Fatal(err)
	}

	r, err := runSession(context.Background(), tab, sessionFilename, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Ran != 3 || len(r.Failures) != 1 || r.Failures[0].IO != 1 {
		t.Fatalf("%#v", r)
	}

	if _, err = runSession(context.Background(), tab, filepath.Join(dir, "missing.yaml"), false, false); err == nil {
		t.Fatal("expected an error")
	}
}
