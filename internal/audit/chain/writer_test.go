package chain

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTrail(t *testing.T) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, path
}

func TestLogAndVerify(t *testing.T) {
	w, path := newTrail(t)

	events := []struct {
		kind, actor, target string
		meta                map[string]string
	}{
		{KindMemberAdded, "10", "1", map[string]string{"role": "mid", "starter": "true"}},
		{KindPromoted, "11", "1", nil},
		{KindCaptainMoved, "10", "1", nil},
		{KindMemberRemoved, "12", "1", nil},
	}
	for _, ev := range events {
		if err := w.Log(ev.kind, ev.actor, ev.target, ev.meta); err != nil {
			t.Fatalf("log %s: %v", ev.kind, err)
		}
	}

	n, err := Verify(path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if n != len(events) {
		t.Fatalf("verified %d records, want %d", n, len(events))
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Log(KindMemberAdded, "10", "1", map[string]string{"role": "mid"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// a fresh writer on the same trail must pick up where the last one left off
	w2, err := NewWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w2.Log(KindMemberRemoved, "10", "1", nil); err != nil {
		t.Fatal(err)
	}
	if err := w2.Log(KindCaptainMoved, "11", "1", nil); err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	n, err := Verify(path)
	if err != nil {
		t.Fatalf("verify after reopen: %v", err)
	}
	if n != 3 {
		t.Fatalf("verified %d records, want 3", n)
	}
}

func TestVerifyDetectsTamper(t *testing.T) {
	w, path := newTrail(t)
	for i := 0; i < 3; i++ {
		if err := w.Log(KindMemberAdded, "10", "1", map[string]string{"role": "mid"}); err != nil {
			t.Fatal(err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(b, []byte("\n"))
	lines[1] = bytes.Replace(lines[1], []byte(`"role":"mid"`), []byte(`"role":"top"`), 1)
	if err := os.WriteFile(path, bytes.Join(lines, []byte("\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := Verify(path)
	if err == nil {
		t.Fatalf("tampered trail verified clean")
	}
	if n != 1 {
		t.Fatalf("verified %d records before the break, want 1", n)
	}
}

func TestVerifyDetectsDroppedRecord(t *testing.T) {
	w, path := newTrail(t)
	for i := 0; i < 3; i++ {
		if err := w.Log(KindMemberRemoved, "10", "1", nil); err != nil {
			t.Fatal(err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.SplitN(b, []byte("\n"), 3)
	// drop the middle record; the chain must break at the next one
	if err := os.WriteFile(path, append(lines[0], append([]byte("\n"), lines[2]...)...), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := Verify(path)
	if err == nil {
		t.Fatalf("truncated trail verified clean")
	}
	if n != 1 {
		t.Fatalf("verified %d records before the break, want 1", n)
	}
}

func TestVerifyEmptyTrail(t *testing.T) {
	_, path := newTrail(t)
	n, err := Verify(path)
	if err != nil {
		t.Fatalf("verify empty: %v", err)
	}
	if n != 0 {
		t.Fatalf("verified %d records in an empty trail", n)
	}
}
