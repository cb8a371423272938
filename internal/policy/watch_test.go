package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.json")
	v1 := `{"policies":[{"code":"customgame","min_starters":1,"max_starters":2,"max_substitutes":0,"roles":["solo"]}]}`
	if err := os.WriteFile(path, []byte(v1), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	if err := reg.LoadOverlayFile(path); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := reg.Watch(ctx, path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	v2 := `{"policies":[{"code":"customgame","min_starters":1,"max_starters":3,"max_substitutes":1,"roles":["solo","duo"]}]}`
	if err := os.WriteFile(path, []byte(v2), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		p, err := reg.Resolve("customgame")
		if err == nil && p.MaxStarters == 3 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("overlay never reloaded; have %+v", p)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
