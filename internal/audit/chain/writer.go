// Package chain appends roster mutations to a hash-chained JSONL trail so a
// disputed roster change can be audited after the fact.
package chain

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event kinds written by the roster manager.
const (
	KindMemberAdded    = "member_added"
	KindMemberApproved = "member_approved"
	KindMemberRemoved  = "member_removed"
	KindPromoted       = "member_promoted"
	KindDemoted        = "member_demoted"
	KindCaptainMoved   = "captain_transferred"
	KindRoleChanged    = "role_changed"
)

type Writer struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte // previous hash
}

// NewWriter opens the trail for appending. An existing trail seeds the chain
// from its final record so appends across process restarts stay verifiable.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev := make([]byte, 32)
	last, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	if last != nil {
		prev = last
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, prev: prev}, nil
}

// lastHash returns the final record's hash, or nil when the trail is missing
// or empty.
func lastHash(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var last string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("audit trail tail: %w", err)
		}
		last = ev.Hash
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if last == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(last)
	if err != nil || len(b) != sha256.Size {
		return nil, fmt.Errorf("audit trail tail: malformed hash %q", last)
	}
	return b, nil
}

func (w *Writer) Close() error { return w.f.Close() }

// Event is one audit record. Actor is the player id, Target the team id.
type Event struct {
	Time   time.Time         `json:"time"`
	Kind   string            `json:"kind"`
	Actor  string            `json:"actor"`
	Target string            `json:"target"`
	Meta   map[string]string `json:"meta,omitempty"`
	Prev   string            `json:"prev"`
	Hash   string            `json:"hash"`
}

// Log appends one event, chaining its hash to the previous record.
func (w *Writer) Log(kind, actor, target string, meta map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ev := Event{Time: time.Now().UTC(), Kind: kind, Actor: actor, Target: target, Meta: meta, Prev: hex.EncodeToString(w.prev)}
	b, _ := json.Marshal(ev)
	h := sha256.Sum256(append(w.prev, b...))
	ev.Hash = hex.EncodeToString(h[:])
	b, _ = json.Marshal(ev)
	if _, err := w.f.Write(append(b, '\n')); err != nil {
		return err
	}
	copy(w.prev, h[:])
	return nil
}

// Verify replays a trail file and reports the first break in the hash chain.
func Verify(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	prev := make([]byte, 32)
	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return count, fmt.Errorf("record %d: %w", count+1, err)
		}
		if ev.Prev != hex.EncodeToString(prev) {
			return count, fmt.Errorf("record %d: prev hash mismatch", count+1)
		}
		// the hash covers the record as marshalled before Hash was filled in
		claimed := ev.Hash
		ev.Hash = ""
		b, _ := json.Marshal(ev)
		h := sha256.Sum256(append(prev, b...))
		if hex.EncodeToString(h[:]) != claimed {
			return count, fmt.Errorf("record %d: hash mismatch", count+1)
		}
		hb, _ := hex.DecodeString(claimed)
		copy(prev, hb)
		count++
	}
	if err := sc.Err(); err != nil {
		return count, err
	}
	return count, nil
}
