// Package ledger implements the append-only, hash-chained provenance log.
// Every invocation outcome — ok, stub_blocked, or failed — lands here as one
// newline-delimited canonical-JSON record whose step_hash covers all of its
// fields plus the previous record's step_hash.
package ledger

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/evolvekit/evolve/canonical"
	"github.com/evolvekit/evolve/errors"
)

// Genesis is the prev_hash sentinel of the first record in a chain.
const Genesis = "genesis"

// Status classifies an invocation outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusStubBlocked Status = "stub_blocked"
	StatusFailed      Status = "failed"
)

// RecordContext is the invocation context embedded in every record.
type RecordContext struct {
	RunID       string `json:"run_id"`
	SubsystemID string `json:"subsystem_id"`
	RevisionID  string `json:"revision_id"`
}

// Record is one ledger row.
type Record struct {
	Capability  string         `json:"capability"`
	RuneID      string         `json:"rune_id"`
	Version     string         `json:"version"`
	Context     RecordContext  `json:"context"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs"`
	Status      Status         `json:"status"`
	Error       *string        `json:"error"`
	Timestamp   string         `json:"timestamp"`
	InputsHash  string         `json:"inputs_hash"`
	OutputsHash *string        `json:"outputs_hash"`
	ContextHash string         `json:"context_hash"`
	PrevHash    string         `json:"prev_hash"`
	StepHash    string         `json:"step_hash"`
}

// chainFields is the record as a canonicalizable tree, excluding step_hash;
// the step hash is computed over exactly this shape.
func (r *Record) chainFields() map[string]any {
	m := map[string]any{
		"capability": r.Capability,
		"rune_id":    r.RuneID,
		"version":    r.Version,
		"context": map[string]any{
			"run_id":       r.Context.RunID,
			"subsystem_id": r.Context.SubsystemID,
			"revision_id":  r.Context.RevisionID,
		},
		"inputs":       r.Inputs,
		"status":       string(r.Status),
		"timestamp":    r.Timestamp,
		"inputs_hash":  r.InputsHash,
		"context_hash": r.ContextHash,
		"prev_hash":    r.PrevHash,
	}
	if r.Outputs != nil {
		m["outputs"] = r.Outputs
	} else {
		m["outputs"] = nil
	}
	if r.Error != nil {
		m["error"] = *r.Error
	} else {
		m["error"] = nil
	}
	if r.OutputsHash != nil {
		m["outputs_hash"] = *r.OutputsHash
	} else {
		m["outputs_hash"] = nil
	}
	return m
}

// Ledger owns the backing store at one path. Appends are serialized by the
// per-instance mutex: correctness depends on reading the previous line
// before writing the next. Distinct paths are independent chains.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// Open returns a ledger handle for path. The store is created lazily on
// first append.
func Open(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing store path.
func (l *Ledger) Path() string {
	return l.path
}

// Append chains rec onto the store and returns its step hash. The record's
// prev_hash and step_hash are computed here; inputs/outputs/context hashes
// are filled if the caller did not set them. The write is a single atomic
// line append; on any error before the write, the store is untouched.
func (l *Ledger) Append(rec *Record) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := l.fillHashes(rec); err != nil {
		return "", err
	}

	prev, err := l.lastStepHash()
	if err != nil {
		return "", err
	}
	rec.PrevHash = prev

	stepHash, err := canonical.Hash(rec.chainFields(), canonical.ProfileStrict)
	if err != nil {
		return "", errors.Wrap(err, "compute step hash")
	}
	rec.StepHash = stepHash

	fields := rec.chainFields()
	fields["step_hash"] = stepHash
	line, err := canonical.Encode(fields, canonical.ProfileStrict)
	if err != nil {
		return "", errors.Wrap(err, "encode ledger record")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "open ledger %s", l.path)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", errors.Wrapf(err, "append to ledger %s", l.path)
	}
	return stepHash, nil
}

func (l *Ledger) fillHashes(rec *Record) error {
	if rec.InputsHash == "" {
		h, err := canonical.Hash(rec.Inputs, canonical.ProfileStrict)
		if err != nil {
			return errors.Wrap(err, "hash inputs")
		}
		rec.InputsHash = h
	}
	if rec.OutputsHash == nil && rec.Outputs != nil {
		h, err := canonical.Hash(rec.Outputs, canonical.ProfileStrict)
		if err != nil {
			return errors.Wrap(err, "hash outputs")
		}
		rec.OutputsHash = &h
	}
	if rec.ContextHash == "" {
		h, err := canonical.Hash(map[string]any{
			"run_id":       rec.Context.RunID,
			"subsystem_id": rec.Context.SubsystemID,
			"revision_id":  rec.Context.RevisionID,
		}, canonical.ProfileStrict)
		if err != nil {
			return errors.Wrap(err, "hash context")
		}
		rec.ContextHash = h
	}
	return nil
}

// lastStepHash returns the step hash of the final record, or Genesis for an
// empty or absent store.
func (l *Ledger) lastStepHash() (string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Genesis, nil
		}
		return "", errors.Wrapf(err, "open ledger %s", l.path)
	}
	defer f.Close()

	last := ""
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrapf(err, "scan ledger %s", l.path)
	}
	if last == "" {
		return Genesis, nil
	}

	var tail struct {
		StepHash string `json:"step_hash"`
	}
	if err := json.Unmarshal([]byte(last), &tail); err != nil {
		return "", errors.Wrapf(err, "parse last ledger line in %s", l.path)
	}
	if tail.StepHash == "" {
		return "", errors.Newf("last ledger line in %s has no step_hash", l.path)
	}
	return tail.StepHash, nil
}

// List returns records in append order. A non-empty runID filters to that
// run; records of other runs keep their positions in the chain but are
// omitted from the result.
func (l *Ledger) List(runID string) ([]*Record, error) {
	var out []*Record
	err := l.scan(func(_ int, raw string) error {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return errors.Wrap(err, "parse ledger record")
		}
		if runID == "" || rec.Context.RunID == runID {
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Verify recomputes every record's step hash from its stored fields and
// confirms the prev_hash chain holds end-to-end. Verification is per store:
// interleaved runs share one chain, so a run-scoped slice could not check
// continuity. Returns nil for an intact (or empty) chain.
func (l *Ledger) Verify() error {
	prev := Genesis
	return l.scan(func(n int, raw string) error {
		decoded, err := canonical.Decode([]byte(raw))
		if err != nil {
			return errors.Wrapf(err, "record %d unparseable", n)
		}
		fields, ok := decoded.(map[string]any)
		if !ok {
			return errors.Newf("record %d is not an object", n)
		}

		stored, _ := fields["step_hash"].(string)
		if stored == "" {
			return errors.Newf("record %d has no step_hash", n)
		}
		if prevHash, _ := fields["prev_hash"].(string); prevHash != prev {
			return errors.Newf("record %d chain break: prev_hash %q, expected %q", n, prevHash, prev)
		}

		delete(fields, "step_hash")
		expected, err := canonical.Hash(fields, canonical.ProfileStrict)
		if err != nil {
			return errors.Wrapf(err, "record %d rehash", n)
		}
		if expected != stored {
			return errors.Newf("record %d hash mismatch: stored %s, computed %s", n, stored, expected)
		}

		prev = stored
		return nil
	})
}

// scan drives fn over non-empty lines in file order, numbering from 0.
func (l *Ledger) scan(fn func(n int, raw string) error) error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "open ledger %s", l.path)
	}
	defer f.Close()

	n := 0
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				if ferr := fn(n, trimmed); ferr != nil {
					return ferr
				}
				n++
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read ledger %s", l.path)
		}
	}
}
