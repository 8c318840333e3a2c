package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rotblauer/gpxreplay/params"
	"go.etcd.io/bbolt"
	"hash/fnv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var ErrLedgerLocked = errors.New("ledger is in use by another process")

// Entry records one processed input file.
type Entry struct {
	Input       string    `json:"input"`
	InputHash   uint64    `json:"input_hash"`
	Config      uint64    `json:"config"`
	Output      string    `json:"output"`
	Points      int       `json:"points"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Ledger remembers which inputs have already been processed, and how,
// so that a batch can skip files that have not changed since the last run.
type Ledger struct {
	DB    *bbolt.DB
	rOnly bool
}

// OpenLedger opens (or creates) the ledger database at path.
// A writable ledger is exclusive; a second writer fails with ErrLedgerLocked
// after a short wait instead of blocking forever.
func OpenLedger(path string, readOnly bool) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  2 * time.Second,
	})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrLedgerLocked, path)
	}
	if err != nil {
		return nil, err
	}
	return &Ledger{DB: db, rOnly: readOnly}, nil
}

// OpenDefaultLedger opens the ledger in the application data dir.
func OpenDefaultLedger() (*Ledger, error) {
	return OpenLedger(filepath.Join(params.DatadirRoot, params.LedgerDBName), false)
}

func (l *Ledger) Close() error {
	return l.DB.Close()
}

func ledgerKey(input string) []byte {
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	return []byte(input)
}

func (l *Ledger) storeKV(key []byte, data []byte) error {
	if key == nil {
		return fmt.Errorf("storeKV: nil key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return l.DB.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(params.LedgerBucket)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

func (l *Ledger) readKV(key []byte) ([]byte, error) {
	var out []byte
	err := l.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.LedgerBucket)
		if bucket == nil {
			return nil
		}
		// The value returned by Get is only valid in the scope of the transaction.
		got := bucket.Get(key)
		if got == nil {
			return nil
		}
		out = bytes.Clone(got)
		return nil
	})
	return out, err
}

// Record stores e under its input path, replacing any earlier entry.
func (l *Ledger) Record(e Entry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := l.storeKV(ledgerKey(e.Input), b); err != nil {
		slog.Error("Failed to record ledger entry", "input", e.Input, "error", err)
		return err
	}
	slog.Debug("Recorded ledger entry", "input", e.Input, "output", e.Output)
	return nil
}

// Lookup returns the entry for input, or nil if there is none.
func (l *Ledger) Lookup(input string) (*Entry, error) {
	got, err := l.readKV(ledgerKey(input))
	if err != nil || got == nil {
		return nil, err
	}
	e := &Entry{}
	if err := json.Unmarshal(got, e); err != nil {
		return nil, fmt.Errorf("%w: %q", err, string(got))
	}
	return e, nil
}

// Unchanged reports whether input was processed before with the same content
// and configuration, and its output is still on disk.
func (l *Ledger) Unchanged(input string, inputHash, config uint64) (bool, error) {
	e, err := l.Lookup(input)
	if err != nil || e == nil {
		return false, err
	}
	if e.InputHash != inputHash || e.Config != config {
		return false, nil
	}
	if _, err := os.Stat(e.Output); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *Ledger) Forget(input string) error {
	return l.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.LedgerBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(ledgerKey(input))
	})
}

// Entries returns every entry, ordered by input path.
func (l *Ledger) Entries() ([]Entry, error) {
	var out []Entry
	err := l.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.LedgerBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("entry %s: %w", k, err)
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

// ContentHash hashes the raw bytes read from r.
func ContentHash(r io.Reader) (uint64, error) {
	h := fnv.New64a()
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// FileHash is ContentHash of the file at path.
func FileHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ContentHash(f)
}
