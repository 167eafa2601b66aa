// Package journal records the commands each faction issued, as zstd
// compressed JSON lines, and keeps a SQLite index of scheduling passes.
// Two runs of the same scenario with the same seed produce the same
// journal, which the digest makes cheap to compare.
package journal

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/quartermaster/model"
)

// Entry is one journal line.
type Entry struct {
	Cycle   uint64             `json:"cycle"`
	Faction int                `json:"faction"`
	Command model.CommandState `json:"command"`
}

// DefaultSegmentCycles starts a new journal file every five minutes of
// game time at 30 cycles per second.
const DefaultSegmentCycles = 9000

// Writer appends entries to segment files named after the first cycle they
// cover. Segments roll over on game cycles, never wall clock, so replays
// split the same way.
type Writer struct {
	dir           string
	prefix        string
	segmentCycles uint64

	mu      sync.Mutex
	segment uint64
	opened  bool
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	digest  hash.Hash
	entries int
}

func NewWriter(dir string, segmentCycles uint64) *Writer {
	if segmentCycles == 0 {
		segmentCycles = DefaultSegmentCycles
	}
	return &Writer{dir: dir, prefix: "commands", segmentCycles: segmentCycles, digest: sha256.New()}
}

// Append writes one entry per command. Cycles earlier than the current
// segment are written to it rather than reopening an old file.
func (w *Writer) Append(cycle uint64, faction int, cmds []model.CommandState) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seg := cycle / w.segmentCycles * w.segmentCycles
	if !w.opened || seg > w.segment {
		if err := w.rotateLocked(seg); err != nil {
			return fmt.Errorf("rotate journal: %w", err)
		}
	}
	for _, c := range cmds {
		b, err := json.Marshal(Entry{Cycle: cycle, Faction: faction, Command: c})
		if err != nil {
			return err
		}
		b = append(b, '\n')
		if _, err := w.w.Write(b); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		w.digest.Write(b)
		w.entries++
	}
	return w.w.Flush()
}

// Digest returns the hex SHA-256 of every line appended so far.
func (w *Writer) Digest() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return hex.EncodeToString(w.digest.Sum(nil))
}

// Entries reports how many entries have been appended.
func (w *Writer) Entries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(seg uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathFor(seg), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc = f, enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.segment, w.opened = seg, true
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		err = w.w.Flush()
	}
	if w.enc != nil {
		err = errors.Join(err, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		err = errors.Join(err, w.f.Close())
		w.f = nil
	}
	w.w = nil
	return err
}

func (w *Writer) pathFor(seg uint64) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%010d.jsonl.zst", w.prefix, seg))
}

// Segments lists the journal files in dir in cycle order.
func Segments(dir string) ([]string, error) {
	// Zero padded names sort by cycle.
	return filepath.Glob(filepath.Join(dir, "commands-*.jsonl.zst"))
}

// ReadSegment decodes every entry in one journal file.
func ReadSegment(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()
	return readEntries(dec)
}

func readEntries(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("entry %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Digest hashes entries the way Writer.Digest does, so a journal read back
// from disk can be checked against the run that wrote it.
func Digest(entries []Entry) (string, error) {
	h := sha256.New()
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return "", err
		}
		h.Write(append(b, '\n'))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
