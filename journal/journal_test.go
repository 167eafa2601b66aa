package journal

import (
	"path/filepath"
	"testing"

	"github.com/nstehr/quartermaster/model"
)

func cmd(unit int, action string) model.CommandState {
	return model.CommandState{Unit: unit, Order: model.OrderState{Action: action}}
}

func TestWriterRotatesOnCycles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 100)
	appends := []struct {
		cycle uint64
		cmds  []model.CommandState
	}{
		{0, []model.CommandState{cmd(1, "train"), cmd(2, "resource")}},
		{60, []model.CommandState{cmd(3, "build")}},
		{120, []model.CommandState{cmd(1, "train")}},
	}
	for _, a := range appends {
		if err := w.Append(a.cycle, 1, a.cmds); err != nil {
			t.Fatalf("Append(%d): %v", a.cycle, err)
		}
	}
	digest := w.Digest()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.Entries() != 4 {
		t.Errorf("Entries = %d, want 4", w.Entries())
	}

	segs, err := Segments(dir)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segs) != 2 || filepath.Base(segs[1]) != "commands-0000000100.jsonl.zst" {
		t.Fatalf("segments = %v", segs)
	}

	var all []Entry
	for i, want := range []int{3, 1} {
		entries, err := ReadSegment(segs[i])
		if err != nil {
			t.Fatalf("ReadSegment: %v", err)
		}
		if len(entries) != want {
			t.Errorf("segment %d has %d entries, want %d", i, len(entries), want)
		}
		all = append(all, entries...)
	}
	if all[2].Cycle != 60 || all[2].Command.Order.Action != "build" || all[2].Faction != 1 {
		t.Errorf("third entry = %+v", all[2])
	}
	got, err := Digest(all)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if got != digest {
		t.Errorf("Digest of read entries = %s, writer digest %s", got, digest)
	}
}

func TestWriterLateCycleStaysInSegment(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 100)
	if err := w.Append(250, 1, []model.CommandState{cmd(1, "train")}); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(90, 2, []model.CommandState{cmd(2, "train")}); err != nil {
		t.Fatal(err)
	}
	w.Close()
	segs, _ := Segments(dir)
	if len(segs) != 1 {
		t.Errorf("segments = %v, want one", segs)
	}
}

func TestDigestDiffers(t *testing.T) {
	a, _ := Digest([]Entry{{Cycle: 1, Faction: 1, Command: cmd(1, "train")}})
	b, _ := Digest([]Entry{{Cycle: 1, Faction: 1, Command: cmd(2, "train")}})
	if a == b {
		t.Error("different entries hashed the same")
	}
}

func TestIndexSummary(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()

	rows := []TickRow{
		{Cycle: 0, Faction: 1, QueueLen: 1, Commands: 2},
		{Cycle: 30, Faction: 1, NeededMask: 2, QueueLen: 3, Explorations: 1},
		{Cycle: 60, Faction: 1, QueueLen: 2, Commands: 1},
		{Cycle: 0, Faction: 2, QueueLen: 5, Commands: 4},
	}
	for _, r := range rows {
		if err := idx.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	s, err := idx.Summary(1)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := Summary{Ticks: 3, ShortTicks: 1, Commands: 3, Explorations: 1, MaxQueue: 3}
	if s != want {
		t.Errorf("Summary(1) = %+v, want %+v", s, want)
	}

	ticks, err := idx.Ticks(1)
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}
	if len(ticks) != 3 || ticks[1].NeededMask != 2 {
		t.Errorf("Ticks(1) = %+v", ticks)
	}

	empty, err := idx.Summary(7)
	if err != nil || empty != (Summary{}) {
		t.Errorf("Summary(7) = %+v, %v, want zero", empty, err)
	}
}

func TestOpenIndexEmptyPath(t *testing.T) {
	if _, err := OpenIndex(""); err == nil {
		t.Error("empty path accepted")
	}
}
