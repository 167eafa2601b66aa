package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// TickRow summarises one scheduling pass of one faction.
type TickRow struct {
	Cycle        uint64 `db:"cycle"`
	Faction      int    `db:"faction"`
	NeededMask   uint32 `db:"needed_mask"`
	QueueLen     int    `db:"queue_len"`
	Explorations int    `db:"explorations"`
	Commands     int    `db:"commands"`
}

// Summary aggregates a faction's indexed passes.
type Summary struct {
	Ticks        int `db:"ticks"`
	ShortTicks   int `db:"short_ticks"` // passes that ended short of some resource
	Commands     int `db:"commands"`
	Explorations int `db:"explorations"`
	MaxQueue     int `db:"max_queue"`
}

// Index is a SQLite table of scheduling passes.
type Index struct {
	db *sqlx.DB
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return idx, nil
}

func (idx *Index) Close() error { return idx.db.Close() }

func (idx *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ticks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle INTEGER NOT NULL,
		faction INTEGER NOT NULL,
		needed_mask INTEGER NOT NULL,
		queue_len INTEGER NOT NULL,
		explorations INTEGER NOT NULL,
		commands INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ticks_faction ON ticks(faction, cycle);
	`
	_, err := idx.db.Exec(schema)
	return err
}

// Record inserts one pass.
func (idx *Index) Record(row TickRow) error {
	_, err := idx.db.NamedExec(`INSERT INTO ticks
		(cycle, faction, needed_mask, queue_len, explorations, commands)
		VALUES (:cycle, :faction, :needed_mask, :queue_len, :explorations, :commands)`, row)
	if err != nil {
		return fmt.Errorf("record tick %d: %w", row.Cycle, err)
	}
	return nil
}

// Ticks returns a faction's passes in cycle order.
func (idx *Index) Ticks(faction int) ([]TickRow, error) {
	var rows []TickRow
	err := idx.db.Select(&rows, `SELECT cycle, faction, needed_mask, queue_len, explorations, commands
		FROM ticks WHERE faction = ? ORDER BY cycle, id`, faction)
	return rows, err
}

// Summary aggregates every pass recorded for faction.
func (idx *Index) Summary(faction int) (Summary, error) {
	var s Summary
	err := idx.db.Get(&s, `SELECT
			COUNT(*) AS ticks,
			COALESCE(SUM(needed_mask != 0), 0) AS short_ticks,
			COALESCE(SUM(commands), 0) AS commands,
			COALESCE(SUM(explorations), 0) AS explorations,
			COALESCE(MAX(queue_len), 0) AS max_queue
		FROM ticks WHERE faction = ?`, faction)
	if err != nil {
		return s, fmt.Errorf("summary for faction %d: %w", faction, err)
	}
	return s, nil
}
