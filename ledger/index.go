package ledger

import (
	"database/sql"

	"github.com/evolvekit/evolve/errors"
)

// Index mirrors a ledger's JSONL chain into SQLite for fast run, capability,
// and status queries. The JSONL file stays authoritative; the index is
// derived and can be rebuilt from the file at any time.
type Index struct {
	db *sql.DB
}

// NewIndex wraps a migrated database handle.
func NewIndex(database *sql.DB) *Index {
	return &Index{db: database}
}

// Sync folds every record not yet present in the index into SQLite, keyed by
// step_hash. Returns the number of newly indexed records.
func (ix *Index) Sync(l *Ledger) (int, error) {
	records, err := l.List("")
	if err != nil {
		return 0, errors.Wrap(err, "read ledger for indexing")
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin index transaction")
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO ledger_records (
			step_hash, prev_hash, capability, rune_id, version,
			run_id, subsystem_id, revision_id,
			status, error, timestamp, inputs_hash, outputs_hash, context_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "prepare index insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		res, err := stmt.Exec(
			rec.StepHash, rec.PrevHash, rec.Capability, rec.RuneID, rec.Version,
			rec.Context.RunID, rec.Context.SubsystemID, rec.Context.RevisionID,
			string(rec.Status), rec.Error, rec.Timestamp,
			rec.InputsHash, rec.OutputsHash, rec.ContextHash,
		)
		if err != nil {
			tx.Rollback()
			return 0, errors.Wrapf(err, "index record %s", rec.StepHash)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit index transaction")
	}
	return inserted, nil
}

// Stats summarizes the indexed chain.
type Stats struct {
	Total        int
	ByStatus     map[Status]int
	Runs         int
	Capabilities int
}

// Stats reports totals over the indexed records.
func (ix *Index) Stats() (Stats, error) {
	stats := Stats{ByStatus: make(map[Status]int)}

	err := ix.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT run_id), COUNT(DISTINCT capability)
		FROM ledger_records
	`).Scan(&stats.Total, &stats.Runs, &stats.Capabilities)
	if err != nil {
		return stats, errors.Wrap(err, "query index totals")
	}

	rows, err := ix.db.Query(`SELECT status, COUNT(*) FROM ledger_records GROUP BY status`)
	if err != nil {
		return stats, errors.Wrap(err, "query status counts")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, errors.Wrap(err, "scan status count")
		}
		stats.ByStatus[Status(status)] = count
	}
	return stats, rows.Err()
}

// IndexedRecord is the queryable projection of one ledger row.
type IndexedRecord struct {
	Seq         int64
	StepHash    string
	PrevHash    string
	Capability  string
	RuneID      string
	RunID       string
	Status      Status
	Error       *string
	Timestamp   string
	InputsHash  string
	OutputsHash *string
}

// ListRun returns indexed records for a run in chain order.
func (ix *Index) ListRun(runID string) ([]IndexedRecord, error) {
	rows, err := ix.db.Query(`
		SELECT seq, step_hash, prev_hash, capability, rune_id,
		       run_id, status, error, timestamp, inputs_hash, outputs_hash
		FROM ledger_records
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "query run %s", runID)
	}
	defer rows.Close()

	var out []IndexedRecord
	for rows.Next() {
		var rec IndexedRecord
		var status string
		if err := rows.Scan(
			&rec.Seq, &rec.StepHash, &rec.PrevHash, &rec.Capability, &rec.RuneID,
			&rec.RunID, &status, &rec.Error, &rec.Timestamp,
			&rec.InputsHash, &rec.OutputsHash,
		); err != nil {
			return nil, errors.Wrap(err, "scan indexed record")
		}
		rec.Status = Status(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
