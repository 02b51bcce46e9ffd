// Package ledger owns read-modify-write access to the shared CSV ledger.
// Every update re-reads the full table under an advisory cross-process
// lock, merges one row, and atomically replaces the file.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"ecotrace/internal/domain"
	"ecotrace/internal/logger"
)

// Writer upserts records into one ledger path. It holds no table state
// between calls; each update re-reads the file.
type Writer struct {
	path       string
	lock       *fileLock
	log        logger.Logger
	appendOnly bool
}

// NewWriter creates the upsert writer for the main ledger.
func NewWriter(path string, opts Options, log logger.Logger) *Writer {
	return &Writer{
		path: path,
		lock: newFileLock(path, opts),
		log:  log,
	}
}

// NewAppender creates a write-once writer for the encoded mirror: rows
// are only ever appended, never updated in place.
func NewAppender(path string, opts Options, log logger.Logger) *Writer {
	w := NewWriter(path, opts, log)
	w.appendOnly = true
	return w
}

// Upsert merges one record into the ledger, keyed by record id.
//
// With insertAsNew false, the most recent row with the same id is
// overwritten in place (or the record is appended when the id is new).
// With insertAsNew true, the row is inserted immediately after the most
// recent row with the same id, keeping a session's rows contiguous and
// its epochs in arrival order.
func (w *Writer) Upsert(rec domain.Record, insertAsNew bool) error {
	return w.write(rec.ID, rec.Row(), insertAsNew)
}

// AppendRow appends a pre-rendered row. Only valid on appenders.
func (w *Writer) AppendRow(row []string) error {
	return w.write("", row, false)
}

func (w *Writer) write(id string, row []string, insertAsNew bool) error {
	release, err := w.lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	rows, err := w.load()
	if err != nil {
		return err
	}

	return w.replace(w.merge(rows, id, row, insertAsNew))
}

func (w *Writer) merge(rows [][]string, id string, row []string, insertAsNew bool) [][]string {
	if w.appendOnly {
		return append(rows, row)
	}

	last := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == id {
			last = i
		}
	}

	switch {
	case last < 0:
		rows = append(rows, row)
	case insertAsNew:
		rows = append(rows, nil)
		copy(rows[last+2:], rows[last+1:])
		rows[last+1] = row
	default:
		rows[last] = row
	}

	return rows
}

// load reads the table body, repairing the schema of older files: missing
// canonical columns are added with the N/A sentinel and columns are
// reordered to the canonical header. No existing row is dropped.
func (w *Writer) load() ([][]string, error) {
	f, err := os.Open(w.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", w.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header, body := records[0], records[1:]
	if !canonicalHeader(header) {
		w.log.Warn("upgrading ledger to the current schema", "path", w.path)
		body = repair(header, body)
	}

	return body, nil
}

func canonicalHeader(header []string) bool {
	if len(header) != len(domain.LedgerColumns) {
		return false
	}
	for i, col := range domain.LedgerColumns {
		if header[i] != col {
			return false
		}
	}
	return true
}

func repair(header []string, body [][]string) [][]string {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	out := make([][]string, len(body))
	for i, row := range body {
		repaired := make([]string, len(domain.LedgerColumns))
		for j, col := range domain.LedgerColumns {
			if k, ok := index[col]; ok && k < len(row) {
				repaired[j] = row[k]
			} else {
				repaired[j] = domain.NotApplicable
			}
		}
		out[i] = repaired
	}

	return out
}

// replace persists the merged table. The write goes to a temp file in the
// ledger's directory and is renamed over the target, so readers never
// observe a partially written table.
func (w *Writer) replace(rows [][]string) error {
	dir := filepath.Dir(w.path)

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(domain.LedgerColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger rows: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}
