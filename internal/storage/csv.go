package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// CSVLedger stores the ledger as a CSV file in the persisted row layout,
// one header row followed by one row per entry. A row's position is its
// 1-based data row number, so positions shift after a delete the way
// spreadsheet rows do; callers deleting several rows pass them highest
// first.
type CSVLedger struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
}

var _ ledger.Store = (*CSVLedger)(nil)

// bom is the byte order mark spreadsheet exports put before the header.
const bom = "\ufeff"

// NewCSVLedger returns a ledger backed by path. The file is created on the
// first append. Timestamps are read in loc, or local time when nil.
func NewCSVLedger(path string, loc *time.Location) *CSVLedger {
	if loc == nil {
		loc = time.Local
	}
	return &CSVLedger{path: path, loc: loc}
}

func (l *CSVLedger) ReadAll(ctx context.Context) ([]ledger.Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readRecords()
	if err != nil {
		return nil, err
	}
	rows := make([]ledger.Row, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, ledger.Row{Position: i + 1, Entry: models.DecodeRow(rec, l.loc)})
	}
	return rows, nil
}

func (l *CSVLedger) Append(ctx context.Context, entries []models.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	needHeader := errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat ledger file: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(models.LedgerHeader); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	for _, e := range entries {
		if err := w.Write(models.EncodeRow(e)); err != nil {
			return fmt.Errorf("failed to write log entry: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger file: %w", err)
	}
	return f.Close()
}

// Delete removes rows one at a time in the order given, then rewrites the
// file. Each position refers to the ledger as left by the previous delete.
func (l *CSVLedger) Delete(ctx context.Context, positions []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readRecords()
	if err != nil {
		return err
	}
	for _, pos := range positions {
		if pos < 1 || pos > len(records) {
			return fmt.Errorf("failed to delete log entry %d: no such row", pos)
		}
		records = slices.Delete(records, pos-1, pos)
	}
	return l.rewrite(records)
}

// readRecords returns the data rows, without the header. A missing file
// reads as an empty ledger.
func (l *CSVLedger) readRecords() ([][]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse ledger file: %w", err)
		}
		if len(records) == 0 && isHeader(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// rewrite replaces the file through a temp file and rename.
func (l *CSVLedger) rewrite(records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(models.LedgerHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.TrimPrefix(rec[0], bom) == models.LedgerHeader[0]
}
