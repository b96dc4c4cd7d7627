// Package storage persists flushed run logs: one directory per run with
// metadata and per-channel CSV files, catalogued in a sqlite index.
package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, "index.db"))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id        TEXT PRIMARY KEY,
			gait      TEXT NOT NULL,
			created   TIMESTAMP NOT NULL,
			dt        REAL NOT NULL,
			ticks     INTEGER NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type RunMetadata struct {
	ID        string         `json:"id"`
	Gait      string         `json:"gait"`
	Timestamp time.Time      `json:"timestamp"`
	Dt        float64        `json:"dt"`
	Ticks     int            `json:"ticks"`
	Channels  map[string]int `json:"channels"` // name -> width
}

// Save writes one flushed log to disk and records it in the index.
// Channels arrive as name -> width x ticks data, the loop's export shape.
func (s *Store) Save(ctx context.Context, gaitName string, dt float64,
	channels map[string][][]float64) (string, error) {

	if s.db == nil {
		return "", errors.New("storage: store not initialized")
	}
	if len(channels) == 0 {
		return "", errors.New("storage: empty log")
	}

	ticks := 0
	widths := make(map[string]int, len(channels))
	for name, data := range channels {
		widths[name] = len(data)
		if len(data) > 0 {
			ticks = len(data[0])
		}
	}

	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Gait:      gaitName,
		Timestamp: time.Now().UTC(),
		Dt:        dt,
		Ticks:     ticks,
		Channels:  widths,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	for name, data := range channels {
		if err := writeChannelCSV(filepath.Join(runDir, name+".csv"), data); err != nil {
			return "", fmt.Errorf("channel %s: %w", name, err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, gait, created, dt, ticks) VALUES (?, ?, ?, ?, ?)`,
		meta.ID, meta.Gait, meta.Timestamp, meta.Dt, meta.Ticks)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the catalogued runs, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	if s.db == nil {
		return nil, errors.New("storage: store not initialized")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, gait, created, dt, ticks FROM runs ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunMetadata
	for rows.Next() {
		var m RunMetadata
		if err := rows.Scan(&m.ID, &m.Gait, &m.Timestamp, &m.Dt, &m.Ticks); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Metadata loads one run's full metadata from its directory.
func (s *Store) Metadata(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// LoadChannel reads one channel back in width x ticks shape.
func (s *Store) LoadChannel(runID, name string) ([][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: channel %s has no header", name)
	}

	width := len(records[0])
	ticks := len(records) - 1
	data := make([][]float64, width)
	for row := range data {
		data[row] = make([]float64, ticks)
	}
	for i, rec := range records[1:] {
		if len(rec) != width {
			return nil, fmt.Errorf("storage: ragged row %d in channel %s", i, name)
		}
		for row, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			data[row][i] = v
		}
	}
	return data, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeChannelCSV stores width x ticks data as one row per tick with a
// c0..cN header.
func writeChannelCSV(path string, data [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, len(data))
	for i := range header {
		header[i] = fmt.Sprintf("c%d", i)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	ticks := 0
	if len(data) > 0 {
		ticks = len(data[0])
	}
	row := make([]string, len(data))
	for i := 0; i < ticks; i++ {
		for ch := range data {
			row[ch] = strconv.FormatFloat(data[ch][i], 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
