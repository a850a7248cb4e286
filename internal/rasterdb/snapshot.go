package rasterdb

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/dsmgrid/internal/raster"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one persisted finalised raster.
type Snapshot struct {
	SnapshotID     string          `json:"snapshot_id"`
	TakenUnixNanos int64           `json:"taken_unix_nanos"`
	Geometry       raster.Geometry `json:"geometry"`
	Bands          int             `json:"bands"`
	ParamsJSON     json.RawMessage `json:"params_json,omitempty"`
	Summary        raster.Summary  `json:"summary"`
	CRS            string          `json:"crs,omitempty"`
	Inputs         []Input         `json:"inputs,omitempty"`
	GridBlob       []byte          `json:"-"` // gob+gzip raster.Buffers
}

// Input records one point cloud that contributed to a snapshot.
type Input struct {
	Path   string `json:"path"`
	Points int    `json:"points"`
}

// SnapshotStore is implemented by DB. Callers that only persist take this
// interface so tests can substitute an in-memory store.
type SnapshotStore interface {
	InsertSnapshot(s *Snapshot) (string, error)
	GetSnapshot(id string) (*Snapshot, error)
}

// NewSnapshot captures a finalised raster. params is marshalled to JSON as
// a record of the settings that produced it and may be nil.
func NewSnapshot(r *raster.Raster, params any, crs string, inputs []Input) (*Snapshot, error) {
	blob, err := EncodeBuffers(r.Buffers())
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		Geometry: r.Geometry(),
		Bands:    r.Bands(),
		Summary:  r.Summary(),
		CRS:      crs,
		Inputs:   inputs,
		GridBlob: blob,
	}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		s.ParamsJSON = b
	}
	return s, nil
}

// Raster decodes the stored buffers back into a Raster.
func (s *Snapshot) Raster() (*raster.Raster, error) {
	bufs, err := DecodeBuffers(s.GridBlob)
	if err != nil {
		return nil, err
	}
	return raster.NewRaster(s.Geometry, s.Bands, bufs)
}

// EncodeBuffers gob-encodes and gzips raster buffers.
func EncodeBuffers(b raster.Buffers) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(b); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBuffers is the inverse of EncodeBuffers.
func DecodeBuffers(blob []byte) (raster.Buffers, error) {
	if len(blob) == 0 {
		return raster.Buffers{}, fmt.Errorf("empty grid blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return raster.Buffers{}, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()
	var b raster.Buffers
	if err := gob.NewDecoder(gz).Decode(&b); err != nil {
		return raster.Buffers{}, fmt.Errorf("failed to decode grid: %w", err)
	}
	return b, nil
}

// InsertSnapshot stores s and its inputs in one transaction. An empty
// SnapshotID is replaced by a new UUID and a zero timestamp by now.
func (db *DB) InsertSnapshot(s *Snapshot) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil snapshot")
	}
	if s.SnapshotID == "" {
		s.SnapshotID = uuid.New().String()
	}
	if s.TakenUnixNanos == 0 {
		s.TakenUnixNanos = db.Clock.Now().UnixNano()
	}
	geomJSON, err := json.Marshal(s.Geometry)
	if err != nil {
		return "", fmt.Errorf("marshal geometry: %w", err)
	}
	summaryJSON, err := json.Marshal(s.Summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	params := "{}"
	if len(s.ParamsJSON) > 0 {
		params = string(s.ParamsJSON)
	}
	var crs interface{}
	if s.CRS != "" {
		crs = s.CRS
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO raster_snapshots (
			snapshot_id, taken_unix_nanos, width, height, bands,
			geometry_json, params_json, summary_json, crs, grid_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SnapshotID, s.TakenUnixNanos, s.Geometry.Width, s.Geometry.Height, s.Bands,
		string(geomJSON), params, string(summaryJSON), crs, s.GridBlob,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	for n, in := range s.Inputs {
		if _, err := tx.Exec(`INSERT INTO raster_snapshot_inputs (snapshot_id, position, path, points) VALUES (?, ?, ?, ?)`,
			s.SnapshotID, n, in.Path, in.Points); err != nil {
			return "", fmt.Errorf("insert snapshot input: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return s.SnapshotID, nil
}

const snapshotColumns = `snapshot_id, taken_unix_nanos, bands, geometry_json, params_json, summary_json, crs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		s                               Snapshot
		geomJSON, paramsJSON, summaryJS string
		crs                             sql.NullString
	)
	if err := row.Scan(&s.SnapshotID, &s.TakenUnixNanos, &s.Bands, &geomJSON, &paramsJSON, &summaryJS, &crs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(geomJSON), &s.Geometry); err != nil {
		return nil, fmt.Errorf("decode geometry of %s: %w", s.SnapshotID, err)
	}
	if err := json.Unmarshal([]byte(summaryJS), &s.Summary); err != nil {
		return nil, fmt.Errorf("decode summary of %s: %w", s.SnapshotID, err)
	}
	s.ParamsJSON = json.RawMessage(paramsJSON)
	s.CRS = crs.String
	return &s, nil
}

// GetSnapshot loads a snapshot, its grid blob and inputs.
func (db *DB) GetSnapshot(id string) (*Snapshot, error) {
	s, err := scanSnapshot(db.QueryRow(`SELECT `+snapshotColumns+` FROM raster_snapshots WHERE snapshot_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	if err := db.QueryRow(`SELECT grid_blob FROM raster_snapshots WHERE snapshot_id = ?`, id).Scan(&s.GridBlob); err != nil {
		return nil, fmt.Errorf("load grid blob: %w", err)
	}

	rows, err := db.Query(`SELECT path, points FROM raster_snapshot_inputs WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var in Input
		if err := rows.Scan(&in.Path, &in.Points); err != nil {
			return nil, err
		}
		s.Inputs = append(s.Inputs, in)
	}
	return s, rows.Err()
}

// ListSnapshots returns snapshot metadata, newest first, without grid
// blobs or inputs. limit <= 0 means no limit.
func (db *DB) ListSnapshots(limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+snapshotColumns+` FROM raster_snapshots ORDER BY taken_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes a snapshot and its inputs.
func (db *DB) DeleteSnapshot(id string) error {
	res, err := db.Exec(`DELETE FROM raster_snapshots WHERE snapshot_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
