package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	reperrors "sizereport/internal/errors"
)

const encodingZstdJSON = "zstd+json"

// ReportRun is one stored pass.
type ReportRun struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	TotalSize  int64     `json:"totalSize"`
	Violations int       `json:"violations"`
	// Body is the encoded report JSON; it is empty in listings.
	Body []byte `json:"-"`
}

// ReportRepository provides access to stored reports.
type ReportRepository struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewReportRepository creates a repository over db.
func NewReportRepository(db *DB) (*ReportRepository, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ReportRepository{db: db, enc: enc, dec: dec}, nil
}

// Close releases the codec resources.
func (r *ReportRepository) Close() {
	_ = r.enc.Close()
	r.dec.Close()
}

// Save stores run, assigning an id and timestamp when missing.
func (r *ReportRepository) Save(ctx context.Context, run *ReportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	body := r.enc.EncodeAll(run.Body, nil)

	return r.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reports (id, title, created_at, total_size, violations, encoding, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.Title, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.TotalSize, run.Violations, encodingZstdJSON, body)
		if err != nil {
			return reperrors.New(reperrors.IOFailure, "failed to store report", err)
		}
		return nil
	})
}

// Get loads a stored report including its body.
func (r *ReportRepository) Get(ctx context.Context, id string) (*ReportRun, error) {
	row := r.db.conn.QueryRowContext(ctx, `
		SELECT id, title, created_at, total_size, violations, encoding, body
		FROM reports WHERE id = ?
	`, id)
	return r.scanFull(row)
}

// Latest loads the most recently stored report.
func (r *ReportRepository) Latest(ctx context.Context) (*ReportRun, error) {
	row := r.db.conn.QueryRowContext(ctx, `
		SELECT id, title, created_at, total_size, violations, encoding, body
		FROM reports ORDER BY created_at DESC LIMIT 1
	`)
	return r.scanFull(row)
}

// List returns report headers, newest first. A limit <= 0 returns all.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]*ReportRun, error) {
	query := `SELECT id, title, created_at, total_size, violations FROM reports ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to list reports", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*ReportRun
	for rows.Next() {
		run := &ReportRun{}
		var created string
		if err := rows.Scan(&run.ID, &run.Title, &created, &run.TotalSize, &run.Violations); err != nil {
			return nil, reperrors.New(reperrors.IOFailure, "failed to scan report", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, reperrors.New(reperrors.IOFailure, "invalid report timestamp", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to list reports", err)
	}
	return runs, nil
}

// Delete removes a stored report.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to delete report", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reperrors.Newf(reperrors.ReportNotFound, "report %s not found", id)
	}
	return nil
}

func (r *ReportRepository) scanFull(row *sql.Row) (*ReportRun, error) {
	run := &ReportRun{}
	var created, encoding string
	var body []byte
	err := row.Scan(&run.ID, &run.Title, &created, &run.TotalSize, &run.Violations, &encoding, &body)
	if err == sql.ErrNoRows {
		return nil, reperrors.New(reperrors.ReportNotFound, "report not found", err)
	}
	if err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to load report", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "invalid report timestamp", err)
	}
	if encoding != encodingZstdJSON {
		return nil, reperrors.Newf(reperrors.IOFailure, "unsupported report encoding %q", encoding)
	}
	if run.Body, err = r.dec.DecodeAll(body, nil); err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to decompress report", err)
	}
	return run, nil
}
