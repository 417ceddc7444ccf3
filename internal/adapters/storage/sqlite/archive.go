package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pixelwatch/internal/domain"
)

// Archive persists finished captures (records with their attached issues) to
// a SQLite file on explicit request. It is an export target, not a backing
// store: the live working set stays in memory.
type Archive struct {
	db *sql.DB
}

func Open(ctx context.Context, dataSourceName string) (*Archive, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	a := &Archive{db: db}
	if err := a.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return a, nil
}

func (a *Archive) Close() error { return a.db.Close() }

func (a *Archive) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS captures (
	id           TEXT PRIMARY KEY,
	archived_at  TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	issue_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	capture_id   TEXT NOT NULL,
	id           TEXT NOT NULL,
	position     INTEGER NOT NULL,
	url          TEXT NOT NULL,
	method       TEXT,
	timestamp    TEXT NOT NULL,
	completed    INTEGER NOT NULL,
	duration_ms  INTEGER,
	status_code  INTEGER,
	error        TEXT,
	vendor_id    TEXT,
	vendor_name  TEXT,
	request_type TEXT,
	PRIMARY KEY (capture_id, id),
	FOREIGN KEY (capture_id) REFERENCES captures(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_records_capture_position ON records (capture_id, position);

CREATE TABLE IF NOT EXISTS issues (
	capture_id  TEXT NOT NULL,
	record_id   TEXT NOT NULL,
	position    INTEGER NOT NULL,
	type        TEXT NOT NULL,
	severity    TEXT NOT NULL,
	message     TEXT NOT NULL,
	details     TEXT,
	related_ids TEXT,
	FOREIGN KEY (capture_id) REFERENCES captures(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_issues_capture_record ON issues (capture_id, record_id);
`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// SaveCapture writes the given snapshot as one capture and returns its id.
func (a *Archive) SaveCapture(ctx context.Context, records []domain.RequestRecord) (string, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	captureID := uuid.NewString()
	issueCount := 0
	for _, rec := range records {
		issueCount += len(rec.Issues)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO captures (id, archived_at, record_count, issue_count) VALUES (?, ?, ?, ?)`,
		captureID, time.Now().UTC().Format(time.RFC3339Nano), len(records), issueCount,
	); err != nil {
		return "", fmt.Errorf("failed to insert capture: %w", err)
	}

	for pos, rec := range records {
		var vendorID, vendorName *string
		if rec.Vendor != nil {
			vendorID, vendorName = &rec.Vendor.ID, &rec.Vendor.Name
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (capture_id, id, position, url, method, timestamp, completed, duration_ms, status_code, error, vendor_id, vendor_name, request_type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			captureID, rec.ID, pos, rec.URL, rec.Method, rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.Completed, rec.DurationMS, rec.StatusCode, rec.Error, vendorID, vendorName, string(rec.VendorRequestType),
		); err != nil {
			return "", fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
		for i, iss := range rec.Issues {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO issues (capture_id, record_id, position, type, severity, message, details, related_ids)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				captureID, rec.ID, i, string(iss.Type), string(iss.Severity), iss.Message, iss.Details, strings.Join(iss.RelatedRequestIDs, ","),
			); err != nil {
				return "", fmt.Errorf("failed to insert issue for record %s: %w", rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return captureID, nil
}
