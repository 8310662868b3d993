package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"leadgen/models"
)

const (
	insertBatchSize = 50
	leadColumns     = 15
)

// PostgresWriter persists finalized leads keyed by hash_key. Re-delivering a
// lead is a no-op.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw, err := NewPostgresWriterFromDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pw, nil
}

// NewPostgresWriterFromDB wraps an open handle and runs migrations.
func NewPostgresWriterFromDB(db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id                SERIAL PRIMARY KEY,
			hash_key          CHAR(16)    UNIQUE NOT NULL,
			source            VARCHAR(50) NOT NULL,
			source_url        TEXT        NOT NULL DEFAULT '',
			name              TEXT        NOT NULL DEFAULT '',
			industry_category TEXT        NOT NULL DEFAULT '',
			description       TEXT        NOT NULL DEFAULT '',
			website           TEXT        NOT NULL DEFAULT '',
			website_present   BOOLEAN     NOT NULL DEFAULT FALSE,
			socials           JSONB       NOT NULL DEFAULT '{}',
			contact_info      JSONB       NOT NULL DEFAULT '{}',
			metrics           JSONB       NOT NULL DEFAULT '{}',
			assets            JSONB       NOT NULL DEFAULT '{}',
			score             SMALLINT    NOT NULL DEFAULT 0,
			analysis          JSONB       NOT NULL DEFAULT '{}',
			scraped_at        TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
		CREATE INDEX IF NOT EXISTS idx_leads_score  ON leads(score);
	`)
	return err
}

// Write batch-inserts leads, skipping any hash_key already stored. A lead
// whose JSON columns cannot be encoded is left out and reported in the
// returned error; the rest are still written.
func (pw *PostgresWriter) Write(leads []*models.CanonicalLead) error {
	var errs []error
	rows := make([][]interface{}, 0, len(leads))
	for _, l := range leads {
		args, err := leadArgs(l)
		if err != nil {
			errs = append(errs, fmt.Errorf("postgres: encode %q: %w", l.Name, err))
			continue
		}
		rows = append(rows, args)
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (pw *PostgresWriter) insertBatch(batch [][]interface{}) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*leadColumns)

	for idx, args := range batch {
		base := idx * leadColumns
		placeholders := make([]string, leadColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`
		INSERT INTO leads (hash_key, source, source_url, name, industry_category, description,
			website, website_present, socials, contact_info, metrics, assets, score, analysis, scraped_at)
		VALUES %s
		ON CONFLICT (hash_key) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := pw.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func leadArgs(l *models.CanonicalLead) ([]interface{}, error) {
	var jsonCols [5][]byte
	for i, v := range []interface{}{l.Socials, l.ContactInfo, l.Metrics, l.Assets, l.Analysis} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if string(b) == "null" {
			b = []byte("{}")
		}
		jsonCols[i] = b
	}

	var scrapedAt interface{}
	if t := l.ScrapedAt(); !t.IsZero() {
		scrapedAt = t
	}

	return []interface{}{
		l.HashKey, l.Source, l.SourceURL, l.Name, l.IndustryCategory, l.Description,
		l.Website, l.WebsitePresent,
		string(jsonCols[0]), string(jsonCols[1]), string(jsonCols[2]), string(jsonCols[3]),
		l.Score, string(jsonCols[4]), scrapedAt,
	}, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored leads, used by the report command.
func (pw *PostgresWriter) FetchAll() ([]*models.CanonicalLead, error) {
	rows, err := pw.db.Query(`
		SELECT hash_key, source, source_url, name, industry_category, description,
			website, website_present, socials, contact_info, metrics, assets, score, analysis, scraped_at
		FROM leads
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var leads []*models.CanonicalLead
	for rows.Next() {
		l := &models.CanonicalLead{}
		var socials, contact, metrics, assets, analysis []byte
		var scrapedAt sql.NullTime
		if err := rows.Scan(
			&l.HashKey, &l.Source, &l.SourceURL, &l.Name, &l.IndustryCategory, &l.Description,
			&l.Website, &l.WebsitePresent, &socials, &contact, &metrics, &assets, &l.Score, &analysis, &scrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		for _, dec := range []struct {
			raw  []byte
			dest interface{}
		}{
			{socials, &l.Socials}, {contact, &l.ContactInfo}, {metrics, &l.Metrics},
			{assets, &l.Assets}, {analysis, &l.Analysis},
		} {
			if len(dec.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(dec.raw, dec.dest); err != nil {
				return nil, fmt.Errorf("postgres: decode %s: %w", l.HashKey, err)
			}
		}
		if scrapedAt.Valid {
			l.Timestamp = scrapedAt.Time.UTC().Format(time.RFC3339)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
