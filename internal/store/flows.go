package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/weave/internal/flowdoc"
)

// ErrFlowNotFound is returned when a flow name has no stored document.
var ErrFlowNotFound = errors.New("flow not found")

// FlowRecord is one stored flow's metadata.
type FlowRecord struct {
	Name      string
	Version   string
	CreatedAt time.Time
	DocHash   string
}

// SaveFlow upserts a document under its flow name. The stored row
// carries the canonical document hash so unchanged re-saves are
// detectable without comparing documents.
func (s *Store) SaveFlow(ctx context.Context, doc *flowdoc.Document) error {
	if doc.FlowName == "" {
		return fmt.Errorf("save flow: empty flow name")
	}
	hash, err := flowdoc.DocumentHash(doc)
	if err != nil {
		return fmt.Errorf("save flow %s: %w", doc.FlowName, err)
	}
	data, err := flowdoc.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save flow %s: %w", doc.FlowName, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flows (name, version, created_at, doc_hash, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			created_at = excluded.created_at,
			doc_hash = excluded.doc_hash,
			document = excluded.document`,
		doc.FlowName, doc.Version, doc.CreatedAt.UTC().Format(time.RFC3339Nano), hash, string(data),
	)
	if err != nil {
		return fmt.Errorf("save flow %s: %w", doc.FlowName, err)
	}
	return nil
}

// LoadFlow retrieves a stored document by flow name.
func (s *Store) LoadFlow(ctx context.Context, name string) (*flowdoc.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM flows WHERE name = ?`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load flow %s: %w", name, ErrFlowNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load flow %s: %w", name, err)
	}
	doc, err := flowdoc.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("load flow %s: %w", name, err)
	}
	return doc, nil
}

// ListFlows returns stored flow metadata ordered by name.
func (s *Store) ListFlows(ctx context.Context) ([]FlowRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, version, created_at, doc_hash FROM flows ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var out []FlowRecord
	for rows.Next() {
		var rec FlowRecord
		var createdAt string
		if err := rows.Scan(&rec.Name, &rec.Version, &createdAt, &rec.DocHash); err != nil {
			return nil, fmt.Errorf("list flows: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list flows: bad created_at for %s: %w", rec.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	return out, nil
}
