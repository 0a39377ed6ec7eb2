package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across contacts and free-text answers
// using plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultContact {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'contact'::text AS type, c.id::text, c.session_id::text, c.name AS title,
				ts_headline('english', coalesce(c.company_name, '') || ' ' || coalesce(c.work_email, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				ts_rank(c.fts, %s) AS rank
			FROM contacts c
			WHERE c.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultAnswer {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'answer'::text AS type, ur.id::text, ur.session_id::text, q.question_text AS title,
				ts_headline('english', coalesce(ur.response_value, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				ts_rank(ur.fts, %s) AS rank
			FROM user_responses ur
			JOIN questions q ON q.id = ur.question_id
			WHERE ur.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, session_id, title, snippet
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.SessionID, &r.Title, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ContactRecord, []AnswerRecord, error) {
	contactRows, err := p.db.QueryContext(ctx, `
		SELECT id, session_id, name, company_name, work_email
		FROM contacts
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load contacts: %w", err)
	}
	defer contactRows.Close()

	contacts := make([]ContactRecord, 0)
	for contactRows.Next() {
		var c ContactRecord
		if err := contactRows.Scan(&c.ID, &c.SessionID, &c.Name, &c.CompanyName, &c.WorkEmail); err != nil {
			return nil, nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := contactRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate contacts: %w", err)
	}

	answerRows, err := p.db.QueryContext(ctx, `
		SELECT ur.id, ur.session_id, q.question_text, ur.response_value
		FROM user_responses ur
		JOIN questions q ON q.id = ur.question_id
		WHERE ur.response_value IS NOT NULL AND ur.response_value <> ''
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load answers: %w", err)
	}
	defer answerRows.Close()

	answers := make([]AnswerRecord, 0)
	for answerRows.Next() {
		var a AnswerRecord
		if err := answerRows.Scan(&a.ID, &a.SessionID, &a.QuestionText, &a.Value); err != nil {
			return nil, nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := answerRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate answers: %w", err)
	}

	return contacts, answers, nil
}
