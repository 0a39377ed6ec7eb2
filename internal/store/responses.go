package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// responseKey identifies one live answer row within a (session, step) pair.
// hasOption keeps the no-option case distinct from any real option id, so an
// id that happens to read "null" can never collide with a text answer.
type responseKey struct {
	questionID string
	optionID   string
	hasOption  bool
}

func keyOf(questionID string, optionID *string) responseKey {
	if optionID == nil {
		return responseKey{questionID: questionID}
	}
	return responseKey{questionID: questionID, optionID: *optionID, hasOption: true}
}

type responseDiff struct {
	inserts []ResponseInput
	updates map[string]*string // existing row id -> refreshed response_value
	deletes []string
}

// diffStepResponses computes the minimal write set that transforms the
// stored rows into the state implied by the incoming batch. Keys present on
// both sides become updates (response_value refreshed), keys only in the
// incoming set become inserts, and stored keys absent from the incoming set
// become deletes, which is how checkbox de-selection works. A key repeated
// in the incoming batch keeps its last occurrence; duplicate stored rows for
// one key keep the first and drop the rest.
func diffStepResponses(existing []UserResponse, incoming []ResponseInput) responseDiff {
	byKey := make(map[responseKey][]UserResponse, len(existing))
	for _, row := range existing {
		k := keyOf(row.QuestionID, row.SelectedOptionID)
		byKey[k] = append(byKey[k], row)
	}

	wanted := make(map[responseKey]ResponseInput, len(incoming))
	order := make([]responseKey, 0, len(incoming))
	for _, in := range incoming {
		k := keyOf(in.QuestionID, in.SelectedOptionID)
		if _, ok := wanted[k]; !ok {
			order = append(order, k)
		}
		wanted[k] = in
	}

	diff := responseDiff{updates: make(map[string]*string)}
	for _, k := range order {
		in := wanted[k]
		rows, ok := byKey[k]
		if !ok {
			diff.inserts = append(diff.inserts, in)
			continue
		}
		diff.updates[rows[0].ID] = in.ResponseValue
		for _, extra := range rows[1:] {
			diff.deletes = append(diff.deletes, extra.ID)
		}
	}
	for k, rows := range byKey {
		if _, ok := wanted[k]; ok {
			continue
		}
		for _, row := range rows {
			diff.deletes = append(diff.deletes, row.ID)
		}
	}
	return diff
}

// SessionExists reports whether any response row references the session.
// Sessions have no table of their own; they exist only through their rows.
func (s *PostgresStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_responses WHERE session_id=$1)
	`, sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return exists, nil
}

// OptionQuestionPairs maps each given option id to the question that owns
// it. Unknown option ids are simply absent from the result.
func (s *PostgresStore) OptionQuestionPairs(ctx context.Context, optionIDs []string) (map[string]string, error) {
	if len(optionIDs) == 0 {
		return map[string]string{}, nil
	}
	args := make([]any, len(optionIDs))
	for i, id := range optionIDs {
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, question_id FROM question_options WHERE id IN (%s)`,
		placeholders(1, len(optionIDs)),
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load option pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string, len(optionIDs))
	for rows.Next() {
		var optionID, questionID string
		if err := rows.Scan(&optionID, &questionID); err != nil {
			return nil, fmt.Errorf("scan option pair: %w", err)
		}
		pairs[optionID] = questionID
	}
	return pairs, rows.Err()
}

// ReconcileStepResponses replaces the stored answer set for (session, step)
// with the state implied by the incoming batch, inside one transaction. The
// existing rows are read FOR UPDATE so concurrent submissions for the same
// session and step serialize on the row set instead of losing writes. Any
// failure rolls the whole batch back. Returns the final live rows for the
// step and the ids of rows that were deleted.
func (s *PostgresStore) ReconcileStepResponses(ctx context.Context, sessionID, formStepID string, incoming []ResponseInput) ([]UserResponse, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := selectStepRows(ctx, tx, sessionID, formStepID, true)
	if err != nil {
		return nil, nil, err
	}

	diff := diffStepResponses(existing, incoming)

	if len(diff.deletes) > 0 {
		args := make([]any, len(diff.deletes))
		for i, id := range diff.deletes {
			args[i] = id
		}
		query := fmt.Sprintf(`DELETE FROM user_responses WHERE id IN (%s)`, placeholders(1, len(diff.deletes)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, nil, fmt.Errorf("delete stale responses: %w", err)
		}
	}

	for rowID, value := range diff.updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_responses SET response_value=$2 WHERE id=$1
		`, rowID, value); err != nil {
			return nil, nil, fmt.Errorf("update response: %w", err)
		}
	}

	for _, in := range diff.inserts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_responses (session_id, form_step_id, question_id, selected_option_id, response_value)
			VALUES ($1, $2, $3, $4, $5)
		`, sessionID, formStepID, in.QuestionID, in.SelectedOptionID, in.ResponseValue); err != nil {
			return nil, nil, fmt.Errorf("insert response: %w", err)
		}
	}

	live, err := selectStepRows(ctx, tx, sessionID, formStepID, false)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit reconcile: %w", err)
	}
	return live, diff.deletes, nil
}

func selectStepRows(ctx context.Context, tx *sql.Tx, sessionID, formStepID string, forUpdate bool) ([]UserResponse, error) {
	query := `
		SELECT id, session_id, form_step_id, question_id, selected_option_id, response_value, created_at
		FROM user_responses
		WHERE session_id=$1 AND form_step_id=$2
		ORDER BY created_at ASC, id ASC
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := tx.QueryContext(ctx, query, sessionID, formStepID)
	if err != nil {
		return nil, fmt.Errorf("load step responses: %w", err)
	}
	defer rows.Close()

	items := make([]UserResponse, 0)
	for rows.Next() {
		var item UserResponse
		if err := rows.Scan(&item.ID, &item.SessionID, &item.FormStepID, &item.QuestionID, &item.SelectedOptionID, &item.ResponseValue, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan step response: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const sessionRowsSelect = `
	SELECT ur.id, ur.session_id, q.id, q.question_text, q.input_type, q.allow_other, q.is_required,
		ur.selected_option_id, qo.option_label, qo.option_value, qo.is_other, ur.response_value,
		fs.id, fs.step_order, fs.title,
		sc.id, sc.name, sc.icon, sc.description,
		c.id, c.name, c.icon,
		sv.id, sv.name, sv.description
	FROM user_responses ur
	JOIN questions q ON q.id = ur.question_id
	LEFT JOIN question_options qo ON qo.id = ur.selected_option_id
	JOIN form_steps fs ON fs.id = ur.form_step_id
	JOIN subcategories sc ON sc.id = fs.subcategory_id
	JOIN categories c ON c.id = sc.category_id
	JOIN services sv ON sv.id = c.service_id
`

// ListSessionResponses returns every response row for one session joined to
// its catalog lineage, ordered by (step_order, question_text) for a
// deterministic summary.
func (s *PostgresStore) ListSessionResponses(ctx context.Context, sessionID string) ([]SessionResponseRow, error) {
	rows, err := s.db.QueryContext(ctx, sessionRowsSelect+`
		WHERE ur.session_id=$1
		ORDER BY fs.step_order ASC, q.question_text ASC, ur.created_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session responses: %w", err)
	}
	return scanSessionRows(rows)
}

// ListAllResponses returns the joined rows for every session, grouped by
// session id and ordered within each exactly as ListSessionResponses.
func (s *PostgresStore) ListAllResponses(ctx context.Context) ([]SessionResponseRow, error) {
	rows, err := s.db.QueryContext(ctx, sessionRowsSelect+`
		ORDER BY ur.session_id ASC, fs.step_order ASC, q.question_text ASC, ur.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all responses: %w", err)
	}
	return scanSessionRows(rows)
}

func scanSessionRows(rows *sql.Rows) ([]SessionResponseRow, error) {
	defer rows.Close()

	items := make([]SessionResponseRow, 0)
	for rows.Next() {
		var item SessionResponseRow
		if err := rows.Scan(
			&item.ResponseID, &item.SessionID, &item.QuestionID, &item.QuestionText,
			&item.InputType, &item.AllowOther, &item.IsRequired,
			&item.SelectedOptionID, &item.OptionLabel, &item.OptionValue, &item.OptionIsOther, &item.ResponseValue,
			&item.StepID, &item.StepOrder, &item.StepTitle,
			&item.SubcategoryID, &item.SubcategoryName, &item.SubcategoryIcon, &item.SubcategoryDescription,
			&item.CategoryID, &item.CategoryName, &item.CategoryIcon,
			&item.ServiceID, &item.ServiceName, &item.ServiceDescription,
		); err != nil {
			return nil, fmt.Errorf("scan session response: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session responses: %w", err)
	}
	return items, nil
}

// Contacts

const contactSelect = `
	SELECT id, session_id, name, company_name, work_email, phone_number, preferred_communication, created_at
	FROM contacts
`

func scanContact(row *sql.Row) (Contact, error) {
	var item Contact
	err := row.Scan(&item.ID, &item.SessionID, &item.Name, &item.CompanyName,
		&item.WorkEmail, &item.PhoneNumber, &item.PreferredCommunication, &item.CreatedAt)
	if err != nil {
		return Contact{}, err
	}
	return item, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, contactID string) (Contact, error) {
	return scanContact(s.db.QueryRowContext(ctx, contactSelect+`WHERE id=$1`, contactID))
}

// GetContactBySession returns nil when the session has no contact yet; the
// summary treats that as an empty object, not an error.
func (s *PostgresStore) GetContactBySession(ctx context.Context, sessionID string) (*Contact, error) {
	item, err := scanContact(s.db.QueryRowContext(ctx, contactSelect+`WHERE session_id=$1`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact by session: %w", err)
	}
	return &item, nil
}

// ContactsBySessionIDs batches the contact lookup for the all-sessions
// summary into one query keyed by the full session-id set.
func (s *PostgresStore) ContactsBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]Contact, error) {
	if len(sessionIDs) == 0 {
		return map[string]Contact{}, nil
	}
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	query := contactSelect + fmt.Sprintf(`WHERE session_id IN (%s)`, placeholders(1, len(sessionIDs)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts by session: %w", err)
	}
	defer rows.Close()

	items := make(map[string]Contact, len(sessionIDs))
	for rows.Next() {
		var item Contact
		if err := rows.Scan(&item.ID, &item.SessionID, &item.Name, &item.CompanyName,
			&item.WorkEmail, &item.PhoneNumber, &item.PreferredCommunication, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		items[item.SessionID] = item
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateContact(ctx context.Context, item Contact) (Contact, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contacts (session_id, name, company_name, work_email, phone_number, preferred_communication)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, item.SessionID, item.Name, item.CompanyName, item.WorkEmail, item.PhoneNumber, item.PreferredCommunication).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, contactID string, name, companyName, workEmail, phoneNumber, preferredCommunication *string) (Contact, error) {
	var item Contact
	err := s.db.QueryRowContext(ctx, `
		UPDATE contacts
		SET name=COALESCE($2, name),
			company_name=COALESCE($3, company_name),
			work_email=COALESCE($4, work_email),
			phone_number=COALESCE($5, phone_number),
			preferred_communication=COALESCE($6, preferred_communication)
		WHERE id=$1
		RETURNING id, session_id, name, company_name, work_email, phone_number, preferred_communication, created_at
	`, contactID, name, companyName, workEmail, phoneNumber, preferredCommunication).Scan(
		&item.ID, &item.SessionID, &item.Name, &item.CompanyName,
		&item.WorkEmail, &item.PhoneNumber, &item.PreferredCommunication, &item.CreatedAt)
	if err != nil {
		return Contact{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, contactID string) error {
	return s.deleteByID(ctx, "contacts", contactID)
}
