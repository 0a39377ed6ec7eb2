package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DuplicateNameError reports case-insensitive name collisions for a create
// batch, covering both duplicates inside the batch and clashes with rows
// already stored under the same parent. Names are lowercased, trimmed, and
// reported once each.
type DuplicateNameError struct {
	Names []string
}

func (e *DuplicateNameError) Error() string {
	return "duplicate names: " + strings.Join(e.Names, ", ")
}

// normalizeName is the comparison form used by every uniqueness check.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// findBatchDuplicates returns the normalized names appearing more than once
// in the batch, each reported once, in first-occurrence order.
func findBatchDuplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	var dups []string
	for _, name := range names {
		normalized := normalizeName(name)
		seen[normalized]++
		if seen[normalized] == 2 {
			dups = append(dups, normalized)
		}
	}
	return dups
}

// placeholders renders $start..$start+n-1 for IN clauses.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func mergeDuplicates(batch, existing []string) error {
	if len(batch) == 0 && len(existing) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(batch)+len(existing))
	var all []string
	for _, name := range append(batch, existing...) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		all = append(all, name)
	}
	sort.Strings(all)
	return &DuplicateNameError{Names: all}
}

// existingNames returns the normalized values from column that already exist
// under the given parent scope. parentColumn may be empty for globally
// scoped names (services).
func (s *PostgresStore) existingNames(ctx context.Context, table, column, parentColumn, parentID string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	normalized := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	start := 1
	where := ""
	if parentColumn != "" {
		where = fmt.Sprintf("%s = $1 AND ", parentColumn)
		args = append(args, parentID)
		start = 2
	}
	for i, name := range names {
		normalized[i] = normalizeName(name)
		args = append(args, normalized[i])
	}
	query := fmt.Sprintf(
		`SELECT LOWER(TRIM(%s)) FROM %s WHERE %sLOWER(TRIM(%s)) IN (%s)`,
		column, table, where, column, placeholders(start, len(names)),
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check existing %s: %w", table, err)
	}
	defer rows.Close()

	var conflicts []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan existing %s: %w", table, err)
		}
		conflicts = append(conflicts, name)
	}
	return conflicts, rows.Err()
}

// Services

func (s *PostgresStore) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM services
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items := make([]Service, 0)
	for rows.Next() {
		var item Service
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetService(ctx context.Context, serviceID string) (Service, error) {
	var item Service
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM services
		WHERE id=$1
	`, serviceID).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt)
	if err != nil {
		return Service{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateService(ctx context.Context, item Service) (Service, error) {
	existing, err := s.existingNames(ctx, "services", "name", "", "", []string{item.Name})
	if err != nil {
		return Service{}, err
	}
	if err := mergeDuplicates(nil, existing); err != nil {
		return Service{}, err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO services (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, item.Name, item.Description).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return Service{}, fmt.Errorf("insert service: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateService(ctx context.Context, serviceID string, name, description *string) (Service, error) {
	var item Service
	err := s.db.QueryRowContext(ctx, `
		UPDATE services
		SET name=COALESCE($2, name), description=COALESCE($3, description)
		WHERE id=$1
		RETURNING id, name, description, created_at
	`, serviceID, name, description).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt)
	if err != nil {
		return Service{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteService(ctx context.Context, serviceID string) error {
	return s.deleteByID(ctx, "services", serviceID)
}

// Categories

func (s *PostgresStore) ListCategories(ctx context.Context, serviceID string) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service_id, name, icon, created_at
		FROM categories
		WHERE service_id=$1
		ORDER BY created_at ASC
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		var item Category
		if err := rows.Scan(&item.ID, &item.ServiceID, &item.Name, &item.Icon, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetCategory(ctx context.Context, categoryID string) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, service_id, name, icon, created_at
		FROM categories
		WHERE id=$1
	`, categoryID).Scan(&item.ID, &item.ServiceID, &item.Name, &item.Icon, &item.CreatedAt)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateCategories(ctx context.Context, serviceID string, items []Category) ([]Category, error) {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	existing, err := s.existingNames(ctx, "categories", "name", "service_id", serviceID, names)
	if err != nil {
		return nil, err
	}
	if err := mergeDuplicates(findBatchDuplicates(names), existing); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create categories: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]Category, 0, len(items))
	for _, item := range items {
		item.ServiceID = serviceID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO categories (service_id, name, icon)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, serviceID, item.Name, item.Icon).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert category: %w", err)
		}
		created = append(created, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create categories: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, categoryID string, name, icon *string) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name=COALESCE($2, name), icon=COALESCE($3, icon)
		WHERE id=$1
		RETURNING id, service_id, name, icon, created_at
	`, categoryID, name, icon).Scan(&item.ID, &item.ServiceID, &item.Name, &item.Icon, &item.CreatedAt)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.deleteByID(ctx, "categories", categoryID)
}

// Subcategories

func (s *PostgresStore) ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, icon, description, created_at
		FROM subcategories
		WHERE category_id=$1
		ORDER BY created_at ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	items := make([]Subcategory, 0)
	for rows.Next() {
		var item Subcategory
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Icon, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetSubcategory(ctx context.Context, subcategoryID string) (Subcategory, error) {
	var item Subcategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, icon, description, created_at
		FROM subcategories
		WHERE id=$1
	`, subcategoryID).Scan(&item.ID, &item.CategoryID, &item.Name, &item.Icon, &item.Description, &item.CreatedAt)
	if err != nil {
		return Subcategory{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateSubcategories(ctx context.Context, categoryID string, items []Subcategory) ([]Subcategory, error) {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	existing, err := s.existingNames(ctx, "subcategories", "name", "category_id", categoryID, names)
	if err != nil {
		return nil, err
	}
	if err := mergeDuplicates(findBatchDuplicates(names), existing); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create subcategories: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]Subcategory, 0, len(items))
	for _, item := range items {
		item.CategoryID = categoryID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO subcategories (category_id, name, icon, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, categoryID, item.Name, item.Icon, item.Description).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert subcategory: %w", err)
		}
		created = append(created, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create subcategories: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateSubcategory(ctx context.Context, subcategoryID string, name, icon, description *string) (Subcategory, error) {
	var item Subcategory
	err := s.db.QueryRowContext(ctx, `
		UPDATE subcategories
		SET name=COALESCE($2, name), icon=COALESCE($3, icon), description=COALESCE($4, description)
		WHERE id=$1
		RETURNING id, category_id, name, icon, description, created_at
	`, subcategoryID, name, icon, description).Scan(&item.ID, &item.CategoryID, &item.Name, &item.Icon, &item.Description, &item.CreatedAt)
	if err != nil {
		return Subcategory{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	return s.deleteByID(ctx, "subcategories", subcategoryID)
}

// Form steps

func (s *PostgresStore) ListFormSteps(ctx context.Context, subcategoryID string) ([]FormStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subcategory_id, step_order, title, description, created_at
		FROM form_steps
		WHERE subcategory_id=$1
		ORDER BY step_order ASC
	`, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("list form steps: %w", err)
	}
	defer rows.Close()

	items := make([]FormStep, 0)
	for rows.Next() {
		var item FormStep
		if err := rows.Scan(&item.ID, &item.SubcategoryID, &item.StepOrder, &item.Title, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan form step: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetFormStep(ctx context.Context, formStepID string) (FormStep, error) {
	var item FormStep
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subcategory_id, step_order, title, description, created_at
		FROM form_steps
		WHERE id=$1
	`, formStepID).Scan(&item.ID, &item.SubcategoryID, &item.StepOrder, &item.Title, &item.Description, &item.CreatedAt)
	if err != nil {
		return FormStep{}, err
	}
	return item, nil
}

// CreateFormSteps assigns step_order continuing from the subcategory's
// current maximum, preserving presentation order of the batch. The read of
// the current maximum and the inserts share one transaction.
func (s *PostgresStore) CreateFormSteps(ctx context.Context, subcategoryID string, items []FormStep) ([]FormStep, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create form steps: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxOrder sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT MAX(step_order) FROM form_steps WHERE subcategory_id=$1
	`, subcategoryID).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("max step order: %w", err)
	}
	nextOrder := int(maxOrder.Int64) + 1

	created := make([]FormStep, 0, len(items))
	for i, item := range items {
		item.SubcategoryID = subcategoryID
		item.StepOrder = nextOrder + i
		err := tx.QueryRowContext(ctx, `
			INSERT INTO form_steps (subcategory_id, step_order, title, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, subcategoryID, item.StepOrder, item.Title, item.Description).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert form step: %w", err)
		}
		created = append(created, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create form steps: %w", err)
	}
	return created, nil
}

// UpdateFormStep never touches step_order; it is immutable once assigned.
func (s *PostgresStore) UpdateFormStep(ctx context.Context, formStepID string, title, description *string) (FormStep, error) {
	var item FormStep
	err := s.db.QueryRowContext(ctx, `
		UPDATE form_steps
		SET title=COALESCE($2, title), description=COALESCE($3, description)
		WHERE id=$1
		RETURNING id, subcategory_id, step_order, title, description, created_at
	`, formStepID, title, description).Scan(&item.ID, &item.SubcategoryID, &item.StepOrder, &item.Title, &item.Description, &item.CreatedAt)
	if err != nil {
		return FormStep{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteFormStep(ctx context.Context, formStepID string) error {
	return s.deleteByID(ctx, "form_steps", formStepID)
}

// GetFormStepDetails returns the render payload for one step screen: the
// step, its questions ordered by text, and each question's options.
func (s *PostgresStore) GetFormStepDetails(ctx context.Context, formStepID string) (StepDetails, error) {
	step, err := s.GetFormStep(ctx, formStepID)
	if err != nil {
		return StepDetails{}, err
	}

	questions, err := s.ListQuestions(ctx, formStepID)
	if err != nil {
		return StepDetails{}, err
	}

	details := StepDetails{FormStep: step, Questions: make([]QuestionWithOptions, 0, len(questions))}
	for _, question := range questions {
		options, err := s.ListOptions(ctx, question.ID)
		if err != nil {
			return StepDetails{}, err
		}
		details.Questions = append(details.Questions, QuestionWithOptions{Question: question, Options: options})
	}
	return details, nil
}

// Questions

func (s *PostgresStore) ListQuestions(ctx context.Context, formStepID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_step_id, question_text, input_type, allow_other, is_required, created_at
		FROM questions
		WHERE form_step_id=$1
		ORDER BY question_text ASC
	`, formStepID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	items := make([]Question, 0)
	for rows.Next() {
		var item Question
		if err := rows.Scan(&item.ID, &item.FormStepID, &item.QuestionText, &item.InputType, &item.AllowOther, &item.IsRequired, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetQuestion(ctx context.Context, questionID string) (Question, error) {
	var item Question
	err := s.db.QueryRowContext(ctx, `
		SELECT id, form_step_id, question_text, input_type, allow_other, is_required, created_at
		FROM questions
		WHERE id=$1
	`, questionID).Scan(&item.ID, &item.FormStepID, &item.QuestionText, &item.InputType, &item.AllowOther, &item.IsRequired, &item.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateQuestions(ctx context.Context, formStepID string, items []Question) ([]Question, error) {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.QuestionText
	}
	existing, err := s.existingNames(ctx, "questions", "question_text", "form_step_id", formStepID, names)
	if err != nil {
		return nil, err
	}
	if err := mergeDuplicates(findBatchDuplicates(names), existing); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create questions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]Question, 0, len(items))
	for _, item := range items {
		item.FormStepID = formStepID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO questions (form_step_id, question_text, input_type, allow_other, is_required)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, formStepID, item.QuestionText, item.InputType, item.AllowOther, item.IsRequired).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		created = append(created, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create questions: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateQuestion(ctx context.Context, questionID string, questionText, inputType *string, allowOther, isRequired *bool) (Question, error) {
	var item Question
	err := s.db.QueryRowContext(ctx, `
		UPDATE questions
		SET question_text=COALESCE($2, question_text),
			input_type=COALESCE($3, input_type),
			allow_other=COALESCE($4, allow_other),
			is_required=COALESCE($5, is_required)
		WHERE id=$1
		RETURNING id, form_step_id, question_text, input_type, allow_other, is_required, created_at
	`, questionID, questionText, inputType, allowOther, isRequired).Scan(
		&item.ID, &item.FormStepID, &item.QuestionText, &item.InputType, &item.AllowOther, &item.IsRequired, &item.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, questionID string) error {
	return s.deleteByID(ctx, "questions", questionID)
}

// Question options

func (s *PostgresStore) ListOptions(ctx context.Context, questionID string) ([]QuestionOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, option_label, option_value, is_other, created_at
		FROM question_options
		WHERE question_id=$1
		ORDER BY created_at ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	items := make([]QuestionOption, 0)
	for rows.Next() {
		var item QuestionOption
		if err := rows.Scan(&item.ID, &item.QuestionID, &item.OptionLabel, &item.OptionValue, &item.IsOther, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetOption(ctx context.Context, optionID string) (QuestionOption, error) {
	var item QuestionOption
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, option_label, option_value, is_other, created_at
		FROM question_options
		WHERE id=$1
	`, optionID).Scan(&item.ID, &item.QuestionID, &item.OptionLabel, &item.OptionValue, &item.IsOther, &item.CreatedAt)
	if err != nil {
		return QuestionOption{}, err
	}
	return item, nil
}

func (s *PostgresStore) CreateOptions(ctx context.Context, questionID string, items []QuestionOption) ([]QuestionOption, error) {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.OptionLabel
	}
	existing, err := s.existingNames(ctx, "question_options", "option_label", "question_id", questionID, names)
	if err != nil {
		return nil, err
	}
	if err := mergeDuplicates(findBatchDuplicates(names), existing); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create options: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]QuestionOption, 0, len(items))
	for _, item := range items {
		item.QuestionID = questionID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO question_options (question_id, option_label, option_value, is_other)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, questionID, item.OptionLabel, item.OptionValue, item.IsOther).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert option: %w", err)
		}
		created = append(created, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create options: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateOption(ctx context.Context, optionID string, label, value *string, isOther *bool) (QuestionOption, error) {
	var item QuestionOption
	err := s.db.QueryRowContext(ctx, `
		UPDATE question_options
		SET option_label=COALESCE($2, option_label),
			option_value=COALESCE($3, option_value),
			is_other=COALESCE($4, is_other)
		WHERE id=$1
		RETURNING id, question_id, option_label, option_value, is_other, created_at
	`, optionID, label, value, isOther).Scan(&item.ID, &item.QuestionID, &item.OptionLabel, &item.OptionValue, &item.IsOther, &item.CreatedAt)
	if err != nil {
		return QuestionOption{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteOption(ctx context.Context, optionID string) error {
	return s.deleteByID(ctx, "question_options", optionID)
}

func (s *PostgresStore) deleteByID(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
