package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/search"
	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

// AnswerInput is one incoming answer as carried on the wire.
type AnswerInput struct {
	QuestionID       string  `json:"question_id"`
	SelectedOptionID *string `json:"selected_option_id"`
	ResponseValue    *string `json:"response_value"`
}

// SubmitResult is the outcome of one step submission: the resolved session
// and the live rows for the step after reconciliation.
type SubmitResult struct {
	SessionID string
	Responses []ResponseView
}

// Summary types. Field names follow the wire contract.

type LineageService struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LineageCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type LineageSubcategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type OptionDetail struct {
	ID      string `json:"id"`
	Value   string `json:"value"`
	IsOther bool   `json:"is_other"`
}

type QuestionSummary struct {
	Num           int            `json:"num"`
	ID            string         `json:"id"`
	Question      string         `json:"question"`
	InputType     string         `json:"input_type"`
	IsRequired    bool           `json:"is_required"`
	AllowOther    bool           `json:"allow_other"`
	Answers       []string       `json:"answers"`
	OptionDetails []OptionDetail `json:"option_details"`
}

type InquirySummary struct {
	SessionID   string             `json:"sessionId"`
	UserDetails any                `json:"user_details"`
	Service     LineageService     `json:"service"`
	Category    LineageCategory    `json:"category"`
	Subcategory LineageSubcategory `json:"subcategory"`
	Questions   []QuestionSummary  `json:"questions"`
}

// resolveSession determines the session id for a step submission. The first
// step of a form always mints a fresh id, discarding any supplied token.
// Later steps require a session that already has stored responses.
func (s *Service) resolveSession(ctx context.Context, step store.FormStep, sessionHeader string) (string, error) {
	if step.StepOrder == 1 {
		return s.newSessionID(), nil
	}
	sessionID := strings.TrimSpace(sessionHeader)
	if sessionID == "" {
		return "", domainError(http.StatusBadRequest, "MISSING_SESSION", "Session ID header (x-session-id) is required for this step")
	}
	exists, err := s.store.SessionExists(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domainError(http.StatusNotFound, "UNKNOWN_SESSION", "Session ID not found")
	}
	return sessionID, nil
}

// SubmitStepResponses validates and persists one step's answer batch. Any
// validation failure rejects the whole batch; nothing is written unless
// every answer passes.
func (s *Service) SubmitStepResponses(ctx context.Context, formStepID, sessionHeader string, answers []AnswerInput) (SubmitResult, error) {
	if len(answers) == 0 {
		return SubmitResult{}, batchError("responses")
	}

	step, err := s.store.GetFormStep(ctx, formStepID)
	if err != nil {
		return SubmitResult{}, notFound(err, "Form step not found")
	}

	sessionID, err := s.resolveSession(ctx, step, sessionHeader)
	if err != nil {
		return SubmitResult{}, err
	}

	questions, err := s.store.ListQuestions(ctx, formStepID)
	if err != nil {
		return SubmitResult{}, err
	}
	questionText := make(map[string]string, len(questions))
	for _, q := range questions {
		questionText[q.ID] = q.QuestionText
	}

	var optionIDs []string
	for _, a := range answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return SubmitResult{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Each response must carry a question_id")
		}
		if _, ok := questionText[a.QuestionID]; !ok {
			return SubmitResult{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
				"Question "+a.QuestionID+" does not belong to form step "+formStepID)
		}
		if a.SelectedOptionID != nil && *a.SelectedOptionID != "" {
			optionIDs = append(optionIDs, *a.SelectedOptionID)
		}
	}

	if len(optionIDs) > 0 {
		pairs, err := s.store.OptionQuestionPairs(ctx, optionIDs)
		if err != nil {
			return SubmitResult{}, err
		}
		for _, a := range answers {
			if a.SelectedOptionID == nil || *a.SelectedOptionID == "" {
				continue
			}
			owner, ok := pairs[*a.SelectedOptionID]
			if !ok || owner != a.QuestionID {
				return SubmitResult{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
					"Option "+*a.SelectedOptionID+" does not belong to question "+a.QuestionID)
			}
		}
	}

	inputs := make([]store.ResponseInput, 0, len(answers))
	for _, a := range answers {
		in := store.ResponseInput{QuestionID: a.QuestionID, ResponseValue: a.ResponseValue}
		if a.SelectedOptionID != nil && *a.SelectedOptionID != "" {
			in.SelectedOptionID = a.SelectedOptionID
		}
		inputs = append(inputs, in)
	}

	live, deleted, err := s.store.ReconcileStepResponses(ctx, sessionID, formStepID, inputs)
	if err != nil {
		return SubmitResult{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, sessionID)
	}
	if s.search != nil {
		s.search.DeleteAnswers(deleted)
		var records []search.AnswerRecord
		for _, row := range live {
			if row.ResponseValue == nil || strings.TrimSpace(*row.ResponseValue) == "" {
				continue
			}
			records = append(records, search.AnswerRecord{
				ID:           row.ID,
				SessionID:    row.SessionID,
				QuestionText: questionText[row.QuestionID],
				Value:        *row.ResponseValue,
			})
		}
		s.search.IndexAnswers(records)
	}

	return SubmitResult{SessionID: sessionID, Responses: responseViews(live)}, nil
}

// buildSummary groups one session's joined rows into the summary shape.
// Questions appear in order of first occurrence, which the row ordering
// makes (step_order ASC, question_text ASC); multi-select answers accumulate
// onto one entry.
func buildSummary(sessionID string, rows []store.SessionResponseRow, contact *store.Contact) InquirySummary {
	summary := InquirySummary{
		SessionID:   sessionID,
		UserDetails: map[string]any{},
		Questions:   []QuestionSummary{},
	}
	if contact != nil {
		summary.UserDetails = contactView(*contact)
	}
	if len(rows) == 0 {
		return summary
	}

	first := rows[0]
	summary.Service = LineageService{ID: first.ServiceID, Name: first.ServiceName, Description: first.ServiceDescription}
	summary.Category = LineageCategory{ID: first.CategoryID, Name: first.CategoryName, Icon: first.CategoryIcon}
	summary.Subcategory = LineageSubcategory{ID: first.SubcategoryID, Name: first.SubcategoryName, Icon: first.SubcategoryIcon, Description: first.SubcategoryDescription}

	index := make(map[string]int, len(rows))
	for _, row := range rows {
		at, seen := index[row.QuestionID]
		if !seen {
			summary.Questions = append(summary.Questions, QuestionSummary{
				Num:           len(summary.Questions) + 1,
				ID:            row.QuestionID,
				Question:      row.QuestionText,
				InputType:     row.InputType,
				IsRequired:    row.IsRequired,
				AllowOther:    row.AllowOther,
				Answers:       []string{},
				OptionDetails: []OptionDetail{},
			})
			at = len(summary.Questions) - 1
			index[row.QuestionID] = at
		}
		entry := &summary.Questions[at]

		switch {
		case row.OptionLabel != nil:
			entry.Answers = append(entry.Answers, *row.OptionLabel)
		case row.ResponseValue != nil:
			entry.Answers = append(entry.Answers, *row.ResponseValue)
		}
		if row.SelectedOptionID != nil {
			detail := OptionDetail{ID: *row.SelectedOptionID}
			if row.OptionValue != nil {
				detail.Value = *row.OptionValue
			}
			if row.OptionIsOther != nil {
				detail.IsOther = *row.OptionIsOther
			}
			entry.OptionDetails = append(entry.OptionDetails, detail)
		}
	}
	return summary
}

// SessionSummary builds the inquiry summary for one session, serving from
// the cache when possible.
func (s *Service) SessionSummary(ctx context.Context, sessionID string) (InquirySummary, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, sessionID); ok {
			var cached InquirySummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.store.ListSessionResponses(ctx, sessionID)
	if err != nil {
		return InquirySummary{}, err
	}
	if len(rows) == 0 {
		return InquirySummary{}, domainError(http.StatusNotFound, "UNKNOWN_SESSION", "Session ID not found")
	}
	contact, err := s.store.GetContactBySession(ctx, sessionID)
	if err != nil {
		return InquirySummary{}, err
	}

	summary := buildSummary(sessionID, rows, contact)

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			s.cache.Set(ctx, sessionID, raw)
		}
	}
	return summary, nil
}

// AllInquiries builds one summary per distinct session, in session-id order.
// The contact lookup for the whole set is a single batched query.
func (s *Service) AllInquiries(ctx context.Context) ([]InquirySummary, error) {
	rows, err := s.store.ListAllResponses(ctx)
	if err != nil {
		return nil, err
	}

	var sessionIDs []string
	grouped := make(map[string][]store.SessionResponseRow)
	for _, row := range rows {
		if _, seen := grouped[row.SessionID]; !seen {
			sessionIDs = append(sessionIDs, row.SessionID)
		}
		grouped[row.SessionID] = append(grouped[row.SessionID], row)
	}

	contacts, err := s.store.ContactsBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]InquirySummary, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		var contact *store.Contact
		if c, ok := contacts[sessionID]; ok {
			contact = &c
		}
		summaries = append(summaries, buildSummary(sessionID, grouped[sessionID], contact))
	}
	return summaries, nil
}
