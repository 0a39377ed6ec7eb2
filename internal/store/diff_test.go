package store

import (
	"testing"
)

func strptr(s string) *string { return &s }

func existingRow(id, questionID string, optionID *string, value *string) UserResponse {
	return UserResponse{
		ID:               id,
		SessionID:        "session-1",
		FormStepID:       "step-1",
		QuestionID:       questionID,
		SelectedOptionID: optionID,
		ResponseValue:    value,
	}
}

func TestDiffInsertUpdateDelete(t *testing.T) {
	existing := []UserResponse{
		existingRow("row-a", "question-a", strptr("option-1"), nil),
		existingRow("row-b", "question-b", strptr("option-2"), nil),
	}
	incoming := []ResponseInput{
		{QuestionID: "question-a", SelectedOptionID: strptr("option-1")},
		{QuestionID: "question-c", SelectedOptionID: strptr("option-3")},
	}

	diff := diffStepResponses(existing, incoming)

	if len(diff.inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(diff.inserts))
	}
	if diff.inserts[0].QuestionID != "question-c" {
		t.Fatalf("expected insert for question-c, got %s", diff.inserts[0].QuestionID)
	}
	if len(diff.deletes) != 1 || diff.deletes[0] != "row-b" {
		t.Fatalf("expected row-b deleted, got %v", diff.deletes)
	}
	if len(diff.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(diff.updates))
	}
	if _, ok := diff.updates["row-a"]; !ok {
		t.Fatalf("expected row-a updated, got %v", diff.updates)
	}
}

func TestDiffIdenticalBatchIsIdempotent(t *testing.T) {
	existing := []UserResponse{
		existingRow("row-a", "question-a", strptr("option-1"), nil),
		existingRow("row-b", "question-a", strptr("option-2"), nil),
		existingRow("row-c", "question-b", nil, strptr("free text")),
	}
	incoming := []ResponseInput{
		{QuestionID: "question-a", SelectedOptionID: strptr("option-1")},
		{QuestionID: "question-a", SelectedOptionID: strptr("option-2")},
		{QuestionID: "question-b", ResponseValue: strptr("free text")},
	}

	diff := diffStepResponses(existing, incoming)

	if len(diff.inserts) != 0 {
		t.Fatalf("expected no inserts, got %v", diff.inserts)
	}
	if len(diff.deletes) != 0 {
		t.Fatalf("expected no deletes, got %v", diff.deletes)
	}
	if len(diff.updates) != 3 {
		t.Fatalf("expected every row matched as update, got %d", len(diff.updates))
	}
}

func TestDiffRefreshesResponseValue(t *testing.T) {
	existing := []UserResponse{
		existingRow("row-a", "question-a", nil, strptr("old")),
	}
	incoming := []ResponseInput{
		{QuestionID: "question-a", ResponseValue: strptr("new")},
	}

	diff := diffStepResponses(existing, incoming)

	value, ok := diff.updates["row-a"]
	if !ok {
		t.Fatalf("expected row-a updated, got %v", diff.updates)
	}
	if value == nil || *value != "new" {
		t.Fatalf("expected refreshed value %q, got %v", "new", value)
	}
}

func TestDiffOptionIDLiteralNullStaysDistinct(t *testing.T) {
	// An option id that happens to be the string "null" must not collide
	// with a no-option answer for the same question.
	existing := []UserResponse{
		existingRow("row-a", "question-a", strptr("null"), nil),
	}
	incoming := []ResponseInput{
		{QuestionID: "question-a", ResponseValue: strptr("typed answer")},
	}

	diff := diffStepResponses(existing, incoming)

	if len(diff.deletes) != 1 || diff.deletes[0] != "row-a" {
		t.Fatalf("expected the option row deleted, got %v", diff.deletes)
	}
	if len(diff.inserts) != 1 {
		t.Fatalf("expected the text answer inserted, got %v", diff.inserts)
	}
}

func TestDiffDuplicateIncomingKeyKeepsLast(t *testing.T) {
	incoming := []ResponseInput{
		{QuestionID: "question-a", ResponseValue: strptr("first")},
		{QuestionID: "question-a", ResponseValue: strptr("second")},
	}

	diff := diffStepResponses(nil, incoming)

	if len(diff.inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(diff.inserts))
	}
	if diff.inserts[0].ResponseValue == nil || *diff.inserts[0].ResponseValue != "second" {
		t.Fatalf("expected last occurrence to win, got %v", diff.inserts[0].ResponseValue)
	}
}

func TestDiffSurplusStoredDuplicatesDropped(t *testing.T) {
	existing := []UserResponse{
		existingRow("row-a", "question-a", strptr("option-1"), nil),
		existingRow("row-b", "question-a", strptr("option-1"), nil),
	}
	incoming := []ResponseInput{
		{QuestionID: "question-a", SelectedOptionID: strptr("option-1")},
	}

	diff := diffStepResponses(existing, incoming)

	if _, ok := diff.updates["row-a"]; !ok {
		t.Fatalf("expected first stored row kept, got %v", diff.updates)
	}
	if len(diff.deletes) != 1 || diff.deletes[0] != "row-b" {
		t.Fatalf("expected surplus row-b dropped, got %v", diff.deletes)
	}
}

func TestKeyOfSeparatesOptionAndTextAnswers(t *testing.T) {
	withOption := keyOf("question-a", strptr("option-1"))
	without := keyOf("question-a", nil)
	if withOption == without {
		t.Fatal("option and no-option keys must differ")
	}
	if keyOf("question-a", strptr("option-1")) != withOption {
		t.Fatal("identical inputs must produce identical keys")
	}
}
