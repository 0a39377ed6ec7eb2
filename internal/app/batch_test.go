package app

import (
	"errors"
	"testing"
)

func TestParseAnswerBatch(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "bare array",
			body: `[{"question_id":"q1","response_value":"yes"}]`,
			want: 1,
		},
		{
			name: "array under responses",
			body: `{"responses":[{"question_id":"q1"},{"question_id":"q2"}]}`,
			want: 2,
		},
		{
			name: "json-encoded string under responses",
			body: `{"responses":"[{\"question_id\":\"q1\",\"selected_option_id\":\"o1\"}]"}`,
			want: 1,
		},
		{
			name:    "empty array",
			body:    `[]`,
			wantErr: true,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: true,
		},
		{
			name:    "object without responses",
			body:    `{"answers":[{"question_id":"q1"}]}`,
			wantErr: true,
		},
		{
			name:    "responses is a plain string",
			body:    `{"responses":"not json"}`,
			wantErr: true,
		},
		{
			name:    "responses is an object",
			body:    `{"responses":{"question_id":"q1"}}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			body:    `not json at all`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers, err := ParseAnswerBatch([]byte(tc.body))
			if tc.wantErr {
				var domainErr *DomainError
				if !errors.As(err, &domainErr) {
					t.Fatalf("expected DomainError, got %v", err)
				}
				if domainErr.Message != "Responses must be a non-empty array" {
					t.Fatalf("unexpected message %q", domainErr.Message)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(answers) != tc.want {
				t.Fatalf("expected %d answers, got %d", tc.want, len(answers))
			}
		})
	}
}

func TestParseAnswerBatchDecodesFields(t *testing.T) {
	answers, err := ParseAnswerBatch([]byte(`[{"question_id":"q1","selected_option_id":"o1","response_value":"Linux"}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := answers[0]
	if a.QuestionID != "q1" {
		t.Fatalf("question_id = %q", a.QuestionID)
	}
	if a.SelectedOptionID == nil || *a.SelectedOptionID != "o1" {
		t.Fatalf("selected_option_id = %v", a.SelectedOptionID)
	}
	if a.ResponseValue == nil || *a.ResponseValue != "Linux" {
		t.Fatalf("response_value = %v", a.ResponseValue)
	}
}

func TestDecodeBatchNamesTheCollectionKey(t *testing.T) {
	_, err := decodeBatch[CategoryInput]([]byte(`{}`), "categories")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Message != "Categories must be a non-empty array" {
		t.Fatalf("unexpected message %q", domainErr.Message)
	}
}

func TestDecodeBatchAcceptsWrappedString(t *testing.T) {
	items, err := decodeBatch[CategoryInput]([]byte(`{"categories":"[{\"name\":\"Support\"}]"}`), "categories")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Support" {
		t.Fatalf("unexpected items %+v", items)
	}
}
