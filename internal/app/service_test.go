package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

func strptr(s string) *string { return &s }

func stepStore(order int) *fakeStore {
	return &fakeStore{
		getFormStepFn: func(_ context.Context, id string) (store.FormStep, error) {
			if id != "step-1" {
				return store.FormStep{}, errors.New("unexpected step id")
			}
			return store.FormStep{ID: "step-1", SubcategoryID: "sub-1", StepOrder: order, Title: "About you"}, nil
		},
		listQuestionsFn: func(context.Context, string) ([]store.Question, error) {
			return []store.Question{
				{ID: "question-a", FormStepID: "step-1", QuestionText: "Team size?", InputType: "text"},
				{ID: "question-b", FormStepID: "step-1", QuestionText: "Platforms?", InputType: "checkbox"},
			}, nil
		},
	}
}

func domainStatus(t *testing.T, err error) int {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Status
}

func TestSubmitFirstStepMintsFreshSessions(t *testing.T) {
	f := stepStore(1)
	var recorded []string
	f.reconcileFn = func(_ context.Context, sessionID, _ string, inputs []store.ResponseInput) ([]store.UserResponse, []string, error) {
		recorded = append(recorded, sessionID)
		live := make([]store.UserResponse, 0, len(inputs))
		for i, in := range inputs {
			live = append(live, store.UserResponse{
				ID: "row-" + sessionID + "-" + string(rune('a'+i)), SessionID: sessionID,
				FormStepID: "step-1", QuestionID: in.QuestionID,
			})
		}
		return live, nil, nil
	}
	service := newTestService(f)

	answers := []AnswerInput{{QuestionID: "question-a", ResponseValue: strptr("10")}}

	// A stale header on the first step is discarded, not reused.
	first, err := service.SubmitStepResponses(context.Background(), "step-1", "stale-session", answers)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := service.SubmitStepResponses(context.Background(), "step-1", "", answers)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.SessionID == "" || second.SessionID == "" {
		t.Fatal("expected session ids to be minted")
	}
	if first.SessionID == second.SessionID {
		t.Fatalf("expected distinct sessions, both were %s", first.SessionID)
	}
	if first.SessionID == "stale-session" {
		t.Fatal("supplied header must be ignored on the first step")
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 reconcile calls, got %d", len(recorded))
	}
}

func TestSubmitLaterStepRequiresSessionHeader(t *testing.T) {
	f := stepStore(2)
	reconciled := false
	f.reconcileFn = func(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error) {
		reconciled = true
		return nil, nil, nil
	}
	service := newTestService(f)

	_, err := service.SubmitStepResponses(context.Background(), "step-1", "   ",
		[]AnswerInput{{QuestionID: "question-a", ResponseValue: strptr("x")}})

	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if reconciled {
		t.Fatal("nothing may be written when the session header is missing")
	}
}

func TestSubmitUnknownSessionRejected(t *testing.T) {
	f := stepStore(2)
	f.sessionExistsFn = func(context.Context, string) (bool, error) { return false, nil }
	reconciled := false
	f.reconcileFn = func(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error) {
		reconciled = true
		return nil, nil, nil
	}
	service := newTestService(f)

	_, err := service.SubmitStepResponses(context.Background(), "step-1", "no-such-session",
		[]AnswerInput{{QuestionID: "question-a", ResponseValue: strptr("x")}})

	if status := domainStatus(t, err); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if reconciled {
		t.Fatal("nothing may be written for an unknown session")
	}
}

func TestSubmitUnknownStepIs404(t *testing.T) {
	service := newTestService(&fakeStore{})

	_, err := service.SubmitStepResponses(context.Background(), "missing-step", "",
		[]AnswerInput{{QuestionID: "question-a"}})

	if status := domainStatus(t, err); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestSubmitForeignQuestionRejectsWholeBatch(t *testing.T) {
	f := stepStore(1)
	reconciled := false
	f.reconcileFn = func(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error) {
		reconciled = true
		return nil, nil, nil
	}
	service := newTestService(f)

	_, err := service.SubmitStepResponses(context.Background(), "step-1", "", []AnswerInput{
		{QuestionID: "question-a", ResponseValue: strptr("fine")},
		{QuestionID: "question-from-other-step", ResponseValue: strptr("foreign")},
	})

	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if reconciled {
		t.Fatal("a foreign question must reject the whole batch before any write")
	}
}

func TestSubmitForeignOptionRejectsWholeBatch(t *testing.T) {
	f := stepStore(1)
	f.optionQuestionPairsFn = func(context.Context, []string) (map[string]string, error) {
		return map[string]string{"option-1": "question-b"}, nil
	}
	reconciled := false
	f.reconcileFn = func(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error) {
		reconciled = true
		return nil, nil, nil
	}
	service := newTestService(f)

	_, err := service.SubmitStepResponses(context.Background(), "step-1", "", []AnswerInput{
		{QuestionID: "question-a", SelectedOptionID: strptr("option-1")},
	})

	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", domainErr.Status)
	}
	if want := "Option option-1 does not belong to question question-a"; domainErr.Message != want {
		t.Fatalf("expected message %q, got %q", want, domainErr.Message)
	}
	if reconciled {
		t.Fatal("a foreign option must reject the whole batch before any write")
	}
}

func TestSubmitTreatsEmptyOptionIDAsNoOption(t *testing.T) {
	f := stepStore(1)
	var captured []store.ResponseInput
	f.reconcileFn = func(_ context.Context, _, _ string, inputs []store.ResponseInput) ([]store.UserResponse, []string, error) {
		captured = inputs
		return nil, nil, nil
	}
	pairsCalled := false
	f.optionQuestionPairsFn = func(context.Context, []string) (map[string]string, error) {
		pairsCalled = true
		return map[string]string{}, nil
	}
	service := newTestService(f)

	_, err := service.SubmitStepResponses(context.Background(), "step-1", "", []AnswerInput{
		{QuestionID: "question-a", SelectedOptionID: strptr(""), ResponseValue: strptr("typed")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if pairsCalled {
		t.Fatal("an empty option id must not trigger option validation")
	}
	if len(captured) != 1 || captured[0].SelectedOptionID != nil {
		t.Fatalf("expected nil option id, got %+v", captured)
	}
}

func TestCreateContactRequiresExistingSession(t *testing.T) {
	f := &fakeStore{
		sessionExistsFn: func(context.Context, string) (bool, error) { return false, nil },
	}
	service := newTestService(f)

	_, err := service.CreateContact(context.Background(), "ghost-session", ContactInput{Name: "Dana"})

	if status := domainStatus(t, err); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestCreateContactRejectsSecondContact(t *testing.T) {
	f := &fakeStore{
		sessionExistsFn: func(context.Context, string) (bool, error) { return true, nil },
		getContactBySessionFn: func(context.Context, string) (*store.Contact, error) {
			return &store.Contact{ID: "contact-1", SessionID: "session-1"}, nil
		},
	}
	service := newTestService(f)

	_, err := service.CreateContact(context.Background(), "session-1", ContactInput{Name: "Dana"})

	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCreateContactDefaultsPreferredCommunication(t *testing.T) {
	var created store.Contact
	f := &fakeStore{
		sessionExistsFn: func(context.Context, string) (bool, error) { return true, nil },
		createContactFn: func(_ context.Context, item store.Contact) (store.Contact, error) {
			item.ID = "contact-1"
			created = item
			return item, nil
		},
	}
	service := newTestService(f)

	view, err := service.CreateContact(context.Background(), "session-1", ContactInput{Name: "  Dana  "})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if created.PreferredCommunication != "none" {
		t.Fatalf("expected default none, got %q", created.PreferredCommunication)
	}
	if view.Name != "Dana" {
		t.Fatalf("expected trimmed name, got %q", view.Name)
	}
}

func TestCreateContactRejectsUnknownCommunication(t *testing.T) {
	f := &fakeStore{
		sessionExistsFn: func(context.Context, string) (bool, error) { return true, nil },
	}
	service := newTestService(f)

	_, err := service.CreateContact(context.Background(), "session-1",
		ContactInput{Name: "Dana", PreferredCommunication: "carrier-pigeon"})

	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCreateCategoriesRequiresService(t *testing.T) {
	service := newTestService(&fakeStore{})

	_, err := service.CreateCategories(context.Background(), "missing-service",
		[]CategoryInput{{Name: "Support"}})

	if status := domainStatus(t, err); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestCreateQuestionsValidatesInputType(t *testing.T) {
	f := &fakeStore{
		getFormStepFn: func(context.Context, string) (store.FormStep, error) {
			return store.FormStep{ID: "step-1", StepOrder: 1}, nil
		},
	}
	service := newTestService(f)

	_, err := service.CreateQuestions(context.Background(), "step-1",
		[]QuestionInput{{QuestionText: "Pick one", InputType: "slider"}})

	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}
