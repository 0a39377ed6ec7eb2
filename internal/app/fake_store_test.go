package app

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

// fakeStore implements dataStore with injectable behavior per method. Lookups
// default to sql.ErrNoRows so tests opt in to the rows they need.
type fakeStore struct {
	getServiceFn             func(context.Context, string) (store.Service, error)
	createServiceFn          func(context.Context, store.Service) (store.Service, error)
	getCategoryFn            func(context.Context, string) (store.Category, error)
	createCategoriesFn       func(context.Context, string, []store.Category) ([]store.Category, error)
	getSubcategoryFn         func(context.Context, string) (store.Subcategory, error)
	createSubcategoriesFn    func(context.Context, string, []store.Subcategory) ([]store.Subcategory, error)
	getFormStepFn            func(context.Context, string) (store.FormStep, error)
	getFormStepDetailsFn     func(context.Context, string) (store.StepDetails, error)
	createFormStepsFn        func(context.Context, string, []store.FormStep) ([]store.FormStep, error)
	listQuestionsFn          func(context.Context, string) ([]store.Question, error)
	getQuestionFn            func(context.Context, string) (store.Question, error)
	createQuestionsFn        func(context.Context, string, []store.Question) ([]store.Question, error)
	listOptionsFn            func(context.Context, string) ([]store.QuestionOption, error)
	createOptionsFn          func(context.Context, string, []store.QuestionOption) ([]store.QuestionOption, error)
	sessionExistsFn          func(context.Context, string) (bool, error)
	optionQuestionPairsFn    func(context.Context, []string) (map[string]string, error)
	reconcileFn              func(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error)
	listSessionResponsesFn   func(context.Context, string) ([]store.SessionResponseRow, error)
	listAllResponsesFn       func(context.Context) ([]store.SessionResponseRow, error)
	getContactFn             func(context.Context, string) (store.Contact, error)
	getContactBySessionFn    func(context.Context, string) (*store.Contact, error)
	contactsBySessionIDsFn   func(context.Context, []string) (map[string]store.Contact, error)
	createContactFn          func(context.Context, store.Contact) (store.Contact, error)
}

func (f *fakeStore) ListServices(context.Context) ([]store.Service, error) { return nil, nil }
func (f *fakeStore) GetService(ctx context.Context, id string) (store.Service, error) {
	if f.getServiceFn != nil {
		return f.getServiceFn(ctx, id)
	}
	return store.Service{}, sql.ErrNoRows
}
func (f *fakeStore) CreateService(ctx context.Context, item store.Service) (store.Service, error) {
	if f.createServiceFn != nil {
		return f.createServiceFn(ctx, item)
	}
	return item, nil
}
func (f *fakeStore) UpdateService(context.Context, string, *string, *string) (store.Service, error) {
	return store.Service{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteService(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) ListCategories(context.Context, string) ([]store.Category, error) {
	return nil, nil
}
func (f *fakeStore) GetCategory(ctx context.Context, id string) (store.Category, error) {
	if f.getCategoryFn != nil {
		return f.getCategoryFn(ctx, id)
	}
	return store.Category{}, sql.ErrNoRows
}
func (f *fakeStore) CreateCategories(ctx context.Context, serviceID string, items []store.Category) ([]store.Category, error) {
	if f.createCategoriesFn != nil {
		return f.createCategoriesFn(ctx, serviceID, items)
	}
	return items, nil
}
func (f *fakeStore) UpdateCategory(context.Context, string, *string, *string) (store.Category, error) {
	return store.Category{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteCategory(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) ListSubcategories(context.Context, string) ([]store.Subcategory, error) {
	return nil, nil
}
func (f *fakeStore) GetSubcategory(ctx context.Context, id string) (store.Subcategory, error) {
	if f.getSubcategoryFn != nil {
		return f.getSubcategoryFn(ctx, id)
	}
	return store.Subcategory{}, sql.ErrNoRows
}
func (f *fakeStore) CreateSubcategories(ctx context.Context, categoryID string, items []store.Subcategory) ([]store.Subcategory, error) {
	if f.createSubcategoriesFn != nil {
		return f.createSubcategoriesFn(ctx, categoryID, items)
	}
	return items, nil
}
func (f *fakeStore) UpdateSubcategory(context.Context, string, *string, *string, *string) (store.Subcategory, error) {
	return store.Subcategory{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteSubcategory(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) ListFormSteps(context.Context, string) ([]store.FormStep, error) {
	return nil, nil
}
func (f *fakeStore) GetFormStep(ctx context.Context, id string) (store.FormStep, error) {
	if f.getFormStepFn != nil {
		return f.getFormStepFn(ctx, id)
	}
	return store.FormStep{}, sql.ErrNoRows
}
func (f *fakeStore) GetFormStepDetails(ctx context.Context, id string) (store.StepDetails, error) {
	if f.getFormStepDetailsFn != nil {
		return f.getFormStepDetailsFn(ctx, id)
	}
	return store.StepDetails{}, sql.ErrNoRows
}
func (f *fakeStore) CreateFormSteps(ctx context.Context, subcategoryID string, items []store.FormStep) ([]store.FormStep, error) {
	if f.createFormStepsFn != nil {
		return f.createFormStepsFn(ctx, subcategoryID, items)
	}
	return items, nil
}
func (f *fakeStore) UpdateFormStep(context.Context, string, *string, *string) (store.FormStep, error) {
	return store.FormStep{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteFormStep(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) ListQuestions(ctx context.Context, formStepID string) ([]store.Question, error) {
	if f.listQuestionsFn != nil {
		return f.listQuestionsFn(ctx, formStepID)
	}
	return nil, nil
}
func (f *fakeStore) GetQuestion(ctx context.Context, id string) (store.Question, error) {
	if f.getQuestionFn != nil {
		return f.getQuestionFn(ctx, id)
	}
	return store.Question{}, sql.ErrNoRows
}
func (f *fakeStore) CreateQuestions(ctx context.Context, formStepID string, items []store.Question) ([]store.Question, error) {
	if f.createQuestionsFn != nil {
		return f.createQuestionsFn(ctx, formStepID, items)
	}
	return items, nil
}
func (f *fakeStore) UpdateQuestion(context.Context, string, *string, *string, *bool, *bool) (store.Question, error) {
	return store.Question{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteQuestion(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) ListOptions(ctx context.Context, questionID string) ([]store.QuestionOption, error) {
	if f.listOptionsFn != nil {
		return f.listOptionsFn(ctx, questionID)
	}
	return nil, nil
}
func (f *fakeStore) GetOption(context.Context, string) (store.QuestionOption, error) {
	return store.QuestionOption{}, sql.ErrNoRows
}
func (f *fakeStore) CreateOptions(ctx context.Context, questionID string, items []store.QuestionOption) ([]store.QuestionOption, error) {
	if f.createOptionsFn != nil {
		return f.createOptionsFn(ctx, questionID, items)
	}
	return items, nil
}
func (f *fakeStore) UpdateOption(context.Context, string, *string, *string, *bool) (store.QuestionOption, error) {
	return store.QuestionOption{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteOption(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if f.sessionExistsFn != nil {
		return f.sessionExistsFn(ctx, sessionID)
	}
	return false, nil
}
func (f *fakeStore) OptionQuestionPairs(ctx context.Context, optionIDs []string) (map[string]string, error) {
	if f.optionQuestionPairsFn != nil {
		return f.optionQuestionPairsFn(ctx, optionIDs)
	}
	return map[string]string{}, nil
}
func (f *fakeStore) ReconcileStepResponses(ctx context.Context, sessionID, formStepID string, inputs []store.ResponseInput) ([]store.UserResponse, []string, error) {
	if f.reconcileFn != nil {
		return f.reconcileFn(ctx, sessionID, formStepID, inputs)
	}
	return nil, nil, nil
}
func (f *fakeStore) ListSessionResponses(ctx context.Context, sessionID string) ([]store.SessionResponseRow, error) {
	if f.listSessionResponsesFn != nil {
		return f.listSessionResponsesFn(ctx, sessionID)
	}
	return nil, nil
}
func (f *fakeStore) ListAllResponses(ctx context.Context) ([]store.SessionResponseRow, error) {
	if f.listAllResponsesFn != nil {
		return f.listAllResponsesFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) GetContact(ctx context.Context, id string) (store.Contact, error) {
	if f.getContactFn != nil {
		return f.getContactFn(ctx, id)
	}
	return store.Contact{}, sql.ErrNoRows
}
func (f *fakeStore) GetContactBySession(ctx context.Context, sessionID string) (*store.Contact, error) {
	if f.getContactBySessionFn != nil {
		return f.getContactBySessionFn(ctx, sessionID)
	}
	return nil, nil
}
func (f *fakeStore) ContactsBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]store.Contact, error) {
	if f.contactsBySessionIDsFn != nil {
		return f.contactsBySessionIDsFn(ctx, sessionIDs)
	}
	return map[string]store.Contact{}, nil
}
func (f *fakeStore) CreateContact(ctx context.Context, item store.Contact) (store.Contact, error) {
	if f.createContactFn != nil {
		return f.createContactFn(ctx, item)
	}
	return item, nil
}
func (f *fakeStore) UpdateContact(context.Context, string, *string, *string, *string, *string, *string) (store.Contact, error) {
	return store.Contact{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteContact(context.Context, string) error { return sql.ErrNoRows }
func (f *fakeStore) Ping(context.Context) error                  { return nil }

// newTestService wires a Service straight onto a fake store with a
// deterministic session id generator.
func newTestService(f *fakeStore) *Service {
	n := 0
	return &Service{
		store: f,
		newSessionID: func() string {
			n++
			return "session-" + strconv.Itoa(n)
		},
	}
}
