package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/cache"
	"github.com/Kiran-Tws/scienceSoft-Backend/internal/search"
	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

type ServiceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type SubcategoryInput struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type FormStepInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type QuestionInput struct {
	QuestionText string `json:"question_text"`
	InputType    string `json:"input_type"`
	AllowOther   bool   `json:"allow_other"`
	IsRequired   bool   `json:"is_required"`
}

type OptionInput struct {
	OptionLabel string `json:"option_label"`
	OptionValue string `json:"option_value"`
	IsOther     bool   `json:"is_other"`
}

type ContactInput struct {
	Name                   string `json:"name"`
	CompanyName            string `json:"company_name"`
	WorkEmail              string `json:"work_email"`
	PhoneNumber            string `json:"phone_number"`
	PreferredCommunication string `json:"preferred_communication"`
}

var allowedInputTypes = map[string]struct{}{
	"text":     {},
	"number":   {},
	"radio":    {},
	"checkbox": {},
	"dropdown": {},
}

var allowedCommunication = map[string]struct{}{
	"email": {},
	"phone": {},
	"sms":   {},
	"none":  {},
}

type dataStore interface {
	ListServices(context.Context) ([]store.Service, error)
	GetService(context.Context, string) (store.Service, error)
	CreateService(context.Context, store.Service) (store.Service, error)
	UpdateService(context.Context, string, *string, *string) (store.Service, error)
	DeleteService(context.Context, string) error
	ListCategories(context.Context, string) ([]store.Category, error)
	GetCategory(context.Context, string) (store.Category, error)
	CreateCategories(context.Context, string, []store.Category) ([]store.Category, error)
	UpdateCategory(context.Context, string, *string, *string) (store.Category, error)
	DeleteCategory(context.Context, string) error
	ListSubcategories(context.Context, string) ([]store.Subcategory, error)
	GetSubcategory(context.Context, string) (store.Subcategory, error)
	CreateSubcategories(context.Context, string, []store.Subcategory) ([]store.Subcategory, error)
	UpdateSubcategory(context.Context, string, *string, *string, *string) (store.Subcategory, error)
	DeleteSubcategory(context.Context, string) error
	ListFormSteps(context.Context, string) ([]store.FormStep, error)
	GetFormStep(context.Context, string) (store.FormStep, error)
	GetFormStepDetails(context.Context, string) (store.StepDetails, error)
	CreateFormSteps(context.Context, string, []store.FormStep) ([]store.FormStep, error)
	UpdateFormStep(context.Context, string, *string, *string) (store.FormStep, error)
	DeleteFormStep(context.Context, string) error
	ListQuestions(context.Context, string) ([]store.Question, error)
	GetQuestion(context.Context, string) (store.Question, error)
	CreateQuestions(context.Context, string, []store.Question) ([]store.Question, error)
	UpdateQuestion(context.Context, string, *string, *string, *bool, *bool) (store.Question, error)
	DeleteQuestion(context.Context, string) error
	ListOptions(context.Context, string) ([]store.QuestionOption, error)
	GetOption(context.Context, string) (store.QuestionOption, error)
	CreateOptions(context.Context, string, []store.QuestionOption) ([]store.QuestionOption, error)
	UpdateOption(context.Context, string, *string, *string, *bool) (store.QuestionOption, error)
	DeleteOption(context.Context, string) error
	SessionExists(context.Context, string) (bool, error)
	OptionQuestionPairs(context.Context, []string) (map[string]string, error)
	ReconcileStepResponses(context.Context, string, string, []store.ResponseInput) ([]store.UserResponse, []string, error)
	ListSessionResponses(context.Context, string) ([]store.SessionResponseRow, error)
	ListAllResponses(context.Context) ([]store.SessionResponseRow, error)
	GetContact(context.Context, string) (store.Contact, error)
	GetContactBySession(context.Context, string) (*store.Contact, error)
	ContactsBySessionIDs(context.Context, []string) (map[string]store.Contact, error)
	CreateContact(context.Context, store.Contact) (store.Contact, error)
	UpdateContact(context.Context, string, *string, *string, *string, *string, *string) (store.Contact, error)
	DeleteContact(context.Context, string) error
	Ping(ctx context.Context) error
}

// searchService indexes and searches inquiry content; all index operations
// are fire-and-forget.
type searchService interface {
	Search(q search.Query) search.Response
	IndexContact(c search.ContactRecord)
	IndexAnswers(answers []search.AnswerRecord)
	DeleteAnswers(ids []string)
	DeleteContact(id string)
}

// summaryCache is an optional read cache for rendered summaries; a nil cache
// means every summary read goes to Postgres.
type summaryCache interface {
	Get(ctx context.Context, sessionID string) ([]byte, bool)
	Set(ctx context.Context, sessionID string, value []byte)
	Invalidate(ctx context.Context, sessionID string)
}

type Service struct {
	store        dataStore
	search       searchService
	cache        summaryCache
	newSessionID func() string
}

func New(dataStore *store.PostgresStore, searchService *search.Service, summaryCache *cache.SummaryCache) *Service {
	s := &Service{
		store:        dataStore,
		newSessionID: uuid.NewString,
	}
	if searchService != nil {
		s.search = searchService
	}
	if summaryCache != nil {
		s.cache = summaryCache
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func notFound(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainError(http.StatusNotFound, "NOT_FOUND", message)
	}
	return err
}

// Services

func (s *Service) ListServices(ctx context.Context) ([]ServiceView, error) {
	items, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return serviceViews(items), nil
}

func (s *Service) GetService(ctx context.Context, serviceID string) (ServiceView, error) {
	item, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return ServiceView{}, notFound(err, "Service not found")
	}
	return serviceView(item), nil
}

func (s *Service) CreateService(ctx context.Context, in ServiceInput) (ServiceView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ServiceView{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Service name is required")
	}
	item, err := s.store.CreateService(ctx, store.Service{Name: name, Description: in.Description})
	if err != nil {
		return ServiceView{}, err
	}
	return serviceView(item), nil
}

func (s *Service) UpdateService(ctx context.Context, serviceID string, name, description *string) (ServiceView, error) {
	item, err := s.store.UpdateService(ctx, serviceID, name, description)
	if err != nil {
		return ServiceView{}, notFound(err, "Service not found")
	}
	return serviceView(item), nil
}

func (s *Service) DeleteService(ctx context.Context, serviceID string) error {
	return notFound(s.store.DeleteService(ctx, serviceID), "Service not found")
}

// Categories

func (s *Service) ListCategories(ctx context.Context, serviceID string) ([]CategoryView, error) {
	if _, err := s.store.GetService(ctx, serviceID); err != nil {
		return nil, notFound(err, "Service not found")
	}
	items, err := s.store.ListCategories(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return categoryViews(items), nil
}

func (s *Service) GetCategory(ctx context.Context, categoryID string) (CategoryView, error) {
	item, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return CategoryView{}, notFound(err, "Category not found")
	}
	return categoryView(item), nil
}

func (s *Service) CreateCategories(ctx context.Context, serviceID string, inputs []CategoryInput) ([]CategoryView, error) {
	if _, err := s.store.GetService(ctx, serviceID); err != nil {
		return nil, notFound(err, "Service not found")
	}
	items := make([]store.Category, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required")
		}
		items = append(items, store.Category{Name: strings.TrimSpace(in.Name), Icon: in.Icon})
	}
	created, err := s.store.CreateCategories(ctx, serviceID, items)
	if err != nil {
		return nil, err
	}
	return categoryViews(created), nil
}

func (s *Service) UpdateCategory(ctx context.Context, categoryID string, name, icon *string) (CategoryView, error) {
	item, err := s.store.UpdateCategory(ctx, categoryID, name, icon)
	if err != nil {
		return CategoryView{}, notFound(err, "Category not found")
	}
	return categoryView(item), nil
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	return notFound(s.store.DeleteCategory(ctx, categoryID), "Category not found")
}

// Subcategories

func (s *Service) ListSubcategories(ctx context.Context, categoryID string) ([]SubcategoryView, error) {
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, notFound(err, "Category not found")
	}
	items, err := s.store.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return subcategoryViews(items), nil
}

func (s *Service) GetSubcategory(ctx context.Context, subcategoryID string) (SubcategoryView, error) {
	item, err := s.store.GetSubcategory(ctx, subcategoryID)
	if err != nil {
		return SubcategoryView{}, notFound(err, "Subcategory not found")
	}
	return subcategoryView(item), nil
}

func (s *Service) CreateSubcategories(ctx context.Context, categoryID string, inputs []SubcategoryInput) ([]SubcategoryView, error) {
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, notFound(err, "Category not found")
	}
	items := make([]store.Subcategory, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Subcategory name is required")
		}
		items = append(items, store.Subcategory{Name: strings.TrimSpace(in.Name), Icon: in.Icon, Description: in.Description})
	}
	created, err := s.store.CreateSubcategories(ctx, categoryID, items)
	if err != nil {
		return nil, err
	}
	return subcategoryViews(created), nil
}

func (s *Service) UpdateSubcategory(ctx context.Context, subcategoryID string, name, icon, description *string) (SubcategoryView, error) {
	item, err := s.store.UpdateSubcategory(ctx, subcategoryID, name, icon, description)
	if err != nil {
		return SubcategoryView{}, notFound(err, "Subcategory not found")
	}
	return subcategoryView(item), nil
}

func (s *Service) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	return notFound(s.store.DeleteSubcategory(ctx, subcategoryID), "Subcategory not found")
}

// Form steps

func (s *Service) ListFormSteps(ctx context.Context, subcategoryID string) ([]FormStepView, error) {
	if _, err := s.store.GetSubcategory(ctx, subcategoryID); err != nil {
		return nil, notFound(err, "Subcategory not found")
	}
	items, err := s.store.ListFormSteps(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	return formStepViews(items), nil
}

func (s *Service) GetFormStep(ctx context.Context, formStepID string) (FormStepView, error) {
	item, err := s.store.GetFormStep(ctx, formStepID)
	if err != nil {
		return FormStepView{}, notFound(err, "Form step not found")
	}
	return formStepView(item), nil
}

func (s *Service) GetFormStepDetails(ctx context.Context, formStepID string) (StepDetailsView, error) {
	details, err := s.store.GetFormStepDetails(ctx, formStepID)
	if err != nil {
		return StepDetailsView{}, notFound(err, "Form step not found")
	}
	return stepDetailsView(details), nil
}

// CreateFormSteps appends new steps after the subcategory's current highest
// step_order. Inputs never carry an order of their own.
func (s *Service) CreateFormSteps(ctx context.Context, subcategoryID string, inputs []FormStepInput) ([]FormStepView, error) {
	if _, err := s.store.GetSubcategory(ctx, subcategoryID); err != nil {
		return nil, notFound(err, "Subcategory not found")
	}
	items := make([]store.FormStep, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Title) == "" {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Form step title is required")
		}
		items = append(items, store.FormStep{Title: strings.TrimSpace(in.Title), Description: in.Description})
	}
	created, err := s.store.CreateFormSteps(ctx, subcategoryID, items)
	if err != nil {
		return nil, err
	}
	return formStepViews(created), nil
}

// UpdateFormStep never touches step_order; it is fixed at creation.
func (s *Service) UpdateFormStep(ctx context.Context, formStepID string, title, description *string) (FormStepView, error) {
	item, err := s.store.UpdateFormStep(ctx, formStepID, title, description)
	if err != nil {
		return FormStepView{}, notFound(err, "Form step not found")
	}
	return formStepView(item), nil
}

func (s *Service) DeleteFormStep(ctx context.Context, formStepID string) error {
	return notFound(s.store.DeleteFormStep(ctx, formStepID), "Form step not found")
}

// Questions

func (s *Service) ListQuestions(ctx context.Context, formStepID string) ([]QuestionView, error) {
	if _, err := s.store.GetFormStep(ctx, formStepID); err != nil {
		return nil, notFound(err, "Form step not found")
	}
	items, err := s.store.ListQuestions(ctx, formStepID)
	if err != nil {
		return nil, err
	}
	return questionViews(items), nil
}

func (s *Service) GetQuestion(ctx context.Context, questionID string) (QuestionView, error) {
	item, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return QuestionView{}, notFound(err, "Question not found")
	}
	return questionView(item), nil
}

func (s *Service) CreateQuestions(ctx context.Context, formStepID string, inputs []QuestionInput) ([]QuestionView, error) {
	if _, err := s.store.GetFormStep(ctx, formStepID); err != nil {
		return nil, notFound(err, "Form step not found")
	}
	items := make([]store.Question, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.QuestionText) == "" {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Question text is required")
		}
		if _, ok := allowedInputTypes[in.InputType]; !ok {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
				fmt.Sprintf("Invalid input_type %q: must be one of text, number, radio, checkbox, dropdown", in.InputType))
		}
		items = append(items, store.Question{
			QuestionText: strings.TrimSpace(in.QuestionText),
			InputType:    in.InputType,
			AllowOther:   in.AllowOther,
			IsRequired:   in.IsRequired,
		})
	}
	created, err := s.store.CreateQuestions(ctx, formStepID, items)
	if err != nil {
		return nil, err
	}
	return questionViews(created), nil
}

func (s *Service) UpdateQuestion(ctx context.Context, questionID string, questionText, inputType *string, allowOther, isRequired *bool) (QuestionView, error) {
	if inputType != nil {
		if _, ok := allowedInputTypes[*inputType]; !ok {
			return QuestionView{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
				fmt.Sprintf("Invalid input_type %q: must be one of text, number, radio, checkbox, dropdown", *inputType))
		}
	}
	item, err := s.store.UpdateQuestion(ctx, questionID, questionText, inputType, allowOther, isRequired)
	if err != nil {
		return QuestionView{}, notFound(err, "Question not found")
	}
	return questionView(item), nil
}

func (s *Service) DeleteQuestion(ctx context.Context, questionID string) error {
	return notFound(s.store.DeleteQuestion(ctx, questionID), "Question not found")
}

// Options

func (s *Service) ListOptions(ctx context.Context, questionID string) ([]OptionView, error) {
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return nil, notFound(err, "Question not found")
	}
	items, err := s.store.ListOptions(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return optionViews(items), nil
}

func (s *Service) GetOption(ctx context.Context, optionID string) (OptionView, error) {
	item, err := s.store.GetOption(ctx, optionID)
	if err != nil {
		return OptionView{}, notFound(err, "Option not found")
	}
	return optionView(item), nil
}

func (s *Service) CreateOptions(ctx context.Context, questionID string, inputs []OptionInput) ([]OptionView, error) {
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return nil, notFound(err, "Question not found")
	}
	items := make([]store.QuestionOption, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.OptionLabel) == "" {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Option label is required")
		}
		items = append(items, store.QuestionOption{
			OptionLabel: strings.TrimSpace(in.OptionLabel),
			OptionValue: in.OptionValue,
			IsOther:     in.IsOther,
		})
	}
	created, err := s.store.CreateOptions(ctx, questionID, items)
	if err != nil {
		return nil, err
	}
	return optionViews(created), nil
}

func (s *Service) UpdateOption(ctx context.Context, optionID string, label, value *string, isOther *bool) (OptionView, error) {
	item, err := s.store.UpdateOption(ctx, optionID, label, value, isOther)
	if err != nil {
		return OptionView{}, notFound(err, "Option not found")
	}
	return optionView(item), nil
}

func (s *Service) DeleteOption(ctx context.Context, optionID string) error {
	return notFound(s.store.DeleteOption(ctx, optionID), "Option not found")
}

// Contacts

func (s *Service) GetContact(ctx context.Context, contactID string) (ContactView, error) {
	item, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return ContactView{}, notFound(err, "Contact not found")
	}
	return contactView(item), nil
}

func (s *Service) GetSessionContact(ctx context.Context, sessionID string) (ContactView, error) {
	item, err := s.store.GetContactBySession(ctx, sessionID)
	if err != nil {
		return ContactView{}, err
	}
	if item == nil {
		return ContactView{}, domainError(http.StatusNotFound, "NOT_FOUND", "Contact not found")
	}
	return contactView(*item), nil
}

// CreateContact finishes an inquiry: the session must already have at least
// one response row, and at most one contact may exist per session.
func (s *Service) CreateContact(ctx context.Context, sessionID string, in ContactInput) (ContactView, error) {
	if strings.TrimSpace(in.Name) == "" {
		return ContactView{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Contact name is required")
	}
	preferred := in.PreferredCommunication
	if preferred == "" {
		preferred = "none"
	}
	if _, ok := allowedCommunication[preferred]; !ok {
		return ContactView{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Invalid preferred_communication %q: must be one of email, phone, sms, none", preferred))
	}

	exists, err := s.store.SessionExists(ctx, sessionID)
	if err != nil {
		return ContactView{}, err
	}
	if !exists {
		return ContactView{}, domainError(http.StatusNotFound, "UNKNOWN_SESSION", "Session ID not found")
	}
	existing, err := s.store.GetContactBySession(ctx, sessionID)
	if err != nil {
		return ContactView{}, err
	}
	if existing != nil {
		return ContactView{}, domainError(http.StatusBadRequest, "CONFLICT", "Contact already exists for this session")
	}

	item, err := s.store.CreateContact(ctx, store.Contact{
		SessionID:              sessionID,
		Name:                   strings.TrimSpace(in.Name),
		CompanyName:            in.CompanyName,
		WorkEmail:              in.WorkEmail,
		PhoneNumber:            in.PhoneNumber,
		PreferredCommunication: preferred,
	})
	if err != nil {
		return ContactView{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, sessionID)
	}
	if s.search != nil {
		s.search.IndexContact(search.ContactRecord{
			ID:          item.ID,
			SessionID:   item.SessionID,
			Name:        item.Name,
			CompanyName: item.CompanyName,
			WorkEmail:   item.WorkEmail,
		})
	}
	return contactView(item), nil
}

func (s *Service) UpdateContact(ctx context.Context, contactID string, name, companyName, workEmail, phoneNumber, preferredCommunication *string) (ContactView, error) {
	if preferredCommunication != nil {
		if _, ok := allowedCommunication[*preferredCommunication]; !ok {
			return ContactView{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
				fmt.Sprintf("Invalid preferred_communication %q: must be one of email, phone, sms, none", *preferredCommunication))
		}
	}
	item, err := s.store.UpdateContact(ctx, contactID, name, companyName, workEmail, phoneNumber, preferredCommunication)
	if err != nil {
		return ContactView{}, notFound(err, "Contact not found")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, item.SessionID)
	}
	if s.search != nil {
		s.search.IndexContact(search.ContactRecord{
			ID:          item.ID,
			SessionID:   item.SessionID,
			Name:        item.Name,
			CompanyName: item.CompanyName,
			WorkEmail:   item.WorkEmail,
		})
	}
	return contactView(item), nil
}

func (s *Service) DeleteContact(ctx context.Context, contactID string) error {
	item, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return notFound(err, "Contact not found")
	}
	if err := s.store.DeleteContact(ctx, contactID); err != nil {
		return notFound(err, "Contact not found")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, item.SessionID)
	}
	if s.search != nil {
		s.search.DeleteContact(contactID)
	}
	return nil
}

// SearchInquiries queries the search facade over contacts and free-text
// answers.
func (s *Service) SearchInquiries(ctx context.Context, text, filterType string, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	if filterType != "" && filterType != string(search.ResultContact) && filterType != string(search.ResultAnswer) {
		return search.Response{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "type must be contact or answer")
	}
	return s.search.Search(search.Query{
		Text:       text,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
		Offset:     offset,
	}), nil
}
