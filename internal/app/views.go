package app

import (
	"time"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

// JSON views of the stored entities. Field names follow the wire contract,
// not the Go structs.

type ServiceView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryView struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

type SubcategoryView struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type FormStepView struct {
	ID            string    `json:"id"`
	SubcategoryID string    `json:"subcategory_id"`
	StepOrder     int       `json:"step_order"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

type QuestionView struct {
	ID           string    `json:"id"`
	FormStepID   string    `json:"form_step_id"`
	QuestionText string    `json:"question_text"`
	InputType    string    `json:"input_type"`
	AllowOther   bool      `json:"allow_other"`
	IsRequired   bool      `json:"is_required"`
	CreatedAt    time.Time `json:"created_at"`
}

type OptionView struct {
	ID          string    `json:"id"`
	QuestionID  string    `json:"question_id"`
	OptionLabel string    `json:"option_label"`
	OptionValue string    `json:"option_value"`
	IsOther     bool      `json:"is_other"`
	CreatedAt   time.Time `json:"created_at"`
}

type QuestionDetailsView struct {
	QuestionView
	Options []OptionView `json:"options"`
}

type StepDetailsView struct {
	FormStepView
	Questions []QuestionDetailsView `json:"questions"`
}

type ResponseView struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	FormStepID       string    `json:"form_step_id"`
	QuestionID       string    `json:"question_id"`
	SelectedOptionID *string   `json:"selected_option_id"`
	ResponseValue    *string   `json:"response_value"`
	CreatedAt        time.Time `json:"created_at"`
}

type ContactView struct {
	ID                     string    `json:"id"`
	SessionID              string    `json:"session_id"`
	Name                   string    `json:"name"`
	CompanyName            string    `json:"company_name"`
	WorkEmail              string    `json:"work_email"`
	PhoneNumber            string    `json:"phone_number"`
	PreferredCommunication string    `json:"preferred_communication"`
	CreatedAt              time.Time `json:"created_at"`
}

func serviceView(item store.Service) ServiceView {
	return ServiceView{ID: item.ID, Name: item.Name, Description: item.Description, CreatedAt: item.CreatedAt}
}

func categoryView(item store.Category) CategoryView {
	return CategoryView{ID: item.ID, ServiceID: item.ServiceID, Name: item.Name, Icon: item.Icon, CreatedAt: item.CreatedAt}
}

func subcategoryView(item store.Subcategory) SubcategoryView {
	return SubcategoryView{ID: item.ID, CategoryID: item.CategoryID, Name: item.Name, Icon: item.Icon, Description: item.Description, CreatedAt: item.CreatedAt}
}

func formStepView(item store.FormStep) FormStepView {
	return FormStepView{ID: item.ID, SubcategoryID: item.SubcategoryID, StepOrder: item.StepOrder, Title: item.Title, Description: item.Description, CreatedAt: item.CreatedAt}
}

func questionView(item store.Question) QuestionView {
	return QuestionView{ID: item.ID, FormStepID: item.FormStepID, QuestionText: item.QuestionText, InputType: item.InputType, AllowOther: item.AllowOther, IsRequired: item.IsRequired, CreatedAt: item.CreatedAt}
}

func optionView(item store.QuestionOption) OptionView {
	return OptionView{ID: item.ID, QuestionID: item.QuestionID, OptionLabel: item.OptionLabel, OptionValue: item.OptionValue, IsOther: item.IsOther, CreatedAt: item.CreatedAt}
}

func responseView(item store.UserResponse) ResponseView {
	return ResponseView{ID: item.ID, SessionID: item.SessionID, FormStepID: item.FormStepID, QuestionID: item.QuestionID, SelectedOptionID: item.SelectedOptionID, ResponseValue: item.ResponseValue, CreatedAt: item.CreatedAt}
}

func contactView(item store.Contact) ContactView {
	return ContactView{ID: item.ID, SessionID: item.SessionID, Name: item.Name, CompanyName: item.CompanyName, WorkEmail: item.WorkEmail, PhoneNumber: item.PhoneNumber, PreferredCommunication: item.PreferredCommunication, CreatedAt: item.CreatedAt}
}

func serviceViews(items []store.Service) []ServiceView {
	views := make([]ServiceView, 0, len(items))
	for _, item := range items {
		views = append(views, serviceView(item))
	}
	return views
}

func categoryViews(items []store.Category) []CategoryView {
	views := make([]CategoryView, 0, len(items))
	for _, item := range items {
		views = append(views, categoryView(item))
	}
	return views
}

func subcategoryViews(items []store.Subcategory) []SubcategoryView {
	views := make([]SubcategoryView, 0, len(items))
	for _, item := range items {
		views = append(views, subcategoryView(item))
	}
	return views
}

func formStepViews(items []store.FormStep) []FormStepView {
	views := make([]FormStepView, 0, len(items))
	for _, item := range items {
		views = append(views, formStepView(item))
	}
	return views
}

func questionViews(items []store.Question) []QuestionView {
	views := make([]QuestionView, 0, len(items))
	for _, item := range items {
		views = append(views, questionView(item))
	}
	return views
}

func optionViews(items []store.QuestionOption) []OptionView {
	views := make([]OptionView, 0, len(items))
	for _, item := range items {
		views = append(views, optionView(item))
	}
	return views
}

func responseViews(items []store.UserResponse) []ResponseView {
	views := make([]ResponseView, 0, len(items))
	for _, item := range items {
		views = append(views, responseView(item))
	}
	return views
}

func stepDetailsView(details store.StepDetails) StepDetailsView {
	view := StepDetailsView{FormStepView: formStepView(details.FormStep)}
	view.Questions = make([]QuestionDetailsView, 0, len(details.Questions))
	for _, q := range details.Questions {
		view.Questions = append(view.Questions, QuestionDetailsView{
			QuestionView: questionView(q.Question),
			Options:      optionViews(q.Options),
		})
	}
	return view
}
