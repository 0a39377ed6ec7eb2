package store

import "time"

type Service struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

type Category struct {
	ID        string
	ServiceID string
	Name      string
	Icon      string
	CreatedAt time.Time
}

type Subcategory struct {
	ID          string
	CategoryID  string
	Name        string
	Icon        string
	Description string
	CreatedAt   time.Time
}

type FormStep struct {
	ID            string
	SubcategoryID string
	StepOrder     int
	Title         string
	Description   string
	CreatedAt     time.Time
}

type Question struct {
	ID           string
	FormStepID   string
	QuestionText string
	InputType    string
	AllowOther   bool
	IsRequired   bool
	CreatedAt    time.Time
}

type QuestionOption struct {
	ID          string
	QuestionID  string
	OptionLabel string
	OptionValue string
	IsOther     bool
	CreatedAt   time.Time
}

// QuestionWithOptions is the render payload for one question on a step screen.
type QuestionWithOptions struct {
	Question
	Options []QuestionOption
}

// StepDetails is one form screen: the step plus its questions and their options.
type StepDetails struct {
	FormStep
	Questions []QuestionWithOptions
}

// UserResponse is one answer to one question within one session and step.
// Checkbox questions produce one row per selected option.
type UserResponse struct {
	ID               string
	SessionID        string
	FormStepID       string
	QuestionID       string
	SelectedOptionID *string
	ResponseValue    *string
	CreatedAt        time.Time
}

// ResponseInput is one incoming answer after boundary normalization.
type ResponseInput struct {
	QuestionID       string
	SelectedOptionID *string
	ResponseValue    *string
}

type Contact struct {
	ID                     string
	SessionID              string
	Name                   string
	CompanyName            string
	WorkEmail              string
	PhoneNumber            string
	PreferredCommunication string
	CreatedAt              time.Time
}

// SessionResponseRow is one response row joined to its question, selected
// option, and full catalog lineage, as read by the inquiry summary queries.
type SessionResponseRow struct {
	ResponseID       string
	SessionID        string
	QuestionID       string
	QuestionText     string
	InputType        string
	AllowOther       bool
	IsRequired       bool
	SelectedOptionID *string
	OptionLabel      *string
	OptionValue      *string
	OptionIsOther    *bool
	ResponseValue    *string

	StepID    string
	StepOrder int
	StepTitle string

	SubcategoryID          string
	SubcategoryName        string
	SubcategoryIcon        string
	SubcategoryDescription string

	CategoryID   string
	CategoryName string
	CategoryIcon string

	ServiceID          string
	ServiceName        string
	ServiceDescription string
}
