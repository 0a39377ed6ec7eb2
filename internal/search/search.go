package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultContact ResultType = "contact"
	ResultAnswer  ResultType = "answer"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type      ResultType `json:"type"`
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ContactRecord is the data we index for an inquiry contact.
type ContactRecord struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
	WorkEmail   string `json:"workEmail"`
}

// AnswerRecord is the data we index for one free-text answer.
type AnswerRecord struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	QuestionText string `json:"questionText"`
	Value        string `json:"value"`
}
