package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kiran-Tws/scienceSoft-Backend/internal/store"
)

const maxBodyBytes = 1 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}

	switch parts[1] {
	case "services":
		s.handleServices(w, r, parts[2:])
	case "categories":
		s.handleCategories(w, r, parts[2:])
	case "subcategories":
		s.handleSubcategories(w, r, parts[2:])
	case "formsteps":
		s.handleFormSteps(w, r, parts[2:])
	case "questions":
		s.handleQuestions(w, r, parts[2:])
	case "options":
		s.handleOptions(w, r, parts[2:])
	case "sessions":
		s.handleSessions(w, r, parts[2:])
	case "contacts":
		s.handleContacts(w, r, parts[2:])
	case "inquiries":
		s.handleInquiries(w, r, parts[2:])
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		items, err := s.service.ListServices(r.Context())
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Services fetched", map[string]any{"data": items})

	case len(parts) == 0 && r.Method == http.MethodPost:
		var body ServiceInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.service.CreateService(r.Context(), body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Service created", map[string]any{"data": item})

	case len(parts) == 1:
		s.handleServiceByID(w, r, parts[0])

	case len(parts) == 2 && parts[1] == "categories" && r.Method == http.MethodGet:
		items, err := s.service.ListCategories(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Categories fetched", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "categories" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		inputs, err := decodeBatch[CategoryInput](body, "categories")
		if err != nil {
			s.fail(w, err)
			return
		}
		items, err := s.service.CreateCategories(r.Context(), parts[0], inputs)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Categories created", map[string]any{"data": items})

	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleServiceByID(w http.ResponseWriter, r *http.Request, serviceID string) {
	switch r.Method {
	case http.MethodGet:
		item, err := s.service.GetService(r.Context(), serviceID)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Service fetched", map[string]any{"data": item})
	case http.MethodPut:
		var body struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.service.UpdateService(r.Context(), serviceID, body.Name, body.Description)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Service updated", map[string]any{"data": item})
	case http.MethodDelete:
		if err := s.service.DeleteService(r.Context(), serviceID); err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Service deleted", nil)
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleCategories(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			item, err := s.service.GetCategory(r.Context(), parts[0])
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Category fetched", map[string]any{"data": item})
		case http.MethodPut:
			var body struct {
				Name *string `json:"name"`
				Icon *string `json:"icon"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, err.Error())
				return
			}
			item, err := s.service.UpdateCategory(r.Context(), parts[0], body.Name, body.Icon)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Category updated", map[string]any{"data": item})
		case http.MethodDelete:
			if err := s.service.DeleteCategory(r.Context(), parts[0]); err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Category deleted", nil)
		default:
			writeFailure(w, http.StatusNotFound, "Not found")
		}

	case len(parts) == 2 && parts[1] == "subcategories" && r.Method == http.MethodGet:
		items, err := s.service.ListSubcategories(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Subcategories fetched", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "subcategories" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		inputs, err := decodeBatch[SubcategoryInput](body, "subcategories")
		if err != nil {
			s.fail(w, err)
			return
		}
		items, err := s.service.CreateSubcategories(r.Context(), parts[0], inputs)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Subcategories created", map[string]any{"data": items})

	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleSubcategories(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			item, err := s.service.GetSubcategory(r.Context(), parts[0])
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Subcategory fetched", map[string]any{"data": item})
		case http.MethodPut:
			var body struct {
				Name        *string `json:"name"`
				Icon        *string `json:"icon"`
				Description *string `json:"description"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, err.Error())
				return
			}
			item, err := s.service.UpdateSubcategory(r.Context(), parts[0], body.Name, body.Icon, body.Description)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Subcategory updated", map[string]any{"data": item})
		case http.MethodDelete:
			if err := s.service.DeleteSubcategory(r.Context(), parts[0]); err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Subcategory deleted", nil)
		default:
			writeFailure(w, http.StatusNotFound, "Not found")
		}

	case len(parts) == 2 && parts[1] == "formsteps" && r.Method == http.MethodGet:
		items, err := s.service.ListFormSteps(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Form steps fetched", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "formsteps" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		inputs, err := decodeBatch[FormStepInput](body, "formSteps")
		if err != nil {
			s.fail(w, err)
			return
		}
		items, err := s.service.CreateFormSteps(r.Context(), parts[0], inputs)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Form steps created", map[string]any{"data": items})

	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleFormSteps(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			item, err := s.service.GetFormStep(r.Context(), parts[0])
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Form step fetched", map[string]any{"data": item})
		case http.MethodPut:
			// step_order is silently ignored even if supplied
			var body struct {
				Title       *string `json:"title"`
				Description *string `json:"description"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, err.Error())
				return
			}
			item, err := s.service.UpdateFormStep(r.Context(), parts[0], body.Title, body.Description)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Form step updated", map[string]any{"data": item})
		case http.MethodDelete:
			if err := s.service.DeleteFormStep(r.Context(), parts[0]); err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Form step deleted", nil)
		default:
			writeFailure(w, http.StatusNotFound, "Not found")
		}

	case len(parts) == 2 && parts[1] == "details" && r.Method == http.MethodGet:
		details, err := s.service.GetFormStepDetails(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Form step details fetched", map[string]any{"data": details})

	case len(parts) == 2 && parts[1] == "questions" && r.Method == http.MethodGet:
		items, err := s.service.ListQuestions(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Questions fetched", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "questions" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		inputs, err := decodeBatch[QuestionInput](body, "questions")
		if err != nil {
			s.fail(w, err)
			return
		}
		items, err := s.service.CreateQuestions(r.Context(), parts[0], inputs)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Questions created", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "responses" && r.Method == http.MethodPost:
		s.handleSubmitResponses(w, r, parts[0])

	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleSubmitResponses(w http.ResponseWriter, r *http.Request, formStepID string) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	answers, err := ParseAnswerBatch(body)
	if err != nil {
		s.fail(w, err)
		return
	}
	result, err := s.service.SubmitStepResponses(r.Context(), formStepID, r.Header.Get("x-session-id"), answers)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Responses recorded", map[string]any{
		"sessionId": result.SessionID,
		"data":      result.Responses,
	})
}

func (s *HTTPServer) handleQuestions(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			item, err := s.service.GetQuestion(r.Context(), parts[0])
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Question fetched", map[string]any{"data": item})
		case http.MethodPut:
			var body struct {
				QuestionText *string `json:"question_text"`
				InputType    *string `json:"input_type"`
				AllowOther   *bool   `json:"allow_other"`
				IsRequired   *bool   `json:"is_required"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeFailure(w, http.StatusBadRequest, err.Error())
				return
			}
			item, err := s.service.UpdateQuestion(r.Context(), parts[0], body.QuestionText, body.InputType, body.AllowOther, body.IsRequired)
			if err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Question updated", map[string]any{"data": item})
		case http.MethodDelete:
			if err := s.service.DeleteQuestion(r.Context(), parts[0]); err != nil {
				s.fail(w, err)
				return
			}
			writeSuccess(w, http.StatusOK, "Question deleted", nil)
		default:
			writeFailure(w, http.StatusNotFound, "Not found")
		}

	case len(parts) == 2 && parts[1] == "options" && r.Method == http.MethodGet:
		items, err := s.service.ListOptions(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Options fetched", map[string]any{"data": items})

	case len(parts) == 2 && parts[1] == "options" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		inputs, err := decodeBatch[OptionInput](body, "options")
		if err != nil {
			s.fail(w, err)
			return
		}
		items, err := s.service.CreateOptions(r.Context(), parts[0], inputs)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Options created", map[string]any{"data": items})

	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleOptions(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 1 {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		item, err := s.service.GetOption(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Option fetched", map[string]any{"data": item})
	case http.MethodPut:
		var body struct {
			OptionLabel *string `json:"option_label"`
			OptionValue *string `json:"option_value"`
			IsOther     *bool   `json:"is_other"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.service.UpdateOption(r.Context(), parts[0], body.OptionLabel, body.OptionValue, body.IsOther)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Option updated", map[string]any{"data": item})
	case http.MethodDelete:
		if err := s.service.DeleteOption(r.Context(), parts[0]); err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Option deleted", nil)
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 2 || parts[1] != "contact" {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}
	sessionID := parts[0]
	switch r.Method {
	case http.MethodPost:
		var body ContactInput
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.service.CreateContact(r.Context(), sessionID, body)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Contact created", map[string]any{"data": item})
	case http.MethodGet:
		item, err := s.service.GetSessionContact(r.Context(), sessionID)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Contact fetched", map[string]any{"data": item})
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleContacts(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 1 {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		item, err := s.service.GetContact(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Contact fetched", map[string]any{"data": item})
	case http.MethodPut:
		var body struct {
			Name                   *string `json:"name"`
			CompanyName            *string `json:"company_name"`
			WorkEmail              *string `json:"work_email"`
			PhoneNumber            *string `json:"phone_number"`
			PreferredCommunication *string `json:"preferred_communication"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.service.UpdateContact(r.Context(), parts[0], body.Name, body.CompanyName, body.WorkEmail, body.PhoneNumber, body.PreferredCommunication)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Contact updated", map[string]any{"data": item})
	case http.MethodDelete:
		if err := s.service.DeleteContact(r.Context(), parts[0]); err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Contact deleted", nil)
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleInquiries(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}
	switch len(parts) {
	case 0:
		items, err := s.service.AllInquiries(r.Context())
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Inquiries fetched", map[string]any{"data": items})
	case 1:
		if parts[0] == "search" {
			s.handleInquirySearch(w, r)
			return
		}
		summary, err := s.service.SessionSummary(r.Context(), parts[0])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Inquiry fetched", map[string]any{"data": summary})
	default:
		writeFailure(w, http.StatusNotFound, "Not found")
	}
}

func (s *HTTPServer) handleInquirySearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	filterType := strings.TrimSpace(r.URL.Query().Get("type"))
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		offset = parsed
	}

	payload, err := s.service.SearchInquiries(r.Context(), q, filterType, limit, offset)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Search results fetched", map[string]any{"data": payload})
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, x-session-id")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess emits the {success:true, message, ...} envelope. Extra fields
// (data, sessionId) merge in at the top level.
func writeSuccess(w http.ResponseWriter, status int, message string, fields map[string]any) {
	response := map[string]any{
		"success": true,
		"message": message,
	}
	for key, value := range fields {
		response[key] = value
	}
	writeJSON(w, status, response)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func (s *HTTPServer) fail(w http.ResponseWriter, err error) {
	status, message := mapError(err)
	writeFailure(w, status, message)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// mapError translates any error to an HTTP status and the message carried in
// the failure envelope. Unique-constraint races surface as 400s so a
// concurrent duplicate insert reads like any other conflict.
func mapError(err error) (status int, message string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Message
	}
	var dupErr *store.DuplicateNameError
	if errors.As(err, &dupErr) {
		return http.StatusBadRequest, dupErr.Error()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return http.StatusBadRequest, "Duplicate value violates a uniqueness constraint"
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}
