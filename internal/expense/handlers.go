package expense

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brokemate/brokemate/internal/advisor"
	"github.com/brokemate/brokemate/internal/parsing"
)

// 50MB covers high-resolution phone photos
const maxUploadSize = int64(50 << 20)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth answers the health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Brokemate API is running!",
	})
}

// handleRegister creates a new user account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.service.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleToken logs a user in and returns a bearer token. The request is
// form-encoded to match OAuth2 password-flow clients.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	user, err := s.service.Authenticate(r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		slog.Error("Error issuing token", "user", user.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// handleListExpenses returns the user's expenses, newest first
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses(currentUser(r))
	if err != nil {
		slog.Error("Error listing expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// handleAddExpense records a new expense
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := s.service.AddExpense(currentUser(r), req.Amount, req.Category, req.Description, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

// handleEditExpense updates an existing expense
func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := s.service.EditExpense(currentUser(r), chi.URLParam(r, "id"), req.Amount, req.Category, req.Description, req.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

// handleFlagExpense marks an expense red or green
func (s *Server) handleFlagExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Flag Flag   `json:"flag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := s.service.FlagExpense(currentUser(r), req.ID, req.Flag)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

// handleDeleteExpense removes an expense
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(currentUser(r), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		slog.Error("Error deleting expense", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleProcessReceipt accepts a multipart receipt upload, runs it through
// the extraction pipeline, and stores the resulting expenses. Both pipeline
// failures come back as one 400 response, but they are logged distinctly
// for diagnostics.
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		if err.Error() == "http: request body too large" {
			message = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, http.StatusBadRequest, message)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	description := r.FormValue("description")
	if description == "" {
		description = "Receipt items"
	}

	expenses, err := s.service.ProcessReceipt(r.Context(), currentUser(r), data, header.Header.Get("Content-Type"), description)
	if err != nil {
		switch {
		case errors.Is(err, parsing.ErrUnreadableInput):
			slog.Warn("Receipt text unreadable", "filename", header.Filename, "error", err)
		case errors.Is(err, parsing.ErrNoItems):
			slog.Warn("No items extracted from receipt", "filename", header.Filename, "error", err)
		default:
			slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Receipt processed successfully",
		"expenses_added": len(expenses),
		"expenses":       expenses,
	})
}

// advisorExpenses converts stored expenses into the advisor's view,
// preserving newest-first order
func (s *Server) advisorExpenses(username string) ([]advisor.Expense, error) {
	expenses, err := s.service.ListExpenses(username)
	if err != nil {
		return nil, err
	}
	converted := make([]advisor.Expense, 0, len(expenses))
	for _, e := range expenses {
		converted = append(converted, advisor.Expense{
			Amount:      e.Amount,
			Category:    e.Category,
			Description: e.Description,
			Date:        e.Date,
			Flag:        string(e.Flag),
		})
	}
	return converted, nil
}

// handleAnalyze produces a spending analysis for the current user
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.advisorExpenses(currentUser(r))
	if err != nil {
		slog.Error("Error loading expenses for analysis", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	analysis, err := s.advisor.Analyze(r.Context(), expenses)
	if err != nil {
		slog.Error("Error generating analysis", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

// handleChat answers a free-text question about the user's spending
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expenses, err := s.advisorExpenses(currentUser(r))
	if err != nil {
		slog.Error("Error loading expenses for chat", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response, err := s.advisor.Chat(r.Context(), req.Query, expenses)
	if err != nil {
		slog.Error("Error generating chat response", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}
