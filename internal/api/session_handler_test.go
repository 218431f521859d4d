package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/config"
	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/mocks"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/service/mastery"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
)

// newSessionTestServer wires a SessionHandler over in-memory stores and a
// stub generator, mounted on the same routes the real router uses.
func newSessionTestServer(t *testing.T) (*chi.Mux, uuid.UUID) {
	t.Helper()

	generator := &mocks.MockGenerator{
		Questions: []domain.QuizQuestion{
			{Question: "What is 2+2?", Options: []string{"4", "5"}, CorrectIndex: 0, Concept: "addition"},
			{Question: "What is 3-1?", Options: []string{"1", "2"}, CorrectIndex: 1, Concept: "subtraction"},
		},
	}

	energySvc := energy.NewService(mocks.NewInMemoryEnergyStore(), nil, 100)
	progressionSvc := progression.NewService(mocks.NewInMemoryProgressionStore(), nil)
	masterySvc := mastery.NewService(
		mocks.NewInMemorySessionStore(),
		mocks.NewInMemoryConceptStore(),
		generator,
		energySvc,
		progressionSvc,
		nil,
		config.EngineConfig{
			DailyEnergyAllotment: 100,
			GenerationCost:       5,
			EvaluationCost:       2,
			CompletionXP:         500,
		},
	)

	handler := NewSessionHandler(masterySvc, slog.Default())
	userID := uuid.New()

	r := chi.NewRouter()
	// Stand-in for the identity middleware: every request carries the same
	// authenticated user.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/sessions", handler.StartSession)
	r.Get("/sessions/{id}", handler.GetSession)
	r.Delete("/sessions/{id}", handler.AbandonSession)
	r.Post("/sessions/{id}/diagnostic", handler.SubmitDiagnostic)

	return r, userID
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartSessionEndpoint(t *testing.T) {
	r, _ := newSessionTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", StartSessionRequest{
		CourseRef:  "arithmetic-101",
		CourseText: "Adding and subtracting small numbers.",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "diagnostic", resp.Stage)
	assert.Equal(t, "arithmetic-101", resp.CourseRef)
	require.NotNil(t, resp.Payload)
	assert.Len(t, resp.Payload.Questions, 2)

	// The response must not leak answer keys or concept tags.
	raw := w.Body.String()
	assert.NotContains(t, raw, "correct_index")
	assert.NotContains(t, raw, "concept")
}

func TestStartSessionEndpointValidation(t *testing.T) {
	r, _ := newSessionTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", StartSessionRequest{CourseRef: "arithmetic-101"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CourseText")

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitDiagnosticEndpoint(t *testing.T) {
	r, _ := newSessionTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", StartSessionRequest{
		CourseRef:  "arithmetic-101",
		CourseText: "Adding and subtracting small numbers.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodPost, "/sessions/"+created.ID+"/diagnostic",
		SubmitAnswersRequest{Answers: []int{0, 1}})
	require.Equal(t, http.StatusOK, w.Code)

	var outcome OutcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	require.NotNil(t, outcome.Quiz)
	assert.Equal(t, 2, outcome.Quiz.CorrectCount)
	assert.Equal(t, "final_quiz", outcome.Session.Stage)

	// Submitting against the wrong stage is a conflict.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+created.ID+"/diagnostic",
		SubmitAnswersRequest{Answers: []int{0, 1}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSessionEndpointNotFound(t *testing.T) {
	r, _ := newSessionTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAbandonSessionEndpoint(t *testing.T) {
	r, _ := newSessionTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", StartSessionRequest{
		CourseRef:  "arithmetic-101",
		CourseText: "Adding and subtracting small numbers.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// A second abandon conflicts with the terminal stage.
	w = doJSON(t, r, http.MethodDelete, "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
