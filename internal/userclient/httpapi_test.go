package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tale-bot/internal/quiz"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", 1, &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/healthz", nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "story_id must be a positive integer"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 1, server.Client())
	err := client.doJSON(context.Background(), http.MethodGet, "/anything", nil, nil)
	if err == nil {
		t.Fatalf("expected API error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", apiErr.StatusCode, http.StatusBadRequest)
	}
	if apiErr.Message != "story_id must be a positive integer" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestSubmitAnswerDecodesConflictBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/42/quiz/answers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body answerRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.QuestionID != 7 || body.ChoiceIndex != 0 {
			t.Errorf("body = %+v, err = %v", body, err)
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(quiz.AnswerResult{Status: quiz.StatusStaleAnswer, QuestionID: 7})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", 42, server.Client())
	result, err := client.SubmitAnswer(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if result.Status != quiz.StatusStaleAnswer {
		t.Fatalf("status = %q, want %q", result.Status, quiz.StatusStaleAnswer)
	}
}
