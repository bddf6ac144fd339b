package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

var ErrServiceUnavailable = errors.New("tale service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the tale-service JSON API on behalf of one user.
type HTTPClient struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
}

type storyItem struct {
	StoryID     int    `json:"story_id"`
	Title       string `json:"title"`
	TitleKhanty string `json:"title_khanty"`
	HasQuiz     bool   `json:"has_quiz"`
	HasAudio    bool   `json:"has_audio"`
}

type storiesResponse struct {
	StoryCount int         `json:"story_count"`
	Stories    []storyItem `json:"stories"`
}

type storyTextResponse struct {
	storyItem
	Text       string `json:"text"`
	TextKhanty string `json:"text_khanty"`
}

type startQuizRequest struct {
	StoryID int `json:"story_id"`
}

type answerRequest struct {
	QuestionID  int `json:"question_id"`
	ChoiceIndex int `json:"choice_index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, userID int64, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) userPath(suffix string) string {
	return "/api/v1/users/" + strconv.FormatInt(c.userID, 10) + suffix
}

func (c *HTTPClient) ListStories(ctx context.Context) ([]storyItem, error) {
	var payload storiesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/stories", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Stories, nil
}

func (c *HTTPClient) GetStory(ctx context.Context, storyID int) (storyTextResponse, error) {
	var payload storyTextResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/stories/"+strconv.Itoa(storyID), nil, &payload)
	return payload, err
}

func (c *HTTPClient) RecordRead(ctx context.Context, storyID int) (progress.ReadResult, error) {
	var payload progress.ReadResult
	err := c.doJSON(ctx, http.MethodPost, c.userPath("/stories/"+strconv.Itoa(storyID)+"/reads"), nil, &payload)
	return payload, err
}

// StartQuiz returns a no_quiz result rather than an error when the story has
// no quiz.
func (c *HTTPClient) StartQuiz(ctx context.Context, storyID int) (quiz.StartResult, error) {
	var payload quiz.StartResult
	err := c.doJSON(ctx, http.MethodPost, c.userPath("/quiz"), startQuizRequest{StoryID: storyID}, &payload, http.StatusNotFound)
	return payload, err
}

// SubmitAnswer decodes every quiz outcome, including the ones the service
// reports with a 4xx status.
func (c *HTTPClient) SubmitAnswer(ctx context.Context, questionID, choiceIndex int) (quiz.AnswerResult, error) {
	var payload quiz.AnswerResult
	err := c.doJSON(ctx, http.MethodPost, c.userPath("/quiz/answers"),
		answerRequest{QuestionID: questionID, ChoiceIndex: choiceIndex}, &payload,
		http.StatusNotFound, http.StatusConflict, http.StatusBadRequest)
	if err == nil && payload.Status == "" {
		return payload, errors.New("answer response carried no status")
	}
	return payload, err
}

func (c *HTTPClient) Abandon(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, c.userPath("/quiz"), nil, nil)
}

func (c *HTTPClient) Progress(ctx context.Context) (progress.Summary, error) {
	var payload progress.Summary
	err := c.doJSON(ctx, http.MethodGet, c.userPath("/progress"), nil, &payload)
	return payload, err
}

// doJSON performs one request. Non-2xx statuses become *APIError unless they
// are listed in decodeStatuses, in which case the body is decoded as usual.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any, decodeStatuses ...int) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	success := response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices
	if !success && !containsStatus(decodeStatuses, response.StatusCode) {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func containsStatus(statuses []int, code int) bool {
	for _, status := range statuses {
		if status == code {
			return true
		}
	}
	return false
}
