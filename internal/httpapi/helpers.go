package httpapi

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tale-bot/internal/catalog"
	"tale-bot/internal/progress"
	"tale-bot/internal/quiz"
)

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrStoryNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "story not found"})
	case errors.Is(err, progress.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "user_id must be a positive integer"})
	case errors.Is(err, quiz.ErrNoStore):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "progress store unavailable"})
	default:
		log.Printf("http: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func parsePositiveParam(c *gin.Context, key string) (int64, error) {
	value := strings.TrimSpace(c.Param(key))
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

// pathIDs parses the user and, when the route has one, story path parameters.
// It writes the 400 response itself and reports false on failure.
func pathIDs(c *gin.Context, withStory bool) (userID int64, storyID int, ok bool) {
	userID, err := parsePositiveParam(c, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return 0, 0, false
	}
	if !withStory {
		return userID, 0, true
	}
	id, err := parsePositiveParam(c, "story_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return 0, 0, false
	}
	return userID, int(id), true
}

func (a *API) storySummary(story catalog.Story) storySummaryResponse {
	_, hasAudio := a.content.AudioPath(story.ID)
	return storySummaryResponse{
		StoryID:     story.ID,
		Title:       story.Title(catalog.LangRussian),
		TitleKhanty: story.Title(catalog.LangKhanty),
		HasQuiz:     a.content.HasQuiz(story.ID),
		HasAudio:    hasAudio,
		HasGrammar:  story.HasGrammar(),
		HasLexicon:  story.HasLexicon(),
	}
}

// statusRecorder keeps the first maxLogBytes of the response body so failed
// requests can be logged with their error payload.
type statusRecorder struct {
	gin.ResponseWriter
	statusCode   int
	maxLogBytes  int
	bytesWritten int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += n

	remaining := r.maxLogBytes - r.logBody.Len()
	switch {
	case remaining <= 0:
		r.truncated = r.truncated || len(p) > 0
	case len(p) > remaining:
		r.logBody.Write(p[:remaining])
		r.truncated = true
	default:
		r.logBody.Write(p)
	}
	return n, err
}

func requestLogger(maxLogBytes int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: c.Writer,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLogBytes,
		}
		c.Writer = recorder

		c.Next()

		status := recorder.Status()
		elapsed := time.Since(start)
		if status < http.StatusBadRequest {
			log.Printf("http: %s %s %d %dB %s", c.Request.Method, c.Request.URL.Path, status, recorder.bytesWritten, elapsed)
			return
		}
		suffix := ""
		if recorder.truncated {
			suffix = "..."
		}
		log.Printf("http: %s %s %d %dB %s body=%q%s", c.Request.Method, c.Request.URL.Path, status,
			recorder.bytesWritten, elapsed, recorder.logBody.String(), suffix)
	}
}
