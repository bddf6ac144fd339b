package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const maxLogBytes = 512

// NewRouter builds the JSON API. CORS is enabled only when allowedOrigins is
// non-empty.
func NewRouter(api *API, allowedOrigins []string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(maxLogBytes))

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/api/v1")
	{
		v1.GET("/stories", api.ListStories)
		v1.GET("/stories/:story_id", api.GetStory)

		users := v1.Group("/users/:user_id")
		users.POST("/stories/:story_id/reads", api.RecordRead)
		users.GET("/stories/:story_id/answers", api.ListAnswers)
		users.POST("/quiz", api.StartQuiz)
		users.GET("/quiz", api.CurrentQuestion)
		users.DELETE("/quiz", api.AbandonQuiz)
		users.POST("/quiz/answers", api.SubmitAnswer)
		users.GET("/progress", api.Progress)
	}

	return r
}
