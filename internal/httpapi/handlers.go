package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tale-bot/internal/catalog"
	"tale-bot/internal/quiz"
)

func (a *API) ListStories(c *gin.Context) {
	stories := a.content.Stories()
	response := storiesResponse{
		StoryCount: len(stories),
		Stories:    make([]storySummaryResponse, 0, len(stories)),
	}
	for _, story := range stories {
		response.Stories = append(response.Stories, a.storySummary(story))
	}
	c.JSON(http.StatusOK, response)
}

func (a *API) GetStory(c *gin.Context) {
	id, err := parsePositiveParam(c, "story_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	story, ok := a.content.Story(int(id))
	if !ok {
		writeServiceError(c, catalog.ErrStoryNotFound)
		return
	}
	c.JSON(http.StatusOK, storyResponse{
		storySummaryResponse: a.storySummary(story),
		Text:                 story.Text(catalog.LangRussian),
		TextKhanty:           story.Text(catalog.LangKhanty),
		Grammar:              story.Grammar,
		Words:                story.Words,
	})
}

func (a *API) RecordRead(c *gin.Context) {
	userID, storyID, ok := pathIDs(c, true)
	if !ok {
		return
	}
	read, err := a.engine.RecordStoryRead(c.Request.Context(), userID, storyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, readResponse{StoryID: storyID, ReadResult: read})
}

func (a *API) StartQuiz(c *gin.Context) {
	userID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	var request startQuizRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "story_id is required"})
		return
	}

	result, err := a.engine.StartQuiz(c.Request.Context(), userID, *request.StoryID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Status == quiz.StatusNoQuiz {
		status = http.StatusNotFound
	}
	c.JSON(status, result)
}

func (a *API) CurrentQuestion(c *gin.Context) {
	userID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	prompt, active := a.engine.Current(userID)
	if !active {
		c.JSON(http.StatusNotFound, currentQuestionResponse{Status: quiz.StatusNoSession})
		return
	}
	c.JSON(http.StatusOK, currentQuestionResponse{Status: quiz.StateAwaitingAnswer.String(), Prompt: prompt})
}

func (a *API) AbandonQuiz(c *gin.Context) {
	userID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, abandonResponse{Abandoned: a.engine.Abandon(userID)})
}

// answerStatusCodes maps the non-success outcomes of a submission. Every
// outcome carries the full result body.
var answerStatusCodes = map[string]int{
	quiz.StatusNoSession:     http.StatusNotFound,
	quiz.StatusStaleAnswer:   http.StatusConflict,
	quiz.StatusInvalidChoice: http.StatusBadRequest,
}

func (a *API) SubmitAnswer(c *gin.Context) {
	userID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	var request answerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question_id and choice_index are required"})
		return
	}

	result, err := a.engine.SubmitAnswer(c.Request.Context(), userID, *request.QuestionID, *request.ChoiceIndex)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status, mapped := answerStatusCodes[result.Status]
	if !mapped {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (a *API) Progress(c *gin.Context) {
	userID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	summary, err := a.engine.ProgressSummary(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *API) ListAnswers(c *gin.Context) {
	userID, storyID, ok := pathIDs(c, true)
	if !ok {
		return
	}
	if a.answers == nil {
		writeServiceError(c, quiz.ErrNoStore)
		return
	}
	if _, known := a.content.Story(storyID); !known {
		writeServiceError(c, catalog.ErrStoryNotFound)
		return
	}

	events, err := a.answers.Answers(c.Request.Context(), userID, storyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response := answersResponse{
		StoryID: storyID,
		Answers: make([]answerEventResponse, 0, len(events)),
	}
	for _, event := range events {
		response.Answers = append(response.Answers, answerEventResponse{
			QuestionID: event.QuestionID,
			AttemptID:  event.AttemptID,
			Correct:    event.Correct,
			AnsweredAt: event.AnsweredAt,
		})
	}
	c.JSON(http.StatusOK, response)
}
