package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greetings-portal/web/internal/service"
	"github.com/greetings-portal/web/internal/session"
)

type FeedbackHandler struct {
	sessions *session.Service
	feedback *service.FeedbackService
}

func NewFeedbackHandler(sessions *session.Service, feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{sessions: sessions, feedback: feedback}
}

// Submit sends the feedback draft to the backend. Empty or in-flight
// drafts are a silent no-op — the token is only acquired once the
// preconditions hold; failure keeps the draft for a retry.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	st := GetSession(c)
	st.SetDraftText(c.PostForm("text"))

	token := func() (string, error) {
		return h.sessions.Token(c.Request.Context(), st)
	}

	if err := h.feedback.Submit(st, token); err != nil {
		if !errors.Is(err, session.ErrEmptyFeedback) && !errors.Is(err, session.ErrSubmissionInFlight) {
			log.Printf("feedback submit failed: %v", err)
			st.AddNotice("error", "Failed to submit feedback!")
		}
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	st.AddNotice("success", "Feedback submitted successfully!")
	c.Redirect(http.StatusFound, "/dashboard")
}

// StageAttachment validates the selected file and stages it for the next
// submission. A rejected file changes nothing.
func (h *FeedbackHandler) StageAttachment(c *gin.Context) {
	st := GetSession(c)

	file, err := c.FormFile("file")
	if err != nil {
		st.AddNotice("error", "No file selected")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if _, err := service.ValidateAttachment(contentType, file.Size); err != nil {
		st.AddNotice("error", err.Error())
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("failed to open uploaded file: %v", err)
		st.AddNotice("error", "Failed to read file")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Printf("failed to read uploaded file: %v", err)
		st.AddNotice("error", "Failed to read file")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	attachment, err := service.NewAttachment(file.Filename, contentType, data)
	if err != nil {
		st.AddNotice("error", err.Error())
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	if err := st.StageAttachment(attachment); err != nil {
		st.AddNotice("error", "Remove the current attachment first")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}

// RemoveAttachment clears the staged attachment wholesale.
func (h *FeedbackHandler) RemoveAttachment(c *gin.Context) {
	GetSession(c).RemoveAttachment()
	c.Redirect(http.StatusFound, "/dashboard")
}
