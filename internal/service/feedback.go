package service

import (
	"time"

	"github.com/greetings-portal/web/internal/model"
	"github.com/greetings-portal/web/internal/session"
)

// FeedbackAPI is the slice of the backend client the submission flow
// needs.
type FeedbackAPI interface {
	CreateMessage(token string, msg model.CreateMessageRequest, onUnauthorized func()) error
}

// submittedHold is how long the Submitted state is displayed before the
// form reverts to Idle and the draft is cleared.
const submittedHold = 3 * time.Second

// FeedbackService drives the submission state machine:
// Idle → Submitting → Submitted → Idle on success, with the revert (and
// the text/attachment clear) after the fixed display delay; failure moves
// to Failed immediately, preserving the draft so it can be resubmitted.
type FeedbackService struct {
	api  FeedbackAPI
	hold time.Duration
}

func NewFeedbackService(api FeedbackAPI) *FeedbackService {
	return &FeedbackService{api: api, hold: submittedHold}
}

// Submit sends the current draft as an immutable snapshot.
//
// Preconditions (checked atomically against the session): trimmed text is
// non-empty and no submission is in flight or on display. When they fail,
// no request is issued, the session is untouched, and the token callback
// is never invoked — a blank submit must not trigger a silent refresh.
func (s *FeedbackService) Submit(st *session.State, token func() (string, error)) error {
	draft, err := st.TryBeginSubmit()
	if err != nil {
		return err
	}

	accessToken, err := token()
	if err != nil {
		st.CompleteSubmit(false)
		return err
	}

	msg := model.CreateMessageRequest{Text: draft.Text}
	if draft.Attachment != nil {
		uri := draft.Attachment.DataURI
		msg.FileURL = &uri
	}

	if err := s.api.CreateMessage(accessToken, msg, st.SetForceLogin); err != nil {
		st.CompleteSubmit(false)
		return err
	}

	st.CompleteSubmit(true)
	time.AfterFunc(s.hold, st.ClearAfterSubmit)
	return nil
}
