package model

// SubmissionState drives the feedback form affordances.
// Submitted is transient and reverts to Idle after a fixed delay.
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSubmitted
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSubmitted:
		return "submitted"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FeedbackDraft is the user's in-progress feedback: free text plus at
// most one staged attachment.
type FeedbackDraft struct {
	Text       string
	Attachment *Attachment
}

// CreateMessageRequest - 백엔드 피드백 생성 요청 바디
type CreateMessageRequest struct {
	Text string `json:"text"`
	// FileURL carries the attachment's data URI, or null when none is staged.
	FileURL *string `json:"fileUrl"`
}
