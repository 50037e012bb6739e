package model

// AttachmentKind - 지원하는 첨부 종류 (image | video)
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentVideo AttachmentKind = "video"
)

const (
	MaxImageSize = 5 * 1024 * 1024  // 5MB
	MaxVideoSize = 20 * 1024 * 1024 // 20MB
)

// Attachment is the single optional media file staged for a feedback
// submission. DataURI is the transport representation sent to the backend
// (base64 data URI); Data keeps the raw bytes for size/name display.
type Attachment struct {
	Name        string
	ContentType string
	Kind        AttachmentKind
	Size        int64
	Data        []byte
	DataURI     string
}
