package service

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/greetings-portal/web/internal/model"
)

var (
	ErrAttachmentType = errors.New("only image or video files are allowed")
	ErrImageTooLarge  = errors.New("image size must be less than 5MB")
	ErrVideoTooLarge  = errors.New("video size must be less than 20MB")
)

// ValidateAttachment derives the media kind from the declared content type
// and enforces the kind-specific size ceiling. Rejection leaves no state
// behind; the caller surfaces the error and nothing else changes.
func ValidateAttachment(contentType string, size int64) (model.AttachmentKind, error) {
	isImage := strings.HasPrefix(contentType, "image/")
	isVideo := strings.HasPrefix(contentType, "video/")

	if !isImage && !isVideo {
		return "", ErrAttachmentType
	}
	if isImage && size > model.MaxImageSize {
		return "", ErrImageTooLarge
	}
	if isVideo && size > model.MaxVideoSize {
		return "", ErrVideoTooLarge
	}

	if isImage {
		return model.AttachmentImage, nil
	}
	return model.AttachmentVideo, nil
}

// NewAttachment validates the selected file and produces the staged
// attachment, including the text-safe representation sent to the backend.
func NewAttachment(name, contentType string, data []byte) (*model.Attachment, error) {
	kind, err := ValidateAttachment(contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &model.Attachment{
		Name:        name,
		ContentType: contentType,
		Kind:        kind,
		Size:        int64(len(data)),
		Data:        data,
		DataURI:     EncodeDataURI(contentType, data),
	}, nil
}

// EncodeDataURI renders the payload the way a browser FileReader does:
// data:<content-type>;base64,<payload>.
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
