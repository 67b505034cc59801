package service

import "errors"

var (
	ErrEmptyInput          = errors.New("message is blank")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUploadNotAllowed    = errors.New("uploads are not accepted in this mode")
	ErrFileAlreadyUploaded = errors.New("a file was already uploaded in this mode")
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotAssistantMessage = errors.New("only assistant messages can be saved")
	ErrReplyDiscarded      = errors.New("reply discarded after session reset")
)
