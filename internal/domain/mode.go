package domain

import (
	"errors"
	"fmt"
)

// Mode is the presentation mode of a study session
type Mode string

const (
	ModeChat         Mode = "chat"
	ModeStudy        Mode = "study"
	ModeUploadBook   Mode = "upload-book"
	ModeUploadSlides Mode = "upload-slides"
	ModeExamAnalysis Mode = "exam-analysis"
)

// ErrInvalidMode is returned for an unknown mode
var ErrInvalidMode = errors.New("invalid mode")

// Modes lists every mode, chat first
var Modes = []Mode{ModeChat, ModeStudy, ModeUploadBook, ModeUploadSlides, ModeExamAnalysis}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// SessionGreeting is the first message of a new study session
func SessionGreeting(subject string) string {
	return fmt.Sprintf("Welcome to your %s study session! I'm your AI tutor. Choose an option below to get started.", subject)
}

// WelcomeMessage is the message a session is reset to when entering the mode
func (m Mode) WelcomeMessage(subject string) string {
	switch m {
	case ModeStudy:
		return fmt.Sprintf("Let's start studying %s! Ask me any questions about concepts, formulas, or topics you'd like to understand better.", subject)
	case ModeUploadBook:
		return "Upload your textbook or study material, and I'll explain it concept by concept like a personal tutor."
	case ModeUploadSlides:
		return "Upload your class slides, and I'll provide detailed explanations with examples for each slide."
	case ModeExamAnalysis:
		return "Upload previous year question papers, and I'll analyze them to predict likely exam questions and important topics."
	default:
		return "Welcome! How can I help you study today?"
	}
}

// Label is the header shown while the mode is active. Chat has none.
func (m Mode) Label() string {
	switch m {
	case ModeStudy:
		return "Study Mode"
	case ModeUploadBook:
		return "Upload Textbook"
	case ModeUploadSlides:
		return "Upload Slides"
	case ModeExamAnalysis:
		return "Exam Analysis"
	}
	return ""
}

// AcceptsUploads reports whether files can be dropped in this mode
func (m Mode) AcceptsUploads() bool {
	return m == ModeUploadBook || m == ModeUploadSlides || m == ModeExamAnalysis
}

// InputPlaceholder is the hint shown in the message input
func (m Mode) InputPlaceholder() string {
	if m.AcceptsUploads() {
		return "Ask questions about the uploaded file..."
	}
	return "Ask me anything about this subject..."
}
