package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range domain.Modes {
		got, err := domain.ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := domain.ParseMode("quiz")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestMode_WelcomeMessage(t *testing.T) {
	assert.Contains(t, domain.ModeStudy.WelcomeMessage("Physics"), "Let's start studying Physics!")
	assert.Equal(t,
		"Upload your textbook or study material, and I'll explain it concept by concept like a personal tutor.",
		domain.ModeUploadBook.WelcomeMessage("Physics"),
	)
	assert.Equal(t, "Welcome! How can I help you study today?", domain.ModeChat.WelcomeMessage("Physics"))
}

func TestMode_Affordances(t *testing.T) {
	tests := []struct {
		mode    domain.Mode
		uploads bool
		label   string
	}{
		{domain.ModeChat, false, ""},
		{domain.ModeStudy, false, "Study Mode"},
		{domain.ModeUploadBook, true, "Upload Textbook"},
		{domain.ModeUploadSlides, true, "Upload Slides"},
		{domain.ModeExamAnalysis, true, "Exam Analysis"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.uploads, tt.mode.AcceptsUploads())
			assert.Equal(t, tt.label, tt.mode.Label())
		})
	}

	assert.Equal(t, "Ask questions about the uploaded file...", domain.ModeExamAnalysis.InputPlaceholder())
	assert.Equal(t, "Ask me anything about this subject...", domain.ModeStudy.InputPlaceholder())
}

func TestParseStudyItemKind(t *testing.T) {
	tests := map[string]domain.StudyItemKind{
		"note":         domain.KindNote,
		"notes":        domain.KindNote,
		"bookmarks":    domain.KindBookmark,
		"saved-point":  domain.KindSavedPoint,
		"saved-points": domain.KindSavedPoint,
	}
	for in, want := range tests {
		got, err := domain.ParseStudyItemKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := domain.ParseStudyItemKind("flashcard")
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestStudyItemKind_Titles(t *testing.T) {
	assert.Equal(t, "Untitled Note", domain.KindNote.DefaultTitle())
	assert.Equal(t, "Untitled Bookmark", domain.KindBookmark.DefaultTitle())
	assert.Equal(t, "Untitled Point", domain.KindSavedPoint.DefaultTitle())
	assert.Equal(t, "Key Point from Chemistry", domain.KindSavedPoint.TitleFor("Chemistry"))
}

func TestStudyData_NormalizeSerializesEmptyArrays(t *testing.T) {
	data, err := json.Marshal(domain.StudyData{}.Normalize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":[],"bookmarks":[],"savedPoints":[]}`, string(data))
}

func TestStudyItem_KindSerializedAsType(t *testing.T) {
	item := domain.StudyItem{ID: "1", Title: "t", Kind: domain.KindBookmark, Content: "c", CreatedAt: time.Unix(0, 0).UTC()}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"bookmark"`)
	assert.Contains(t, string(data), `"createdAt":"1970-01-01T00:00:00Z"`)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := domain.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewUploadedFile(t *testing.T) {
	now := time.Now()

	f, err := domain.NewUploadedFile("Lecture 3.PPTX", 2048, 0, now)
	require.NoError(t, err)
	assert.Equal(t, domain.FilePPTX, f.Kind)
	assert.Equal(t, int64(2048), f.SizeBytes)
	assert.Equal(t, "2.0 KiB", f.HumanSize())

	_, err = domain.NewUploadedFile("notes.docx", 10, 0, now)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = domain.NewUploadedFile("README", 10, 0, now)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = domain.NewUploadedFile("book.pdf", domain.MaxUploadBytes+1, 0, now)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	_, err = domain.NewUploadedFile("book.pdf", 11, 10, now)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}
