package domain

// StudyProfile is the result of onboarding, carried to the study view in the URL.
// Absent fields are empty strings.
type StudyProfile struct {
	College string `json:"college" validate:"max=200"`
	Branch  string `json:"branch" validate:"max=200"`
	Subject string `json:"subject" validate:"max=200"`
}
