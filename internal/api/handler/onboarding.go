package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/studymate/internal/api/response"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/onboarding"
)

// OnboardingOptions returns the preset college, branch and subject lists
func OnboardingOptions(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string][]string{
		"colleges": onboarding.Colleges,
		"branches": onboarding.Branches,
		"subjects": onboarding.Subjects,
	})
}

// completeOnboardingRequest mirrors the wizard: continuing needs a subject
type completeOnboardingRequest struct {
	College string `json:"college" validate:"max=200"`
	Branch  string `json:"branch" validate:"max=200"`
	Subject string `json:"subject" validate:"required,max=200"`
}

// CompleteOnboarding validates a profile and returns the study link for it
func CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req completeOnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	profile := domain.StudyProfile{College: req.College, Branch: req.Branch, Subject: req.Subject}

	response.OK(w, map[string]any{
		"profile": profile,
		"url":     onboarding.StudyURL(profile),
	})
}
