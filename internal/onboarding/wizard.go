// Package onboarding walks a student through choosing college, branch and subject.
package onboarding

import (
	"errors"
	"net/url"
	"strings"

	"github.com/Rrens/studymate/internal/domain"
)

// Step is a wizard page
type Step string

const (
	StepCollege Step = "college"
	StepBranch  Step = "branch"
	StepSubject Step = "subject"
)

// AddOption is the select value that opens custom entry
const AddOption = "add"

var (
	ErrBlankName      = errors.New("name must not be blank")
	ErrNoSubject      = errors.New("choose a subject to continue")
	ErrNotAddingEntry = errors.New("custom entry is not open")
)

var Colleges = []string{
	"IIT Delhi",
	"IIT Bombay",
	"IIT Madras",
	"Delhi University",
	"Mumbai University",
	"Bangalore University",
}

var Branches = []string{
	"Computer Science",
	"Mechanical Engineering",
	"Electrical Engineering",
	"Civil Engineering",
	"Electronics",
	"Chemical Engineering",
}

var Subjects = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Data Structures",
	"Algorithms",
	"Database Management",
	"Web Development",
	"Machine Learning",
}

// Options returns the preset list shown on step
func Options(step Step) []string {
	switch step {
	case StepBranch:
		return Branches
	case StepSubject:
		return Subjects
	default:
		return Colleges
	}
}

// Wizard is the onboarding state machine. It is not safe for concurrent use.
type Wizard struct {
	step    Step
	adding  bool
	profile domain.StudyProfile
}

func NewWizard() *Wizard {
	return &Wizard{step: StepCollege}
}

func (w *Wizard) Step() Step {
	return w.step
}

// Adding reports whether custom entry is open on the current step
func (w *Wizard) Adding() bool {
	return w.adding
}

func (w *Wizard) Profile() domain.StudyProfile {
	return w.profile
}

// Select picks value on the current step. AddOption opens custom entry instead.
// College and branch advance the wizard; subject stays put until Continue.
func (w *Wizard) Select(value string) {
	if value == AddOption {
		w.adding = true
		return
	}
	w.set(value)
}

// AddCustom picks a name typed by the user
func (w *Wizard) AddCustom(name string) error {
	if !w.adding {
		return ErrNotAddingEntry
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	w.adding = false
	w.set(name)
	return nil
}

// CancelCustom closes custom entry without choosing
func (w *Wizard) CancelCustom() {
	w.adding = false
}

// Back returns to the previous step, keeping earlier choices
func (w *Wizard) Back() {
	w.adding = false
	switch w.step {
	case StepSubject:
		w.step = StepBranch
	case StepBranch:
		w.step = StepCollege
	}
}

// Continue finishes the wizard and returns the study URL
func (w *Wizard) Continue() (string, error) {
	if w.profile.Subject == "" {
		return "", ErrNoSubject
	}
	return StudyURL(w.profile), nil
}

func (w *Wizard) set(value string) {
	switch w.step {
	case StepCollege:
		w.profile.College = value
		w.step = StepBranch
	case StepBranch:
		w.profile.Branch = value
		w.step = StepSubject
	case StepSubject:
		w.profile.Subject = value
	}
}

// StudyURL encodes profile as the study page link
func StudyURL(p domain.StudyProfile) string {
	q := url.Values{}
	q.Set("college", p.College)
	q.Set("branch", p.Branch)
	q.Set("subject", p.Subject)
	return "/study?" + q.Encode()
}

// ProfileFromQuery reads a profile from study page query parameters; absent values are empty
func ProfileFromQuery(q url.Values) domain.StudyProfile {
	return domain.StudyProfile{
		College: q.Get("college"),
		Branch:  q.Get("branch"),
		Subject: q.Get("subject"),
	}
}
