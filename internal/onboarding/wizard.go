// Package onboarding drives the three-step onboarding wizard: resume intake,
// profile fields and job preferences, then one profile update.
//
//	Resume ──► Profile ──► Preferences ──► Submitting ──► Done
//	  │ skip      ▲            ▲  │                │
//	  └───────────┘            │  └─ back ─►       └──► Error ──► (retry | back)
//
// Next is gated on the current step's required fields, Back never validates,
// and only the resume step can be skipped.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"go.uber.org/zap"
)

type State int

const (
	StateResume State = iota
	StateProfile
	StatePreferences
	StateSubmitting
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateResume:
		return "resume"
	case StateProfile:
		return "profile"
	case StatePreferences:
		return "preferences"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ResumePhase is the sub-state of the resume step.
type ResumePhase int

const (
	ResumeUnset ResumePhase = iota
	ResumeChooseUpload
	ResumeFileSelected
	ResumeParsing
	ResumeParsed
	ResumeChooseManual
)

type StepInfo struct {
	Number   int
	Title    string
	Required bool
}

var steps = map[State]StepInfo{
	StateResume:      {Number: 1, Title: "Resume", Required: false},
	StateProfile:     {Number: 2, Title: "Profile", Required: true},
	StatePreferences: {Number: 3, Title: "Job preferences", Required: true},
}

// TotalSteps is the number of user-facing steps.
const TotalSteps = 3

var (
	ErrBusy         = errors.New("a request is already in progress")
	ErrNotSkippable = errors.New("this step is required and cannot be skipped")
	ErrWrongStep    = errors.New("not available on this step")
	ErrNoFile       = errors.New("no resume file selected")
	ErrClosed       = errors.New("wizard is closed")
	ErrFinished     = errors.New("onboarding is already complete")
	// ErrStale is returned when a request finished after the wizard was closed.
	ErrStale = errors.New("result discarded: wizard no longer active")
)

// SubmitError wraps a failed profile update.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return "failed to save your profile: " + e.Err.Error() }
func (e *SubmitError) Unwrap() error { return e.Err }

// ProfileService is the part of the backend the wizard talks to.
type ProfileService interface {
	UploadResume(ctx context.Context, path string) (*dtos.ResumeParseResult, error)
	UpdateProfile(ctx context.Context, update dtos.ProfileUpdate) (*dtos.Profile, error)
}

type busyKind int

const (
	idle busyKind = iota
	parsing
	submitting
)

// Wizard is safe for concurrent use; every transition runs under one lock and
// network calls run outside it behind the busy guard.
type Wizard struct {
	profile ProfileService
	store   Store
	log     *zap.Logger

	mu      sync.Mutex
	state   State
	phase   ResumePhase
	draft   Draft
	busy    busyKind
	lastErr error
	closed  bool
}

// New creates a wizard on the resume step. A draft mirrored by an earlier run
// is restored from store.
func New(profile ProfileService, store Store, log *zap.Logger) *Wizard {
	w := &Wizard{profile: profile, store: store, log: log}
	if d, ok, err := store.LoadDraft(); err != nil {
		log.Warn("Could not load onboarding draft", zap.Error(err))
	} else if ok {
		w.draft = d
		w.draft.normalize()
		switch {
		case d.FillMethod == MethodManual:
			w.phase = ResumeChooseManual
		case d.Resume != nil && d.Resume.URL != "":
			w.phase = ResumeParsed
		case d.FillMethod == MethodUpload:
			// the file may be gone; make the user pick it again
			w.draft.Resume = nil
			w.phase = ResumeChooseUpload
		}
		log.Debug("Restored onboarding draft")
	}
	return w
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Phase() ResumePhase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Busy reports whether a parse or submit is in flight.
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy != idle
}

// Err returns the last request error, cleared by the next transition.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Step describes the step the wizard is on. Submitting, done and error
// report the last step.
func (w *Wizard) Step() StepInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	if info, ok := steps[w.state]; ok {
		return info
	}
	return steps[StatePreferences]
}

// CanSkip reports whether Skip would be accepted now.
func (w *Wizard) CanSkip() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	info, ok := steps[w.state]
	return ok && !info.Required && w.busy == idle && !w.closed
}

// Close marks the wizard inactive. Requests still in flight will have their
// results dropped.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *Wizard) guardLocked() error {
	if w.closed {
		return ErrClosed
	}
	if w.busy != idle {
		return ErrBusy
	}
	if w.state == StateDone {
		return ErrFinished
	}
	return nil
}

// Next validates the current step and advances. On the preferences step it
// submits the profile; that call blocks until the backend answers.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	if err := w.guardLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := validateStep(w.state, w.draft); err != nil {
		w.mu.Unlock()
		return err
	}

	switch w.state {
	case StateResume:
		w.state = StateProfile
	case StateProfile:
		w.state = StatePreferences
	case StatePreferences, StateError:
		return w.submitLocked(ctx) // unlocks
	}
	w.lastErr = nil
	w.mu.Unlock()
	return nil
}

// Skip advances past a non-required step without validation.
func (w *Wizard) Skip() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardLocked(); err != nil {
		return err
	}
	info, ok := steps[w.state]
	if !ok || info.Required {
		return ErrNotSkippable
	}
	w.state = StateProfile
	w.lastErr = nil
	return nil
}

// Back returns to the previous step. It is a no-op on the first step.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardLocked(); err != nil {
		return err
	}
	switch w.state {
	case StateProfile:
		w.state = StateResume
	case StatePreferences, StateError:
		w.state = StateProfile
	}
	w.lastErr = nil
	return nil
}

// ChooseUpload selects the "upload a resume" path of the first step.
func (w *Wizard) ChooseUpload() error {
	return w.onResumeStep(func() {
		w.draft.FillMethod = MethodUpload
		if w.draft.Resume == nil {
			w.phase = ResumeChooseUpload
		}
	})
}

// ChooseManual selects manual entry; the user continues with empty fields.
func (w *Wizard) ChooseManual() error {
	return w.onResumeStep(func() {
		w.draft.FillMethod = MethodManual
		w.draft.Resume = nil
		w.phase = ResumeChooseManual
	})
}

// SelectFile validates and records a resume file. A rejected file leaves the
// draft untouched and returns a *FileError.
func (w *Wizard) SelectFile(path string) error {
	file, err := inspectResume(path)
	if err != nil {
		return err
	}
	return w.onResumeStep(func() {
		w.draft.Resume = file
		w.draft.FillMethod = MethodUpload
		w.phase = ResumeFileSelected
	})
}

func (w *Wizard) onResumeStep(fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardLocked(); err != nil {
		return err
	}
	if w.state != StateResume {
		return ErrWrongStep
	}
	fn()
	w.lastErr = nil
	w.mirrorLocked()
	return nil
}

// ParseResume uploads the selected file to the backend parser and fills the
// empty draft fields with what it found.
func (w *Wizard) ParseResume(ctx context.Context) error {
	w.mu.Lock()
	if err := w.guardLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.state != StateResume {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.draft.Resume == nil {
		w.mu.Unlock()
		return ErrNoFile
	}
	path := w.draft.Resume.Path
	w.busy = parsing
	w.phase = ResumeParsing
	w.lastErr = nil
	w.mu.Unlock()

	res, err := w.profile.UploadResume(ctx, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = idle
	if w.closed {
		return ErrStale
	}
	if err != nil {
		w.phase = ResumeFileSelected
		w.lastErr = err
		w.log.Warn("Resume parse failed", zap.Error(err))
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	w.draft.applyParsed(res)
	w.phase = ResumeParsed
	w.mirrorLocked()
	return nil
}

// Update applies fn to the draft. Edits are refused while submitting.
func (w *Wizard) Update(fn func(*Draft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.busy == submitting {
		return ErrBusy
	}
	if w.state == StateDone {
		return ErrFinished
	}
	fn(&w.draft)
	w.draft.normalize()
	w.mirrorLocked()
	return nil
}

func (w *Wizard) SetPersonal(p Personal) error {
	return w.Update(func(d *Draft) { d.Personal = p })
}

func (w *Wizard) SetProfessional(p Professional) error {
	return w.Update(func(d *Draft) { d.Professional = p })
}

func (w *Wizard) SetPreferences(p Preferences) error {
	return w.Update(func(d *Draft) { d.Preferences = p })
}

func (w *Wizard) AddSkill(skill string) error {
	return w.Update(func(d *Draft) { d.Professional.Skills = append(d.Professional.Skills, skill) })
}

func (w *Wizard) RemoveSkill(skill string) error {
	return w.Update(func(d *Draft) {
		kept := d.Professional.Skills[:0]
		for _, s := range d.Professional.Skills {
			if !strings.EqualFold(s, strings.TrimSpace(skill)) {
				kept = append(kept, s)
			}
		}
		d.Professional.Skills = kept
	})
}

// submitLocked is entered with w.mu held and releases it.
func (w *Wizard) submitLocked(ctx context.Context) error {
	update := BuildUpdate(w.draft)
	w.state = StateSubmitting
	w.busy = submitting
	w.lastErr = nil
	w.mu.Unlock()

	_, err := w.profile.UpdateProfile(ctx, update)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = idle
	if w.closed {
		return ErrStale
	}
	if err != nil {
		w.state = StateError
		w.lastErr = err
		w.log.Warn("Profile update failed", zap.Error(err))
		return &SubmitError{Err: err}
	}

	if err := w.store.MarkCompleted(); err != nil {
		// the server copy is saved; only the local flag is missing
		w.log.Warn("Could not persist onboarding flag", zap.Error(err))
	}
	if err := w.store.ClearDraft(); err != nil {
		w.log.Warn("Could not clear onboarding draft", zap.Error(err))
	}
	w.state = StateDone
	w.log.Info("Onboarding completed")
	return nil
}

func (w *Wizard) mirrorLocked() {
	if err := w.store.SaveDraft(w.draft.Clone()); err != nil {
		w.log.Warn("Could not mirror onboarding draft", zap.Error(err))
	}
}
