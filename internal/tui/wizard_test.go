package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/onboarding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProfile struct {
	mu        sync.Mutex
	updates   []dtos.ProfileUpdate
	parsed    *dtos.ResumeParseResult
	updateErr error
}

func (s *stubProfile) UploadResume(context.Context, string) (*dtos.ResumeParseResult, error) {
	return s.parsed, nil
}

func (s *stubProfile) UpdateProfile(_ context.Context, u dtos.ProfileUpdate) (*dtos.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &dtos.Profile{FullName: u.FullName}, nil
}

type nopStore struct{}

func (nopStore) LoadDraft() (onboarding.Draft, bool, error) { return onboarding.Draft{}, false, nil }
func (nopStore) SaveDraft(onboarding.Draft) error           { return nil }
func (nopStore) ClearDraft() error                          { return nil }
func (nopStore) MarkCompleted() error                       { return nil }
func (nopStore) Completed() (bool, error)                   { return false, nil }

func newModel(t *testing.T, p *stubProfile) (Model, *onboarding.Wizard) {
	t.Helper()
	wiz := onboarding.New(p, nopStore{}, zap.NewNop())
	return NewWizardModel(context.Background(), wiz), wiz
}

// send feeds one message and runs any command it returns, feeding the result
// back in, until the model goes quiet or quits.
func send(t *testing.T, m Model, msg tea.Msg) (Model, bool) {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		msg = nil
		if cmd == nil {
			break
		}
		out := cmd()
		switch out.(type) {
		case tea.QuitMsg:
			return m, true
		case stepMsg, parsedMsg:
			msg = out
		}
	}
	return m, false
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	// the input's cursor blink command is not run
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

// fillCurrent types values into consecutive fields starting at the first.
func fillCurrent(t *testing.T, m Model, values ...string) Model {
	t.Helper()
	for i, v := range values {
		if v != "" {
			m = typeText(t, m, v)
		}
		if i < len(values)-1 {
			m, _ = send(t, m, key(tea.KeyTab))
		}
	}
	return m
}

func TestWizardModel_FullFlow(t *testing.T) {
	p := &stubProfile{}
	m, wiz := newModel(t, p)

	m, _ = send(t, m, key(tea.KeyCtrlS))
	require.Equal(t, onboarding.StateProfile, wiz.State())
	assert.Contains(t, m.View(), "Step 2 of 3")

	m = fillCurrent(t, m, "Ada Lovelace", "+44 20 7946 0000", "London", "Engineer", "5-10", "Go, SQL")
	m, quit := send(t, m, key(tea.KeyCtrlN))
	require.False(t, quit)
	require.Equal(t, onboarding.StatePreferences, wiz.State())

	d := wiz.Draft()
	assert.Equal(t, "Ada Lovelace", d.Personal.FullName)
	assert.Equal(t, "5-10", d.Professional.YearsOfExperience)
	assert.Equal(t, []string{"Go", "SQL"}, d.Professional.Skills)

	m = fillCurrent(t, m, "Backend Engineer, SRE", "Full-time")
	m, quit = send(t, m, key(tea.KeyCtrlN))
	assert.True(t, quit)
	assert.True(t, m.Completed())
	assert.False(t, m.Aborted())
	assert.Equal(t, onboarding.StateDone, wiz.State())

	require.Len(t, p.updates, 1)
	assert.Equal(t, []string{"Backend Engineer", "SRE"}, p.updates[0].DesiredJobTitles)
	assert.Contains(t, m.View(), "Profile saved")
}

func TestWizardModel_MissingFieldsHighlighted(t *testing.T) {
	m, wiz := newModel(t, &stubProfile{})
	m, _ = send(t, m, key(tea.KeyCtrlS))
	m = typeText(t, m, "Ada")

	m, _ = send(t, m, key(tea.KeyCtrlN))
	assert.Equal(t, onboarding.StateProfile, wiz.State())
	assert.True(t, m.missing["phone"])
	assert.True(t, m.missing["location"])
	assert.True(t, m.missing["yearsOfExperience"])
	assert.False(t, m.missing["fullName"])
	assert.Contains(t, m.View(), "please fill in: phone, location, years of experience")
}

func TestWizardModel_BackKeepsInput(t *testing.T) {
	m, wiz := newModel(t, &stubProfile{})
	m, _ = send(t, m, key(tea.KeyCtrlS))
	m = typeText(t, m, "Ada")

	m, _ = send(t, m, key(tea.KeyCtrlB))
	assert.Equal(t, onboarding.StateResume, wiz.State())
	assert.Equal(t, "Ada", wiz.Draft().Personal.FullName)

	m, _ = send(t, m, key(tea.KeyCtrlS))
	assert.Equal(t, "Ada", m.profile[0].input.Value())
}

func TestWizardModel_SubmitFailureShowsMessage(t *testing.T) {
	p := &stubProfile{updateErr: &api.Error{Status: 500, Message: "database unavailable"}}
	m, wiz := newModel(t, p)
	m, _ = send(t, m, key(tea.KeyCtrlS))
	m = fillCurrent(t, m, "Ada", "1", "London", "", "1-3")
	m, _ = send(t, m, key(tea.KeyCtrlN))
	m = fillCurrent(t, m, "SRE", "Contract")

	m, quit := send(t, m, key(tea.KeyCtrlN))
	assert.False(t, quit)
	assert.Equal(t, onboarding.StateError, wiz.State())
	view := m.View()
	assert.Contains(t, view, "Could not save your profile: database unavailable")
	assert.Contains(t, view, "ctrl+n retry")

	p.mu.Lock()
	p.updateErr = nil
	p.mu.Unlock()
	m, quit = send(t, m, key(tea.KeyCtrlN))
	assert.True(t, quit)
	assert.True(t, m.Completed())
}

func TestWizardModel_ParseResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n"+strings.Repeat(" ", 64)), 0o600))

	p := &stubProfile{parsed: &dtos.ResumeParseResult{
		ResumeURL: "https://files.example/cv.pdf",
		FullName:  "Ada Lovelace",
		Skills:    []string{"Go"},
	}}
	m, wiz := newModel(t, p)
	m = typeText(t, m, path)

	m, _ = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, onboarding.ResumeParsed, wiz.Phase())
	assert.Contains(t, m.View(), "Resume parsed")
	assert.Contains(t, m.View(), "cv.pdf")

	m, _ = send(t, m, key(tea.KeyCtrlN))
	assert.Equal(t, onboarding.StateProfile, wiz.State())
	assert.Equal(t, "Ada Lovelace", m.profile[0].input.Value())
}

func TestWizardModel_KeysIgnoredWhileParsing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n"+strings.Repeat(" ", 64)), 0o600))

	p := &stubProfile{parsed: &dtos.ResumeParseResult{FullName: "Ada Lovelace"}}
	m, wiz := newModel(t, p)
	m = typeText(t, m, path)
	phase := wiz.Phase()

	// the parse command is handed out but not run yet
	next, parse := m.Update(key(tea.KeyEnter))
	m = next.(Model)
	require.NotNil(t, parse)
	assert.True(t, m.parsing)
	assert.False(t, wiz.Busy(), "wizard has not started parsing")
	assert.Contains(t, m.View(), "Parsing your resume")

	for _, k := range []tea.KeyType{tea.KeyCtrlN, tea.KeyCtrlS, tea.KeyCtrlB, tea.KeyEnter} {
		next, cmd := m.Update(key(k))
		m = next.(Model)
		assert.Nil(t, cmd)
		assert.Equal(t, onboarding.StateResume, wiz.State())
	}
	m, _ = send(t, m, key(tea.KeyTab))
	assert.Equal(t, phase, wiz.Phase(), "method is not toggled mid-parse")
	assert.False(t, m.manual)

	m, _ = send(t, m, parse())
	assert.False(t, m.parsing)
	assert.Equal(t, onboarding.ResumeParsed, wiz.Phase())

	m, _ = send(t, m, key(tea.KeyCtrlN))
	assert.Equal(t, onboarding.StateProfile, wiz.State())
}

func TestWizardModel_RejectedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	m, wiz := newModel(t, &stubProfile{})
	m = typeText(t, m, path)
	m, _ = send(t, m, key(tea.KeyEnter))

	assert.Nil(t, wiz.Draft().Resume)
	assert.Error(t, m.err)
}

func TestWizardModel_ToggleManual(t *testing.T) {
	m, wiz := newModel(t, &stubProfile{})
	m, _ = send(t, m, key(tea.KeyTab))
	assert.Equal(t, onboarding.ResumeChooseManual, wiz.Phase())
	assert.Contains(t, m.View(), "> Fill in manually")

	m, _ = send(t, m, key(tea.KeyTab))
	assert.Equal(t, onboarding.ResumeChooseUpload, wiz.Phase())
}

func TestWizardModel_EscClosesWizard(t *testing.T) {
	m, wiz := newModel(t, &stubProfile{})
	m, quit := send(t, m, key(tea.KeyEsc))
	assert.True(t, quit)
	assert.True(t, m.Aborted())
	assert.ErrorIs(t, wiz.Skip(), onboarding.ErrClosed)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(""))
}
