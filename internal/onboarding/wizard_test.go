package onboarding

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProfile records calls. When gate is non-nil each call waits for it.
type fakeProfile struct {
	mu        sync.Mutex
	updates   []dtos.ProfileUpdate
	uploads   []string
	parsed    *dtos.ResumeParseResult
	uploadErr error
	updateErr error
	gate      chan struct{}
	entered   chan struct{}
}

func (f *fakeProfile) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeProfile) UploadResume(_ context.Context, path string) (*dtos.ResumeParseResult, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, path)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.parsed, nil
}

func (f *fakeProfile) UpdateProfile(_ context.Context, u dtos.ProfileUpdate) (*dtos.Profile, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dtos.Profile{FullName: u.FullName}, nil
}

func (f *fakeProfile) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type memStore struct {
	mu        sync.Mutex
	draft     *Draft
	saves     int
	completed int
	cleared   int
}

func (m *memStore) LoadDraft() (Draft, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return Draft{}, false, nil
	}
	return m.draft.Clone(), true, nil
}

func (m *memStore) SaveDraft(d Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.draft = &d
	return nil
}

func (m *memStore) ClearDraft() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.draft = nil
	return nil
}

func (m *memStore) MarkCompleted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
	return nil
}

func (m *memStore) Completed() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed > 0, nil
}

func newWizard(t *testing.T) (*Wizard, *fakeProfile, *memStore) {
	t.Helper()
	profile := &fakeProfile{}
	store := &memStore{}
	return New(profile, store, zap.NewNop()), profile, store
}

func fillProfile(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SetPersonal(Personal{FullName: "Ada Lovelace", Phone: "+44 20 7946 0000", Location: "London"}))
	require.NoError(t, w.SetProfessional(Professional{YearsOfExperience: "5-10", Skills: []string{"Go"}}))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func pdfBytes(size int) []byte {
	head := []byte("%PDF-1.7\n%âãÏÓ\n")
	if size < len(head) {
		size = len(head)
	}
	out := make([]byte, size)
	copy(out, head)
	for i := len(head); i < size; i++ {
		out[i] = ' '
	}
	return out
}

func TestNext_ResumeStepIsOptional(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.Next(context.Background()))
	assert.Equal(t, StateProfile, w.State())
}

func TestNext_ProfileStepRequiresFields(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.Skip())
	require.NoError(t, w.SetPersonal(Personal{FullName: "Ada", Location: "   "}))
	before := w.Draft()

	err := w.Next(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"phone", "location", "yearsOfExperience"}, verr.Fields)
	assert.Equal(t, "please fill in: phone, location, years of experience", verr.Error())
	assert.Equal(t, StateProfile, w.State(), "failed Next does not move")
	assert.Equal(t, before, w.Draft(), "failed Next does not touch the draft")
}

func TestNext_PreferencesStepRequiresTitleAndType(t *testing.T) {
	w, profile, _ := newWizard(t)
	require.NoError(t, w.Skip())
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPreferences(Preferences{DesiredJobTitles: []string{"  "}}))

	err := w.Next(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"desiredJobTitles", "jobType"}, verr.Fields)
	assert.Equal(t, StatePreferences, w.State())
	assert.Zero(t, profile.updateCount(), "nothing is submitted when validation fails")
}

func TestSkip_OnlyOnOptionalStep(t *testing.T) {
	w, _, _ := newWizard(t)
	assert.True(t, w.CanSkip())
	require.NoError(t, w.Skip())
	assert.Equal(t, StateProfile, w.State())

	assert.False(t, w.CanSkip())
	assert.ErrorIs(t, w.Skip(), ErrNotSkippable)
	assert.Equal(t, StateProfile, w.State())

	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	assert.ErrorIs(t, w.Skip(), ErrNotSkippable)
}

func TestBack_DoesNotValidate(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.Back(), "back on the first step is a no-op")
	assert.Equal(t, StateResume, w.State())

	require.NoError(t, w.Skip())
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPersonal(Personal{}))

	require.NoError(t, w.Back())
	assert.Equal(t, StateProfile, w.State())
	require.NoError(t, w.Back())
	assert.Equal(t, StateResume, w.State())
}

func TestSubmit_PassesListsThroughAndDefaultsLocations(t *testing.T) {
	w, profile, store := newWizard(t)
	require.NoError(t, w.ChooseManual())
	require.NoError(t, w.Next(context.Background()))
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPreferences(Preferences{
		DesiredJobTitles: []string{"Backend Engineer"},
		JobTypes:         []string{"Remote"},
	}))

	require.NoError(t, w.Next(context.Background()))

	require.Len(t, profile.updates, 1)
	got := profile.updates[0]
	assert.Equal(t, []string{"Backend Engineer"}, got.DesiredJobTitles)
	assert.Equal(t, []string{"Remote"}, got.JobType)
	assert.Equal(t, []string{"Remote"}, got.PreferredLocations)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, 1, store.completed)
	assert.Nil(t, store.draft, "draft mirror is cleared after completion")

	assert.ErrorIs(t, w.Next(context.Background()), ErrFinished)
	assert.Equal(t, 1, profile.updateCount())
}

func TestBuildUpdate_Defaults(t *testing.T) {
	update := BuildUpdate(Draft{Personal: Personal{FullName: " Ada "}})

	assert.Equal(t, "Ada", update.FullName)
	assert.Equal(t, []string{"General"}, update.DesiredJobTitles)
	assert.Equal(t, []string{"Full-time"}, update.JobType)
	assert.Equal(t, []string{"Remote"}, update.PreferredLocations)
	assert.NotNil(t, update.Skills)
	assert.Empty(t, update.Skills)

	// defaults are copies, not shared slices
	update.JobType[0] = "mutated"
	assert.Equal(t, []string{"Full-time"}, DefaultJobTypes)
}

func TestSubmit_FailureReturnsControl(t *testing.T) {
	w, profile, store := newWizard(t)
	profile.updateErr = errors.New("Service Unavailable")
	require.NoError(t, w.Skip())
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPreferences(Preferences{DesiredJobTitles: []string{"SRE"}, JobTypes: []string{"Contract"}}))

	err := w.Next(context.Background())

	var serr *SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StateError, w.State())
	assert.EqualError(t, w.Err(), "Service Unavailable")
	assert.Zero(t, store.completed)
	assert.NotNil(t, store.draft, "draft mirror survives a failed submit")

	profile.updateErr = nil
	require.NoError(t, w.Next(context.Background()), "Next retries from the error state")
	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, 2, profile.updateCount())
	assert.Equal(t, 1, store.completed)
}

func TestSubmit_BackFromError(t *testing.T) {
	w, profile, _ := newWizard(t)
	profile.updateErr = errors.New("boom")
	require.NoError(t, w.Skip())
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPreferences(Preferences{DesiredJobTitles: []string{"SRE"}, JobTypes: []string{"Contract"}}))
	require.Error(t, w.Next(context.Background()))

	require.NoError(t, w.Back())
	assert.Equal(t, StateProfile, w.State())
	assert.NoError(t, w.Err())
}

func TestSubmit_InFlightGuards(t *testing.T) {
	w, profile, _ := newWizard(t)
	require.NoError(t, w.Skip())
	fillProfile(t, w)
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.SetPreferences(Preferences{DesiredJobTitles: []string{"SRE"}, JobTypes: []string{"Contract"}}))

	profile.gate = make(chan struct{})
	profile.entered = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Next(context.Background()) }()
	<-profile.entered

	assert.Equal(t, StateSubmitting, w.State())
	assert.True(t, w.Busy())
	assert.ErrorIs(t, w.Next(context.Background()), ErrBusy)
	assert.ErrorIs(t, w.Back(), ErrBusy)
	assert.ErrorIs(t, w.SetPersonal(Personal{}), ErrBusy)

	close(profile.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, profile.updateCount(), "exactly one update call")
}

func TestSelectFile_RejectsOversizedPDF(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.ChooseUpload())
	before := w.Draft()
	path := writeFile(t, "resume.pdf", pdfBytes(6<<20))

	err := w.SelectFile(path)

	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, ReasonSize, ferr.Reason)
	assert.Contains(t, ferr.Error(), "5.0 MiB")
	assert.Equal(t, before, w.Draft())
	assert.Equal(t, ResumeChooseUpload, w.Phase())
}

func TestSelectFile_RejectsWrongType(t *testing.T) {
	w, _, _ := newWizard(t)
	path := writeFile(t, "resume.pdf", []byte("just some text pretending to be a pdf\n"))

	err := w.SelectFile(path)

	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, ReasonType, ferr.Reason)
	assert.Contains(t, ferr.Detected, "text/plain")
	assert.Nil(t, w.Draft().Resume)
}

func TestSelectFile_AcceptsPDFAndDOCX(t *testing.T) {
	w, _, store := newWizard(t)

	require.NoError(t, w.SelectFile(writeFile(t, "cv.pdf", pdfBytes(1024))))
	d := w.Draft()
	require.NotNil(t, d.Resume)
	assert.Equal(t, MimePDF, d.Resume.MimeType)
	assert.Equal(t, MethodUpload, d.FillMethod)
	assert.Equal(t, ResumeFileSelected, w.Phase())
	assert.NotNil(t, store.draft, "selection is mirrored")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, _ = f.Write([]byte("<w:document/>"))
	require.NoError(t, zw.Close())

	require.NoError(t, w.SelectFile(writeFile(t, "cv.docx", buf.Bytes())))
	assert.Equal(t, MimeDOCX, w.Draft().Resume.MimeType)
}

func TestSelectFile_OnlyOnResumeStep(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.Skip())
	assert.ErrorIs(t, w.SelectFile(writeFile(t, "cv.pdf", pdfBytes(100))), ErrWrongStep)
}

func TestParseResume_FillsOnlyEmptyFields(t *testing.T) {
	w, profile, _ := newWizard(t)
	profile.parsed = &dtos.ResumeParseResult{
		ResumeURL:         "https://cdn.example.com/cv.pdf",
		FullName:          "Parsed Name",
		Phone:             "555-0100",
		Location:          "Berlin",
		YearsOfExperience: "3-5",
		Skills:            []string{"Go", "go", "Kubernetes"},
	}
	require.NoError(t, w.SetPersonal(Personal{FullName: "Typed Name"}))
	assert.ErrorIs(t, w.ParseResume(context.Background()), ErrNoFile)

	path := writeFile(t, "cv.pdf", pdfBytes(2048))
	require.NoError(t, w.SelectFile(path))
	require.NoError(t, w.ParseResume(context.Background()))

	d := w.Draft()
	assert.Equal(t, "Typed Name", d.Personal.FullName)
	assert.Equal(t, "555-0100", d.Personal.Phone)
	assert.Equal(t, "Berlin", d.Personal.Location)
	assert.Equal(t, []string{"Go", "Kubernetes"}, d.Professional.Skills)
	assert.Equal(t, "https://cdn.example.com/cv.pdf", d.Resume.URL)
	assert.Equal(t, ResumeParsed, w.Phase())
	assert.Equal(t, []string{path}, profile.uploads)

	// parsed values are enough to pass the profile step
	require.NoError(t, w.Next(context.Background()))
	require.NoError(t, w.Next(context.Background()))
	assert.Equal(t, StatePreferences, w.State())
}

func TestParseResume_FailureKeepsSelection(t *testing.T) {
	w, profile, _ := newWizard(t)
	profile.uploadErr = errors.New("parser down")
	require.NoError(t, w.SelectFile(writeFile(t, "cv.pdf", pdfBytes(100))))

	err := w.ParseResume(context.Background())
	require.Error(t, err)
	assert.Equal(t, ResumeFileSelected, w.Phase())
	assert.EqualError(t, w.Err(), "parser down")
	assert.NotNil(t, w.Draft().Resume)
}

func TestParseResume_DroppedAfterClose(t *testing.T) {
	w, profile, _ := newWizard(t)
	profile.parsed = &dtos.ResumeParseResult{FullName: "Late Arrival"}
	profile.gate = make(chan struct{})
	profile.entered = make(chan struct{})
	require.NoError(t, w.SelectFile(writeFile(t, "cv.pdf", pdfBytes(100))))

	done := make(chan error, 1)
	go func() { done <- w.ParseResume(context.Background()) }()
	<-profile.entered

	assert.Equal(t, ResumeParsing, w.Phase())
	assert.ErrorIs(t, w.Next(context.Background()), ErrBusy)
	assert.ErrorIs(t, w.SelectFile(writeFile(t, "other.pdf", pdfBytes(100))), ErrBusy)

	w.Close()
	close(profile.gate)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, w.Draft().Personal.FullName)
}

func TestSkills(t *testing.T) {
	w, _, _ := newWizard(t)
	require.NoError(t, w.AddSkill("Go"))
	require.NoError(t, w.AddSkill(" go "))
	require.NoError(t, w.AddSkill("SQL"))
	assert.Equal(t, []string{"Go", "SQL"}, w.Draft().Professional.Skills)

	require.NoError(t, w.RemoveSkill("GO"))
	assert.Equal(t, []string{"SQL"}, w.Draft().Professional.Skills)
}

func TestNew_RestoresDraft(t *testing.T) {
	store := &memStore{draft: &Draft{
		FillMethod: MethodUpload,
		Resume:     &ResumeFile{Path: "/gone/cv.pdf"},
		Personal:   Personal{FullName: "Ada"},
	}}

	w := New(&fakeProfile{}, store, zap.NewNop())

	d := w.Draft()
	assert.Equal(t, "Ada", d.Personal.FullName)
	assert.Nil(t, d.Resume, "an unparsed file has to be picked again")
	assert.Equal(t, ResumeChooseUpload, w.Phase())
	assert.Equal(t, StateResume, w.State())
}

func TestClosed(t *testing.T) {
	w, _, _ := newWizard(t)
	w.Close()
	assert.ErrorIs(t, w.Next(context.Background()), ErrClosed)
	assert.ErrorIs(t, w.AddSkill("Go"), ErrClosed)
	assert.False(t, w.CanSkip())
}
