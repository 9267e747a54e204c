// Package tui is the terminal front end of the onboarding wizard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/justsurfingit/job-tracker-client/internal/onboarding"
)

type field struct {
	key   string // json name, as reported by validation
	label string
	input textinput.Model
}

func newField(key, label, placeholder string) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Width = 48
	return field{key: key, label: label, input: in}
}

func profileFields() []field {
	return []field{
		newField("fullName", "Full name *", "Ada Lovelace"),
		newField("phone", "Phone *", "+1 555 0100"),
		newField("location", "Location *", "City, Country"),
		newField("currentTitle", "Current title", "Software Engineer"),
		newField("yearsOfExperience", "Years of experience *", "0-1, 1-3, 3-5, 5-10, 10+"),
		newField("skills", "Skills", "Go, SQL, Kubernetes"),
		newField("linkedinUrl", "LinkedIn", "https://linkedin.com/in/..."),
		newField("githubUrl", "GitHub", "https://github.com/..."),
		newField("portfolioUrl", "Portfolio", "https://..."),
	}
}

func preferenceFields() []field {
	return []field{
		newField("desiredJobTitles", "Desired job titles *", "Backend Engineer, SRE"),
		newField("jobType", "Job types *", "Full-time, Contract, Remote"),
		newField("preferredLocations", "Preferred locations", "Remote"),
		newField("salaryRange", "Salary range", "$120k - $150k"),
	}
}

type (
	stepMsg   struct{ err error }
	parsedMsg struct{ err error }
)

// Model drives an onboarding.Wizard. The wizard stays the source of truth;
// the inputs are copied into it before every transition.
type Model struct {
	ctx    context.Context
	wiz    *onboarding.Wizard
	styles Styles

	path    textinput.Model
	manual  bool
	parsing bool // a parse command is in flight
	profile []field
	prefs   []field
	focus   int

	spinner spinner.Model
	err     error
	missing map[string]bool
	notice  string
	done    bool
	aborted bool
}

func NewWizardModel(ctx context.Context, wiz *onboarding.Wizard) Model {
	path := textinput.New()
	path.Placeholder = "~/Documents/resume.pdf"
	path.Width = 48
	path.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		wiz:     wiz,
		styles:  DefaultStyles(),
		path:    path,
		manual:  wiz.Phase() == onboarding.ResumeChooseManual,
		profile: profileFields(),
		prefs:   preferenceFields(),
		spinner: sp,
	}
	if d := wiz.Draft(); d.Resume != nil {
		m.path.SetValue(d.Resume.Path)
	}
	m.loadFields()
	return m
}

// Completed reports whether the profile was saved.
func (m Model) Completed() bool { return m.done }

// Aborted reports whether the user quit before finishing.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case parsedMsg:
		m.parsing = false
		m.setErr(msg.err)
		if msg.err == nil {
			m.notice = "Resume parsed. Review the details on the next step."
			m.loadFields()
		}
		return m, nil

	case stepMsg:
		m.setErr(msg.err)
		if msg.err != nil {
			if errors.Is(msg.err, onboarding.ErrStale) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.wiz.State() == onboarding.StateDone {
			m.done = true
			return m, tea.Quit
		}
		m.enterStep()
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.wiz.Close()
		m.aborted = true
		return m, tea.Quit

	case "ctrl+n":
		if m.busy() {
			return m, nil
		}
		if err := m.syncFields(); err != nil {
			m.setErr(err)
			return m, nil
		}
		m.notice = ""
		return m, m.nextCmd()

	case "ctrl+b":
		if m.busy() {
			return m, nil
		}
		if err := m.syncFields(); err != nil {
			m.setErr(err)
			return m, nil
		}
		m.setErr(m.wiz.Back())
		m.enterStep()
		return m, nil

	case "ctrl+s":
		if m.busy() {
			return m, nil
		}
		m.setErr(m.wiz.Skip())
		m.enterStep()
		return m, nil

	case "tab", "down":
		if m.wiz.State() == onboarding.StateResume {
			if msg.String() == "tab" && !m.busy() {
				m.toggleMethod()
			}
			return m, nil
		}
		m.moveFocus(1)
		return m, nil

	case "shift+tab", "up":
		if m.wiz.State() != onboarding.StateResume {
			m.moveFocus(-1)
		}
		return m, nil

	case "enter":
		if m.wiz.State() == onboarding.StateResume && !m.manual {
			path := strings.TrimSpace(m.path.Value())
			if path == "" || m.busy() {
				return m, nil
			}
			m.notice = ""
			m.parsing = true
			return m, m.parseCmd(path)
		}
		m.moveFocus(1)
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.wiz.State() {
	case onboarding.StateResume:
		if !m.manual {
			m.path, cmd = m.path.Update(msg)
		}
	default:
		fields := m.current()
		if len(fields) > 0 {
			fields[m.focus].input, cmd = fields[m.focus].input.Update(msg)
		}
	}
	return m, cmd
}

// busy reports whether a parse or submit is under way. A parse counts from
// the moment its command is handed out, before the wizard itself marks it.
func (m Model) busy() bool {
	return m.parsing || m.wiz.Busy()
}

func (m Model) nextCmd() tea.Cmd {
	wiz, ctx := m.wiz, m.ctx
	return func() tea.Msg {
		return stepMsg{err: wiz.Next(ctx)}
	}
}

func (m Model) parseCmd(path string) tea.Cmd {
	wiz, ctx := m.wiz, m.ctx
	return func() tea.Msg {
		if err := wiz.SelectFile(expandHome(path)); err != nil {
			return parsedMsg{err: err}
		}
		return parsedMsg{err: wiz.ParseResume(ctx)}
	}
}

func (m *Model) toggleMethod() {
	var err error
	if m.manual {
		err = m.wiz.ChooseUpload()
	} else {
		err = m.wiz.ChooseManual()
	}
	if err != nil {
		m.setErr(err)
		return
	}
	m.manual = !m.manual
	if m.manual {
		m.path.Blur()
	} else {
		m.path.Focus()
	}
}

func (m *Model) current() []field {
	switch m.wiz.State() {
	case onboarding.StateProfile:
		return m.profile
	case onboarding.StatePreferences, onboarding.StateSubmitting, onboarding.StateError:
		return m.prefs
	}
	return nil
}

func (m *Model) moveFocus(delta int) {
	fields := m.current()
	if len(fields) == 0 {
		return
	}
	fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(fields)) % len(fields)
	fields[m.focus].input.Focus()
}

func (m *Model) enterStep() {
	for _, fs := range [][]field{m.profile, m.prefs} {
		for i := range fs {
			fs[i].input.Blur()
		}
	}
	m.focus = 0
	if fields := m.current(); len(fields) > 0 {
		fields[0].input.Focus()
	}
	m.loadFields()
}

func (m *Model) setErr(err error) {
	m.err = err
	m.missing = nil
	var verr *onboarding.ValidationError
	if errors.As(err, &verr) {
		m.missing = make(map[string]bool, len(verr.Fields))
		for _, f := range verr.Fields {
			m.missing[f] = true
		}
	}
}

// loadFields copies the draft into the inputs.
func (m *Model) loadFields() {
	d := m.wiz.Draft()
	vals := map[string]string{
		"fullName":           d.Personal.FullName,
		"phone":              d.Personal.Phone,
		"location":           d.Personal.Location,
		"linkedinUrl":        d.Personal.LinkedInURL,
		"githubUrl":          d.Personal.GitHubURL,
		"portfolioUrl":       d.Personal.PortfolioURL,
		"currentTitle":       d.Professional.CurrentTitle,
		"yearsOfExperience":  d.Professional.YearsOfExperience,
		"skills":             strings.Join(d.Professional.Skills, ", "),
		"desiredJobTitles":   strings.Join(d.Preferences.DesiredJobTitles, ", "),
		"jobType":            strings.Join(d.Preferences.JobTypes, ", "),
		"preferredLocations": strings.Join(d.Preferences.PreferredLocations, ", "),
		"salaryRange":        d.Preferences.SalaryRange,
	}
	for _, fs := range [][]field{m.profile, m.prefs} {
		for i := range fs {
			fs[i].input.SetValue(vals[fs[i].key])
		}
	}
}

// syncFields copies the inputs of the current step into the draft.
func (m *Model) syncFields() error {
	vals := make(map[string]string)
	for _, f := range m.current() {
		vals[f.key] = f.input.Value()
	}
	switch m.wiz.State() {
	case onboarding.StateProfile:
		if err := m.wiz.SetPersonal(onboarding.Personal{
			FullName:     vals["fullName"],
			Phone:        vals["phone"],
			Location:     vals["location"],
			LinkedInURL:  vals["linkedinUrl"],
			GitHubURL:    vals["githubUrl"],
			PortfolioURL: vals["portfolioUrl"],
		}); err != nil {
			return err
		}
		return m.wiz.SetProfessional(onboarding.Professional{
			CurrentTitle:      vals["currentTitle"],
			YearsOfExperience: vals["yearsOfExperience"],
			Skills:            splitList(vals["skills"]),
		})
	case onboarding.StatePreferences, onboarding.StateError:
		return m.wiz.SetPreferences(onboarding.Preferences{
			DesiredJobTitles:   splitList(vals["desiredJobTitles"]),
			JobTypes:           splitList(vals["jobType"]),
			PreferredLocations: splitList(vals["preferredLocations"]),
			SalaryRange:        vals["salaryRange"],
		})
	}
	return nil
}

func (m Model) View() string {
	if m.done {
		return m.styles.Notice.Render("Profile saved. You're all set.") + "\n"
	}

	s := m.styles
	var b strings.Builder
	info := m.wiz.Step()
	b.WriteString(s.Title.Render("Set up your job search profile"))
	b.WriteString("\n")
	b.WriteString(s.Step.Render(fmt.Sprintf("Step %d of %d: %s", info.Number, onboarding.TotalSteps, info.Title)))
	b.WriteString("\n\n")

	switch m.wiz.State() {
	case onboarding.StateResume:
		b.WriteString(m.resumeView())
	default:
		for i, f := range m.current() {
			label := s.Label
			switch {
			case m.missing[f.key]:
				label = s.Missing
			case i == m.focus:
				label = s.Focused
			}
			b.WriteString(label.Render(f.label) + " " + f.input.View() + "\n")
		}
	}

	b.WriteString("\n")
	if m.busy() {
		what := "Parsing your resume"
		if m.wiz.State() == onboarding.StateSubmitting {
			what = "Saving your profile"
		}
		b.WriteString(m.spinner.View() + " " + what + "...\n")
	}
	if m.err != nil {
		b.WriteString(s.Error.Render(errorText(m.err)) + "\n")
	}
	if m.notice != "" {
		b.WriteString(s.Notice.Render(m.notice) + "\n")
	}
	b.WriteString(s.Help.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) resumeView() string {
	s := m.styles
	upload, manual := "  Upload a resume", "  Fill in manually"
	if m.manual {
		manual = s.Selected.Render("> Fill in manually")
	} else {
		upload = s.Selected.Render("> Upload a resume")
	}

	var b strings.Builder
	b.WriteString(upload + "\n" + manual + "\n\n")
	if m.manual {
		b.WriteString("You'll enter your details on the next step.\n")
		return b.String()
	}
	b.WriteString("PDF, DOC or DOCX up to " + format.Bytes(onboarding.MaxResumeSize) + "\n")
	b.WriteString(m.path.View() + "\n")
	if d := m.wiz.Draft(); d.Resume != nil {
		status := "selected"
		if m.wiz.Phase() == onboarding.ResumeParsed {
			status = "parsed"
		}
		b.WriteString(fmt.Sprintf("%s (%s, %s)\n", d.Resume.Name, format.Bytes(d.Resume.Size), status))
	}
	return b.String()
}

func (m Model) helpLine() string {
	keys := []string{"ctrl+n next"}
	if m.wiz.State() != onboarding.StateResume {
		keys = append(keys, "ctrl+b back", "tab next field")
	} else {
		keys = append(keys, "tab switch method", "enter parse file")
	}
	if m.wiz.CanSkip() {
		keys = append(keys, "ctrl+s skip")
	}
	if m.wiz.State() == onboarding.StateError {
		keys[0] = "ctrl+n retry"
	}
	keys = append(keys, "esc quit")
	return strings.Join(keys, " • ")
}

func errorText(err error) string {
	var serr *onboarding.SubmitError
	if errors.As(err, &serr) {
		return "Could not save your profile: " + api.Message(serr.Err)
	}
	return api.Message(err)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
