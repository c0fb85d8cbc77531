// Package ui is the terminal front end: a two-field form whose submit
// trigger drives a workflow.SubmitWorkflow.
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kova98/saletracker/models"
	"github.com/kova98/saletracker/workflow"
)

const (
	labelIdle = "Submit"
	labelBusy = "Processing..."

	DefaultBannerDuration = 5 * time.Second
)

type focusIndex int

const (
	focusEmail focusIndex = iota
	focusLink
	focusTrigger
	focusCount
)

type bannerKind int

const (
	bannerError bannerKind = iota
	bannerSuccess
)

// SubmitFunc runs one submission; it is called off the UI goroutine.
type SubmitFunc func(req models.SubmissionRequest) (workflow.Outcome, error)

// Messages sent by ProgramController.
type (
	BusyMsg      struct{ Busy bool }
	ErrorMsg     struct{ Text string }
	SuccessMsg   struct{ Text string }
	ResetFormMsg struct{}
)

type submitDoneMsg struct {
	outcome workflow.Outcome
	err     error
}

type hideBannerMsg struct {
	kind bannerKind
	seq  int
}

type banner struct {
	text string
	seq  int
}

type FormModel struct {
	email  textinput.Model
	link   textinput.Model
	focus  focusIndex
	busy   bool
	submit SubmitFunc
	styles Styles

	bannerDuration time.Duration
	bannerSeq      int
	errBanner      *banner
	okBanner       *banner
}

func NewFormModel(submit SubmitFunc, bannerDuration time.Duration) FormModel {
	if bannerDuration <= 0 {
		bannerDuration = DefaultBannerDuration
	}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "> "
	email.CharLimit = 254
	email.Width = 48
	email.Focus()

	link := textinput.New()
	link.Placeholder = "https://shop.example.com/p/..."
	link.Prompt = "> "
	link.CharLimit = 2048
	link.Width = 48

	return FormModel{
		email:          email,
		link:           link,
		submit:         submit,
		styles:         DefaultStyles(),
		bannerDuration: bannerDuration,
	}
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Busy reports whether the trigger is disabled.
func (m FormModel) Busy() bool {
	return m.busy
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case BusyMsg:
		m.busy = msg.Busy
		return m, nil

	case ErrorMsg:
		b := m.nextBanner(msg.Text)
		m.errBanner = &b
		return m, m.hideAfter(bannerError, b.seq)

	case SuccessMsg:
		b := m.nextBanner(msg.Text)
		m.okBanner = &b
		return m, m.hideAfter(bannerSuccess, b.seq)

	case ResetFormMsg:
		m.email.Reset()
		m.link.Reset()
		cmd := m.setFocus(focusEmail)
		return m, cmd

	case hideBannerMsg:
		switch msg.kind {
		case bannerError:
			if m.errBanner != nil && m.errBanner.seq == msg.seq {
				m.errBanner = nil
			}
		case bannerSuccess:
			if m.okBanner != nil && m.okBanner.seq == msg.seq {
				m.okBanner = nil
			}
		}
		return m, nil

	case submitDoneMsg:
		// The workflow has returned, including when it refused with ErrBusy
		// and never sent BusyMsg{false}.
		m.busy = false
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		cmd := m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case "ctrl+s":
		return m.startSubmit()
	case "enter":
		if m.focus == focusTrigger {
			return m.startSubmit()
		}
		cmd := m.setFocus(m.focus + 1)
		return m, cmd
	}
	return m.updateInputs(msg)
}

// startSubmit disables the trigger right away so a second key press cannot
// queue another submission before the workflow reports busy.
func (m FormModel) startSubmit() (tea.Model, tea.Cmd) {
	if m.busy || m.submit == nil {
		return m, nil
	}
	m.busy = true

	req := models.NewSubmissionRequest(m.email.Value(), m.link.Value())
	submit := m.submit
	return m, func() tea.Msg {
		out, err := submit(req)
		return submitDoneMsg{outcome: out, err: err}
	}
}

func (m FormModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var emailCmd, linkCmd tea.Cmd
	m.email, emailCmd = m.email.Update(msg)
	m.link, linkCmd = m.link.Update(msg)
	return m, tea.Batch(emailCmd, linkCmd)
}

func (m *FormModel) setFocus(f focusIndex) tea.Cmd {
	m.focus = f
	m.email.Blur()
	m.link.Blur()
	switch f {
	case focusEmail:
		return m.email.Focus()
	case focusLink:
		return m.link.Focus()
	}
	return nil
}

func (m *FormModel) nextBanner(text string) banner {
	m.bannerSeq++
	return banner{text: strings.TrimSpace(text), seq: m.bannerSeq}
}

func (m FormModel) hideAfter(kind bannerKind, seq int) tea.Cmd {
	return tea.Tick(m.bannerDuration, func(time.Time) tea.Msg {
		return hideBannerMsg{kind: kind, seq: seq}
	})
}

func (m FormModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("SaleTracker"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Label.Render("Email"))
	sb.WriteString("\n")
	sb.WriteString(m.email.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Product link"))
	sb.WriteString("\n")
	sb.WriteString(m.link.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.triggerView())
	sb.WriteString("\n")

	if m.errBanner != nil {
		sb.WriteString(m.styles.ErrorBanner.Render(m.errBanner.text))
		sb.WriteString("\n")
	}
	if m.okBanner != nil {
		sb.WriteString(m.styles.SuccessBanner.Render(m.okBanner.text))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Help.Render("tab: next field • enter: submit • ctrl+s: submit • esc: quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m FormModel) triggerView() string {
	switch {
	case m.busy:
		return m.styles.ButtonBusy.Render(labelBusy)
	case m.focus == focusTrigger:
		return m.styles.ButtonFocused.Render(labelIdle)
	default:
		return m.styles.Button.Render(labelIdle)
	}
}
