// Package tui is an interactive terminal form for reading and writing
// reviews on top of a RatingAggregator.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/godilite/review-server/internal/render"
	"github.com/godilite/review-server/internal/service"
)

type field int

const (
	fieldStars field = iota
	fieldName
	fieldText
	fieldCount
)

const hintIncomplete = "Pick a rating and fill in your name and review."

type viewMsg service.View

type loadedMsg struct{}

type submittedMsg struct{ err error }

// viewSink keeps only the latest snapshot so the aggregator never blocks on
// a slow event loop.
type viewSink struct {
	ch chan service.View
}

func newViewSink() *viewSink {
	return &viewSink{ch: make(chan service.View, 1)}
}

func (s *viewSink) Render(v service.View) {
	for {
		select {
		case s.ch <- v:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

func (s *viewSink) wait() tea.Cmd {
	return func() tea.Msg {
		return viewMsg(<-s.ch)
	}
}

type Model struct {
	ctx      context.Context
	agg      *service.RatingAggregator
	renderer *render.Renderer
	sink     *viewSink

	name  textinput.Model
	text  textinput.Model
	focus field

	view     service.View
	hint     string
	quitting bool

	// submitting is set from ctrl+s until its submittedMsg arrives.
	submitting bool
}

// NewModel attaches itself as the aggregator's renderer.
func NewModel(ctx context.Context, agg *service.RatingAggregator, r *render.Renderer) Model {
	if agg == nil {
		panic("nil RatingAggregator provided to NewModel")
	}
	if r == nil {
		r = render.New(render.DefaultStyles())
	}

	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 80
	name.Width = 40

	text := textinput.New()
	text.Placeholder = "Share your experience..."
	text.CharLimit = 1000
	text.Width = 60

	sink := newViewSink()
	agg.SetRenderer(sink)

	return Model{
		ctx:      ctx,
		agg:      agg,
		renderer: r,
		sink:     sink,
		name:     name,
		text:     text,
		view:     agg.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sink.wait(), m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		m.agg.LoadReviews(m.ctx)
		return loadedMsg{}
	}
}

func (m Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.agg.SubmitReview(m.ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = service.View(msg)
		return m, m.sink.wait()

	case loadedMsg:
		m.view = m.agg.Snapshot()
		return m, nil

	case submittedMsg:
		m.submitting = false
		m.view = m.agg.Snapshot()
		switch {
		case msg.err == nil:
			m.name.SetValue("")
			m.text.SetValue("")
			m.hint = ""
		case errors.Is(msg.err, service.ErrNotSubmittable):
			m.hint = hintIncomplete
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		if m.submitting {
			return m, nil
		}
		if !m.agg.IsSubmittable() {
			if !m.view.Input.Submitting {
				m.hint = hintIncomplete
			}
			return m, nil
		}
		m.hint = ""
		m.submitting = true
		return m, m.submit()
	case "ctrl+r":
		m.agg.ClearForm()
		m.name.SetValue("")
		m.text.SetValue("")
		m.hint = ""
		m.view = m.agg.Snapshot()
		return m, nil
	}

	if m.focus == fieldStars {
		return m.handleStarKey(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) handleStarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	display := m.view.Input.DisplayRating()

	switch key := msg.String(); key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		_ = m.agg.PreviewRating(max(service.MinRating, display-1))
	case "right", "l":
		_ = m.agg.PreviewRating(min(service.MaxRating, max(service.MinRating, display+1)))
	case "enter", " ":
		if display >= service.MinRating {
			_ = m.agg.SetRating(display)
		}
	case "esc":
		m.agg.ClearPreview()
	case "1", "2", "3", "4", "5":
		_ = m.agg.SetRating(int(key[0] - '0'))
	default:
		return m, nil
	}

	m.view = m.agg.Snapshot()
	return m, nil
}

func (m Model) setFocus(f field) (tea.Model, tea.Cmd) {
	m.focus = f
	m.name.Blur()
	m.text.Blur()

	// Leaving the stars drops any hover preview.
	if f != fieldStars && m.view.Input.PreviewRating > 0 {
		m.agg.ClearPreview()
		m.view = m.agg.Snapshot()
	}

	switch f {
	case fieldName:
		return m, m.name.Focus()
	case fieldText:
		return m, m.text.Focus()
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case fieldName:
		before := m.name.Value()
		m.name, cmd = m.name.Update(msg)
		if v := m.name.Value(); v != before {
			m.agg.SetName(v)
			m.view = m.agg.Snapshot()
		}
	case fieldText:
		before := m.text.Value()
		m.text, cmd = m.text.Update(msg)
		if v := m.text.Value(); v != before {
			m.agg.SetText(v)
			m.view = m.agg.Snapshot()
		}
	}
	return m, cmd
}

func (m Model) marker(f field) string {
	if m.focus == f {
		return "> "
	}
	return "  "
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderer.View(m.view))
	b.WriteString("\n")

	b.WriteString(m.marker(fieldStars) + "Rating  " + m.renderer.Input(m.view.Input) + "\n")
	b.WriteString(m.marker(fieldName) + "Name    " + m.name.View() + "\n")
	b.WriteString(m.marker(fieldText) + "Review  " + m.text.View() + "\n\n")

	if m.hint != "" {
		b.WriteString(m.hint + "\n")
	}

	submit := "ctrl+s submit"
	if !m.view.Submittable {
		submit = "ctrl+s submit (incomplete)"
	}
	b.WriteString(submit + " • ctrl+r reset • tab next field • ←/→ rate • ctrl+c quit\n")
	return b.String()
}

// Run blocks until the user quits.
func Run(ctx context.Context, agg *service.RatingAggregator, r *render.Renderer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(ctx, agg, r), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
