package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godilite/review-server/internal/render"
	"github.com/godilite/review-server/internal/repository/models"
	"github.com/godilite/review-server/internal/service"
	"github.com/godilite/review-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestModel(t *testing.T, store service.ReviewStore) (Model, *service.RatingAggregator) {
	t.Helper()
	agg := service.NewRatingAggregator(store, zap.NewNop())
	return NewModel(context.Background(), agg, render.New(render.PlainStyles())), agg
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}
	return m
}

func TestNewModel_PanicsOnNilAggregator(t *testing.T) {
	assert.PanicsWithValue(t, "nil RatingAggregator provided to NewModel", func() {
		NewModel(context.Background(), nil, nil)
	})
}

func TestViewSink_KeepsLatest(t *testing.T) {
	sink := newViewSink()
	sink.Render(service.View{Notice: "first"})
	sink.Render(service.View{Notice: "second"})

	msg := sink.wait()()
	assert.Equal(t, "second", service.View(msg.(viewMsg)).Notice)
}

func TestStarKeys(t *testing.T) {
	m, agg := newTestModel(t, mocks.NewMemoryStore(nil))

	t.Run("digit commits", func(t *testing.T) {
		m = press(t, m, runes("3"))
		assert.Equal(t, 3, agg.Snapshot().Input.CurrentRating)
	})

	t.Run("arrows preview without committing", func(t *testing.T) {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
		in := agg.Snapshot().Input
		assert.Equal(t, 5, in.PreviewRating)
		assert.Equal(t, 3, in.CurrentRating)
		assert.Contains(t, m.View(), "★★★★★ 5 - Excellent")
	})

	t.Run("right stops at five", func(t *testing.T) {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
		assert.Equal(t, 5, agg.Snapshot().Input.PreviewRating)
	})

	t.Run("esc clears the preview", func(t *testing.T) {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		in := agg.Snapshot().Input
		assert.Equal(t, 0, in.PreviewRating)
		assert.Contains(t, m.View(), "★★★☆☆ 3 - Good")
	})

	t.Run("enter commits the preview", func(t *testing.T) {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, 2, agg.Snapshot().Input.CurrentRating)
	})
}

func TestFocusAndTyping(t *testing.T) {
	m, agg := newTestModel(t, mocks.NewMemoryStore(nil))

	m = press(t, m, runes("4"), tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldName, m.focus)
	assert.Equal(t, 0, agg.Snapshot().Input.PreviewRating, "leaving the stars drops the preview")

	m = typeText(t, m, "Ann")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Solid 5")

	in := agg.Snapshot().Input
	assert.Equal(t, "Ann", in.Name)
	assert.Equal(t, "Solid 5", in.Text)
	assert.Equal(t, 4, in.CurrentRating, "digits typed in a text field do not rate")
	assert.True(t, agg.IsSubmittable())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldStars, m.focus)
}

func TestSubmit(t *testing.T) {
	t.Run("incomplete form shows a hint", func(t *testing.T) {
		store := &mocks.MockReviewStore{}
		m, _ := newTestModel(t, store)

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		m = next.(Model)

		assert.Nil(t, cmd)
		assert.Equal(t, hintIncomplete, m.hint)
		assert.Contains(t, m.View(), hintIncomplete)
		assert.Equal(t, int32(0), store.CreateCalls.Load())
	})

	t.Run("success clears inputs and shows the new review", func(t *testing.T) {
		m, agg := newTestModel(t, mocks.NewMemoryStore(nil))

		m = press(t, m, runes("5"), tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Bea")
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Great")

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		require.NotNil(t, cmd)
		next, _ = next.(Model).Update(cmd())
		m = next.(Model)

		assert.Empty(t, m.name.Value())
		assert.Empty(t, m.text.Value())
		assert.Equal(t, 1, agg.Snapshot().Aggregate.Total)

		out := m.View()
		assert.Contains(t, out, service.NoticeSubmitted)
		assert.Contains(t, out, "\"Great\"")
	})

	t.Run("second ctrl+s while submitting is ignored", func(t *testing.T) {
		store := mocks.NewMemoryStore(nil)
		m, agg := newTestModel(t, store)

		m = press(t, m, runes("4"), tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Dee")
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Solid")

		next, first := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		require.NotNil(t, first)
		next, second := next.(Model).Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Nil(t, second)

		next, _ = next.(Model).Update(first())
		m = next.(Model)

		assert.Empty(t, m.hint)
		assert.Equal(t, 1, agg.Snapshot().Aggregate.Total)
		out := m.View()
		assert.Contains(t, out, service.NoticeSubmitted)
		assert.NotContains(t, out, hintIncomplete)

		// Once the result is in, ctrl+s on the cleared form hints again.
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Nil(t, cmd)
		assert.Equal(t, hintIncomplete, next.(Model).hint)
	})

	t.Run("failure keeps inputs", func(t *testing.T) {
		store := &mocks.MockReviewStore{
			CreateFunc: func(ctx context.Context, doc models.ReviewDocument) (string, error) {
				return "", errors.New("connection refused")
			},
		}
		m, agg := newTestModel(t, store)

		m = press(t, m, runes("2"), tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Cy")
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "Too slow")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		require.NotNil(t, cmd)
		msg := cmd().(submittedMsg)
		assert.ErrorIs(t, msg.err, service.ErrStoreUnavailable)

		next, _ := m.Update(msg)
		m = next.(Model)

		assert.Equal(t, "Cy", m.name.Value())
		assert.Equal(t, "Too slow", m.text.Value())
		assert.Equal(t, 2, agg.Snapshot().Input.CurrentRating)
		assert.Contains(t, m.View(), service.NoticeSubmitRetry)
	})
}

func TestReset(t *testing.T) {
	m, agg := newTestModel(t, mocks.NewMemoryStore(nil))

	m = press(t, m, runes("4"), tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Dee")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, service.InputSelection{}, agg.Snapshot().Input)
	assert.Empty(t, m.name.Value())
}

func TestLoadAndView(t *testing.T) {
	store := mocks.NewMemoryStore(map[string]models.ReviewDocument{
		"a": {Name: "Eve", Rating: 4, Text: "Nice", Date: "3/1/2025", Timestamp: 100},
	})
	m, _ := newTestModel(t, store)

	assert.Contains(t, m.View(), render.EmptyMessage)

	next, _ := m.Update(m.load()())
	m = next.(Model)

	out := m.View()
	assert.Contains(t, out, "4.0 ★★★★☆ (1 review)")
	assert.Contains(t, out, "Eve  3/1/2025")
	assert.True(t, strings.HasPrefix(out, "Customer Reviews"))
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, mocks.NewMemoryStore(nil))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(Model).View())
}
