package render

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/godilite/review-server/internal/service"
)

const (
	starGlyph      = "★"
	emptyStarGlyph = "☆"
	barWidth       = 20

	EmptyMessage = "No reviews yet. Be the first to review!"
)

type Renderer struct {
	styles Styles
}

func New(styles Styles) *Renderer {
	return &Renderer{styles: styles}
}

// Sanitize drops control characters from user supplied text so it cannot
// move the cursor or recolor the terminal. Newlines survive.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Stars draws MaxRating glyphs with the first filled ones highlighted.
func (r *Renderer) Stars(filled int) string {
	filled = max(0, min(filled, service.MaxRating))
	return r.styles.StarFilled.Render(strings.Repeat(starGlyph, filled)) +
		r.styles.StarEmpty.Render(strings.Repeat(emptyStarGlyph, service.MaxRating-filled))
}

func countLabel(total int) string {
	if total == 1 {
		return "(1 review)"
	}
	return fmt.Sprintf("(%d reviews)", total)
}

func (r *Renderer) bar(percent float64) string {
	filled := int(math.Round(percent / 100 * barWidth))
	filled = max(0, min(filled, barWidth))
	return r.styles.BarFilled.Render(strings.Repeat("█", filled)) +
		r.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
}

// Summary renders the overall average and the distribution from 5 to 1.
func (r *Renderer) Summary(a service.AggregateState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n",
		r.styles.Average.Render(fmt.Sprintf("%.1f", a.AverageRating)),
		r.Stars(int(math.Round(a.AverageRating))),
		r.styles.Muted.Render(countLabel(a.Total)))

	stars := a.Stars
	if len(stars) == 0 {
		stars = service.ComputeStarCounts(nil)
	}
	for _, s := range stars {
		fmt.Fprintf(&b, "%d %s %s %3.0f%% %s\n",
			s.Star, starGlyph, r.bar(s.Percent), s.Percent,
			r.styles.Muted.Render(fmt.Sprintf("(%d)", s.Count)))
	}
	return b.String()
}

// Reviews renders the list in the order given.
func (r *Renderer) Reviews(reviews []service.Review) string {
	if len(reviews) == 0 {
		return r.styles.Muted.Render(EmptyMessage) + "\n"
	}

	var b strings.Builder
	for i, rv := range reviews {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n",
			r.styles.Author.Render(Sanitize(rv.Name)),
			r.styles.Muted.Render(Sanitize(rv.Date)))
		b.WriteString(r.styles.StarFilled.Render(strings.Repeat(starGlyph, max(0, rv.Rating))))
		b.WriteString("\n")
		b.WriteString(r.styles.Text.Render(`"` + Sanitize(rv.Text) + `"`))
		b.WriteString("\n")
	}
	return b.String()
}

// Input renders the star picker with the label of the highlighted rating.
func (r *Renderer) Input(in service.InputSelection) string {
	rating := in.DisplayRating()
	label := service.RatingLabel(rating)
	if rating > 0 {
		label = fmt.Sprintf("%d - %s", rating, label)
	}
	return fmt.Sprintf("%s %s", r.Stars(rating), r.styles.Label.Render(label))
}

// Status renders the notice, colored by whether the last submit failed.
func (r *Renderer) Status(v service.View) string {
	switch {
	case v.Input.Submitting:
		return r.styles.Muted.Render("Submitting...")
	case v.Notice == "":
		return ""
	case v.LastError != nil:
		return r.styles.Error.Render(v.Notice)
	default:
		return r.styles.Notice.Render(v.Notice)
	}
}

// View renders the complete screen for one snapshot.
func (r *Renderer) View(v service.View) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Customer Reviews"))
	b.WriteString("\n\n")
	b.WriteString(r.Summary(v.Aggregate))
	b.WriteString("\n")
	b.WriteString(r.Reviews(v.Aggregate.Reviews))
	if status := r.Status(v); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
		b.WriteString("\n")
	}
	return b.String()
}

// ErrorText gives a short line for a failed store operation.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrStoreRejected):
		return service.NoticeRejected
	case errors.Is(err, service.ErrStoreUnavailable):
		return service.NoticeSubmitRetry
	default:
		return err.Error()
	}
}
