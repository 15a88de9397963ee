package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + strings.TrimRight(content, "\n"))
	}
	return boxStyle.Render(strings.TrimRight(content, "\n"))
}

// Money formats an amount with two decimals and thousands separators,
// e.g. "1,234,567.50" or "-200.00".
func Money(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := fmt.Sprintf("%d", cents/100)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("%s.%02d", b.String(), cents%100)
	if neg {
		return "-" + out
	}
	return out
}

// DaysLeft describes a day count relative to a deadline.
func DaysLeft(days int) string {
	switch {
	case days > 1:
		return fmt.Sprintf("%d days remaining", days)
	case days == 1:
		return "1 day remaining"
	case days == 0:
		return "due today"
	case days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -days)
	}
}

// DaysLeftStyled colors DaysLeft by urgency.
func DaysLeftStyled(days int) string {
	text := DaysLeft(days)
	switch {
	case days < 0:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// FormatDate renders a calendar date, or a dim placeholder when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Dim("--")
	}
	return t.Format("2006-01-02")
}
