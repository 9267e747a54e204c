// Package format renders backend values for the terminal.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006 15:04"
	none           = "-"
)

func Date(t time.Time) string {
	if t.IsZero() {
		return none
	}
	return t.Local().Format(DateLayout)
}

func DateTime(t time.Time) string {
	if t.IsZero() {
		return none
	}
	return t.Local().Format(DateTimeLayout)
}

// Relative renders t against now, e.g. "3 hours ago".
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return none
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
}

// Currency formats a whole amount, e.g. Currency(120000, "USD") is "$120,000".
// Unknown codes are written after the number.
func Currency(amount int, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}
	n := humanize.Comma(int64(amount))
	if sym, ok := currencySymbols[code]; ok {
		if amount < 0 {
			return "-" + sym + strings.TrimPrefix(n, "-")
		}
		return sym + n
	}
	return n + " " + code
}

func SalaryRange(lo, hi *int, code string) string {
	switch {
	case lo != nil && hi != nil && *lo == *hi:
		return Currency(*lo, code)
	case lo != nil && hi != nil:
		return Currency(*lo, code) + " - " + Currency(*hi, code)
	case lo != nil:
		return "From " + Currency(*lo, code)
	case hi != nil:
		return "Up to " + Currency(*hi, code)
	}
	return "Not disclosed"
}

func Count(n int) string { return humanize.Comma(int64(n)) }

func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// BarWidth scales value to width with peak filling the whole width. Any
// positive value gets at least one cell.
func BarWidth(value, peak, width int) int {
	if value <= 0 || peak <= 0 || width <= 0 {
		return 0
	}
	if value >= peak {
		return width
	}
	w := int(math.Round(float64(value) / float64(peak) * float64(width)))
	if w < 1 {
		w = 1
	}
	return w
}

func Bar(value, peak, width int) string {
	return strings.Repeat("█", BarWidth(value, peak, width))
}

// BarChart renders one labelled bar per count, scaled to the largest.
func BarChart(counts []dtos.DailyCount, width int) string {
	peak, labelWidth := 0, 0
	for _, c := range counts {
		if c.Count > peak {
			peak = c.Count
		}
		if len(c.Date) > labelWidth {
			labelWidth = len(c.Date)
		}
	}
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "%-*s %s %d\n", labelWidth, c.Date, Bar(c.Count, peak, width), c.Count)
	}
	return b.String()
}

// Retention is the share of a cohort still active, in percent.
func Retention(c dtos.RetentionCohort) float64 {
	if c.Size <= 0 {
		return 0
	}
	return float64(c.Retained) / float64(c.Size) * 100
}

// Growth is the change from previous to current in percent. From zero, any
// increase counts as 100%.
func Growth(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// SignedPercent prefixes growth with its direction.
func SignedPercent(p float64) string {
	if p > 0 {
		return "+" + Percent(p)
	}
	return Percent(p)
}

// HTMLToText flattens a job description to plain lines. Input that is not
// HTML comes back with whitespace tidied.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanLines(html)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("• ")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, ul, ol").AppendHtml("\n")
	return cleanLines(doc.Text())
}

func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate cuts s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
