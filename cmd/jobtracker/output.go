package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/justsurfingit/job-tracker-client/internal/api"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF5F00", Dark: "#FFAF5F"})
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Nothing to show."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headingStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func printHeading(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
}

// printPageFooter shows where a paginated listing is.
func printPageFooter(w io.Writer, p *api.Pager) {
	if p.Total == 0 {
		return
	}
	from, to := p.Range()
	line := fmt.Sprintf("%d-%d of %d (page %d/%d)", from, to, p.Total, p.Page, p.Pages())
	if p.HasNext() {
		line += fmt.Sprintf(", next: --page %d", p.Page+1)
	}
	fmt.Fprintln(w, dimStyle.Render(line))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func pagerFor(page, pageSize, total int) *api.Pager {
	p := api.NewPager(pageSize)
	p.Observe(page, pageSize, total)
	return p
}
