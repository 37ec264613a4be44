package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/direitospcd/pcdserve/pkg/analyze"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/index"
	"github.com/direitospcd/pcdserve/pkg/rank"
)

type styles struct {
	id    lipgloss.Style
	score lipgloss.Style
	muted lipgloss.Style
	place lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{id: plain, score: plain, muted: plain, place: plain}
	}
	return styles{
		id:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		score: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d7827e", Dark: "#ebbcba"}),
		muted: lipgloss.NewStyle().Faint(true),
		place: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"}),
	}
}

// resultRow renders one ranked category with its reasons.
func (s styles) resultRow(i int, r rank.Result, cat *catalog.Catalog) string {
	title := r.Category
	if c, ok := cat.Category(r.Category); ok {
		title = c.Title
	}
	row := fmt.Sprintf("%2d. %s %s %s", i+1,
		s.id.Render(fmt.Sprintf("%-22s", r.Category)),
		s.score.Render(fmt.Sprintf("%6.1f", r.Score)),
		title)
	if len(r.Reasons) > 0 {
		row += " " + s.muted.Render("("+reasonSummary(r.Reasons)+")")
	}
	return row
}

func reasonSummary(reasons []rank.Reason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		label := string(r.Kind)
		switch {
		case r.Keyword != "" && r.Keyword != r.Term:
			label += ":" + r.Term + "→" + r.Keyword
		case r.Term != "":
			label += ":" + r.Term
		}
		parts = append(parts, fmt.Sprintf("%s %+g", label, r.Points))
	}
	return strings.Join(parts, ", ")
}

func (s styles) locationLine(resp rank.Response) string {
	if resp.Location == nil {
		return ""
	}
	line := fmt.Sprintf("Local: %s (%s, %s)", resp.Location.Name, resp.Location.UF, resp.Location.Kind)
	if resp.Listing {
		line += " · direitos federais valem em todo o país"
	}
	return s.place.Render(line)
}

func (s styles) suggestionRow(i int, sg index.Suggestion) string {
	return fmt.Sprintf("%2d. %s %s", i+1, s.id.Render(sg.Word), s.muted.Render(fmt.Sprintf("(peso %d)", sg.Weight)))
}

func (s styles) analysisRow(i int, r analyze.Result) string {
	return fmt.Sprintf("%2d. %s %s %s", i+1,
		s.id.Render(fmt.Sprintf("%-22s", r.Category)),
		s.score.Render(fmt.Sprintf("%4d", r.Score)),
		s.muted.Render(strings.Join(r.Matches, ", ")))
}
