package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/mediaid"
	"github.com/llehouerou/odeon/internal/queue"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// renderItems prints one line per item: address, title, then details.
func renderItems(items []catalog.Item) string {
	if len(items) == 0 {
		return subtitleStyle.Render("(nothing here)") + "\n"
	}

	width := 0
	for _, it := range items {
		width = max(width, lipgloss.Width(it.ID.String()))
	}

	var sb strings.Builder
	for _, it := range items {
		id := it.ID.String()
		sb.WriteString(idStyle.Render(id + strings.Repeat(" ", width-lipgloss.Width(id))))
		sb.WriteString("  ")
		sb.WriteString(titleStyle.Render(itemTitle(it)))
		if details := itemDetails(it); details != "" {
			sb.WriteString("  ")
			sb.WriteString(subtitleStyle.Render(details))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func itemTitle(it catalog.Item) string {
	if it.TrackNumber > 0 {
		return fmt.Sprintf("%02d - %s", it.TrackNumber, it.Title)
	}
	return it.Title
}

func itemDetails(it catalog.Item) string {
	var parts []string
	if it.Subtitle != "" {
		parts = append(parts, it.Subtitle)
	}
	if it.AlbumCount > 0 {
		parts = append(parts, plural(it.AlbumCount, "album"))
	}
	if it.Browsable && it.TrackCount > 0 {
		parts = append(parts, plural(it.TrackCount, "track"))
	}
	if it.Browsable && it.Duration > 0 {
		parts = append(parts, catalog.FormatElapsed(it.Duration))
	}
	return strings.Join(parts, " · ")
}

func plural(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return humanize.Comma(int64(n)) + " " + noun
}

// renderQueue prints the queue with the selected item marked.
func renderQueue(q *queue.Queue) string {
	header := q.Title + "  " + subtitleStyle.Render(plural(q.Len(), "track"))
	if q.Shuffled() {
		header += subtitleStyle.Render(" · shuffled")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")

	current := q.CurrentIndex()
	for i, it := range q.Items() {
		marker := "  "
		if i == current {
			marker = currentStyle.Render("▶ ")
		}
		sb.WriteString(marker)
		sb.WriteString(fmt.Sprintf("%3d. %s  %s", i+1, it.Track.Title, subtitleStyle.Render(it.Track.Artist)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderTrack prints a single track addressed by id.
func renderTrack(id mediaid.ID, t catalog.Track) string {
	return fmt.Sprintf("%s  %s  %s\n",
		idStyle.Render(id.String()),
		titleStyle.Render(t.Title),
		subtitleStyle.Render(strings.Join([]string{t.Artist, t.Album, catalog.FormatElapsed(t.Duration)}, " · ")),
	)
}

// renderStats prints catalog counts and how the last load went.
func renderStats(c *catalog.Catalog, stats catalog.LoadStats) string {
	var total time.Duration
	for _, a := range c.Albums() {
		total += a.Duration
	}

	rows := [][2]string{
		{"state", c.State().String()},
		{"generation", humanize.Comma(int64(c.Generation()))},
		{"tracks", humanize.Comma(int64(c.Len()))},
		{"albums", humanize.Comma(int64(len(c.Albums())))},
		{"artists", humanize.Comma(int64(len(c.Artists())))},
		{"playing time", catalog.FormatElapsed(total)},
		{"skipped rows", humanize.Comma(int64(stats.Skipped))},
		{"load time", stats.Duration.Round(time.Millisecond).String()},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(idStyle.Render(fmt.Sprintf("%-13s", r[0])))
		sb.WriteString(r[1])
		sb.WriteString("\n")
	}
	return sb.String()
}
