// Package ui renders boards and status lines for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/flowboard/flowboard/internal/model"
)

var (
	accentColor = lipgloss.Color("63")
	passColor   = lipgloss.Color("42")
	warnColor   = lipgloss.Color("214")
	failColor   = lipgloss.Color("196")
	mutedColor  = lipgloss.Color("241")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	doneStyle   = lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true)
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// DisableColor forces plain output regardless of the terminal.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// RenderAccent renders s in the accent color.
func RenderAccent(s string) string {
	return lipgloss.NewStyle().Foreground(accentColor).Render(s)
}

// RenderPass renders s in the success color.
func RenderPass(s string) string {
	return lipgloss.NewStyle().Foreground(passColor).Render(s)
}

// RenderWarn renders s in the warning color.
func RenderWarn(s string) string {
	return lipgloss.NewStyle().Foreground(warnColor).Render(s)
}

// RenderFail renders s in the failure color.
func RenderFail(s string) string {
	return lipgloss.NewStyle().Foreground(failColor).Render(s)
}

// RenderMuted renders s dimmed.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// Options selects what RenderDocument includes.
type Options struct {
	// ColumnWidth is the inner width of each board column (default 28)
	ColumnWidth int
	// Sections limits output to "board", "notes" and/or "todo"; empty means all
	Sections []string
}

func (o Options) wants(section string) bool {
	if len(o.Sections) == 0 {
		return true
	}
	for _, s := range o.Sections {
		if strings.EqualFold(s, section) {
			return true
		}
	}
	return false
}

// RenderDocument renders the board as side-by-side columns followed by notes and todos.
func RenderDocument(doc model.Document, opts Options) string {
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = 28
	}

	var parts []string
	if opts.wants("board") {
		parts = append(parts, RenderBoard(doc.Board, opts.ColumnWidth))
	}
	if opts.wants("notes") {
		parts = append(parts, renderNotes(doc.Notes))
	}
	if opts.wants("todo") {
		parts = append(parts, renderTodos(doc))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// RenderBoard joins one bordered block per column.
func RenderBoard(board model.Board, width int) string {
	views := make([]string, 0, len(board.Columns))
	for _, col := range board.Columns {
		views = append(views, renderColumn(col, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func renderColumn(col model.Column, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks))))
	if len(col.Tasks) == 0 {
		b.WriteString("\n" + mutedStyle.Render("empty"))
	}
	for _, task := range col.Tasks {
		b.WriteString("\n" + renderItem(task.Completed, task.Title, task.Description))
	}
	return columnStyle.Width(width).Render(b.String())
}

func renderNotes(notes []model.Note) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Notes"))
	if len(notes) == 0 {
		b.WriteString("\n" + mutedStyle.Render("  none"))
	}
	for _, note := range notes {
		line := "  • " + note.Title
		if note.Content != "" {
			line += " " + mutedStyle.Render(note.Content)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// renderTodos lists pending items before completed ones.
func renderTodos(doc model.Document) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Todo"))
	if len(doc.Todos) == 0 {
		b.WriteString("\n" + mutedStyle.Render("  none"))
	}
	for _, item := range doc.PendingTodos() {
		b.WriteString("\n  " + renderItem(false, item.Title, item.Description))
	}
	for _, item := range doc.CompletedTodos() {
		b.WriteString("\n  " + renderItem(true, item.Title, item.Description))
	}
	return b.String()
}

func renderItem(completed bool, title, description string) string {
	if completed {
		return RenderPass("✓") + " " + doneStyle.Render(title)
	}
	line := "○ " + title
	if description != "" {
		line += " " + mutedStyle.Render(description)
	}
	return line
}
