// Package render formats outcomes and history for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/core"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
)

const (
	// MaxItems is how many directory entries an outcome shows.
	MaxItems = 10
	// MaxHistoryRows is how many entries the history table shows.
	MaxHistoryRows = 10

	defaultWidth = 80
	timeLayout   = "2006-01-02 15:04:05"
)

// Styles defines the colours used by the renderer.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Options configures a Renderer.
type Options struct {
	Width int
	// Markdown renders read file content through glamour.
	Markdown bool
	// MarkdownStyle is a glamour standard style; empty means auto-detect.
	MarkdownStyle string
}

// Renderer formats outcomes and history.
type Renderer struct {
	width    int
	styles   Styles
	markdown *glamour.TermRenderer
}

// New creates a renderer. A markdown renderer that cannot be built degrades
// to plain content.
func New(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	r := &Renderer{
		width:  opts.Width,
		styles: DefaultStyles(),
	}
	if opts.Markdown {
		style := glamour.WithAutoStyle()
		if opts.MarkdownStyle != "" {
			style = glamour.WithStandardStyle(opts.MarkdownStyle)
		}
		term, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(opts.Width))
		if err == nil {
			r.markdown = term
		}
	}
	return r
}

var plain = New(Options{})

// Outcome renders o with the default plain renderer.
func Outcome(o *core.Outcome) string {
	return plain.Outcome(o)
}

// History renders a history summary with the default plain renderer.
func History(summary history.Summary, recent []history.Entry) string {
	return plain.History(summary, recent)
}

// Outcome renders the instruction, the proposal and the result of one
// processed instruction.
func (r *Renderer) Outcome(o *core.Outcome) string {
	if o == nil {
		return ""
	}

	var b strings.Builder
	s := r.styles

	b.WriteString(s.Title.Render("> "+o.Instruction) + "\n")
	if o.Reasoning != "" {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Reasoning:"), o.Reasoning)
	}
	kind := string(o.Action)
	if o.Action == action.Unknown && o.RawAction != "" {
		kind = fmt.Sprintf("%s (%s)", o.Action, o.RawAction)
	}
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Action:"), kind)
	if o.SafetyCheck != "" {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Safety:"), o.SafetyCheck)
	}
	fmt.Fprintf(&b, "%s %.2fs\n", s.Label.Render("Time:"), o.ExecutionTime)

	res := o.Result
	if !res.Success {
		b.WriteString(s.Error.Render("✗ Error: "+res.Error) + "\n")
		return b.String()
	}

	b.WriteString(s.Success.Render("✓ Success") + "\n")
	switch {
	case res.Content != "":
		b.WriteString(r.content(res.Path, res.Content))
	case res.Output != "":
		b.WriteString(strings.TrimRight(res.Output, "\n") + "\n")
	case res.WorkingDir != "":
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Working directory:"), res.WorkingDir)
	case res.Info != nil:
		b.WriteString(r.info(res.Info))
	case res.Items != nil:
		b.WriteString(r.items(res.Items, res.Count))
	}
	if res.Message != "" {
		b.WriteString(res.Message + "\n")
	}

	return b.String()
}

func (r *Renderer) content(path, content string) string {
	if r.markdown != nil && isMarkdown(path) {
		if out, err := r.markdown.Render(content); err == nil {
			return out
		}
	}
	return strings.TrimRight(content, "\n") + "\n"
}

func isMarkdown(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

func (r *Renderer) items(items []action.Item, count int) string {
	if count == 0 {
		return r.styles.Subtle.Render("(empty directory)") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d items:\n", count)
	for i, item := range items {
		if i == MaxItems {
			b.WriteString(r.styles.Subtle.Render(fmt.Sprintf("  ... and %d more", count-MaxItems)) + "\n")
			break
		}
		if item.IsFile {
			fmt.Fprintf(&b, "  [F] %s (%d bytes)\n", item.Name, item.Size)
		} else {
			fmt.Fprintf(&b, "  [D] %s/\n", item.Name)
		}
	}
	return b.String()
}

func (r *Renderer) info(fi *action.FileInfo) string {
	kind := "directory"
	if fi.IsFile {
		kind = "file"
	}
	return fmt.Sprintf("%s (%s, %d bytes, modified %s)\n",
		fi.Path, kind, fi.Size, fi.Modified.Local().Format(timeLayout))
}

// History renders the summary followed by a table of recent, which callers
// usually take from History.Recent(MaxHistoryRows).
func (r *Renderer) History(summary history.Summary, recent []history.Entry) string {
	var b strings.Builder
	s := r.styles

	b.WriteString(s.Title.Render("Action history") + "\n")
	if summary.TotalActions == 0 {
		b.WriteString(s.Subtle.Render("No actions recorded yet.") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Total: %d   %s   %s\n",
		summary.TotalActions,
		s.Success.Render(fmt.Sprintf("Success: %d", summary.SuccessCount)),
		s.Error.Render(fmt.Sprintf("Errors: %d", summary.ErrorCount)))
	fmt.Fprintf(&b, "Total time: %.2fs   Average: %.2fs\n",
		summary.TotalExecutionTime, summary.AverageExecutionTime)
	if summary.FirstAction != nil && summary.LastAction != nil {
		fmt.Fprintf(&b, "First: %s   Last: %s\n",
			formatTime(*summary.FirstAction), formatTime(*summary.LastAction))
	}

	if len(recent) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(s.Subtle.Render(r.row("TIME", "ACTION", "STATUS", "TOOK", "DETAIL")) + "\n")
	for _, e := range recent {
		line := r.row(
			formatTime(e.Timestamp),
			string(e.Action),
			string(e.Status),
			fmt.Sprintf("%.2fs", e.ExecutionTime),
			Detail(e),
		)
		if e.Status == action.StatusError {
			line = s.Error.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

// Column widths of the history table; DETAIL takes the rest.
var columns = []int{19, 21, 7, 7}

func (r *Renderer) row(cells ...string) string {
	var b strings.Builder
	used := 0
	for i, w := range columns {
		b.WriteString(runewidth.FillRight(runewidth.Truncate(cells[i], w, "…"), w))
		b.WriteString(" ")
		used += w + 1
	}
	rest := r.width - used
	if rest < 10 {
		rest = 10
	}
	b.WriteString(runewidth.Truncate(cells[len(cells)-1], rest, "…"))
	return strings.TrimRight(b.String(), " ")
}

// Detail summarizes an entry in one line: the error for failures, otherwise
// the command or path it acted on.
func Detail(e history.Entry) string {
	if e.Status == action.StatusError && e.Result.Error != "" {
		return oneLine(e.Result.Error)
	}
	if cmd := e.Parameters.String("command", ""); cmd != "" {
		return oneLine(cmd)
	}
	if path := e.Parameters.String("path", ""); path != "" {
		return path
	}
	return oneLine(e.Result.Message)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
