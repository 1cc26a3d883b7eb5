// Package ui renders outcomes and tables for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/m44rten1/groundwork/internal/config"
	"github.com/m44rten1/groundwork/internal/core"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FormatOutcome renders the one-line result of a repository, followed by an
// indented line per warning.
func FormatOutcome(o core.Outcome) string {
	switch v := o.(type) {
	case core.Succeeded:
		branch := v.Branch
		if branch == "" {
			branch = "detached HEAD"
		}
		lines := []string{fmt.Sprintf("%s %s: on %s", successStyle.Render("✓"), v.Repo, branch)}
		for _, w := range v.Warnings {
			lines = append(lines, fmt.Sprintf("  %s %s", warnStyle.Render("!"), w))
		}
		return strings.Join(lines, "\n")

	case core.Skipped:
		return fmt.Sprintf("%s %s: needs your attention: %s", warnStyle.Render("~"), v.Repo, v.Reason)

	case core.Failed:
		return fmt.Sprintf("%s %s: %s", failStyle.Render("✗"), v.Repo, v.Message())

	default:
		return fmt.Sprintf("? %s", o.RepoName())
	}
}

// FormatCounts renders the run summary line.
func FormatCounts(c core.Counts) string {
	parts := []string{
		successStyle.Render(fmt.Sprintf("%d succeeded", c.Succeeded)),
		warnStyle.Render(fmt.Sprintf("%d skipped", c.Skipped)),
	}
	failed := fmt.Sprintf("%d failed", c.Failed)
	if c.Failed > 0 {
		failed = failStyle.Render(failed)
	}
	parts = append(parts, failed)
	return fmt.Sprintf("%s (%d total)", strings.Join(parts, ", "), c.Total)
}

// RenderStatusTable writes one row per repository state.
func RenderStatusTable(w io.Writer, states []core.RepositoryState) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"REPOSITORY", "CLONED", "CURRENT", "RESOLVED", "LOCAL CHANGES", "IN SYNC"})
	for _, st := range states {
		if !st.Exists {
			t.AppendRow(table.Row{st.Name, "no", "-", "-", "-", "no"})
			continue
		}
		t.AppendRow(table.Row{
			st.Name,
			"yes",
			orDash(st.CurrentBranch, "detached"),
			orDash(st.ResolvedBranch, "none"),
			yesNo(st.HasLocalChanges),
			yesNo(st.OnResolvedBranch()),
		})
	}
	t.Render()
}

// RenderManifestTable writes the manifest's repositories and branch candidates.
func RenderManifestTable(w io.Writer, m *config.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"REPOSITORY", "PRIMARY URL", "FALLBACK URL"})
	for _, repo := range m.Repositories {
		t.AppendRow(table.Row{repo.Name, repo.PrimaryURL, orDash(repo.FallbackURL, "-")})
	}
	t.AppendFooter(table.Row{"branches", strings.Join(m.Branches, " > "), dimStyle.Render(m.Source)})
	t.Render()
}

func orDash(s, empty string) string {
	if s == "" {
		return empty
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
