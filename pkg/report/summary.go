package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-botgraph/pkg/characterize"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

// Summary sizes.
const (
	SummaryFeatures    = 5
	TopDistinguishing  = 10
	MostCommonFeatures = 5
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)
)

// table lays out rows under header with left-aligned, space-padded columns.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = lipgloss.NewStyle().Width(widths[i]).Render(c)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(line(header)))
	for _, row := range rows {
		sb.WriteString("\n")
		sb.WriteString(line(row))
	}
	return sb.String()
}

// FeatureSummary renders the most universal and the most domain specific
// features.
func FeatureSummary(records []stats.FeatureStats) string {
	var universal, specific [][]string
	for _, r := range stats.Universal(records, SummaryFeatures) {
		universal = append(universal, []string{r.Feature, round3(r.Ubiquity), round3(r.Entropy)})
	}
	for _, r := range stats.DomainSpecific(records, stats.DomainSpecificThreshold, SummaryFeatures) {
		specific = append(specific, []string{r.Feature, r.TopDomain, round3(r.Concentration)})
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Top Universal Features"))
	sb.WriteString("\n")
	sb.WriteString(table([]string{"Feature", "Ubiquity", "Entropy"}, universal))
	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("Top Domain Specific Features"))
	sb.WriteString("\n")
	if len(specific) == 0 {
		sb.WriteString(mutedStyle.Render("none below entropy " + round3(stats.DomainSpecificThreshold)))
	} else {
		sb.WriteString(table([]string{"Feature", "Top_Domain", "Domain_Concentration"}, specific))
	}
	return sb.String()
}

// ClusterSummary renders every cluster with its members, its most
// distinguishing features and its most common features.
func ClusterSummary(profile *characterize.ClusterProfile) string {
	blocks := make([]string, 0, len(profile.Clusters))
	for _, c := range profile.Clusters {
		var sb strings.Builder
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Cluster %d [%d]", c.Label, c.Size)))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(c.Members, ", "))
		sb.WriteString("\n\n")

		var top [][]string
		for _, p := range profile.TopDistinguishing(c.Label, TopDistinguishing) {
			top = append(top, []string{p.Feature, round3(p.ClusterPresence), round3(p.GlobalPresence), round3(p.Diff)})
		}
		sb.WriteString(mutedStyle.Render("Top distinguishing features"))
		sb.WriteString("\n")
		sb.WriteString(table([]string{"Feature", "Cluster_Presence", "Global_Presence", "Diff_From_Global"}, top))
		sb.WriteString("\n\n")

		var common [][]string
		for _, p := range profile.MostCommon(c.Label, MostCommonFeatures) {
			common = append(common, []string{p.Feature, round3(p.ClusterPresence), round3(p.GlobalPresence)})
		}
		sb.WriteString(mutedStyle.Render("Most common features"))
		sb.WriteString("\n")
		sb.WriteString(table([]string{"Feature", "Cluster_Presence", "Global_Presence"}, common))

		blocks = append(blocks, boxStyle.Render(sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// ExplanationSummary renders the decision tree and its rules.
func ExplanationSummary(e *characterize.Explanation) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Decision Tree"))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  (accuracy %s)", round3(e.Accuracy))))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(e.Text, "\n"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("Rules"))
	for _, r := range e.Rules {
		sb.WriteString("\n")
		sb.WriteString(r.String())
	}
	return sb.String()
}
