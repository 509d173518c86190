package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse feature metrics and cluster assignments in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			alg, err := a.cfg.DefaultAlgorithm()
			if err != nil {
				return err
			}
			m := newBrowseModel(g, alg, a.cfg.ClusteringOptions)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	featuresView view = iota
	clustersView
	viewCount
)

var viewNames = [...]string{
	featuresView: "Features",
	clustersView: "Clusters",
}

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Algorithm key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Algorithm: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "next algorithm"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Algorithm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Algorithm},
		{k.Up, k.Down},
		{k.Quit},
	}
}

// optionsFunc returns the clustering options for an algorithm; k = 0 keeps
// the configured default.
type optionsFunc func(alg clustering.Algorithm, k int) clustering.Options

// clusteredMsg carries the outcome of a clustering run back to Update.
type clusteredMsg struct {
	alg clustering.Algorithm
	res *clustering.Result
	err error
}

type browseModel struct {
	graph    *graph.Graph
	options  optionsFunc
	alg      clustering.Algorithm
	running  bool
	clusters int
	err      error

	currentView   view
	featureTable  table.Model
	clusterTable  table.Model
	help          help.Model
	keys          keyMap
	width, height int
}

func newBrowseModel(g *graph.Graph, alg clustering.Algorithm, opts optionsFunc) browseModel {
	features := newTable([]table.Column{
		{Title: "Feature", Width: 32},
		{Title: "Ubiquity", Width: 9},
		{Title: "Bots", Width: 6},
		{Title: "Entropy", Width: 8},
		{Title: "Top Domain", Width: 20},
		{Title: "Concentration", Width: 13},
	})
	features.SetRows(featureRows(stats.SortForReport(stats.Compute(matrix.Build(g)))))

	clusters := newTable([]table.Column{
		{Title: "Cluster", Width: 8},
		{Title: "Bot", Width: 24},
		{Title: "Label", Width: 28},
		{Title: "Domain", Width: 20},
	})
	clusters.Blur()

	return browseModel{
		graph:        g,
		options:      opts,
		alg:          alg,
		running:      true,
		featureTable: features,
		clusterTable: clusters,
		help:         help.New(),
		keys:         keys,
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func featureRows(records []stats.FeatureStats) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Feature,
			strconv.FormatFloat(r.Ubiquity, 'f', 3, 64),
			strconv.Itoa(r.Occurrences),
			strconv.FormatFloat(r.Entropy, 'f', 3, 64),
			r.TopDomain,
			strconv.FormatFloat(r.Concentration, 'f', 3, 64),
		})
	}
	return rows
}

// clusterRows lists bots by cluster, then by id.
func clusterRows(g *graph.Graph, labels clustering.Assignment) []table.Row {
	bots := make([]string, 0, len(labels))
	for bot := range labels {
		bots = append(bots, bot)
	}
	sort.Slice(bots, func(i, j int) bool {
		if labels[bots[i]] != labels[bots[j]] {
			return labels[bots[i]] < labels[bots[j]]
		}
		return bots[i] < bots[j]
	})

	domains := g.BotDomains()
	rows := make([]table.Row, 0, len(bots))
	for _, bot := range bots {
		label := bot
		if n, ok := g.Find(bot); ok && n.Label != "" {
			label = n.Label
		}
		domain := stats.UnknownDomain
		if d, ok := domains[bot]; ok {
			domain = d
		}
		rows = append(rows, table.Row{strconv.Itoa(labels[bot]), bot, label, domain})
	}
	return rows
}

// runClustering clusters the graph off the update loop.
func (m browseModel) runClustering() tea.Cmd {
	g, alg, opts := m.graph, m.alg, m.options(m.alg, 0)
	return func() tea.Msg {
		res, err := clustering.Run(g, alg, opts)
		return clusteredMsg{alg: alg, res: res, err: err}
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.runClustering()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 12; h > 3 {
			m.featureTable.SetHeight(h)
			m.clusterTable.SetHeight(h)
		}

	case clusteredMsg:
		// A result for an algorithm the user has already moved past is stale.
		if msg.alg != m.alg {
			return m, nil
		}
		m.running = false
		m.err = msg.err
		if msg.err != nil {
			m.clusters = 0
			m.clusterTable.SetRows(nil)
			return m, nil
		}
		m.clusters = msg.res.Clusters()
		m.clusterTable.SetRows(clusterRows(m.graph, msg.res.BotLabels()))
		m.clusterTable.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Algorithm):
			all := clustering.Algorithms()
			m.alg = all[(int(m.alg)+1)%len(all)]
			m.running = true
			m.err = nil
			return m, m.runClustering()
		}
	}

	switch m.currentView {
	case featuresView:
		m.featureTable, cmd = m.featureTable.Update(msg)
		cmds = append(cmds, cmd)
	case clustersView:
		m.clusterTable, cmd = m.clusterTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *browseModel) setView(v view) {
	m.currentView = v
	if v == featuresView {
		m.featureTable.Focus()
		m.clusterTable.Blur()
	} else {
		m.clusterTable.Focus()
		m.featureTable.Blur()
	}
}

func (m browseModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Bot Capability Graph"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case featuresView:
		s.WriteString(contentStyle.Render(m.featureTable.View()))
	case clustersView:
		s.WriteString(contentStyle.Render(m.clusterTable.View()))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderStatus())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m browseModel) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for i, name := range viewNames {
		if view(i) == m.currentView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m browseModel) renderStatus() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("✗ " + m.err.Error())
	case m.running:
		return statusStyle.Render(fmt.Sprintf("Algorithm: %s (running...)", m.alg))
	default:
		return statusStyle.Render(fmt.Sprintf("Algorithm: %s, %d clusters", m.alg, m.clusters))
	}
}
