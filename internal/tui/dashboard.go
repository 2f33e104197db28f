// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the interactive analytics dashboard. It is a read-only
// view of the ring: membership in order, visit totals and top referrers.
// Moderation stays on the CLI and the admin HTTP surface.
package tui

import (
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toeirei/ringmaster/internal/analytics"
	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
	"github.com/toeirei/ringmaster/internal/ring"
)

var (
	colorSubtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	colorWhite     = lipgloss.Color("#FFFFFF")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type dashboardRow struct {
	site        model.Site
	totalVisits int
	topReferrer string
}

type dashboardModel struct {
	table    table.Model
	rows     []dashboardRow
	registry *ring.Registry
	recorder *analytics.Recorder
	status   string
	err      error
}

type rowsLoadedMsg struct {
	rows []dashboardRow
	err  error
}

// NewDashboard builds the dashboard model over the given store.
func NewDashboard(store db.Store) tea.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Site", Width: 28},
		{Title: "Name", Width: 20},
		{Title: "Visits", Width: 8},
		{Title: "Top referrer", Width: 28},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	return dashboardModel{
		table:    t,
		registry: ring.NewRegistry(store),
		recorder: analytics.NewRecorder(store),
	}
}

// Run starts the dashboard program and blocks until the user quits.
func Run(store db.Store) error {
	_, err := tea.NewProgram(NewDashboard(store), tea.WithAltScreen()).Run()
	return err
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadRows
}

func (m dashboardModel) loadRows() tea.Msg {
	sites, err := m.registry.List()
	if err != nil {
		return rowsLoadedMsg{err: err}
	}
	rows := make([]dashboardRow, 0, len(sites))
	for _, site := range sites {
		stats, err := m.recorder.Get(site.ID)
		if err != nil {
			return rowsLoadedMsg{err: err}
		}
		top := ""
		if len(stats.Referrals) > 0 {
			top = fmt.Sprintf("%s (%d)", stats.Referrals[0].ReferrerID, stats.Referrals[0].Count)
		}
		rows = append(rows, dashboardRow{site: site, totalVisits: stats.TotalVisits, topReferrer: top})
	}
	return rowsLoadedMsg{rows: rows}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rows = msg.rows
		tableRows := make([]table.Row, 0, len(msg.rows))
		for _, r := range msg.rows {
			tableRows = append(tableRows, table.Row{
				strconv.Itoa(r.site.Position),
				r.site.ID,
				r.site.Name,
				strconv.Itoa(r.totalVisits),
				r.topReferrer,
			})
		}
		m.table.SetRows(tableRows)
		m.status = fmt.Sprintf("%d ring members", len(msg.rows))
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.status = "refreshing..."
			return m, m.loadRows
		case "c":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.rows) {
				if err := clipboard.WriteAll(m.rows[idx].site.URL); err != nil {
					m.status = "clipboard unavailable"
				} else {
					m.status = "copied " + m.rows[idx].site.URL
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return errStyle.Render("error: "+m.err.Error()) + "\n\npress q to quit\n"
	}
	header := titleStyle.Render("Ringmaster analytics")
	footer := statusStyle.Render(m.status + "  ·  r refresh · c copy url · q quit")
	return header + "\n\n" + m.table.View() + "\n" + footer + "\n"
}
