// ABOUTME: Interactive bubbletea feed browser over the live feed engine.
// ABOUTME: Search, expand/collapse comment threads, toggle likes, compose comments.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/feedkit/internal/feed"
)

// actionTimeout bounds a single user-initiated write or expand.
const actionTimeout = 10 * time.Second

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeCompose
)

// engineChangedMsg signals a cache update; the view must be rebuilt.
type engineChangedMsg struct{}

// engineErrMsg carries a recoverable subscription error. Cached data is
// kept; only the banner changes.
type engineErrMsg struct{ err error }

// actionResultMsg carries the outcome of a like/comment/expand command.
type actionResultMsg struct{ err error }

var (
	feedBrandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	postTitleStyle  = lipgloss.NewStyle().Bold(true)
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	authorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	likedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	commentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	feedErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	bannerWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// FeedModel is the bubbletea model for the live feed browser.
type FeedModel struct {
	engine  *feed.Engine
	events  chan tea.Msg
	spinner spinner.Model
	search  textinput.Model
	compose textinput.Model

	mode      inputMode
	cursor    int
	records   []feed.ViewRecord
	actionErr error
	fetchErr  error
	quitting  bool
}

// NewFeedModel creates a feed browser bound to a started engine.
func NewFeedModel(engine *feed.Engine) FeedModel {
	events := make(chan tea.Msg, 8)
	engine.OnChange(func() {
		select {
		case events <- engineChangedMsg{}:
		default:
		}
	})
	engine.OnError(func(err error) {
		select {
		case events <- engineErrMsg{err: err}:
		default:
		}
	})

	search := textinput.New()
	search.Placeholder = "search posts and authors"
	search.Width = 40

	compose := textinput.New()
	compose.Placeholder = "write a comment"
	compose.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot

	return FeedModel{
		engine:  engine,
		events:  events,
		spinner: s,
		search:  search,
		compose: compose,
		records: engine.View(),
	}
}

// Init implements tea.Model.
func (m FeedModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m FeedModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Update implements tea.Model.
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineChangedMsg:
		m.reload()
		return m, m.waitForEvent()

	case engineErrMsg:
		m.fetchErr = msg.err
		return m, m.waitForEvent()

	case actionResultMsg:
		m.actionErr = msg.err
		m.reload()
		return m, nil

	case spinner.TickMsg:
		if m.engine.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m *FeedModel) reload() {
	m.records = m.engine.View()
	if m.cursor >= len(m.records) {
		m.cursor = len(m.records) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m FeedModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeCompose:
		return m.updateCompose(msg)
	}
	return m.updateBrowse(msg)
}

func (m FeedModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink

	case "j", "down":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "enter":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		if rec.Expanded {
			m.engine.CollapseComments(rec.Post.ID)
			m.reload()
			return m, nil
		}
		engine := m.engine
		postID := rec.Post.ID
		return m, func() tea.Msg {
			return actionResultMsg{err: engine.ExpandComments(postID)}
		}

	case "l":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		engine := m.engine
		postID := rec.Post.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return actionResultMsg{err: engine.ToggleLike(ctx, postID)}
		}

	case "c":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeCompose
		m.compose.SetValue(m.engine.Draft(rec.Post.ID))
		m.compose.Focus()
		return m, textinput.Blink

	case "r":
		engine := m.engine
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return actionResultMsg{err: engine.Refresh(ctx)}
		}
	}
	return m, nil
}

func (m FeedModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.engine.SetSearchTerm("")
		m.reload()
		return m, nil

	case tea.KeyEnter:
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.engine.SetSearchTerm(m.search.Value())
	m.reload()
	return m, cmd
}

func (m FeedModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec, ok := m.selected()
	if !ok {
		m.mode = modeBrowse
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEscape:
		m.engine.SetDraft(rec.Post.ID, m.compose.Value())
		m.mode = modeBrowse
		m.compose.Blur()
		return m, nil

	case tea.KeyEnter:
		text := m.compose.Value()
		m.mode = modeBrowse
		m.compose.Blur()
		m.compose.SetValue("")
		engine := m.engine
		postID := rec.Post.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return actionResultMsg{err: engine.AddComment(ctx, postID, text)}
		}
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	m.engine.SetDraft(rec.Post.ID, m.compose.Value())
	return m, cmd
}

func (m FeedModel) selected() (feed.ViewRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return feed.ViewRecord{}, false
	}
	return m.records[m.cursor], true
}

// View implements tea.Model.
func (m FeedModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	write := func(s string) { b.WriteString(s) }

	write("\n")
	write(feedBrandStyle.Render("  FEEDKIT"))
	write("\n\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		write("  " + m.search.View() + "\n\n")
	}

	if m.engine.Loading() {
		write("  " + m.spinner.View() + " Loading feed...\n")
		return b.String()
	}

	if m.fetchErr != nil {
		write("  " + bannerWarnStyle.Render(fmt.Sprintf("live updates degraded: %v", m.fetchErr)) + "\n\n")
	}

	if len(m.records) == 0 {
		write("  No posts match.\n")
	}

	for i, rec := range m.records {
		marker := "  "
		title := postTitleStyle.Render(rec.Post.Title)
		if i == m.cursor {
			marker = "> "
			title = selectedStyle.Render(rec.Post.Title)
		}

		likes := fmt.Sprintf("%d likes", rec.LikeCount)
		if rec.HasLiked {
			likes = likedStyle.Render("♥ " + likes)
		}

		write(fmt.Sprintf("%s%s  %s\n", marker, title, likes))
		write("  " + authorStyle.Render(fmt.Sprintf("%s · %s", rec.AuthorName, relativeAge(rec.Post.CreatedAt, time.Now()))) + "\n")

		if rec.Expanded {
			write("  " + rec.Post.Content + "\n")
			if len(rec.Comments) == 0 {
				write("  " + commentStyle.Render("no comments yet") + "\n")
			}
			for _, comment := range rec.Comments {
				age := relativeAge(comment.CreatedAt, time.Now())
				write("    " + commentStyle.Render(fmt.Sprintf("%s (%s)", comment.Text, age)) + "\n")
			}
			if i == m.cursor && m.mode == modeCompose {
				write("    " + m.compose.View() + "\n")
			}
		}
		write("\n")
	}

	if m.actionErr != nil {
		write("  " + feedErrorStyle.Render(fmt.Sprintf("✗ %v", m.actionErr)) + "\n")
	}

	write(helpStyle.Render("  j/k move · enter comments · l like · c comment · / search · r refresh · q quit"))
	write("\n")
	return b.String()
}

// relativeAge renders a timestamp the way the feed has always shown post
// ages: coarse, largest unit only.
func relativeAge(t, now time.Time) string {
	if t.IsZero() {
		return "just now"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
