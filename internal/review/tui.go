// Package review is the interactive browser for approved jobs: a list pane
// with a detail view, plus keys to mark a job applied, dismiss it, or
// archive it.
package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// Store is the slice of the approval store the review screen needs.
type Store interface {
	ListApproved(userID int64, includeArchived bool) ([]model.ApprovedJob, error)
	MarkApplied(userID, approvedRowID int64) (bool, error)
	Dismiss(userID, approvedRowID int64) (bool, error)
	Archive(userID, approvedRowID int64) (bool, error)
	ArchiveAllApplied(userID int64) (int, error)
}

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	flashStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("114"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	appliedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	reasonBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type reviewModel struct {
	store  Store
	userID int64

	jobs         []model.ApprovedJob
	showArchived bool
	cursor       int
	listViewport viewport.Model
	width        int
	height       int
	ready        bool

	view           viewState
	detailViewport viewport.Model

	flash    string
	errorMsg string
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		m.flash = ""
		m.errorMsg = ""
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		if len(m.jobs) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detailViewport = viewport.New(m.width-4, m.height-4)
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil
	case "o":
		if job, ok := m.selected(); ok {
			openURL(job.URL)
		}
		return m, nil
	case "a":
		return m.applySelected()
	case "d":
		return m.dismissSelected()
	case "x":
		return m.archiveSelected()
	case "X":
		count, err := m.store.ArchiveAllApplied(m.userID)
		if err != nil {
			m.errorMsg = fmt.Sprintf("archive applied: %v", err)
		} else {
			m.flash = fmt.Sprintf("archived %d applied jobs", count)
		}
		m.reload()
		return m, nil
	case "h":
		m.showArchived = !m.showArchived
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if job, ok := m.selected(); ok {
			openURL(job.URL)
		}
		return m, nil
	case "a":
		return m.applySelected()
	case "d":
		next, cmd := m.dismissSelected()
		nm := next.(reviewModel)
		nm.view = viewList
		return nm, cmd
	case "x":
		next, cmd := m.archiveSelected()
		nm := next.(reviewModel)
		nm.view = viewList
		return nm, cmd
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) applySelected() (tea.Model, tea.Cmd) {
	job, ok := m.selected()
	if !ok {
		return m, nil
	}
	changed, err := m.store.MarkApplied(m.userID, job.RowID)
	if err != nil {
		m.errorMsg = fmt.Sprintf("mark applied: %v", err)
	} else if !changed {
		m.flash = "already marked applied"
	} else {
		m.flash = "marked applied and archived"
	}
	m.reload()
	return m, nil
}

func (m reviewModel) dismissSelected() (tea.Model, tea.Cmd) {
	job, ok := m.selected()
	if !ok {
		return m, nil
	}
	if _, err := m.store.Dismiss(m.userID, job.RowID); err != nil {
		m.errorMsg = fmt.Sprintf("dismiss: %v", err)
	} else {
		m.flash = "dismissed"
	}
	m.reload()
	return m, nil
}

func (m reviewModel) archiveSelected() (tea.Model, tea.Cmd) {
	job, ok := m.selected()
	if !ok {
		return m, nil
	}
	if _, err := m.store.Archive(m.userID, job.RowID); err != nil {
		m.errorMsg = fmt.Sprintf("archive: %v", err)
	} else {
		m.flash = "archived"
	}
	m.reload()
	return m, nil
}

func (m *reviewModel) reload() {
	jobs, err := m.store.ListApproved(m.userID, m.showArchived)
	if err != nil {
		m.errorMsg = fmt.Sprintf("reload: %v", err)
		return
	}
	m.jobs = jobs
	if m.cursor >= len(m.jobs) {
		m.cursor = max(len(m.jobs)-1, 0)
	}
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *reviewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.jobs)-1, 0))
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m reviewModel) selected() (model.ApprovedJob, bool) {
	if len(m.jobs) == 0 || m.cursor >= len(m.jobs) {
		return model.ApprovedJob{}, false
	}
	return m.jobs[m.cursor], true
}

func (m *reviewModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)
	// Header (1) + border (2) + status bar (1).
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
	}
	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderJobs(m.jobs, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	scope := "active"
	if m.showArchived {
		scope = "all"
	}
	header := headerStyle.Render(fmt.Sprintf(" Approved Jobs — %s (%d)", scope, len(m.jobs)))
	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := " ↑/↓ cursor  Enter detail  a applied  d dismiss  x archive  X archive applied  h show archived  o open  q quit"
	if m.errorMsg != "" {
		statusText = " " + errorStyle.Render(m.errorMsg)
	} else if m.flash != "" {
		return header + "\n" + pane + "\n" + flashStyle.Width(m.width).Render(" "+m.flash)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Approved Job")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(
		" o open  a applied  d dismiss  x archive  esc back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	job, ok := m.selected()
	if !ok {
		return "  (nothing selected)"
	}

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", titleOf(job))
	addField("Location", job.Location)
	addField("Job ID", fmt.Sprintf("%d", job.JobID))
	addField("Found via", job.Keyword)
	addField("Approved", job.Approved.Format("2006-01-02 15:04"))
	if job.Applied != nil {
		addField("Applied", job.Applied.Format("2006-01-02 15:04"))
	}
	if job.Archived {
		addField("State", "archived")
	}

	b.WriteByte('\n')
	addField("URL", job.URL)

	if job.Reason != "" {
		b.WriteByte('\n')
		b.WriteString(detailLabelStyle.Render("Why it fits"))
		b.WriteByte('\n')
		wrapWidth := max(m.width-8, 20)
		b.WriteString(reasonBodyStyle.Render(wordWrap(job.Reason, wrapWidth)) + "\n")
	}

	return b.String()
}

func renderJobs(jobs []model.ApprovedJob, cursor int) string {
	if len(jobs) == 0 {
		return "  (no approved jobs)"
	}

	var b strings.Builder
	for i, job := range jobs {
		isSelected := i == cursor

		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(titleOf(job)))
		if job.Applied != nil {
			b.WriteString(" " + appliedBadgeStyle.Render("✓ applied"))
		}
		b.WriteByte('\n')

		location := job.Location
		if location == "" {
			location = "location n/a"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s", location, job.Approved.Format("2006-01-02"))))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func titleOf(job model.ApprovedJob) string {
	if job.Title != nil && *job.Title != "" {
		return *job.Title
	}
	return fmt.Sprintf("Job %d", job.JobID)
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive review screen for one user.
func Run(store Store, userID int64) error {
	jobs, err := store.ListApproved(userID, false)
	if err != nil {
		return fmt.Errorf("loading approved jobs: %w", err)
	}

	m := reviewModel{
		store:  store,
		userID: userID,
		jobs:   jobs,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
