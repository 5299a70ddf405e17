package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nissyi-gh/stickies/internal/model"
	"github.com/nissyi-gh/stickies/internal/prompt"
	"github.com/nissyi-gh/stickies/internal/viewmodel"
)

type appState int

const (
	stateList appState = iota
	stateRename
	stateEditContent
	stateAddTask
	stateTasks
	stateConfirm
	stateDueDate
	stateExport
	stateImport
)

const (
	minCardSize = 220
	maxCardSize = 500
	resizeStep  = 20

	// cardScale converts card pixels to terminal columns.
	cardScale = 10

	defaultExportPath = "notes-export.json"
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	detailStyle  = lipgloss.NewStyle().
			Padding(0, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#333333"))
	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
)

type extraKeyMap struct {
	Add      key.Binding
	Delete   key.Binding
	Rename   key.Binding
	Edit     key.Binding
	AddTask  key.Binding
	Tasks    key.Binding
	Color    key.Binding
	Status   key.Binding
	DueDate  key.Binding
	Resize   key.Binding
	Save     key.Binding
	Export   key.Binding
	Import   key.Binding
	Reload   key.Binding
	Prompt   key.Binding
	Paste    key.Binding
	Calendar key.Binding
}

func newExtraKeyMap() extraKeyMap {
	return extraKeyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit content"),
		),
		AddTask: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add item"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "checklist"),
		),
		Color: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "color"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		DueDate: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "due date"),
		),
		Resize: key.NewBinding(
			key.WithKeys("+", "=", "-"),
			key.WithHelp("+/-", "resize"),
		),
		Save: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "import"),
		),
		Reload: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "reload"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "copy prompt"),
		),
		Paste: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "paste checklist"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("[", "]"),
			key.WithHelp("[/]", "month"),
		),
	}
}

func (k extraKeyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Delete, k.Rename, k.Edit, k.AddTask, k.Tasks}
}

func (k extraKeyMap) full() []key.Binding {
	return []key.Binding{
		k.Add, k.Delete, k.Rename, k.Edit, k.AddTask, k.Tasks,
		k.Color, k.Status, k.DueDate, k.Resize, k.Save, k.Export,
		k.Import, k.Reload, k.Prompt, k.Paste, k.Calendar,
	}
}

// pending records view-model notifications until the next Update
// applies them. It is shared by every copy of Model.
type pending struct {
	notes    bool
	calendar bool
}

// Model is the top-level BubbleTea model for the stickies TUI.
type Model struct {
	state        appState
	list         list.Model
	input        textinput.Model
	contentInput textarea.Model
	dateInput    dateInput
	vm           *viewmodel.MainViewModel
	keys         extraKeyMap
	pending      *pending
	subs         []viewmodel.Subscription
	now          func() time.Time

	// editID is the note being edited by a sub-state.
	editID     string
	focusID    string
	taskCursor int
	month      calendarMonth
	dueDays    map[int]bool

	status string
	err    error
	width  int
	height int
}

type clipboardReadMsg struct {
	noteID string
	text   string
	err    error
}

type clipboardWrittenMsg struct{ err error }

// NewModel creates the TUI over vm and subscribes to its notifications.
// Call Detach once the program has exited.
func NewModel(vm *viewmodel.MainViewModel) Model {
	keys := newExtraKeyMap()

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "stickies"
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("note", "notes")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ti := textinput.New()
	ti.CharLimit = 256

	ta := textarea.New()
	ta.Placeholder = "Note content..."
	ta.CharLimit = 8192

	p := &pending{}
	m := Model{
		state:        stateList,
		list:         l,
		input:        ti,
		contentInput: ta,
		dateInput:    newDateInput(),
		vm:           vm,
		keys:         keys,
		pending:      p,
		now:          time.Now,
	}
	m.subs = []viewmodel.Subscription{
		vm.OnNotesChanged(func() { p.notes = true }),
		vm.OnCalendarRefresh(func() { p.calendar = true }),
	}
	m.month = monthOf(m.now())
	m.rebuildList()
	m.refreshCalendar()
	return m
}

// Detach removes the model's view-model subscriptions.
func (m Model) Detach() {
	for _, sub := range m.subs {
		m.vm.Unsubscribe(sub)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("stickies")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.sync()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := appStyle.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 45 / 100
		m.list.SetSize(leftWidth, msg.Height-v-1)
		m.contentInput.SetWidth(contentWidth - 2)
		m.contentInput.SetHeight(max(msg.Height-v-8, 3))
		return m, nil

	case clipboardWrittenMsg:
		m.setResult("prompt copied to clipboard", msg.err)
		return m, nil

	case clipboardReadMsg:
		if msg.err != nil {
			m.setResult("", msg.err)
			return m, nil
		}
		note, ok := m.vm.Note(msg.noteID)
		if !ok {
			return m, nil
		}
		n, err := m.vm.ImportTasks(note, []byte(msg.text))
		m.setResult(fmt.Sprintf("%d checklist items added", n), err)
		return m, nil
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateRename:
		return m.updateRename(msg)
	case stateEditContent:
		return m.updateEditContent(msg)
	case stateAddTask:
		return m.updateAddTask(msg)
	case stateTasks:
		return m.updateTasks(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateDueDate:
		return m.updateDueDate(msg)
	case stateExport, stateImport:
		return m.updatePath(msg)
	}
	return m, nil
}

// sync applies notifications received since the last Update.
func (m *Model) sync() {
	if m.pending.notes {
		m.pending.notes = false
		m.rebuildList()
	}
	if m.pending.calendar {
		m.pending.calendar = false
		m.refreshCalendar()
	}
}

func (m *Model) rebuildList() {
	selected := m.focusID
	if selected == "" {
		if note := m.selectedNote(); note != nil {
			selected = note.ID
		}
	}
	m.focusID = ""

	notes := m.vm.Notes()
	items := make([]list.Item, len(notes))
	cursor := min(m.list.Index(), len(notes)-1)
	for i, n := range notes {
		items[i] = newNoteItem(n, m.now)
		if n.ID == selected {
			cursor = i
		}
	}
	m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
}

func (m *Model) refreshCalendar() {
	m.dueDays = m.vm.DueDays(m.month.year, m.month.month)
}

func (m *Model) setResult(status string, err error) {
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	m.status = status
}

func (m Model) selectedNote() *model.Note {
	if item, ok := m.list.SelectedItem().(NoteItem); ok {
		return item.Note
	}
	return nil
}

func (m Model) editedNote() (*model.Note, bool) {
	return m.vm.Note(m.editID)
}

func (m Model) updateList(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch keyMsg.String() {
		case "a", "n":
			note, err := m.vm.AddNote()
			m.focusID = note.ID
			m.setResult("note added", err)
			return m, nil
		case "S":
			m.setResult("notes saved", m.vm.SaveAll())
			return m, nil
		case "E":
			return m.startPath(stateExport, defaultExportPath)
		case "I":
			return m.startPath(stateImport, "")
		case "L":
			if m.vm.LoadFromLocalDirectory() {
				m.setResult("notes reloaded", nil)
			} else {
				m.setResult("", fmt.Errorf("no notes to reload"))
			}
			return m, nil
		case "[":
			m.month = m.month.add(-1)
			m.refreshCalendar()
			return m, nil
		case "]":
			m.month = m.month.add(1)
			m.refreshCalendar()
			return m, nil
		}

		if note := m.selectedNote(); note != nil {
			if next, cmd, handled := m.updateSelected(keyMsg, note); handled {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateSelected handles list keys that act on the selected note.
func (m Model) updateSelected(keyMsg tea.KeyMsg, note *model.Note) (Model, tea.Cmd, bool) {
	switch keyMsg.String() {
	case "d":
		m.state = stateConfirm
		m.editID = note.ID
		return m, nil, true
	case "r":
		m.state = stateRename
		m.editID = note.ID
		m.input.Reset()
		m.input.Placeholder = "Note title..."
		m.input.SetValue(note.Title)
		cmd := m.input.Focus()
		return m, cmd, true
	case "e":
		m.state = stateEditContent
		m.editID = note.ID
		m.contentInput.Reset()
		m.contentInput.SetValue(note.Content)
		cmd := m.contentInput.Focus()
		return m, cmd, true
	case "t":
		m.state = stateAddTask
		m.editID = note.ID
		m.input.Reset()
		m.input.Placeholder = "Checklist item..."
		cmd := m.input.Focus()
		return m, cmd, true
	case "tab":
		m.state = stateTasks
		m.editID = note.ID
		m.taskCursor = min(m.taskCursor, max(len(note.Tasks)-1, 0))
		return m, nil, true
	case "c":
		color, err := m.vm.CycleNoteColor(note)
		m.setResult("color "+color, err)
		return m, nil, true
	case "s":
		next := note.Status.Next()
		m.setResult("status: "+next.Label(), m.vm.SetStatus(note, next))
		return m, nil, true
	case "D":
		m.state = stateDueDate
		m.editID = note.ID
		m.dateInput = newDateInput()
		m.dateInput.SetValue(note.DueDate)
		cmd := m.dateInput.Focus()
		return m, cmd, true
	case "+", "=":
		m.resize(note, resizeStep)
		return m, nil, true
	case "-":
		m.resize(note, -resizeStep)
		return m, nil, true
	case "p":
		return m, copyPrompt(prompt.GenerateFromNote(note)), true
	case "P":
		return m, readClipboard(note.ID), true
	}
	return m, nil, false
}

// resize grows or shrinks the card, keeping it square.
func (m *Model) resize(note *model.Note, delta int) {
	size := min(max(note.Width+delta, minCardSize), maxCardSize)
	m.setResult(fmt.Sprintf("size %d", size), m.vm.ResizeNote(note, size, size))
}

func (m Model) startPath(state appState, value string) (Model, tea.Cmd) {
	m.state = state
	m.input.Reset()
	m.input.Placeholder = "File path (.json, .yaml, .db)..."
	m.input.SetValue(value)
	cmd := m.input.Focus()
	return m, cmd
}

func copyPrompt(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardWrittenMsg{err: clipboard.WriteAll(text)}
	}
}

func readClipboard(noteID string) tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		return clipboardReadMsg{noteID: noteID, text: text, err: err}
	}
}

func (m Model) updateRename(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if note, ok := m.editedNote(); ok {
				note.Title = m.input.Value()
				m.setResult("note renamed", m.vm.UpdateNote(note))
			}
			m.state = stateList
			return m, nil
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateEditContent(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if note, ok := m.editedNote(); ok {
				note.Content = m.contentInput.Value()
				m.setResult("content saved", m.vm.UpdateNote(note))
			}
			m.state = stateList
			return m, nil
		case "ctrl+c":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.contentInput, cmd = m.contentInput.Update(msg)
	return m, cmd
}

func (m Model) updateAddTask(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if note, ok := m.editedNote(); ok && text != "" {
				_, err := m.vm.AddTaskToNote(note, text)
				m.setResult("item added", err)
			}
			m.state = stateList
			return m, nil
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateTasks(msg tea.Msg) (Model, tea.Cmd) {
	note, ok := m.editedNote()
	if !ok {
		m.state = stateList
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.taskCursor < len(note.Tasks)-1 {
			m.taskCursor++
		}
	case "k", "up":
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case "x", " ", "enter":
		if m.taskCursor < len(note.Tasks) {
			note.ToggleTask(note.Tasks[m.taskCursor].ID)
			m.setResult("", m.vm.UpdateNote(note))
		}
	case "d":
		if m.taskCursor < len(note.Tasks) {
			err := m.vm.RemoveTaskFromNote(note, note.Tasks[m.taskCursor])
			m.taskCursor = min(m.taskCursor, max(len(note.Tasks)-1, 0))
			m.setResult("item removed", err)
		}
	case "esc", "tab":
		m.state = stateList
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if note, ok := m.editedNote(); ok {
				m.setResult("note deleted", m.vm.DeleteNote(note))
			}
			m.state = stateList
			return m, nil
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateDueDate(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			due, err := m.dateInput.Value(m.now())
			if err != nil {
				m.err = err
				return m, nil
			}
			if note, ok := m.editedNote(); ok {
				m.setResult("due date updated", m.vm.SetDueDate(note, due))
			}
			m.state = stateList
			return m, nil
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m Model) updatePath(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			state := m.state
			m.state = stateList
			if path == "" {
				return m, nil
			}
			if state == stateExport {
				m.reportFileResult(m.vm.ExportToFile(path), "exported to "+path, "export to "+path+" failed")
			} else {
				m.reportFileResult(m.vm.LoadFromFile(path), "imported "+path, "import from "+path+" failed")
			}
			return m, nil
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) reportFileResult(ok bool, success, failure string) {
	if ok {
		m.setResult(success, nil)
		return
	}
	m.setResult("", fmt.Errorf("%s", failure))
}

func (m Model) renderCard(note *model.Note, maxWidth int) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(note.Title))
	if note.Content != "" {
		b.WriteString("\n\n" + note.Content)
	}
	if len(note.Tasks) > 0 {
		b.WriteString("\n")
		for i, t := range note.Tasks {
			check := "☐"
			if t.Checked {
				check = "☑"
			}
			line := check + " " + t.Text
			if m.state == stateTasks && i == m.taskCursor {
				line = cursorStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString("\n" + line)
		}
	}

	meta := note.Status.Label()
	if note.DueDate != nil {
		meta += "  due " + *note.DueDate
		now := m.now()
		if note.IsOverdue(now) {
			meta += " ⚠️"
		} else if note.IsDueToday(now) {
			meta += " 📅"
		}
	}
	b.WriteString("\n\n" + meta)

	width := max(min(note.Width/cardScale, maxWidth), 10)
	height := note.Height / (cardScale * 2)
	return cardStyle.
		Background(lipgloss.Color(note.Color)).
		Width(width).
		Height(height).
		Render(b.String())
}

func (m Model) renderDetail(width int) string {
	calendar := renderCalendar(m.month, m.now(), m.dueDays)
	note := m.selectedNote()
	if note == nil {
		return calendar
	}
	return m.renderCard(note, width-4) + "\n\n" + calendar
}

func (m Model) footer() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func (m Model) View() string {
	footer := "\n" + m.footer()
	switch m.state {
	case stateRename, stateAddTask:
		header := "Rename Note"
		if m.state == stateAddTask {
			header = "New Checklist Item"
		}
		return appStyle.Render(
			titleStyle.Render(header) + "\n\n" +
				m.input.View() + "\n\n" +
				statusStyle.Render("enter: save • esc: cancel") +
				footer,
		)
	case stateExport, stateImport:
		header := "Export Notes"
		if m.state == stateImport {
			header = "Import Notes"
		}
		return appStyle.Render(
			titleStyle.Render(header) + "\n\n" +
				m.input.View() + "\n\n" +
				statusStyle.Render("enter: confirm • esc: cancel") +
				footer,
		)
	case stateEditContent:
		return appStyle.Render(
			titleStyle.Render("Edit Content") + "\n\n" +
				m.contentInput.View() + "\n\n" +
				statusStyle.Render("esc: save • ctrl+c: cancel") +
				footer,
		)
	case stateDueDate:
		return appStyle.Render(
			titleStyle.Render("Set Due Date") + "\n\n" +
				m.dateInput.View() + "\n\n" +
				statusStyle.Render("tab/→: next field • enter: save (empty clears) • esc: cancel") +
				footer,
		)
	case stateConfirm:
		title := ""
		if note, ok := m.editedNote(); ok {
			title = note.Title
		}
		return appStyle.Render(
			confirmStyle.Render("Delete Note?") + "\n\n" +
				"  " + title + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel") +
				footer,
		)
	default:
		h, v := appStyle.GetFrameSize()
		contentWidth := m.width - h
		leftWidth := contentWidth * 45 / 100
		rightWidth := contentWidth - leftWidth

		help := ""
		if m.state == stateTasks {
			help = "\n\n" + statusStyle.Render("j/k: move • x/space: toggle • d: remove • esc: back")
		}
		rightPane := detailStyle.
			Width(rightWidth).
			Height(m.height - v - 1).
			Render(m.renderDetail(rightWidth) + help)
		content := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), rightPane)
		return appStyle.Render(content + footer)
	}
}
