// Package viewmodel owns the live note collection. Every state change is
// persisted immediately; only structural changes (add, delete, bulk
// reload) notify notes-changed observers, so in-place edits such as
// typing in a title do not force observers to rebuild their state.
//
// A MainViewModel is not safe for concurrent use. It is owned by the
// goroutine driving the UI, and observers run synchronously on it.
package viewmodel

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nissyi-gh/stickies/internal/importer"
	"github.com/nissyi-gh/stickies/internal/model"
	"github.com/nissyi-gh/stickies/internal/store"
)

// MainViewModel mediates between the note store and the UI.
type MainViewModel struct {
	notes  []*model.Note
	store  *store.NoteStore
	logger *slog.Logger

	nextToken       Subscription
	notesChanged    observers
	calendarRefresh observers
}

// Option configures a MainViewModel.
type Option func(*MainViewModel)

// WithLogger sets the logger. nil keeps the discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(vm *MainViewModel) {
		if logger != nil {
			vm.logger = logger
		}
	}
}

// WithNotesChanged registers a notes-changed observer before the
// initial load, so it sees the startup notification.
func WithNotesChanged(fn func()) Option {
	return func(vm *MainViewModel) { vm.OnNotesChanged(fn) }
}

// WithCalendarRefresh registers a calendar-refresh observer before the
// initial load.
func WithCalendarRefresh(fn func()) Option {
	return func(vm *MainViewModel) { vm.OnCalendarRefresh(fn) }
}

// New creates the view-model and loads notes from the store's default
// location. On first run (or when nothing could be loaded) a welcome
// note is created and saved.
func New(s *store.NoteStore, opts ...Option) (*MainViewModel, error) {
	vm := &MainViewModel{
		store:  s,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if err := vm.LoadNotes(); err != nil {
		return nil, err
	}
	return vm, nil
}

// OnNotesChanged registers fn to run after structural changes.
func (vm *MainViewModel) OnNotesChanged(fn func()) Subscription {
	vm.nextToken++
	vm.notesChanged.add(vm.nextToken, fn)
	return vm.nextToken
}

// OnCalendarRefresh registers fn to run whenever a due date may have changed.
func (vm *MainViewModel) OnCalendarRefresh(fn func()) Subscription {
	vm.nextToken++
	vm.calendarRefresh.add(vm.nextToken, fn)
	return vm.nextToken
}

// Unsubscribe removes an observer registered with either On method.
func (vm *MainViewModel) Unsubscribe(sub Subscription) {
	if !vm.notesChanged.remove(sub) {
		vm.calendarRefresh.remove(sub)
	}
}

// Notes returns the current notes in display order. The slice is a
// copy; the notes are shared, and callers that edit one in place must
// report it with UpdateNote.
func (vm *MainViewModel) Notes() []*model.Note {
	return slices.Clone(vm.notes)
}

// Note returns the note with the given ID.
func (vm *MainViewModel) Note(id string) (*model.Note, bool) {
	for _, n := range vm.notes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// DueDays returns the days of the month on which some note is due.
func (vm *MainViewModel) DueDays(year int, month time.Month) map[int]bool {
	return model.DueDays(vm.notes, year, month)
}

// AddNote appends a blank note.
func (vm *MainViewModel) AddNote() (*model.Note, error) {
	note := model.NewNote()
	vm.notes = append(vm.notes, note)
	vm.logger.Debug("note added", "note", note.ID)
	return note, vm.saveAndNotify()
}

// DeleteNote removes note from the collection. Deleting a note that is
// not in the collection does nothing.
func (vm *MainViewModel) DeleteNote(note *model.Note) error {
	idx := slices.Index(vm.notes, note)
	if idx < 0 {
		return nil
	}
	vm.notes = slices.Delete(vm.notes, idx, idx+1)
	vm.logger.Debug("note deleted", "note", note.ID)
	return vm.saveAndNotify()
}

// AddTaskToNote appends a checklist item to note.
func (vm *MainViewModel) AddTaskToNote(note *model.Note, text string) (*model.TaskItem, error) {
	task := model.NewTaskItem(text)
	note.Tasks = append(note.Tasks, task)
	return task, vm.saveOnly()
}

// RemoveTaskFromNote removes task from note if it is there.
func (vm *MainViewModel) RemoveTaskFromNote(note *model.Note, task *model.TaskItem) error {
	idx := slices.Index(note.Tasks, task)
	if idx < 0 {
		return nil
	}
	note.Tasks = slices.Delete(note.Tasks, idx, idx+1)
	return vm.saveOnly()
}

// UpdateNote persists edits the caller made directly on note (title,
// content, task text or checks, size, due date, status).
func (vm *MainViewModel) UpdateNote(note *model.Note) error {
	if err := vm.saveOnly(); err != nil {
		return err
	}
	vm.calendarRefresh.notify()
	return nil
}

// SetDueDate sets or clears (nil) the due date of note.
func (vm *MainViewModel) SetDueDate(note *model.Note, due *string) error {
	note.DueDate = due
	if err := vm.saveOnly(); err != nil {
		return err
	}
	vm.calendarRefresh.notify()
	return nil
}

// SetStatus sets the status of note, keeping its completed flag in sync.
func (vm *MainViewModel) SetStatus(note *model.Note, status model.Status) error {
	note.SetStatus(status)
	return vm.saveOnly()
}

// ResizeNote sets the card dimensions of note.
func (vm *MainViewModel) ResizeNote(note *model.Note, width, height int) error {
	note.Width, note.Height = width, height
	return vm.saveOnly()
}

// CycleNoteColor advances note to the next palette color.
func (vm *MainViewModel) CycleNoteColor(note *model.Note) (string, error) {
	color := note.CycleColor()
	return color, vm.saveOnly()
}

// ImportTasks parses a YAML checklist and appends its items to note. It
// returns the number of items added.
func (vm *MainViewModel) ImportTasks(note *model.Note, data []byte) (int, error) {
	tasks, err := importer.Tasks(data)
	if err != nil {
		return 0, err
	}
	note.Tasks = append(note.Tasks, tasks...)
	return len(tasks), vm.saveOnly()
}

// LoadNotes replaces the collection with the notes at the default
// location. If there are none, a welcome note is created and saved.
func (vm *MainViewModel) LoadNotes() error {
	vm.notes = vm.store.Load()
	if len(vm.notes) == 0 {
		vm.notes = append(vm.notes, model.NewWelcomeNote())
		vm.logger.Info("no notes found, created welcome note", "path", vm.store.Path())
		return vm.saveAndNotify()
	}
	vm.logger.Info("notes loaded", "path", vm.store.Path(), "count", len(vm.notes))
	vm.notifyAll()
	return nil
}

// SaveAll writes the collection to the default location.
func (vm *MainViewModel) SaveAll() error {
	return vm.saveOnly()
}

// ExportToFile writes the collection to path and reports success. Paths
// ending in .db or .sqlite get a SQLite snapshot; anything else JSON.
func (vm *MainViewModel) ExportToFile(path string) bool {
	var err error
	if isSQLite(path) {
		err = store.ExportSQLite(path, vm.notes)
	} else {
		err = vm.store.SaveTo(path, vm.notes)
	}
	if err != nil {
		vm.logger.Warn("export failed", "path", path, "error", err)
		return false
	}
	vm.logger.Info("notes exported", "path", path, "count", len(vm.notes))
	return true
}

// LoadFromFile replaces the collection with the notes read from path
// and saves them to the default location. A file that yields no notes
// is a failure and leaves everything untouched.
func (vm *MainViewModel) LoadFromFile(path string) bool {
	notes, err := readImport(vm.store, path)
	if err != nil {
		vm.logger.Warn("import failed", "path", path, "error", err)
		return false
	}
	if len(notes) == 0 {
		vm.logger.Warn("import found no notes", "path", path)
		return false
	}
	if err := vm.store.Save(notes); err != nil {
		vm.logger.Error("saving imported notes failed", "path", vm.store.Path(), "error", err)
		return false
	}
	vm.notes = notes
	vm.logger.Info("notes imported", "path", path, "count", len(notes))
	vm.notifyAll()
	return true
}

// LoadFromLocalDirectory reloads from the default location if a notes
// file exists there.
func (vm *MainViewModel) LoadFromLocalDirectory() bool {
	if !vm.store.Exists() {
		return false
	}
	return vm.LoadFromFile(vm.store.Path())
}

// Close performs the final save at shutdown.
func (vm *MainViewModel) Close() error {
	if err := vm.saveOnly(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}

// saveOnly persists without notifying, so per-keystroke edits do not
// make observers rebuild.
func (vm *MainViewModel) saveOnly() error {
	if err := vm.store.Save(vm.notes); err != nil {
		vm.logger.Error("saving notes failed", "path", vm.store.Path(), "error", err)
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

// saveAndNotify persists and notifies. Observers run even when the save
// fails, since the in-memory collection has already changed.
func (vm *MainViewModel) saveAndNotify() error {
	err := vm.saveOnly()
	vm.notifyAll()
	return err
}

func (vm *MainViewModel) notifyAll() {
	vm.notesChanged.notify()
	vm.calendarRefresh.notify()
}

func readImport(s *store.NoteStore, path string) ([]*model.Note, error) {
	switch {
	case isSQLite(path):
		return store.ImportSQLite(path)
	case isYAML(path):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return importer.Notes(data)
	default:
		return s.LoadFrom(path), nil
	}
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
