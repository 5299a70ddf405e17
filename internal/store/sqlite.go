package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nissyi-gh/stickies/internal/model"
	_ "modernc.org/sqlite"
)

var snapshotSchema = []string{`
CREATE TABLE notes (
	position  INTEGER PRIMARY KEY,
	id        TEXT    NOT NULL,
	title     TEXT    NOT NULL,
	content   TEXT    NOT NULL DEFAULT '',
	color     TEXT    NOT NULL,
	width     INTEGER NOT NULL,
	height    INTEGER NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	due_date  TEXT,
	status    TEXT
)`, `
CREATE TABLE tasks (
	note_position INTEGER NOT NULL REFERENCES notes(position) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	id            TEXT    NOT NULL,
	text          TEXT    NOT NULL DEFAULT '',
	checked       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (note_position, position)
)`,
}

// optionalNoteColumns are columns that older snapshots may lack. Reads
// substitute NULL for any that are missing.
var optionalNoteColumns = []string{"content", "completed", "due_date", "status"}

// ExportSQLite writes notes to a fresh SQLite database at path,
// replacing any existing file.
func ExportSQLite(path string, notes []*model.Note) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := writeSnapshot(tmpPath, notes); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

func writeSnapshot(path string, notes []*model.Note) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range snapshotSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	for i, n := range notes {
		var due sql.NullString
		if n.DueDate != nil {
			due = sql.NullString{String: *n.DueDate, Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO notes (position, id, title, content, color, width, height, completed, due_date, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, n.ID, n.Title, n.Content, n.Color, n.Width, n.Height, boolToInt(n.Completed), due, string(n.Status),
		)
		if err != nil {
			return fmt.Errorf("insert note %s: %w", n.ID, err)
		}
		for j, t := range n.Tasks {
			_, err := tx.Exec(
				"INSERT INTO tasks (note_position, position, id, text, checked) VALUES (?, ?, ?, ?, ?)",
				i, j, t.ID, t.Text, boolToInt(t.Checked),
			)
			if err != nil {
				return fmt.Errorf("insert task %s of note %s: %w", t.ID, n.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// ImportSQLite reads notes from a snapshot written by ExportSQLite,
// applying the same defaults as the JSON loader.
func ImportSQLite(path string) ([]*model.Note, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	columns, err := tableColumns(db, "notes")
	if err != nil {
		return nil, fmt.Errorf("inspect notes table: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("snapshot %s has no notes table", path)
	}

	selected := []string{"position", "id", "title", "color", "width", "height"}
	for _, col := range optionalNoteColumns {
		if columns[col] {
			selected = append(selected, col)
		} else {
			selected = append(selected, "NULL AS "+col)
		}
	}

	rows, err := db.Query("SELECT " + strings.Join(selected, ", ") + " FROM notes ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var positions []int64
	records := make(map[int64]*model.Record)
	for rows.Next() {
		pos, r, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		positions = append(positions, pos)
		records[pos] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachTasks(db, records); err != nil {
		return nil, err
	}

	notes := make([]*model.Note, 0, len(positions))
	for _, pos := range positions {
		notes = append(notes, records[pos].Note())
	}
	return notes, nil
}

func scanNote(scanner interface{ Scan(...any) error }) (int64, *model.Record, error) {
	var pos int64
	var id, title, color sql.NullString
	var width, height sql.NullInt64
	var content, due, status sql.NullString
	var completed sql.NullBool
	if err := scanner.Scan(&pos, &id, &title, &color, &width, &height, &content, &completed, &due, &status); err != nil {
		return 0, nil, err
	}
	r := &model.Record{
		ID:      nullString(id),
		Title:   nullString(title),
		Content: nullString(content),
		Color:   nullString(color),
		DueDate: nullString(due),
		Status:  nullString(status),
	}
	if width.Valid {
		w := int(width.Int64)
		r.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		r.Height = &h
	}
	if completed.Valid {
		c := completed.Bool
		r.Completed = &c
	}
	return pos, r, nil
}

func attachTasks(db *sql.DB, records map[int64]*model.Record) error {
	columns, err := tableColumns(db, "tasks")
	if err != nil {
		return fmt.Errorf("inspect tasks table: %w", err)
	}
	if len(columns) == 0 {
		return nil
	}

	rows, err := db.Query("SELECT note_position, id, text, checked FROM tasks ORDER BY note_position ASC, position ASC")
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var notePos int64
		var id, text sql.NullString
		var checked sql.NullBool
		if err := rows.Scan(&notePos, &id, &text, &checked); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		r, ok := records[notePos]
		if !ok {
			continue
		}
		tr := model.TaskRecord{ID: nullString(id), Text: nullString(text)}
		if checked.Valid {
			c := checked.Bool
			tr.Checked = &c
		}
		r.Tasks = append(r.Tasks, tr)
	}
	return rows.Err()
}

// tableColumns returns the column names of table, or an empty set if
// the table does not exist.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
