package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewNoteDefaults(t *testing.T) {
	n := NewNote()

	if n.ID == "" {
		t.Fatal("expected generated ID")
	}
	if len(n.ID) != 8 {
		t.Errorf("expected 8 character ID, got %q", n.ID)
	}
	if n.Title != "New Note" {
		t.Errorf("expected title %q, got %q", "New Note", n.Title)
	}
	if n.Content != "" {
		t.Errorf("expected empty content, got %q", n.Content)
	}
	if n.Color != Palette[0] {
		t.Errorf("expected color %s, got %s", Palette[0], n.Color)
	}
	if n.Width != 280 || n.Height != 280 {
		t.Errorf("expected 280x280, got %dx%d", n.Width, n.Height)
	}
	if n.DueDate != nil {
		t.Errorf("expected no due date, got %q", *n.DueDate)
	}
	if n.Status != StatusNew || n.Completed {
		t.Errorf("expected status new and not completed, got %s/%v", n.Status, n.Completed)
	}
	if n.Tasks == nil || len(n.Tasks) != 0 {
		t.Errorf("expected empty non-nil tasks, got %#v", n.Tasks)
	}
}

func TestNewNoteIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewNote().ID
		if seen[id] {
			t.Fatalf("duplicate ID %q after %d notes", id, i)
		}
		seen[id] = true
	}
}

func TestNewNoteOptions(t *testing.T) {
	task := NewTaskItem("buy milk")
	n := NewNote(
		WithID("abc"),
		WithTitle("Groceries"),
		WithContent("weekly"),
		WithColor(Palette[2]),
		WithTasks(task),
		WithSize(300, 250),
		WithDueDate("2026-10-20"),
		WithStatus(StatusCompleted),
	)

	if n.ID != "abc" || n.Title != "Groceries" || n.Content != "weekly" || n.Color != Palette[2] {
		t.Errorf("unexpected note fields: %+v", n)
	}
	if len(n.Tasks) != 1 || n.Tasks[0] != task {
		t.Errorf("expected the given task, got %#v", n.Tasks)
	}
	if n.Width != 300 || n.Height != 250 {
		t.Errorf("construction must not normalize size, got %dx%d", n.Width, n.Height)
	}
	if n.DueDate == nil || *n.DueDate != "2026-10-20" {
		t.Errorf("unexpected due date %v", n.DueDate)
	}
	if n.Status != StatusCompleted || !n.Completed {
		t.Errorf("expected completed, got %s/%v", n.Status, n.Completed)
	}
}

func TestWelcomeNote(t *testing.T) {
	n := NewWelcomeNote()
	if n.Title != "Welcome!" {
		t.Errorf("expected title Welcome!, got %q", n.Title)
	}
	if n.Content != "Add more notes with the + button." {
		t.Errorf("unexpected content %q", n.Content)
	}
}

func TestCycleColor(t *testing.T) {
	for i, start := range Palette {
		n := NewNote(WithColor(start))
		want := Palette[(i+1)%len(Palette)]
		if got := n.CycleColor(); got != want {
			t.Errorf("from %s: expected %s, got %s", start, want, got)
		}
		if n.Color != want {
			t.Errorf("from %s: color not stored, got %s", start, n.Color)
		}
	}
}

func TestCycleColorReturnsToStart(t *testing.T) {
	for _, start := range Palette {
		n := NewNote(WithColor(start))
		for range Palette {
			n.CycleColor()
		}
		if n.Color != start {
			t.Errorf("expected %s after a full cycle, got %s", start, n.Color)
		}
	}
}

func TestCycleColorOutsidePalette(t *testing.T) {
	n := NewNote(WithColor("#123456"))
	if got := n.CycleColor(); got != Palette[1] {
		t.Errorf("expected %s, got %s", Palette[1], got)
	}
}

func TestSetStatusSyncsCompleted(t *testing.T) {
	n := NewNote()
	n.SetStatus(StatusCompleted)
	if !n.Completed {
		t.Error("expected completed=true")
	}
	n.SetStatus(StatusDeferred)
	if n.Completed {
		t.Error("expected completed=false")
	}
}

func TestStatusNext(t *testing.T) {
	tests := []struct {
		from, want Status
	}{
		{StatusNew, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusCompleted, StatusDeferred},
		{StatusDeferred, StatusNew},
		{Status("archived"), StatusInProgress},
	}
	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestToggleAndRemoveTask(t *testing.T) {
	a, b, c := NewTaskItem("a"), NewTaskItem("b"), NewTaskItem("c")
	n := NewNote(WithTasks(a, b, c))

	if !n.ToggleTask(b.ID) || !b.Checked {
		t.Fatal("expected b to be checked")
	}
	if n.ToggleTask("missing") {
		t.Error("toggling a missing task should report false")
	}
	if !n.RemoveTask(b.ID) {
		t.Fatal("expected b to be removed")
	}
	if n.RemoveTask(b.ID) {
		t.Error("removing twice should report false")
	}
	if len(n.Tasks) != 2 || n.Tasks[0] != a || n.Tasks[1] != c {
		t.Errorf("expected order [a c], got %v", n.Tasks)
	}
}

func TestRoundTrip(t *testing.T) {
	due := "2026-10-20"
	tests := []struct {
		name string
		note *Note
	}{
		{"blank", NewNote()},
		{"one task", NewNote(WithTasks(NewTaskItem("milk")))},
		{"many tasks", NewNote(WithTasks(
			&TaskItem{ID: "t1", Text: "one", Checked: true},
			&TaskItem{ID: "t2", Text: "two"},
			&TaskItem{ID: "t3", Text: "ünïcödé"},
		))},
		{"every color", NewNote(WithColor(Palette[4]))},
		{"outside palette", NewNote(WithColor("#000000"))},
		{"in progress", NewNote(WithStatus(StatusInProgress))},
		{"completed", NewNote(WithStatus(StatusCompleted))},
		{"deferred with due", NewNote(WithStatus(StatusDeferred), WithDueDate(due))},
		{"invalid due kept verbatim", NewNote(WithDueDate("someday"))},
		{"square", NewNote(WithSize(400, 400))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.note)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Note
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(&got, tt.note) {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, *tt.note)
			}
		})
	}
}

func TestRoundTripNormalizesToSquare(t *testing.T) {
	n := NewNote(WithSize(320, 240))
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Note
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Width != 320 || got.Height != 320 {
		t.Errorf("expected 320x320, got %dx%d", got.Width, got.Height)
	}
}

func TestMarshalShape(t *testing.T) {
	n := &Note{ID: "x", Title: "t", Color: Palette[0], Width: 280, Height: 280, Status: StatusNew}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "title", "content", "color", "tasks", "width", "height", "due_date", "completed", "status"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if doc["due_date"] != nil {
		t.Errorf("expected null due_date, got %v", doc["due_date"])
	}
	if tasks, ok := doc["tasks"].([]any); !ok || len(tasks) != 0 {
		t.Errorf("expected empty tasks list, got %v", doc["tasks"])
	}
}

func TestMarshalKeepsMarkupUnescaped(t *testing.T) {
	n := NewNote(
		WithTitle("日本語 <b>"),
		WithContent("a & b"),
		WithTasks(NewTaskItem("<todo>")),
	)

	data, err := n.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.HasSuffix(data, []byte("\n")) {
		t.Errorf("expected no trailing newline in %q", data)
	}
	for _, want := range []string{`"日本語 <b>"`, `"a & b"`, `"<todo>"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("expected %s in %s", want, data)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(struct{ Notes []*Note }{[]*Note{n}}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"日本語 <b>"`) {
		t.Errorf("expected unescaped title in document, got %s", buf.String())
	}

	var back Note
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Title != n.Title || back.Content != n.Content || back.Tasks[0].Text != "<todo>" {
		t.Errorf("round trip changed text: %+v", back)
	}
}

func TestUnmarshalDefaults(t *testing.T) {
	data := `{"id":"a1","title":"X","tasks":[{"id":"t1","text":"buy milk","checked":false}]}`
	var n Note
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if n.ID != "a1" || n.Title != "X" {
		t.Errorf("unexpected identity %q/%q", n.ID, n.Title)
	}
	if n.Color != Palette[0] {
		t.Errorf("expected default color, got %s", n.Color)
	}
	if n.Width != 280 || n.Height != 280 {
		t.Errorf("expected 280x280, got %dx%d", n.Width, n.Height)
	}
	if len(n.Tasks) != 1 || n.Tasks[0].ID != "t1" || n.Tasks[0].Text != "buy milk" || n.Tasks[0].Checked {
		t.Errorf("unexpected tasks %+v", n.Tasks)
	}
	if n.Status != StatusNew || n.DueDate != nil {
		t.Errorf("unexpected status/due %s/%v", n.Status, n.DueDate)
	}
}

func TestUnmarshalEmptyObject(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(`{}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ID == "" {
		t.Error("expected generated ID")
	}
	if n.Title != "New Note" || n.Content != "" || n.Color != Palette[0] {
		t.Errorf("unexpected defaults %+v", n)
	}
	if n.Tasks == nil || len(n.Tasks) != 0 {
		t.Errorf("expected empty tasks, got %#v", n.Tasks)
	}
}

func TestUnmarshalTaskDefaults(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(`{"tasks":[{}]}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(n.Tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(n.Tasks))
	}
	task := n.Tasks[0]
	if task.ID == "" || task.Text != "" || task.Checked {
		t.Errorf("unexpected task defaults %+v", task)
	}
}

func TestUnmarshalStatusDerivation(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Status
	}{
		{"completed without status", `{"completed":true}`, StatusCompleted},
		{"not completed without status", `{"completed":false}`, StatusNew},
		{"neither", `{}`, StatusNew},
		{"explicit status wins", `{"completed":true,"status":"deferred"}`, StatusDeferred},
		{"unknown status kept", `{"status":"archived"}`, Status("archived")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Note
			if err := json.Unmarshal([]byte(tt.data), &n); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if n.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, n.Status)
			}
		})
	}
}

func TestUnmarshalSizeNormalization(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{`{"width":300,"height":200}`, 300},
		{`{"width":200,"height":350}`, 350},
		{`{"width":100}`, 280},
		{`{"height":0}`, 280},
		{`{"width":null,"height":400}`, 400},
	}
	for _, tt := range tests {
		var n Note
		if err := json.Unmarshal([]byte(tt.data), &n); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.data, err)
		}
		if n.Width != tt.want || n.Height != tt.want {
			t.Errorf("%s: expected %d square, got %dx%d", tt.data, tt.want, n.Width, n.Height)
		}
	}
}

func TestUnmarshalEmptyColorDefaults(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(`{"color":""}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.Color != Palette[0] {
		t.Errorf("expected %s, got %s", Palette[0], n.Color)
	}
}

func TestUnmarshalRejectsWrongTypes(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(`{"title":42}`), &n); err == nil {
		t.Error("expected error for numeric title")
	}
}

func TestDueQueries(t *testing.T) {
	now := time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

	today := NewNote(WithDueDate("2026-10-17"))
	past := NewNote(WithDueDate("2026-10-01"))
	pastDone := NewNote(WithDueDate("2026-10-01"), WithStatus(StatusCompleted))
	garbage := NewNote(WithDueDate("not a date"))
	none := NewNote()

	if !today.IsDueToday(now) || today.IsOverdue(now) {
		t.Error("expected today's note to be due today and not overdue")
	}
	if !past.IsOverdue(now) {
		t.Error("expected past note to be overdue")
	}
	if pastDone.IsOverdue(now) {
		t.Error("completed notes are never overdue")
	}
	if garbage.IsOverdue(now) || garbage.IsDueToday(now) {
		t.Error("unparsable due dates match nothing")
	}
	if none.IsDueOn(now) {
		t.Error("note without due date matched")
	}
}

func TestDueDays(t *testing.T) {
	notes := []*Note{
		NewNote(WithDueDate("2026-10-03")),
		NewNote(WithDueDate("2026-10-17")),
		NewNote(WithDueDate("2026-10-17")),
		NewNote(WithDueDate("2026-11-03")),
		NewNote(WithDueDate("2026-10")),
		NewNote(),
	}

	days := DueDays(notes, 2026, time.October)
	want := map[int]bool{3: true, 17: true}
	if !reflect.DeepEqual(days, want) {
		t.Errorf("expected %v, got %v", want, days)
	}
}
