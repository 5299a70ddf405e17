package model

import "time"

// DateLayout is the format of due dates.
const DateLayout = "2006-01-02"

// Due returns the parsed due date. ok is false when the note has no due
// date or it does not parse.
func (n *Note) Due() (due time.Time, ok bool) {
	if n.DueDate == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, *n.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsDueOn returns true if the note is due on the calendar day of t.
func (n *Note) IsDueOn(t time.Time) bool {
	d, ok := n.Due()
	if !ok {
		return false
	}
	y, m, day := t.Date()
	return d.Year() == y && d.Month() == m && d.Day() == day
}

// IsDueToday returns true if the note's due date is today.
func (n *Note) IsDueToday(now time.Time) bool {
	return n.IsDueOn(now)
}

// IsOverdue returns true if the note is past its due date and not completed.
func (n *Note) IsOverdue(now time.Time) bool {
	if n.Completed || n.Status == StatusCompleted {
		return false
	}
	d, ok := n.Due()
	if !ok {
		return false
	}
	return d.Format(DateLayout) < now.Format(DateLayout)
}

// DueDays returns the days of the given month on which at least one note
// is due. Unparsable due dates are skipped.
func DueDays(notes []*Note, year int, month time.Month) map[int]bool {
	days := make(map[int]bool)
	for _, n := range notes {
		d, ok := n.Due()
		if !ok {
			continue
		}
		if d.Year() == year && d.Month() == month {
			days[d.Day()] = true
		}
	}
	return days
}
