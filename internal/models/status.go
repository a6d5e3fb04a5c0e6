package models

import "fmt"

// Status is the lifecycle state of a registration. Values match the ids
// seeded into the statuses table.
type Status int

const (
	StatusNotEntered Status = iota + 1
	StatusEntered
	StatusPublished
	StatusDeclined
	StatusRecorded
)

var statusLabels = map[Status]string{
	StatusNotEntered: "not entered",
	StatusEntered:    "entered",
	StatusPublished:  "published",
	StatusDeclined:   "declined",
	StatusRecorded:   "recorded",
}

func AllStatuses() []Status {
	return []Status{
		StatusNotEntered,
		StatusEntered,
		StatusPublished,
		StatusDeclined,
		StatusRecorded,
	}
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Editable reports whether a grade may be written or overwritten.
func (s Status) Editable() bool {
	switch s {
	case StatusNotEntered, StatusEntered:
		return true
	case StatusPublished, StatusDeclined, StatusRecorded:
		return false
	}
	return false
}

// VisibleToStudent reports whether the student may see the result.
func (s Status) VisibleToStudent() bool {
	switch s {
	case StatusPublished, StatusDeclined, StatusRecorded:
		return true
	case StatusNotEntered, StatusEntered:
		return false
	}
	return false
}

func (s Status) Declinable() bool {
	switch s {
	case StatusPublished:
		return true
	case StatusNotEntered, StatusEntered, StatusDeclined, StatusRecorded:
		return false
	}
	return false
}

// Finalizable reports whether finalize seals a row in this status.
func (s Status) Finalizable() bool {
	switch s {
	case StatusPublished, StatusDeclined:
		return true
	case StatusNotEntered, StatusEntered, StatusRecorded:
		return false
	}
	return false
}

// FinalizableStatuses lists the statuses matched by the finalize predicate.
func FinalizableStatuses() []Status {
	var out []Status
	for _, s := range AllStatuses() {
		if s.Finalizable() {
			out = append(out, s)
		}
	}
	return out
}
