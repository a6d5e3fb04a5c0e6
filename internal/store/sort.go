package store

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortStudentNumber  SortKey = "student.number"
	SortStudentSurname SortKey = "student.surname"
	SortStudentName    SortKey = "student.name"
	SortStudentEmail   SortKey = "student.email"
	SortStudentMajor   SortKey = "student.major"
	SortResult         SortKey = "result"
	SortStatus         SortKey = "status"

	DefaultSortKey = SortStudentNumber
)

// sortColumns is the whitelist of sortable columns. Only these strings ever
// reach an ORDER BY clause.
var sortColumns = map[SortKey]string{
	SortStudentNumber:  "s.number",
	SortStudentSurname: "s.surname",
	SortStudentName:    "s.name",
	SortStudentEmail:   "s.email",
	SortStudentMajor:   "s.major",
	SortResult:         "r.result_id",
	SortStatus:         "r.status_id",
}

type Sort struct {
	Key  SortKey
	Desc bool
}

// ParseSort maps caller input onto the whitelist. Unknown or empty keys fall
// back to DefaultSortKey; any direction other than "desc" is ascending.
func ParseSort(key, dir string) Sort {
	k := SortKey(strings.TrimSpace(key))
	if _, ok := sortColumns[k]; !ok {
		k = DefaultSortKey
	}
	return Sort{
		Key:  k,
		Desc: strings.EqualFold(strings.TrimSpace(dir), "desc"),
	}
}

func (s Sort) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

func (s Sort) OrderBy() string {
	column, ok := sortColumns[s.Key]
	if !ok {
		column = sortColumns[DefaultSortKey]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, r.id ASC", column, dir)
}

func (s Sort) String() string {
	return fmt.Sprintf("%s:%s", s.Key, s.Direction())
}
