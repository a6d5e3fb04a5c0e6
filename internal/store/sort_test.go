package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		dir     string
		want    Sort
		orderBy string
	}{
		{"defaults", "", "", Sort{Key: SortStudentNumber}, "s.number ASC, r.id ASC"},
		{"surname desc", "student.surname", "DESC", Sort{Key: SortStudentSurname, Desc: true}, "s.surname DESC, r.id ASC"},
		{"result asc", "result", "asc", Sort{Key: SortResult}, "r.result_id ASC, r.id ASC"},
		{"unknown key falls back", "password; DROP TABLE students", "desc", Sort{Key: SortStudentNumber, Desc: true}, "s.number DESC, r.id ASC"},
		{"unknown dir is ascending", "status", "sideways", Sort{Key: SortStatus}, "r.status_id ASC, r.id ASC"},
		{"jpa style key is not accepted", "student.user.surname", "", Sort{Key: SortStudentNumber}, "s.number ASC, r.id ASC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSort(tc.key, tc.dir)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.orderBy, got.OrderBy())
		})
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "student.major:desc", ParseSort("student.major", "desc").String())
}
