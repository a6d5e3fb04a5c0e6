package models

import (
	"fmt"
	"strconv"
)

// Result is the outcome recorded on a registration. Values match the ids
// seeded into the results table and are ordered: every passing grade has
// an id greater than or equal to MinPassingGrade.
type Result int

const (
	ResultEmpty Result = iota + 1
	ResultAbsent
	ResultFailed
	ResultPostponed
	Result18
	Result19
	Result20
	Result21
	Result22
	Result23
	Result24
	Result25
	Result26
	Result27
	Result28
	Result29
	Result30
	Result30CumLaude
)

const MinPassingGrade = Result18

// Grade returns the result for a numeric grade on the 18..30 scale.
func Grade(n int) (Result, bool) {
	if n < 18 || n > 30 {
		return 0, false
	}
	return Result18 + Result(n-18), true
}

func AllResults() []Result {
	out := make([]Result, 0, int(Result30CumLaude))
	for r := ResultEmpty; r <= Result30CumLaude; r++ {
		out = append(out, r)
	}
	return out
}

func (r Result) Valid() bool {
	return r >= ResultEmpty && r <= Result30CumLaude
}

// Passing reports whether the result is a grade at or above MinPassingGrade.
func (r Result) Passing() bool {
	return r.Valid() && r >= MinPassingGrade
}

func (r Result) String() string {
	switch {
	case r == ResultEmpty:
		return ""
	case r == ResultAbsent:
		return "absent"
	case r == ResultFailed:
		return "failed"
	case r == ResultPostponed:
		return "postponed"
	case r == Result30CumLaude:
		return "30 cum laude"
	case r >= Result18 && r <= Result30:
		return strconv.Itoa(18 + int(r-Result18))
	}
	return fmt.Sprintf("result(%d)", int(r))
}
