package models

import (
	"time"
)

// Role selects which half of the API a caller may use.
type Role string

const (
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleProfessor || r == RoleStudent
}

type TokenInfo struct {
	Token           string    `json:"token"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
