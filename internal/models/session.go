package models

import "time"

// Session is the single active authenticated context.
type Session struct {
	Account  AccountView `json:"account"`
	Token    string      `json:"token"`
	IssuedAt time.Time   `json:"issued_at"`
}
