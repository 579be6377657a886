package models

// Monitor represents a monitor as published by the server's
// monitorList event. Only the fields the report needs are decoded.
type Monitor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Interval int    `json:"interval"` // seconds
	Active   bool   `json:"active"`
}
