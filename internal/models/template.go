package models

import "time"

// Template is a catalog entry for a selectable signature layout. Key maps
// to a registered layout in the render package.
type Template struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Premium     bool      `json:"premium"`
	SortOrder   int       `json:"sort_order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
