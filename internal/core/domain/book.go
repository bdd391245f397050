package domain

import "time"

// Book is a catalogue entry. AddedBy references the user who created it and
// is immutable after creation; only that user may modify or delete the book.
type Book struct {
	ID          string
	Title       string
	Author      string
	Description string
	Genre       string
	Year        int
	AddedBy     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
