// Package convert translates between the backend wire shape and UI-facing models.
package convert

import (
	"time"

	"github.com/and161185/notekeeper/internal/model"
)

// WireNote is a note as the backend encodes it: the UI's content travels as body.
type WireNote struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Body      *string    `json:"body,omitempty"`
	Content   *string    `json:"content,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// WireNoteInput is the request payload for create and replace.
type WireNoteInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ToWireInput renames content to body.
func ToWireInput(title, content string) WireNoteInput {
	return WireNoteInput{Title: title, Body: content}
}

// FromWireNote converts a decoded wire note. Content is taken from body, then
// from content, and is empty when neither is present.
func FromWireNote(in WireNote) model.Note {
	var content string
	switch {
	case in.Body != nil:
		content = *in.Body
	case in.Content != nil:
		content = *in.Content
	}
	return model.Note{
		ID:        in.ID,
		Title:     in.Title,
		Content:   content,
		CreatedAt: in.CreatedAt,
	}
}

// FromWireNotes converts a slice of wire notes, preserving order.
func FromWireNotes(in []WireNote) []model.Note {
	out := make([]model.Note, 0, len(in))
	for _, n := range in {
		out = append(out, FromWireNote(n))
	}
	return out
}
