// Package controller owns client-side view state and orchestrates calls to the
// notes backend in response to user actions.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

// User-facing messages. Details go to the log only.
const (
	MsgLoadFailed   = "Failed to load notes"
	MsgSaveFailed   = "Failed to save note"
	MsgDeleteFailed = "Failed to delete note"
)

// NotesAPI is the subset of the backend adapter the notes controller needs.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	CreateNote(ctx context.Context, title, content string) (model.Note, error)
	UpdateNote(ctx context.Context, id int64, title, content string) (model.Note, error)
	DeleteNote(ctx context.Context, id int64) error
}

// LoadState tracks the list fetch lifecycle.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	}
	return "idle"
}

// SubmitState tracks the create/update form lifecycle.
type SubmitState int

const (
	Editing SubmitState = iota
	Submitting
	SubmitSucceeded
	SubmitFailed
)

func (s SubmitState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case SubmitSucceeded:
		return "submit_succeeded"
	case SubmitFailed:
		return "submit_failed"
	}
	return "editing"
}

// NotesState is a point-in-time copy of the controller state.
type NotesState struct {
	Notes       []model.Note
	Title       string
	Content     string
	EditingID   int64 // 0 when no note is selected
	LoadState   LoadState
	SubmitState SubmitState
	Loading     bool
	Saving      bool
	Error       string
}

// Notes holds the in-memory list and form. Backend calls run without the lock;
// results are merged under it, so the last completion wins.
type Notes struct {
	api NotesAPI
	log *zap.Logger

	mu sync.Mutex
	st NotesState
}

// NewNotes returns a controller with an empty list.
func NewNotes(api NotesAPI, log *zap.Logger) *Notes {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notes{api: api, log: log, st: NotesState{Notes: []model.Note{}}}
}

// Snapshot returns a copy safe to read while other actions are in flight.
func (c *Notes) Snapshot() NotesState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.st
	out.Notes = append([]model.Note(nil), c.st.Notes...)
	return out
}

// Load replaces the list with the backend collection.
func (c *Notes) Load(ctx context.Context) error {
	c.mu.Lock()
	c.st.LoadState, c.st.Loading, c.st.Error = Loading, true, ""
	c.mu.Unlock()

	notes, err := c.api.ListNotes(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Loading = false
	if err != nil {
		c.log.Error("load notes", zap.Error(err))
		c.st.LoadState, c.st.Error = LoadFailed, MsgLoadFailed
		return err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	c.st.Notes, c.st.LoadState = notes, Loaded
	return nil
}

// SetTitle edits the form title.
func (c *Notes) SetTitle(s string) {
	c.mu.Lock()
	c.st.Title = s
	c.mu.Unlock()
}

// SetContent edits the form content.
func (c *Notes) SetContent(s string) {
	c.mu.Lock()
	c.st.Content = s
	c.mu.Unlock()
}

// StartEdit selects note and copies its fields into the form.
func (c *Notes) StartEdit(note model.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.EditingID = note.ID
	c.st.Title, c.st.Content = note.Title, note.Content
	c.st.SubmitState, c.st.Error = Editing, ""
}

// CancelEdit clears the selection and the form.
func (c *Notes) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetForm()
}

func (c *Notes) resetForm() {
	c.st.EditingID = 0
	c.st.Title, c.st.Content = "", ""
	c.st.SubmitState = Editing
}

// Submit creates a note, or updates the selected one, from the form.
// A blank form returns errs.ErrEmptyNote without touching state or the backend.
func (c *Notes) Submit(ctx context.Context) error {
	c.mu.Lock()
	title, content, id := c.st.Title, c.st.Content, c.st.EditingID
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		c.mu.Unlock()
		return errs.ErrEmptyNote
	}
	c.st.SubmitState, c.st.Saving, c.st.Error = Submitting, true, ""
	c.mu.Unlock()

	var (
		note model.Note
		err  error
	)
	if id == 0 {
		note, err = c.api.CreateNote(ctx, title, content)
	} else {
		note, err = c.api.UpdateNote(ctx, id, title, content)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Saving = false
	if err != nil {
		c.log.Error("save note", zap.Int64("id", id), zap.Error(err))
		if errors.Is(err, errs.ErrPartialUpdate) && note.ID != 0 {
			c.st.Notes = prepend(c.st.Notes, note)
		}
		c.st.SubmitState, c.st.Error = SubmitFailed, MsgSaveFailed
		return err
	}

	notes := c.st.Notes
	if id != 0 {
		notes = without(notes, id)
	}
	c.st.Notes = prepend(notes, note)
	c.resetForm()
	c.st.SubmitState = SubmitSucceeded
	return nil
}

// Delete removes note id on the backend and then locally. If it was selected
// the form is reset.
func (c *Notes) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.st.Error = ""
	c.mu.Unlock()

	err := c.api.DeleteNote(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Error("delete note", zap.Int64("id", id), zap.Error(err))
		c.st.Error = MsgDeleteFailed
		return err
	}
	c.st.Notes = without(c.st.Notes, id)
	if c.st.EditingID == id {
		c.resetForm()
	}
	return nil
}

// prepend puts n first and drops any older entry with the same id.
func prepend(notes []model.Note, n model.Note) []model.Note {
	out := make([]model.Note, 0, len(notes)+1)
	out = append(out, n)
	return append(out, without(notes, n.ID)...)
}

func without(notes []model.Note, id int64) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
