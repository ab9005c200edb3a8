package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/convert"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

const notesPath = "/notes"

func notePath(id int64) string { return notesPath + "/" + strconv.FormatInt(id, 10) }

// ListNotes returns the full collection in backend order.
func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var out []convert.WireNote
	if err := c.doJSON(ctx, http.MethodGet, notesPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return convert.FromWireNotes(out), nil
}

// GetNote fetches a single note.
func (c *Client) GetNote(ctx context.Context, id int64) (model.Note, error) {
	var out convert.WireNote
	if err := c.doJSON(ctx, http.MethodGet, notePath(id), nil, nil, &out); err != nil {
		return model.Note{}, err
	}
	return convert.FromWireNote(out), nil
}

// CreateNote sends {title, body} and decodes the created note.
func (c *Client) CreateNote(ctx context.Context, title, content string) (model.Note, error) {
	var out convert.WireNote
	if err := c.doJSON(ctx, http.MethodPost, notesPath, nil, convert.ToWireInput(title, content), &out); err != nil {
		return model.Note{}, err
	}
	return convert.FromWireNote(out), nil
}

// UpdateNote modifies note id using the client's strategy.
//
// With UpdateRecreate the returned note has a new id. If the create succeeds but
// the delete fails, the created note is returned together with an error wrapping
// errs.ErrPartialUpdate: both copies then exist. Callers must not blindly retry.
func (c *Client) UpdateNote(ctx context.Context, id int64, title, content string) (model.Note, error) {
	if c.strategy == UpdateReplace {
		var out convert.WireNote
		if err := c.doJSON(ctx, http.MethodPut, notePath(id), nil, convert.ToWireInput(title, content), &out); err != nil {
			return model.Note{}, err
		}
		return convert.FromWireNote(out), nil
	}

	created, err := c.CreateNote(ctx, title, content)
	if err != nil {
		return model.Note{}, err
	}
	if err := c.DeleteNote(ctx, id); err != nil {
		c.log.Warn("recreate: old note not deleted",
			zap.Int64("old_id", id),
			zap.Int64("new_id", created.ID),
			zap.Error(err),
		)
		return created, fmt.Errorf("%w: id %d: %w", errs.ErrPartialUpdate, id, err)
	}
	return created, nil
}

// DeleteNote removes note id. No existence check is made client-side.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, notePath(id), nil, nil, nil)
}
