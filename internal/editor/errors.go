package editor

import "errors"

var (
	// ErrCancelled is returned by ReadLine when the user discards the edit
	// with Escape. It is distinct from committing an empty line.
	ErrCancelled = errors.New("edit cancelled")

	// ErrAborted is returned by ReadLine when a host notification (resize or
	// scroll) arrives mid-edit. The edit state is kept; Resume continues it.
	ErrAborted = errors.New("edit aborted")

	// ErrNotEditing is returned by Resume when no edit is suspended.
	ErrNotEditing = errors.New("no edit in progress")

	// ErrUnknownAction is returned by Bind for an action name with no
	// handler.
	ErrUnknownAction = errors.New("unknown editor action")
)
