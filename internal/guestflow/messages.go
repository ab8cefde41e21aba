package guestflow

import (
	"context"
	"strings"
	"time"
)

const pendingMessageID = "pending"

// MessageBoard drives the guest message wall for one invitation. Submission
// is optimistic: the entry appears immediately and is rolled back if the
// backend rejects it.
type MessageBoard struct {
	backend    Backend
	token      string
	viewerName string

	Messages  []Message
	Draft     string
	Submitted bool
}

// NewMessageBoard builds a board bound to one invitation token. viewerName is
// the display name attached to the optimistic entry.
func NewMessageBoard(backend Backend, token, viewerName string) *MessageBoard {
	return &MessageBoard{backend: backend, token: token, viewerName: viewerName}
}

// Load refreshes the wall. Finding the viewer's own message among the results
// latches Submitted so the form stays closed across reloads.
func (b *MessageBoard) Load(ctx context.Context) *FlowError {
	messages, err := b.backend.ListMessages(ctx, b.token)
	if err != nil {
		return Localize(err)
	}
	b.Messages = messages
	return nil
}

// Submit posts the draft optimistically: the entry is prepended and the draft
// cleared before the call. On failure the temporary entry is removed; an
// already-submitted rejection still latches Submitted, any other failure
// restores the draft for another attempt.
func (b *MessageBoard) Submit(ctx context.Context) *FlowError {
	draft := strings.TrimSpace(b.Draft)
	if draft == "" {
		return &FlowError{Code: "MESSAGE_REQUIRED", Message: "Escribe un mensaje primero."}
	}
	if b.Submitted {
		return &FlowError{Code: "MESSAGE_ALREADY_SUBMITTED", Message: flowMessages["MESSAGE_ALREADY_SUBMITTED"]}
	}

	temp := Message{
		ID:        pendingMessageID,
		GuestName: b.viewerName,
		Text:      draft,
		CreatedAt: time.Now(),
		Pending:   true,
	}
	b.Messages = append([]Message{temp}, b.Messages...)
	b.Draft = ""

	created, err := b.backend.SubmitMessage(ctx, b.token, draft)
	if err != nil {
		b.removePending()
		flowErr := Localize(err)
		if flowErr.Code == "MESSAGE_ALREADY_SUBMITTED" {
			b.Submitted = true
		} else {
			b.Draft = draft
		}
		return flowErr
	}

	// Swap the temporary entry for the confirmed one.
	b.removePending()
	b.Messages = append([]Message{*created}, b.Messages...)
	b.Submitted = true
	return nil
}

func (b *MessageBoard) removePending() {
	kept := b.Messages[:0]
	for _, msg := range b.Messages {
		if !msg.Pending {
			kept = append(kept, msg)
		}
	}
	b.Messages = kept
}
