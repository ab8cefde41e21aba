package guestflow

import "context"

// RSVPForm is the reconciliation state behind the RSVP card. The form mirrors
// what the guest touched, not what will be sent; AttendeesCount and Payload
// derive the wire values at the moment of submission.
type RSVPForm struct {
	Status         string
	Accompanied    bool
	CompanionCount int
	CompanionNames string
	Notes          string
}

// AttendeesCount derives the headcount from the form alone. Declining always
// means one seat; confirming adds companions only when the guest actually
// toggled them on.
func (f *RSVPForm) AttendeesCount() int {
	if f.Status == StatusConfirmed && f.Accompanied && f.CompanionCount > 0 {
		return 1 + f.CompanionCount
	}
	return 1
}

// Validate runs the pre-flight rules against the invitation's allowance
// before any network call. A nil result means the form may be submitted.
func (f *RSVPForm) Validate(inv *Invitation) *FlowError {
	if f.Status != StatusConfirmed && f.Status != StatusDeclined {
		return &FlowError{Code: "STATUS_REQUIRED", Message: "Elige si podrás asistir."}
	}

	if f.Status == StatusDeclined || !f.Accompanied {
		return nil
	}

	max := MaxCompanions(inv)
	if max == 0 {
		return &FlowError{Code: "PLUS_ONE_NOT_ALLOWED", Message: flowMessages["PLUS_ONE_NOT_ALLOWED"]}
	}
	if f.CompanionCount > max {
		return &FlowError{Code: "MAX_COMPANIONS_EXCEEDED", Message: flowMessages["MAX_COMPANIONS_EXCEEDED"]}
	}
	if f.CompanionCount > 0 && CountNames(f.CompanionNames) < f.CompanionCount {
		return &FlowError{Code: "COMPANION_NAME_REQUIRED", Message: flowMessages["COMPANION_NAME_REQUIRED"]}
	}

	return nil
}

// Payload builds the wire submission from the form. Declines collapse to a
// single attendee with no companion, regardless of selector state.
func (f *RSVPForm) Payload() RSVPSubmission {
	submission := RSVPSubmission{
		Status:         f.Status,
		AttendeesCount: f.AttendeesCount(),
		Notes:          f.Notes,
	}
	if f.Status == StatusConfirmed && f.Accompanied && f.CompanionCount > 0 {
		submission.CompanionName = NormalizeNames(f.CompanionNames)
	}
	return submission
}

// Confirmation is what the guest sees after a successful submission.
type Confirmation struct {
	Invitation *Invitation
	AccessCode string
}

// Submit validates the form and pushes it through the backend. On failure the
// form keeps its state so the guest can correct and retry; the returned error
// carries the localized copy to show.
func (f *RSVPForm) Submit(ctx context.Context, backend Backend, inv *Invitation) (*Confirmation, *FlowError) {
	if err := f.Validate(inv); err != nil {
		return nil, err
	}

	updated, err := backend.SubmitRSVP(ctx, inv.Token, f.Payload())
	if err != nil {
		return nil, Localize(err)
	}

	return &Confirmation{
		Invitation: updated,
		AccessCode: AccessCode(updated.Token),
	}, nil
}
