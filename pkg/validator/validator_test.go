package validator

import (
	"testing"
)

type rsvpPayload struct {
	Status         string `json:"status" validate:"required,oneof=confirmed declined"`
	AttendeesCount int    `json:"attendees_count" validate:"gte=1"`
	Notes          string `json:"notes" validate:"max=500"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := rsvpPayload{
		Status:         "confirmed",
		AttendeesCount: 2,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := rsvpPayload{
		Status:         "maybe",
		AttendeesCount: 0,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(vErrs))
	}

	// Field names should come from the json tags.
	if vErrs[1].Field != "attendees_count" {
		t.Fatalf("expected json tag field name, got %q", vErrs[1].Field)
	}
}

func TestValidationErrorsString(t *testing.T) {
	errs := ValidationErrors{
		{Field: "status", Tag: "required"},
		{Field: "notes", Tag: "max", Param: "500"},
	}

	got := errs.Error()
	want := "status failed on required; notes failed on max=500"
	if got != want {
		t.Fatalf("unexpected error string: %q", got)
	}
}
