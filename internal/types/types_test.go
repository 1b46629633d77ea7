package types

import (
	"errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	plain := NewAppError(ErrExtraction, "cannot open file", nil)
	if plain.Error() != "cannot open file" {
		t.Errorf("Error() = %q", plain.Error())
	}

	detailed := NewAppErrorWithDetails(ErrExtraction, "legacy format",
		"convert .doc to .docx and retry", nil)
	want := "legacy format: convert .doc to .docx and retry"
	if detailed.Error() != want {
		t.Errorf("Error() = %q, want %q", detailed.Error(), want)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(ErrInternal, "cannot write output", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Fatal("errors.As should match *AppError")
	}
	if appErr.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", appErr.Code, ErrInternal)
	}
}
