package errors

import (
	"fmt"
	"testing"
)

func TestMarkletError_Error(t *testing.T) {
	err := &MarkletError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "bookmarklet not found",
	}

	expected := "NOT_FOUND: bookmarklet not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "id is required" {
		t.Errorf("Message = %q, want %q", err.Message, "id is required")
	}
}

func TestNewInvalidToken(t *testing.T) {
	err := NewInvalidToken("not valid base64")

	if err.Code != ErrInvalidToken {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidToken)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Details["reason"] != "not valid base64" {
		t.Errorf("Details[reason] = %v, want %q", err.Details["reason"], "not valid base64")
	}
}

func TestNewImport(t *testing.T) {
	err := NewImport("import data must be a JSON array")

	if err.Code != ErrImport {
		t.Errorf("Code = %q, want %q", err.Code, ErrImport)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01ARZ3NDEKTSV4RRFFQ69G5FAV")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("name")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != "name is required" {
		t.Errorf("Message = %q, want %q", err.Message, "name is required")
	}
	if err.Details["field"] != "name" {
		t.Errorf("Details[field] = %v, want %q", err.Details["field"], "name")
	}
}

func TestNewStorageCorrupt(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("invalid character 'x' looking for beginning of value")
		err := NewStorageCorrupt(cause)

		if err.Code != ErrStorageCorrupt {
			t.Errorf("Code = %q, want %q", err.Code, ErrStorageCorrupt)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		want := "stored collection is unreadable: invalid character 'x' looking for beginning of value"
		if err.Message != want {
			t.Errorf("Message = %q, want %q", err.Message, want)
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewStorageCorrupt(nil)

		if err.Message != "stored collection is unreadable" {
			t.Errorf("Message = %q, want %q", err.Message, "stored collection is unreadable")
		}
	})
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("database connection failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		// Message should be generic (not leak internal details)
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Original error should be stored in Details for logging
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Details should be empty but not nil
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrValidation) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-MarkletError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-MarkletError")
		}
	})

	t.Run("wrapped MarkletError", func(t *testing.T) {
		inner := NewNotFound("test")
		wrapped := fmt.Errorf("items[0]: %w", inner)
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped MarkletError")
		}
		if Is(wrapped, ErrValidation) {
			t.Error("Is() = true, want false for wrong code on wrapped MarkletError")
		}
	})
}
