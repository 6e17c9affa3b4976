package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "file not indexed")
		if err.Error() != "[NOT_FOUND] file not indexed" {
			t.Errorf("expected [NOT_FOUND] file not indexed, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid request")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeRateLimited, "too many queries")
		if !IsCode(err, CodeRateLimited) {
			t.Error("expected IsCode to return true for wrapped CodeRateLimited")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeNotFound, "file not indexed")
		err = AddContext(err, CtxURI, "/proj/plugin.sp")
		if !strings.Contains(err.Error(), "/proj/plugin.sp") {
			t.Errorf("context not rendered: %s", err.Error())
		}
	})
}
