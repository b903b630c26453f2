package utils

import (
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestSanitizeValidationErrorEmail(t *testing.T) {
	// Simulate a validator.ValidationErrors for an email field
	validate := validator.New()

	type TestReq struct {
		Email string `validate:"required,email"`
	}

	err := validate.Struct(TestReq{Email: "not-an-email"})
	if err == nil {
		t.Fatal("expected validation error for invalid email")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "email") {
		t.Errorf("expected error message to mention email, got: %s", msg)
	}
	if !strings.Contains(msg, "valid email address") {
		t.Errorf("expected user-friendly email error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorRequired(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Name     string `validate:"required"`
		Password string `validate:"required,min=8"`
	}

	err := validate.Struct(TestReq{})
	if err == nil {
		t.Fatal("expected validation error for missing required fields")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "required") {
		t.Errorf("expected error message to mention 'required', got: %s", msg)
	}
}

func TestSanitizeValidationErrorNilReturnsEmpty(t *testing.T) {
	msg := SanitizeValidationError(nil)
	if msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorMinLength(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Password string `validate:"required,min=8"`
	}

	err := validate.Struct(TestReq{Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "at least") {
		t.Errorf("expected min length message, got: %s", msg)
	}
}

func TestSanitizeValidationErrorRange(t *testing.T) {
	validate := validator.New()

	type NearQuery struct {
		Lat float64 `validate:"gte=-90,lte=90"`
	}

	msg := SanitizeValidationError(validate.Struct(NearQuery{Lat: 120}))
	if msg != "lat must be at most 90" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSanitizeValidationErrorNonValidator(t *testing.T) {
	msg := SanitizeValidationError(errors.New("invalid character 'x' looking for beginning of value"))
	if msg != "Invalid request body" {
		t.Errorf("expected generic message, got: %s", msg)
	}
}

func uploadHeader(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   make(textproto.MIMEHeader),
	}
}

func TestValidateImportUploadAllowedTypes(t *testing.T) {
	for _, name := range []string{"shops.csv", "shops.TSV", "shops.txt", "shops.xlsx"} {
		if err := ValidateImportUpload(uploadHeader(name, 1024)); err != nil {
			t.Errorf("expected no error for %s, got: %v", name, err)
		}
	}
}

func TestValidateImportUploadTooLarge(t *testing.T) {
	err := ValidateImportUpload(uploadHeader("huge.csv", 30<<20))
	if err == nil {
		t.Fatal("expected error for file exceeding max size")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size error, got: %v", err)
	}
}

func TestValidateImportUploadEmpty(t *testing.T) {
	if err := ValidateImportUpload(uploadHeader("empty.csv", 0)); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestValidateImportUploadInvalidType(t *testing.T) {
	err := ValidateImportUpload(uploadHeader("document.pdf", 1024))
	if err == nil {
		t.Fatal("expected error for invalid file type")
	}
	if !strings.Contains(err.Error(), "invalid file type") {
		t.Errorf("expected file type error, got: %v", err)
	}
}
