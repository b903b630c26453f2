package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedImportExtensions lists the file types the importer can read.
var AllowedImportExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
}

// MaxImportSize is the maximum allowed size for an import upload (20MB).
const MaxImportSize = 20 << 20

// ValidateImportUpload checks the extension and size of an uploaded import
// file. Browsers disagree on CSV content types, so only the name is checked.
func ValidateImportUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxImportSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of 20MB", fh.Size)
	}
	if fh.Size == 0 {
		return fmt.Errorf("file %q is empty", fh.Filename)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedImportExtensions[ext] {
		return fmt.Errorf("invalid file type '%s'; allowed types: .csv, .tsv, .txt, .xlsx", ext)
	}

	return nil
}

// SanitizeValidationError takes a validator error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	// Try to cast to validator.ValidationErrors
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// If it's not a validation error, return a generic message
		// Check for common binding error patterns
		errMsg := err.Error()
		if strings.Contains(errMsg, "cannot unmarshal") || strings.Contains(errMsg, "invalid character") {
			return "Invalid request body"
		}
		return "Invalid request body"
	}

	// Build user-friendly error messages from field-level errors
	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}
