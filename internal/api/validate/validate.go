package validate

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	maxUserIDLen   = 128
	maxUserNameLen = 100
	// MaxExportDocuments bounds userDocuments in one export request.
	MaxExportDocuments = 200
	// MaxSuggestionDocuments bounds documents in one suggestion request.
	MaxSuggestionDocuments = 10
)

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// UserID requires a non-empty identifier of bounded length.
func UserID(v string) error {
	if err := NonEmpty("userId", v); err != nil {
		return err
	}
	if err := MaxLen("userId", v, maxUserIDLen); err != nil {
		return err
	}
	return nil
}

// -------- Request specific helpers ----------

// ExportPackage validates the envelope of an export request. Per-document
// problems (missing filename or URL) are not rejected here; they are reported
// inside the package.
func ExportPackage(userID, userName string, documents int) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := MaxLen("userName", userName, maxUserNameLen); err != nil {
		return err
	}
	if documents > MaxExportDocuments {
		return fmt.Errorf("userDocuments exceeds %d items", MaxExportDocuments)
	}
	return nil
}

func SuggestionRequest(userID, userName string, documents int) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := MaxLen("userName", userName, maxUserNameLen); err != nil {
		return err
	}
	if documents > MaxSuggestionDocuments {
		return fmt.Errorf("documents exceeds %d items", MaxSuggestionDocuments)
	}
	return nil
}

// Limit parses an optional positive page size; empty means 0 (store default).
func Limit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return n, nil
}
