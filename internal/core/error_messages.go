package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Codes are grouped by category:
//
//	DB001-DB008   store errors (duplicates, references, connectivity, missing rows)
//	SALE001-SALE005 checkout errors (cart, stock, product, discount, receipt)
//	VAL001-VAL006 cell validation errors
//	FILE001-FILE005  uploaded file errors
//	IMP001-IMP004 import run errors
//	RATE001       request throttling
//	ERR000        fallback; check the server log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns are listed before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Checkout
	{"at least one item", UserMessage{"The cart is empty", "Add at least one product to the sale", "SALE001"}},
	{"insufficient stock", UserMessage{"Not enough stock to complete the sale", "Reduce the quantity or restock the product", "SALE002"}},
	{"product not found", UserMessage{"A product in the cart no longer exists", "Refresh the product list and rebuild the cart", "SALE003"}},
	{"discount", UserMessage{"The discount is not valid", "Use a non-negative amount and a percentage or fixed discount type", "SALE004"}},
	{"unique receipt number", UserMessage{"Could not allocate a receipt number", "Please try the sale again", "SALE005"}},

	// Store constraints
	{"duplicate value", UserMessage{"A record with this value already exists", "Use a different stock code", "DB001"}},
	{"duplicate key", UserMessage{"A record with this value already exists", "Use a different stock code", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries", "DB002"}},
	{"violates foreign key", UserMessage{"The record is linked to other records", "Remove or reassign the records that depend on it first", "DB003"}},
	{"foreign key constraint", UserMessage{"The record is linked to other records", "Remove or reassign the records that depend on it first", "DB003"}},

	// Store connectivity
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"database is locked", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"record not found", UserMessage{"Record not found", "Refresh the page; it may have been deleted", "DB008"}},

	// Validation
	{"must be a valid number", UserMessage{"Invalid number format detected", "Use plain digits with a dot as decimal separator", "VAL001"}},
	{"must be a whole number", UserMessage{"Invalid whole number detected", "Quantities must not contain decimals", "VAL002"}},
	{"is required", UserMessage{"Required field is empty", "Fill in every required field", "VAL003"}},
	{"missing required column", UserMessage{"Required column is missing from CSV", "Download the template and match its headers", "VAL004"}},
	{"must be a valid email", UserMessage{"Invalid email address", "Use the form name@example.com", "VAL005"}},
	{"must not be negative", UserMessage{"Negative values are not allowed", "Use zero or a positive value", "VAL006"}},
	{"must be greater than", UserMessage{"Value is out of range", "Use a positive value", "VAL006"}},
	{"invalid request body", UserMessage{"The request could not be read", "Send a JSON object with the documented fields", "VAL007"}},

	// Files
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated", "FILE002"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to import", "FILE004"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Please upload a CSV file with a header and data rows", "FILE005"}},

	// Import runs
	{"unknown entity", UserMessage{"Unknown import type", "Import suppliers, customers, sellers or products", "IMP001"}},
	{"too many imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "IMP003"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again", "IMP004"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It returns
// the zero UserMessage for a nil error and the ERR000 fallback when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (kept for logging) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// describeError is the text used for per-record import failures: validation
// messages pass through verbatim, anything else uses the mapped message.
func describeError(err error) string {
	if IsValidationError(err) {
		return err.Error()
	}
	return FormatUserError(err)
}
