package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. The CLI logs the code next to the technical error and the HTTP
// service returns it in JSON error bodies.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A license number appears more than once
//	        Patterns: "duplicate key"
//
//	DB002 - Unique constraint: A license number appears more than once
//	        Patterns: "unique constraint"
//
//	DB003 - Not null: A required column had no value
//	        Patterns: "not null constraint", "violates not-null"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Database locked: The output database is in use
//	        Patterns: "database is locked"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large", "request body too large"
//
//	FILE003 - Encoding error: Input is not UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was provided
//	          Patterns: "no file provided"
//
//	FILE005 - Line too long: A line exceeds the scanner limit
//	          Patterns: "token too long"
//
//	FILE006 - Input not found
//	          Patterns: "input not found", "no such file"
//
// # Conversion Errors (CNV001-CNV099)
//
//	CNV001 - No entries: The input had no data lines
//	         Patterns: "no entries found"
//
//	CNV002 - System busy: Too many conversions in progress
//	         Patterns: "too many conversions"
//
//	CNV003 - Cancelled: The conversion was cancelled
//	         Patterns: "context canceled"
//
//	CNV004 - Timeout: The conversion took too long
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

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

var (
	duplicateLicense = UserMessage{
		Message: "A license number appears more than once in the input",
		Action:  "Remove the duplicate line and convert again",
		Code:    "DB002",
	}
	inputNotFound = UserMessage{
		Message: "The input file could not be found",
		Action:  "Check the input path",
		Code:    "FILE006",
	}
)

var errorPatterns = []errorPattern{
	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A license number appears more than once in the input",
			Action:  "Remove the duplicate line and convert again",
			Code:    "DB001",
		},
	},
	{pattern: "unique constraint", msg: duplicateLicense},
	{
		pattern: "not null constraint",
		msg: UserMessage{
			Message: "A required column had no value",
			Action:  "Check that every line follows the FFLeZCheck layout",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates not-null",
		msg: UserMessage{
			Message: "A required column had no value",
			Action:  "Check that every line follows the FFLeZCheck layout",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The output database is in use",
			Action:  "Close other programs using the file and try again",
			Code:    "DB005",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Use the command line tool for very large exports",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Use the command line tool for very large exports",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "The input contains characters that are not UTF-8",
			Action:  "Save the file as UTF-8 and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach the FFLeZCheck text file in the \"file\" field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "token too long",
		msg: UserMessage{
			Message: "A line is far longer than an FFLeZCheck record",
			Action:  "Check that the file is an FFLeZCheck text export",
			Code:    "FILE005",
		},
	},
	{pattern: "input not found", msg: inputNotFound},
	{pattern: "no such file", msg: inputNotFound},

	// Conversion
	{
		pattern: "no entries found",
		msg: UserMessage{
			Message: "The input did not contain any entries",
			Action:  "Check that the file is not empty",
			Code:    "CNV001",
		},
	},
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "Too many conversions are in progress",
			Action:  "Please wait a moment and try again",
			Code:    "CNV002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The conversion was cancelled",
			Action:  "Please try again",
			Code:    "CNV003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The conversion timed out",
			Action:  "Use the command line tool for very large exports",
			Code:    "CNV004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-friendly message.
// Returns the zero UserMessage for a nil error.
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

// String renders "Message (Code: XXX). Action", or "" for the zero value.
func (m UserMessage) String() string {
	if m.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", m.Message, m.Code, m.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
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
