package domain

import "errors"

var (
	// ErrUnauthenticated covers a missing, malformed, invalid or expired
	// credential. Handlers surface it without saying which, so a caller
	// cannot probe signatures against the error message.
	ErrUnauthenticated = errors.New("invalid or expired token")
	// ErrForbidden means the subject is authenticated but lacks the role.
	ErrForbidden = errors.New("access denied, admin only")
	// ErrValidation flags a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTokenMalformed is returned when a credential is not a three-part
	// signed token.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignature is returned when the signature does not verify.
	ErrTokenSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingFile is returned when a required upload is absent.
	ErrMissingFile = errors.New("resume file is required")
	// ErrUnsupportedFileType is returned for extensions outside the
	// allow-list.
	ErrUnsupportedFileType = errors.New("only PDF, DOC and DOCX files are allowed")
	// ErrFileTooLarge is returned for uploads over the size ceiling.
	ErrFileTooLarge = errors.New("file exceeds the 5 MiB limit")

	// ErrDuplicateApplication means a record for the (applicant, job)
	// pair already exists.
	ErrDuplicateApplication = errors.New("you have already applied for this job")
	// ErrApplicationDecided means the application already left pending
	// and cannot be moderated again.
	ErrApplicationDecided = errors.New("application has already been decided")

	// ErrInvalidCredentials covers unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned on registration with a known email.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrAccountUnverified blocks login before the one-time code was
	// confirmed.
	ErrAccountUnverified = errors.New("account not verified")
	// ErrCodeInvalid covers an unknown, expired or mismatched one-time
	// code.
	ErrCodeInvalid = errors.New("invalid or expired verification code")
)
