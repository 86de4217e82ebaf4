package services

import "errors"

type ErrorCode string

const (
	ErrorNotFound      ErrorCode = "not_found"
	ErrorDataIntegrity ErrorCode = "data_integrity"
)

// Not found messages are part of the HTTP contract and are never translated.
const (
	MsgCommunityNotFound = "Community not found"
	MsgCountryNotFound   = "Country not found"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewDataIntegrityError(msg string) error {
	return &ServiceError{Code: ErrorDataIntegrity, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsDataIntegrity reports whether err marks inconsistent stored data.
func IsDataIntegrity(err error) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == ErrorDataIntegrity
}
