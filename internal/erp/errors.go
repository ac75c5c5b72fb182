package erp

import "errors"

var (
	// ErrERPFailure is returned when the ERP cannot be reached or answers with a non-2xx status
	ErrERPFailure = errors.New("ecount API request failed")

	// ErrDecode is returned when the ERP body is not the expected envelope
	ErrDecode = errors.New("ecount API response could not be decoded")
)
