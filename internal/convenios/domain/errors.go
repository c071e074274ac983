package domain

import "errors"

var (
	ErrConvenioNotFound     = errors.New("convenio not found")
	ErrTypeNotFound         = errors.New("agreement type not found")
	ErrObservationNotFound  = errors.New("observation not found")
	ErrUnauthorized         = errors.New("not allowed to perform this action")
	ErrInvalidAction        = errors.New("invalid action")
	ErrInvalidPrecondition  = errors.New("action not allowed in current status")
	ErrNotEditable          = errors.New("convenio can no longer be edited")
	ErrInvalidInput         = errors.New("invalid input")
	ErrObservationsRequired = errors.New("observaciones are required")
)
