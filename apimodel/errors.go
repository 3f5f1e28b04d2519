package apimodel

import "errors"

var (
	ErrEmptyEnvelope   = errors.New("response envelope has no data")
	ErrEnvelopeFailure = errors.New("response envelope reported failure")
)
