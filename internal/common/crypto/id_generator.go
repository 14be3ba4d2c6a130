package crypto

import "github.com/google/uuid"

// TraceIDGenerator issues request correlation ids.
type TraceIDGenerator interface {
	NewTraceID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewTraceID() string {
	return uuid.NewString()
}
