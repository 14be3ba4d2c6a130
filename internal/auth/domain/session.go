package domain

// Status is the tri-state result the authentication service reports.
// Unspecified means the peer sent a value this gateway does not know about.
type Status int

const (
	StatusUnspecified Status = iota
	StatusSuccess
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "unspecified"
	}
}

type TokenReply struct {
	Status Status
	Token  string
	UserID int64
}

type ValidateReply struct {
	Status Status
	UserID int64
}

// Session is an issued token together with the identity it is bound to.
// The token is opaque to the gateway.
type Session struct {
	UserID int64
	Token  string
}
