package events

import "time"

// Event is anything written to the audit trail.
type Event interface {
	Action() string
}

type SessionOpened struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	At        time.Time `json:"at"`
}

func (SessionOpened) Action() string { return "session.opened" }

type SessionClosed struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	At        time.Time `json:"at"`
}

func (SessionClosed) Action() string { return "session.closed" }

type SessionsRevoked struct {
	UserID string    `json:"userId"`
	Count  int64     `json:"count"`
	At     time.Time `json:"at"`
}

func (SessionsRevoked) Action() string { return "session.revoked_all" }

type SessionsSwept struct {
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

func (SessionsSwept) Action() string { return "session.swept" }
