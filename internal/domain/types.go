package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type SessionID = uuid.UUID
type PathID = uuid.UUID
type ProgressID = uuid.UUID
