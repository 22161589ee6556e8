package session

import (
	"context"
	"time"

	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

// Store is a durable, per-session ordered log of turns.
//
// Appends and clears on one session are totally ordered; operations on
// different sessions never block one another. A session that was never
// written reads as an empty history. Backend failures are returned as
// STORAGE_UNAVAILABLE and are never reported as an empty history.
type Store interface {
	Append(ctx context.Context, sessionID string, turn Turn) error
	History(ctx context.Context, sessionID string) ([]Turn, error)
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// Lister is implemented by stores that can enumerate their sessions.
type Lister interface {
	Sessions(ctx context.Context) ([]Summary, error)
}

func validateID(sessionID string) error {
	if sessionID == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "session id is empty", nil)
	}
	return nil
}

// prepareTurn validates the append arguments and stamps CreatedAt when unset.
func prepareTurn(sessionID string, turn Turn) (Turn, error) {
	if err := validateID(sessionID); err != nil {
		return turn, err
	}
	if !turn.Role.Valid() {
		return turn, apperrors.New(apperrors.ErrCodeInvalidRequest, "invalid role "+string(turn.Role), nil)
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	return turn, nil
}

func unavailable(msg string, err error) error {
	return apperrors.New(apperrors.ErrCodeStorageUnavailable, msg, err)
}
