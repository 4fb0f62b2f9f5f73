package storage

import (
	"context"

	"github.com/comus-party/justeprix/internal/model"
)

// Storage defines the interface for session persistence.
//
// The session directory is the only writer; every mutation happens
// under the directory's per-session lock, so implementations only need
// to make individual operations safe for concurrent use.
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)
	ListSessionIDs(ctx context.Context) ([]model.SessionID, error)
}
