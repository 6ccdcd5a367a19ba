package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// DefaultPinAttempts bounds PIN generation retries before giving up.
const DefaultPinAttempts = 10

var pinSpace = big.NewInt(1000000)

// SessionRepository is the persistence surface for sessions. Create must
// surface an active-PIN uniqueness conflict as ErrConflict so the
// generator can treat it as one more collision.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	ActivePinExists(ctx context.Context, pin string) (bool, error)
	FindActiveByPin(ctx context.Context, pin string) (*models.Session, error)
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Session, error)
	Deactivate(ctx context.Context, id int64) error
}

// SessionService manages ephemeral PIN-joined sessions.
type SessionService struct {
	repo        SessionRepository
	logger      *zap.Logger
	maxAttempts int
	randomPin   func() (string, error)
}

// NewSessionService constructs a session service.
func NewSessionService(repo SessionRepository, logger *zap.Logger, maxAttempts int) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPinAttempts
	}
	return &SessionService{
		repo:        repo,
		logger:      logger,
		maxAttempts: maxAttempts,
		randomPin:   generatePin,
	}
}

// Create allocates a session with a fresh 6-digit PIN, retrying against
// the set of currently active PINs. Collisions with retired PINs are
// fine; exhausting every attempt reports PIN_EXHAUSTED.
func (s *SessionService) Create(ctx context.Context, ownerID *string) (*dto.SessionCreated, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		pin, err := s.randomPin()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate pin")
		}

		taken, err := s.repo.ActivePinExists(ctx, pin)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pin availability")
		}
		if taken {
			continue
		}

		session := &models.Session{Pin: pin, OwnerID: ownerID, Active: true}
		if err := s.repo.Create(ctx, session); err != nil {
			// A concurrent creator may have claimed the PIN between the
			// check and the insert; the storage constraint reports that
			// as a conflict and we simply spend another attempt.
			if appErrors.FromError(err).Code == appErrors.ErrConflict.Code {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}

		return &dto.SessionCreated{SessionID: session.ID, Pin: session.Pin}, nil
	}

	s.logger.Warn("session pin space exhausted", zap.Int("attempts", s.maxAttempts))
	return nil, appErrors.Clone(appErrors.ErrPinExhausted, "")
}

// Join resolves an active session by exact PIN match.
func (s *SessionService) Join(ctx context.Context, pin string) (*dto.SessionJoined, error) {
	session, err := s.repo.FindActiveByPin(ctx, pin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown pin")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up session")
	}
	return &dto.SessionJoined{SessionID: session.ID}, nil
}

// ResolveSessionRef validates a raw session reference supplied with a
// submission. It returns the id only when the reference parses as an
// integer and names a currently active session; otherwise nil, silently.
func (s *SessionService) ResolveSessionRef(ctx context.Context, raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil || session == nil || !session.Active {
		return nil
	}
	return &session.ID
}

// ListMine returns the caller's sessions, newest first.
func (s *SessionService) ListMine(ctx context.Context, ownerID string) ([]models.Session, error) {
	sessions, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Deactivate retires a session. Historical submissions keep their
// reference. Only the owner or a super admin may deactivate.
func (s *SessionService) Deactivate(ctx context.Context, id int64, claims *models.JWTClaims) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unknown session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up session")
	}

	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	owner := session.OwnerID != nil && *session.OwnerID == claims.UserID
	if !owner && claims.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the session owner may deactivate it")
	}

	if err := s.repo.Deactivate(ctx, session.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate session")
	}
	return nil
}

func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, pinSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", models.PinLength, n.Int64()), nil
}
