package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// GroupAccess answers the membership questions authorization needs.
type GroupAccess interface {
	IsOwner(ctx context.Context, groupID int64, teacherID string) (bool, error)
	TeacherHasStudent(ctx context.Context, teacherID, studentID string) (bool, error)
}

// SessionLookup resolves a session for ownership checks.
type SessionLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

// AuthzService is the single authorization predicate for statistics
// access. Every stats endpoint funnels through CanViewStats rather than
// comparing role strings at the call site.
type AuthzService struct {
	groups   GroupAccess
	sessions SessionLookup
}

// NewAuthzService constructs the authorization service.
func NewAuthzService(groups GroupAccess, sessions SessionLookup) *AuthzService {
	return &AuthzService{groups: groups, sessions: sessions}
}

// CanViewStats decides whether the caller may view statistics for the
// given scope. The returned reason is only meaningful on denial.
func (s *AuthzService) CanViewStats(ctx context.Context, claims *models.JWTClaims, scope models.StatsScope) (bool, string, error) {
	if claims == nil {
		return false, "authentication required", nil
	}
	if claims.Role == models.RoleSuperAdmin {
		return true, "", nil
	}

	switch scope.Kind {
	case models.ScopeSelf:
		return true, "", nil

	case models.ScopeStudent:
		if scope.StudentID == claims.UserID {
			return true, "", nil
		}
		if claims.Role != models.RoleTeacher {
			return false, "students may only view their own statistics", nil
		}
		ok, err := s.groups.TeacherHasStudent(ctx, claims.UserID, scope.StudentID)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, "student is not in any of your groups", nil
		}
		return true, "", nil

	case models.ScopeGroup:
		if claims.Role != models.RoleTeacher {
			return false, "group statistics require a teacher role", nil
		}
		ok, err := s.groups.IsOwner(ctx, scope.GroupID, claims.UserID)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, "you do not own this group", nil
		}
		return true, "", nil

	case models.ScopeSession:
		session, err := s.sessions.FindByID(ctx, scope.SessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, "unknown session", nil
			}
			return false, "", err
		}
		if session == nil {
			return false, "unknown session", nil
		}
		if session.OwnerID != nil && *session.OwnerID == claims.UserID {
			return true, "", nil
		}
		return false, "you do not own this session", nil

	default:
		return false, "unknown statistics scope", nil
	}
}

// RequireViewStats wraps CanViewStats into an error-returning form for
// service pipelines.
func (s *AuthzService) RequireViewStats(ctx context.Context, claims *models.JWTClaims, scope models.StatsScope) error {
	allowed, reason, err := s.CanViewStats(ctx, claims, scope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "authorization check failed")
	}
	if !allowed {
		if claims == nil {
			return appErrors.Clone(appErrors.ErrUnauthorized, reason)
		}
		return appErrors.Clone(appErrors.ErrForbidden, reason)
	}
	return nil
}
