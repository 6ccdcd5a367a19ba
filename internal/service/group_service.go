package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// GroupRepository persists groups and their memberships.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id int64) (*models.Group, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Group, error)
	AddMember(ctx context.Context, groupID int64, studentID string) error
	RemoveMember(ctx context.Context, groupID int64, studentID string) error
	ListMembers(ctx context.Context, groupID int64) ([]models.UserInfo, error)
	IsOwner(ctx context.Context, groupID int64, teacherID string) (bool, error)
	TeacherHasStudent(ctx context.Context, teacherID, studentID string) (bool, error)
}

// userLookup is the slice of the user repository group management needs.
type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// GroupService manages teacher-owned groups of students.
type GroupService struct {
	repo      GroupRepository
	users     userLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(repo GroupRepository, users userLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Create makes a new group owned by the calling teacher.
func (s *GroupService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	group := &models.Group{Name: req.Name, TeacherID: claims.UserID}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// ListMine returns the groups owned by the caller.
func (s *GroupService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.Group, error) {
	groups, err := s.repo.ListByTeacher(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// Members returns the roster for a group the caller owns.
func (s *GroupService) Members(ctx context.Context, claims *models.JWTClaims, groupID int64) ([]models.UserInfo, error) {
	if err := s.requireOwner(ctx, claims, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}

// AddMember enrols a student into a group the caller owns. Group stats
// caches are invalidated because membership changes what they aggregate.
func (s *GroupService) AddMember(ctx context.Context, claims *models.JWTClaims, groupID int64, req dto.AddGroupMemberRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}
	if err := s.requireOwner(ctx, claims, groupID); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if user.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrValidation, "only students can be group members")
	}

	if err := s.repo.AddMember(ctx, groupID, req.StudentID); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrConflict.Code {
			return appErr
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add member")
	}
	s.invalidateGroupStats(ctx, groupID)
	return nil
}

// RemoveMember drops a student from a group the caller owns.
func (s *GroupService) RemoveMember(ctx context.Context, claims *models.JWTClaims, groupID int64, studentID string) error {
	if err := s.requireOwner(ctx, claims, groupID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, groupID, studentID); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrNotFound.Code {
			return appErrors.Clone(appErrors.ErrNotFound, "student is not a member of this group")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove member")
	}
	s.invalidateGroupStats(ctx, groupID)
	return nil
}

func (s *GroupService) requireOwner(ctx context.Context, claims *models.JWTClaims, groupID int64) error {
	if claims.Role == models.RoleSuperAdmin {
		return nil
	}
	owner, err := s.repo.IsOwner(ctx, groupID, claims.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group ownership")
	}
	if !owner {
		return appErrors.Clone(appErrors.ErrForbidden, "you do not own this group")
	}
	return nil
}

func (s *GroupService) invalidateGroupStats(ctx context.Context, groupID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "stats:group:*"); err != nil {
		s.logger.Warn("failed to invalidate group stats cache", zap.Int64("group_id", groupID), zap.Error(err))
	}
}
