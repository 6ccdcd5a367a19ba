package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/models"
)

type fakeGroupAccess struct {
	owner  bool
	linked bool
}

func (f *fakeGroupAccess) IsOwner(context.Context, int64, string) (bool, error) {
	return f.owner, nil
}

func (f *fakeGroupAccess) TeacherHasStudent(context.Context, string, string) (bool, error) {
	return f.linked, nil
}

type fakeSessionLookup struct {
	session *models.Session
}

func (f *fakeSessionLookup) FindByID(context.Context, int64) (*models.Session, error) {
	if f.session == nil {
		return nil, sql.ErrNoRows
	}
	return f.session, nil
}

func TestCanViewStats(t *testing.T) {
	student := &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent}
	teacher := &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher}
	admin := &models.JWTClaims{UserID: "a-1", Role: models.RoleSuperAdmin}
	owner := "t-1"

	tests := []struct {
		name    string
		claims  *models.JWTClaims
		scope   models.StatsScope
		groups  *fakeGroupAccess
		session *models.Session
		want    bool
	}{
		{"anonymous denied", nil, models.StatsScope{Kind: models.ScopeSelf}, &fakeGroupAccess{}, nil, false},
		{"self always allowed", student, models.StatsScope{Kind: models.ScopeSelf}, &fakeGroupAccess{}, nil, true},
		{"student views own record via student scope", student, models.StatsScope{Kind: models.ScopeStudent, StudentID: "s-1"}, &fakeGroupAccess{}, nil, true},
		{"student denied other student", student, models.StatsScope{Kind: models.ScopeStudent, StudentID: "s-2"}, &fakeGroupAccess{}, nil, false},
		{"teacher allowed for own student", teacher, models.StatsScope{Kind: models.ScopeStudent, StudentID: "s-1"}, &fakeGroupAccess{linked: true}, nil, true},
		{"teacher denied unlinked student", teacher, models.StatsScope{Kind: models.ScopeStudent, StudentID: "s-1"}, &fakeGroupAccess{}, nil, false},
		{"teacher allowed for owned group", teacher, models.StatsScope{Kind: models.ScopeGroup, GroupID: 1}, &fakeGroupAccess{owner: true}, nil, true},
		{"teacher denied foreign group", teacher, models.StatsScope{Kind: models.ScopeGroup, GroupID: 1}, &fakeGroupAccess{}, nil, false},
		{"student denied group scope", student, models.StatsScope{Kind: models.ScopeGroup, GroupID: 1}, &fakeGroupAccess{owner: true}, nil, false},
		{"session owner allowed", teacher, models.StatsScope{Kind: models.ScopeSession, SessionID: 9}, &fakeGroupAccess{}, &models.Session{ID: 9, OwnerID: &owner}, true},
		{"session non-owner denied", student, models.StatsScope{Kind: models.ScopeSession, SessionID: 9}, &fakeGroupAccess{}, &models.Session{ID: 9, OwnerID: &owner}, false},
		{"unknown session denied", teacher, models.StatsScope{Kind: models.ScopeSession, SessionID: 9}, &fakeGroupAccess{}, nil, false},
		{"superadmin sees everything", admin, models.StatsScope{Kind: models.ScopeGroup, GroupID: 1}, &fakeGroupAccess{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthzService(tt.groups, &fakeSessionLookup{session: tt.session})
			got, reason, err := svc.CanViewStats(context.Background(), tt.claims, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
