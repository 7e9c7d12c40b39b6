package workspace

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/requestcontext"
	"tome/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	scoper  *testutil.ScoperSpy
	store   *InMemoryStore
	service *Service
	owner   id.UserID
}

func (s *ServiceSuite) SetupTest() {
	s.scoper = &testutil.ScoperSpy{}
	s.store = NewInMemoryStore()
	s.service = NewService(s.scoper, s.store, slog.Default())
	s.owner = id.NewUserID()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) asOwner() context.Context {
	return requestcontext.WithUserID(context.Background(), s.owner)
}

func (s *ServiceSuite) TestCreate() {
	s.Run("creates workspace with owner membership in one scope", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "  research notes  ")
		s.Require().NoError(err)
		s.Equal("research notes", ws.Name)
		s.Equal(s.owner, ws.OwnerID)
		s.Equal(1, s.scoper.CurrentUserCalls)

		members, err := s.store.ListMembers(context.Background(), ws.ID)
		s.Require().NoError(err)
		s.Require().Len(members, 1)
		s.Equal(s.owner, members[0].UserID)
		s.Equal(RoleOwner, members[0].Role)
	})

	s.Run("rejects blank name", func() {
		s.SetupTest()
		_, err := s.service.Create(s.asOwner(), "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Zero(s.scoper.CurrentUserCalls)
	})

	s.Run("fails without ambient identity", func() {
		s.SetupTest()
		_, err := s.service.Create(context.Background(), "notes")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("returns workspace with members", func() {
		s.SetupTest()
		created, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)

		ws, members, err := s.service.Get(s.asOwner(), created.ID)
		s.Require().NoError(err)
		s.Equal(created.ID, ws.ID)
		s.Len(members, 1)
	})

	s.Run("maps missing workspace to not found", func() {
		s.SetupTest()
		_, _, err := s.service.Get(s.asOwner(), id.NewWorkspaceID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAddMember() {
	s.Run("owner can add a member", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)

		newMember := id.NewUserID()
		s.Require().NoError(s.service.AddMember(s.asOwner(), ws.ID, newMember))

		members, err := s.store.ListMembers(context.Background(), ws.ID)
		s.Require().NoError(err)
		s.Len(members, 2)
	})

	s.Run("non-owner is forbidden", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)

		stranger := requestcontext.WithUserID(context.Background(), id.NewUserID())
		err = s.service.AddMember(stranger, ws.ID, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects nil member id", func() {
		s.SetupTest()
		err := s.service.AddMember(s.asOwner(), id.NewWorkspaceID(), id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestRemoveMember() {
	s.Run("owner can remove a member", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)
		member := id.NewUserID()
		s.Require().NoError(s.service.AddMember(s.asOwner(), ws.ID, member))

		s.Require().NoError(s.service.RemoveMember(s.asOwner(), ws.ID, member))

		members, err := s.store.ListMembers(context.Background(), ws.ID)
		s.Require().NoError(err)
		s.Len(members, 1)
	})

	s.Run("owner membership cannot be removed", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)

		err = s.service.RemoveMember(s.asOwner(), ws.ID, s.owner)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing membership maps to not found", func() {
		s.SetupTest()
		ws, err := s.service.Create(s.asOwner(), "docs")
		s.Require().NoError(err)

		err = s.service.RemoveMember(s.asOwner(), ws.ID, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
