package rest

import (
	"context"

	"github.com/membervault/api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// stubService overrides only what a test needs; anything else panics through
// the embedded nil interface.
type stubService struct {
	domain.Service

	user      *domain.User
	role      string
	verifyErr error

	loginErr error
	token    string

	members map[bson.ObjectID]*domain.Member
	listOpt *domain.ListMemberOptions

	recorded  chan *domain.AuditLog
	recordErr error
}

func newStubService() *stubService {
	roleID := bson.NewObjectID()
	return &stubService{
		user: &domain.User{
			BaseEntity: domain.BaseEntity{ID: bson.NewObjectID()},
			UserName:   "tester",
			Email:      "tester@test.local",
			RoleID:     roleID,
			IsActive:   true,
		},
		role:     domain.AdminRole,
		token:    "test-token",
		members:  map[bson.ObjectID]*domain.Member{},
		recorded: make(chan *domain.AuditLog, 8),
	}
}

func (s *stubService) claims() domain.Claims {
	return domain.Claims{
		UID:      s.user.ID.Hex(),
		UserName: s.user.UserName,
		Email:    s.user.Email,
		RoleID:   s.user.RoleID.Hex(),
	}
}

func (s *stubService) Login(_ context.Context, login, password string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.user, s.token, nil
}

func (s *stubService) VerifyJWTToken(_ context.Context, tokenString string) (domain.Claims, *domain.User, error) {
	if s.verifyErr != nil {
		return domain.Claims{}, nil, s.verifyErr
	}
	return s.claims(), s.user, nil
}

func (s *stubService) RoleName(_ context.Context, _ bson.ObjectID) (string, error) {
	return s.role, nil
}

func (s *stubService) RecordActivity(_ context.Context, log *domain.AuditLog) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded <- log
	return nil
}

func (s *stubService) ListMembers(_ context.Context, opt *domain.ListMemberOptions) error {
	s.listOpt = opt
	for _, m := range s.members {
		opt.Result = append(opt.Result, m)
	}
	opt.Total = int64(len(s.members))
	if opt.Page == 0 {
		opt.Page = 1
	}
	if len(s.members) > 0 {
		opt.Pages = 1
	}
	return nil
}

func (s *stubService) GetMember(_ context.Context, memberID string) (*domain.Member, error) {
	id, err := bson.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	member, ok := s.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (s *stubService) CreateMember(_ context.Context, _ *domain.Claims, member *domain.Member) error {
	member.ID = bson.NewObjectID()
	if member.Status == "" {
		member.Status = domain.MemberStatusPending
	}
	s.members[member.ID] = member
	return nil
}

func (s *stubService) UpdateMember(_ context.Context, _ *domain.Claims, memberID string, opt domain.UpdateMemberOptions) (*domain.Member, map[string]any, error) {
	id, err := bson.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, nil, domain.ErrNotFound
	}
	member, ok := s.members[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	changes := map[string]any{}
	if opt.Phone != nil {
		changes["phone"] = domain.FieldChange{From: member.Phone, To: *opt.Phone}
		member.Phone = *opt.Phone
	}
	return member, changes, nil
}

func (s *stubService) DeleteMember(_ context.Context, _ *domain.Claims, memberID string) (*domain.Member, error) {
	id, err := bson.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	member, ok := s.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.members, id)
	return member, nil
}
