package service

import (
	"context"
	"slices"

	"github.com/membervault/api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// stubRepo backs service tests with in-memory slices. Methods a test does
// not exercise fall through to the embedded nil interface and panic, which
// is the point: an unexpected store call is a test failure.
type stubRepo struct {
	domain.Repository
	users      []*domain.User
	roles      []*domain.Role
	members    []*domain.Member
	auditLogs  []*domain.AuditLog
	roleQuerys int
}

func (s *stubRepo) CreateUser(_ context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.users = append(s.users, user)
	return nil
}

func (s *stubRepo) UpdateUser(_ context.Context, user *domain.User) error {
	for i, u := range s.users {
		if u.ID == user.ID {
			s.users[i] = user
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubRepo) QueryUsers(_ context.Context, opt *domain.QueryUserOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}
	var result []*domain.User
	for _, u := range s.users {
		if len(opt.IDs) > 0 && !slices.Contains(opt.IDs, u.ID) {
			continue
		}
		if len(opt.UserNames) > 0 && !slices.Contains(opt.UserNames, u.UserName) {
			continue
		}
		if opt.LoginName != "" && u.UserName != opt.LoginName && u.Email != opt.LoginName {
			continue
		}
		result = append(result, u)
	}
	opt.Result = result
	return nil
}

func (s *stubRepo) CreateRole(_ context.Context, role *domain.Role) error {
	for _, r := range s.roles {
		if r.Name == role.Name {
			return domain.ErrDuplicateName
		}
	}
	if role.ID.IsZero() {
		role.ID = bson.NewObjectID()
	}
	s.roles = append(s.roles, role)
	return nil
}

func (s *stubRepo) UpdateRole(_ context.Context, role *domain.Role) error {
	for _, r := range s.roles {
		if r.Name == role.Name && r.ID != role.ID {
			return domain.ErrDuplicateName
		}
	}
	for i, r := range s.roles {
		if r.ID == role.ID {
			s.roles[i] = role
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubRepo) DeleteRole(_ context.Context, roleID bson.ObjectID) error {
	for i, r := range s.roles {
		if r.ID == roleID {
			s.roles = append(s.roles[:i], s.roles[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubRepo) QueryRoles(_ context.Context, opt *domain.QueryRoleOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}
	s.roleQuerys++
	var result []*domain.Role
	for _, r := range s.roles {
		if len(opt.IDs) > 0 && !slices.Contains(opt.IDs, r.ID) {
			continue
		}
		if len(opt.Names) > 0 && !slices.Contains(opt.Names, r.Name) {
			continue
		}
		result = append(result, r)
	}
	opt.Result = result
	return nil
}

func (s *stubRepo) CreateMember(_ context.Context, member *domain.Member) error {
	for _, m := range s.members {
		if m.Email == member.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if member.ID.IsZero() {
		member.ID = bson.NewObjectID()
	}
	s.members = append(s.members, member)
	return nil
}

func (s *stubRepo) UpdateMember(_ context.Context, member *domain.Member) error {
	for i, m := range s.members {
		if m.ID == member.ID {
			s.members[i] = member
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubRepo) DeleteMember(_ context.Context, memberID bson.ObjectID) error {
	for i, m := range s.members {
		if m.ID == memberID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubRepo) QueryMembers(_ context.Context, opt *domain.QueryMemberOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}
	var result []*domain.Member
	for _, m := range s.members {
		if len(opt.IDs) > 0 && !slices.Contains(opt.IDs, m.ID) {
			continue
		}
		if len(opt.Emails) > 0 && !slices.Contains(opt.Emails, m.Email) {
			continue
		}
		result = append(result, m)
	}
	opt.Result = result
	return nil
}

func (s *stubRepo) CreateAuditLog(_ context.Context, log *domain.AuditLog) error {
	if log.ID.IsZero() {
		log.ID = bson.NewObjectID()
	}
	s.auditLogs = append(s.auditLogs, log)
	return nil
}
