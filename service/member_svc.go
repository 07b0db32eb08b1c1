package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/membervault/api/domain"
	"github.com/membervault/api/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (svc *Service) ListMembers(ctx context.Context, opt *domain.ListMemberOptions) error {
	return svc.Repo.ListMembers(ctx, opt)
}

func (svc *Service) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	return svc.getMemberByID(ctx, memberID)
}

func (svc *Service) CreateMember(ctx context.Context, operator *domain.Claims, member *domain.Member) error {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}
	if err := validateMember(member); err != nil {
		return err
	}

	member.BaseEntity = domain.NewBaseEntity(&operatorID, &operatorID)
	err = svc.Repo.CreateMember(ctx, member)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return errs.NewHTTPStatusError(http.StatusConflict, "a member with this email already exists", err)
	}
	return err
}

// UpdateMember applies the requested changes and returns the stored member
// together with the field-level diff over the audited fields. The diff is
// empty when no audited field changed.
func (svc *Service) UpdateMember(ctx context.Context, operator *domain.Claims, memberID string, opt domain.UpdateMemberOptions) (*domain.Member, map[string]any, error) {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return nil, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}

	member, err := svc.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	before := *member

	applyMemberUpdate(member, opt)
	if opt.RoleID != nil {
		roleID, err := bson.ObjectIDFromHex(*opt.RoleID)
		if err != nil {
			return nil, nil, errs.NewHTTPStatusError(http.StatusBadRequest, "invalid role ID", err)
		}
		member.RoleID = roleID
	}
	if err := validateMember(member); err != nil {
		return nil, nil, err
	}

	member.UpdaterID = operatorID
	err = svc.Repo.UpdateMember(ctx, member)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, nil, errs.NewHTTPStatusError(http.StatusConflict, "a member with this email already exists", err)
	}
	if err != nil {
		return nil, nil, err
	}

	return member, MemberAuditDiff(&before, member), nil
}

// DeleteMember removes the member and returns the pre-delete snapshot so the
// caller can stage it for the audit trail before the physical delete lands.
func (svc *Service) DeleteMember(ctx context.Context, operator *domain.Claims, memberID string) (*domain.Member, error) {
	member, err := svc.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := svc.Repo.DeleteMember(ctx, member.ID); err != nil {
		return nil, err
	}
	return member, nil
}

func (svc *Service) SetMemberPicture(ctx context.Context, operator *domain.Claims, memberID, pictureRef string) (string, error) {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return "", errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}

	member, err := svc.getMemberByID(ctx, memberID)
	if err != nil {
		return "", err
	}

	oldRef := member.ProfilePicture
	member.ProfilePicture = pictureRef
	member.UpdaterID = operatorID
	if err := svc.Repo.UpdateMember(ctx, member); err != nil {
		return "", err
	}
	// The previous file is deliberately left on disk.
	return oldRef, nil
}

func (svc *Service) getMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	id, err := bson.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, errs.NewHTTPStatusError(http.StatusBadRequest, "invalid member ID", err)
	}
	opts := &domain.QueryMemberOptions{IDs: []bson.ObjectID{id}}
	if err := svc.Repo.QueryMembers(ctx, opts); err != nil {
		return nil, err
	}
	if len(opts.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opts.Result[0], nil
}

func validateMember(member *domain.Member) error {
	if member.FirstName == "" || member.LastName == "" || member.Email == "" {
		return errs.NewHTTPStatusError(http.StatusBadRequest, "first name, last name and email are required", errors.New("missing required member field"))
	}
	if member.Status == "" {
		member.Status = domain.MemberStatusPending
	}
	if !member.Status.Valid() {
		return errs.NewHTTPStatusError(http.StatusBadRequest, "invalid member status", errors.New("status must be active, inactive or pending"))
	}
	if member.DateOfBirth > time.Now().UnixMilli() {
		return errs.NewHTTPStatusError(http.StatusBadRequest, "date of birth cannot be in the future", errors.New("dateOfBirth after now"))
	}
	return nil
}

func applyMemberUpdate(member *domain.Member, opt domain.UpdateMemberOptions) {
	if opt.FirstName != nil {
		member.FirstName = *opt.FirstName
	}
	if opt.LastName != nil {
		member.LastName = *opt.LastName
	}
	if opt.Email != nil {
		member.Email = *opt.Email
	}
	if opt.Phone != nil {
		member.Phone = *opt.Phone
	}
	if opt.Address != nil {
		member.Address = *opt.Address
	}
	if opt.City != nil {
		member.City = *opt.City
	}
	if opt.State != nil {
		member.State = *opt.State
	}
	if opt.ZipCode != nil {
		member.ZipCode = *opt.ZipCode
	}
	if opt.DateOfBirth != nil {
		member.DateOfBirth = *opt.DateOfBirth
	}
	if opt.Gender != nil {
		member.Gender = *opt.Gender
	}
	if opt.Status != nil {
		member.Status = *opt.Status
	}
	if opt.Notes != nil {
		member.Notes = *opt.Notes
	}
}

// MemberAuditDiff compares two member states over the audited field
// allow-list. Fields outside the list (notes, address details) never
// produce an audit record on their own.
func MemberAuditDiff(before, after *domain.Member) map[string]any {
	changes := map[string]any{}
	add := func(field string, from, to any) {
		if from != to {
			changes[field] = domain.FieldChange{From: from, To: to}
		}
	}
	add("firstName", before.FirstName, after.FirstName)
	add("lastName", before.LastName, after.LastName)
	add("email", before.Email, after.Email)
	add("phone", before.Phone, after.Phone)
	add("status", string(before.Status), string(after.Status))
	add("role", before.RoleID.Hex(), after.RoleID.Hex())
	add("profilePicture", before.ProfilePicture, after.ProfilePicture)
	return changes
}

// MemberSnapshot flattens a member into the changes payload used for create
// and delete audit records.
func MemberSnapshot(member *domain.Member) map[string]any {
	return map[string]any{
		"firstName":      member.FirstName,
		"lastName":       member.LastName,
		"email":          member.Email,
		"phone":          member.Phone,
		"address":        member.Address,
		"city":           member.City,
		"state":          member.State,
		"zipCode":        member.ZipCode,
		"dateOfBirth":    member.DateOfBirth,
		"gender":         member.Gender,
		"status":         string(member.Status),
		"role":           member.RoleID.Hex(),
		"profilePicture": member.ProfilePicture,
		"notes":          member.Notes,
	}
}
