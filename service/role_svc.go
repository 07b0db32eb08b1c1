package service

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/membervault/api/domain"
	"github.com/membervault/api/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (svc *Service) CreateRole(ctx context.Context, operator *domain.Claims, role *domain.Role) error {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}
	if role.Name == "" {
		return errs.NewHTTPStatusError(http.StatusBadRequest, "role name is required", errors.New("empty role name"))
	}

	role.BaseEntity = domain.NewBaseEntity(&operatorID, &operatorID)
	err = svc.Repo.CreateRole(ctx, role)
	if errors.Is(err, domain.ErrDuplicateName) {
		return errs.NewHTTPStatusError(http.StatusConflict, "a role with this name already exists", err)
	}
	return err
}

func (svc *Service) UpdateRole(ctx context.Context, operator *domain.Claims, roleID string, opt domain.UpdateRoleOptions) (*domain.Role, map[string]any, error) {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return nil, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}

	role, err := svc.getRoleByID(ctx, roleID)
	if err != nil {
		return nil, nil, err
	}
	before := *role

	if opt.Name != nil {
		role.Name = *opt.Name
	}
	if opt.Description != nil {
		role.Description = *opt.Description
	}
	if opt.Permissions != nil {
		role.Permissions = *opt.Permissions
	}

	role.UpdaterID = operatorID
	err = svc.Repo.UpdateRole(ctx, role)
	if errors.Is(err, domain.ErrDuplicateName) {
		return nil, nil, errs.NewHTTPStatusError(http.StatusConflict, "a role with this name already exists", err)
	}
	if err != nil {
		return nil, nil, err
	}

	svc.roleNames.Delete(role.ID.Hex())
	return role, roleAuditDiff(&before, role), nil
}

func (svc *Service) DeleteRole(ctx context.Context, operator *domain.Claims, roleID string) (*domain.Role, error) {
	role, err := svc.getRoleByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.Name == domain.AdminRole || role.Name == domain.DefaultRole {
		return nil, errs.NewHTTPStatusError(http.StatusBadRequest, "built-in roles cannot be deleted", errors.New("delete of built-in role"))
	}

	if err := svc.Repo.DeleteRole(ctx, role.ID); err != nil {
		return nil, err
	}
	svc.roleNames.Delete(role.ID.Hex())
	return role, nil
}

func (svc *Service) QueryRoles(ctx context.Context, opt *domain.QueryRoleOptions) error {
	return svc.Repo.QueryRoles(ctx, opt)
}

func (svc *Service) getRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	id, err := bson.ObjectIDFromHex(roleID)
	if err != nil {
		return nil, errs.NewHTTPStatusError(http.StatusBadRequest, "invalid role ID", err)
	}
	opts := &domain.QueryRoleOptions{IDs: []bson.ObjectID{id}}
	if err := svc.Repo.QueryRoles(ctx, opts); err != nil {
		return nil, err
	}
	if len(opts.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opts.Result[0], nil
}

func roleAuditDiff(before, after *domain.Role) map[string]any {
	changes := map[string]any{}
	if before.Name != after.Name {
		changes["name"] = domain.FieldChange{From: before.Name, To: after.Name}
	}
	if before.Description != after.Description {
		changes["description"] = domain.FieldChange{From: before.Description, To: after.Description}
	}
	if !slices.Equal(before.Permissions, after.Permissions) {
		changes["permissions"] = domain.FieldChange{From: before.Permissions, To: after.Permissions}
	}
	return changes
}
