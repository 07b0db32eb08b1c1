package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/membervault/api/domain"
	"github.com/membervault/api/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (svc *Service) QueryUsers(ctx context.Context, opt *domain.QueryUserOptions) error {
	return svc.Repo.QueryUsers(ctx, opt)
}

// UpdateUser covers the admin operations on identities: role reassignment
// and activation/deactivation. Returns the stored user and the audit diff.
func (svc *Service) UpdateUser(ctx context.Context, operator *domain.Claims, userID string, opt domain.UpdateUserOptions) (*domain.User, map[string]any, error) {
	operatorID, err := operator.GetBsonObjectUID()
	if err != nil {
		return nil, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "unauthorized", errors.New("invalid user ID"))
	}

	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil, errs.NewHTTPStatusError(http.StatusBadRequest, "invalid user ID", err)
	}
	opts := &domain.QueryUserOptions{IDs: []bson.ObjectID{id}}
	if err := svc.Repo.QueryUsers(ctx, opts); err != nil {
		return nil, nil, err
	}
	if len(opts.Result) == 0 {
		return nil, nil, domain.ErrNotFound
	}
	user := opts.Result[0]

	changes := map[string]any{}
	if opt.RoleID != nil {
		roleID, err := bson.ObjectIDFromHex(*opt.RoleID)
		if err != nil {
			return nil, nil, errs.NewHTTPStatusError(http.StatusBadRequest, "invalid role ID", err)
		}
		if roleID != user.RoleID {
			changes["role"] = domain.FieldChange{From: user.RoleID.Hex(), To: roleID.Hex()}
			user.RoleID = roleID
		}
	}
	if opt.IsActive != nil && *opt.IsActive != user.IsActive {
		changes["isActive"] = domain.FieldChange{From: user.IsActive, To: *opt.IsActive}
		user.IsActive = *opt.IsActive
	}

	user.UpdaterID = operatorID
	if err := svc.Repo.UpdateUser(ctx, user); err != nil {
		return nil, nil, err
	}
	return user, changes, nil
}
