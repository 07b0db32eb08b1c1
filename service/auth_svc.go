package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/golang-jwt/jwt/v5"
	"github.com/membervault/api/domain"
	"github.com/membervault/api/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (svc *Service) Register(ctx context.Context, user *domain.User) error {
	if user.UserName == "" || user.Email == "" || string(user.Password) == "" {
		return errs.NewHTTPStatusError(http.StatusBadRequest, "username, email and password are required", errors.New("missing registration field"))
	}

	if user.RoleID.IsZero() {
		role, err := svc.getRoleByName(ctx, domain.DefaultRole)
		if err != nil {
			return err
		}
		user.RoleID = role.ID
	}

	selfID := bson.NewObjectID()
	user.BaseEntity = domain.NewBaseEntity(&selfID, &selfID)
	user.ID = selfID
	user.IsActive = true

	err := svc.Repo.CreateUser(ctx, user)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return errs.NewHTTPStatusError(http.StatusConflict, "username or email already registered", err)
	}
	return err
}

func (svc *Service) Login(ctx context.Context, login, password string) (*domain.User, string, error) {
	user, err := svc.getUserByLogin(ctx, login)
	if err != nil {
		return nil, "", err
	}
	ok, err := user.Password.Cmp(password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", errs.NewHTTPStatusError(http.StatusUnauthorized, "invalid credentials", domain.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, "", errs.NewHTTPStatusError(http.StatusUnauthorized, "account is deactivated", domain.ErrAccountDeactivated)
	}

	user.LastLogin = time.Now().UnixMilli()
	if err := svc.Repo.UpdateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := svc.genJWTToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyJWTToken checks signature and expiry first, then re-resolves the
// identity against the store so deactivation or deletion after issuance
// invalidates the token.
func (svc *Service) VerifyJWTToken(ctx context.Context, tokenString string) (domain.Claims, *domain.User, error) {
	var claims domain.Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return &svc.jwtPrivateKey.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "token has expired", domain.ErrTokenExpired)
		}
		return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "token is not valid", domain.ErrInvalidToken)
	}
	if !token.Valid {
		return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "token is not valid", domain.ErrInvalidToken)
	}

	uid, err := claims.GetBsonObjectUID()
	if err != nil {
		return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "token is not valid", domain.ErrInvalidToken)
	}

	opts := &domain.QueryUserOptions{IDs: []bson.ObjectID{uid}}
	if err := svc.Repo.QueryUsers(ctx, opts); err != nil {
		return domain.Claims{}, nil, err
	}
	if len(opts.Result) == 0 {
		return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "user not found", domain.ErrNotFound)
	}
	user := opts.Result[0]
	if !user.IsActive {
		return domain.Claims{}, nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "account is deactivated", domain.ErrAccountDeactivated)
	}

	return claims, user, nil
}

func (svc *Service) RefreshToken(ctx context.Context, claims *domain.Claims) (string, error) {
	uid, err := claims.GetBsonObjectUID()
	if err != nil {
		return "", errs.NewHTTPStatusError(http.StatusUnauthorized, "token is not valid", domain.ErrInvalidToken)
	}
	opts := &domain.QueryUserOptions{IDs: []bson.ObjectID{uid}}
	if err := svc.Repo.QueryUsers(ctx, opts); err != nil {
		return "", err
	}
	if len(opts.Result) == 0 {
		return "", errs.NewHTTPStatusError(http.StatusUnauthorized, "user not found", domain.ErrNotFound)
	}
	user := opts.Result[0]
	if !user.IsActive {
		return "", errs.NewHTTPStatusError(http.StatusUnauthorized, "account is deactivated", domain.ErrAccountDeactivated)
	}
	return svc.genJWTToken(user)
}

// RoleName resolves a role reference to its name, with a short-lived cache
// in front of the store.
func (svc *Service) RoleName(ctx context.Context, roleID bson.ObjectID) (string, error) {
	key := roleID.Hex()
	if name, ok := svc.roleNames.Get(key); ok {
		return name, nil
	}

	opts := &domain.QueryRoleOptions{IDs: []bson.ObjectID{roleID}}
	if err := svc.Repo.QueryRoles(ctx, opts); err != nil {
		return "", err
	}
	if len(opts.Result) == 0 {
		return "", domain.ErrNotFound
	}

	name := opts.Result[0].Name
	svc.roleNames.Set(key, name, cache.WithExpiration(roleNameCacheTTL))
	return name, nil
}

func (svc *Service) CreateAdminUserIfNotExists(ctx context.Context, username, email, password string) error {
	opts := &domain.QueryUserOptions{UserNames: []string{username}}
	if err := svc.Repo.QueryUsers(ctx, opts); err != nil {
		return err
	}
	if len(opts.Result) > 0 {
		return nil
	}

	role, err := svc.getRoleByName(ctx, domain.AdminRole)
	if err != nil {
		return err
	}

	selfID := bson.NewObjectID()
	admin := domain.User{
		BaseEntity: domain.NewBaseEntity(&selfID, &selfID),
		UserName:   username,
		Email:      email,
		Password:   domain.EncryptedPassword(password),
		RoleID:     role.ID,
		IsActive:   true,
	}
	admin.ID = selfID
	return svc.Repo.CreateUser(ctx, &admin)
}

func (svc *Service) getUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	opts := &domain.QueryUserOptions{LoginName: login}
	if err := svc.Repo.QueryUsers(ctx, opts); err != nil {
		return nil, err
	}
	if len(opts.Result) == 0 {
		return nil, errs.NewHTTPStatusError(http.StatusUnauthorized, "invalid credentials", domain.ErrInvalidCredentials)
	}
	return opts.Result[0], nil
}

func (svc *Service) getRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	opts := &domain.QueryRoleOptions{Names: []string{name}}
	if err := svc.Repo.QueryRoles(ctx, opts); err != nil {
		return nil, err
	}
	if len(opts.Result) == 0 {
		return nil, fmt.Errorf("role %q not found: %w", name, domain.ErrNotFound)
	}
	return opts.Result[0], nil
}

func (svc *Service) genJWTToken(user *domain.User) (string, error) {
	uid := user.ID.Hex()
	claims := domain.Claims{
		UID:      uid,
		UserName: user.UserName,
		Email:    user.Email,
		RoleID:   user.RoleID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(svc.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "membervault-api",
			Subject:   uid,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(svc.jwtPrivateKey)
}
