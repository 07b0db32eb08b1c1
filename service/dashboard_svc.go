package service

import (
	"context"

	"github.com/membervault/api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	growthWindowMonths   = 12
	defaultActivityLimit = 20
	maxActivityLimit     = 50
)

func (svc *Service) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	byStatus, err := svc.Repo.MemberCountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := svc.Repo.MemberCountsByRole(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := svc.Repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	var totalMembers int64
	for _, count := range byStatus {
		totalMembers += count
	}

	if err := svc.resolveRoleNames(ctx, byRole); err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalMembers:    totalMembers,
		TotalUsers:      totalUsers,
		MembersByStatus: byStatus,
		MembersByRole:   byRole,
	}, nil
}

func (svc *Service) MemberGrowth(ctx context.Context) ([]domain.MonthlyCount, error) {
	return svc.Repo.MemberMonthlyGrowth(ctx, growthWindowMonths)
}

func (svc *Service) RecentActivity(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return svc.Repo.RecentActivity(ctx, limit)
}

func (svc *Service) resolveRoleNames(ctx context.Context, counts []domain.RoleCount) error {
	ids := make([]bson.ObjectID, 0, len(counts))
	for _, rc := range counts {
		if !rc.RoleID.IsZero() {
			ids = append(ids, rc.RoleID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	opts := &domain.QueryRoleOptions{IDs: ids}
	if err := svc.Repo.QueryRoles(ctx, opts); err != nil {
		return err
	}
	names := map[bson.ObjectID]string{}
	for _, role := range opts.Result {
		names[role.ID] = role.Name
	}
	for i := range counts {
		counts[i].RoleName = names[counts[i].RoleID]
	}
	return nil
}
