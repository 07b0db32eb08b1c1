package service

import (
	"context"
	"time"

	"github.com/membervault/api/domain"
)

// RecordActivity persists one audit record. Records are append-only; this is
// the only write path into the audit collection.
func (svc *Service) RecordActivity(ctx context.Context, log *domain.AuditLog) error {
	if log.Timestamp == 0 {
		log.Timestamp = time.Now().UnixMilli()
	}
	return svc.Repo.CreateAuditLog(ctx, log)
}

func (svc *Service) QueryAuditLogs(ctx context.Context, opt *domain.QueryAuditLogOptions) error {
	return svc.Repo.QueryAuditLogs(ctx, opt)
}
