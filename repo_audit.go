package access

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditLogs is the bun-backed audit store. It satisfies AuditRecorder; rows
// are append-only and never updated or deleted by this package.
type AuditLogs interface {
	repository.Repository[*AuditLog]

	Record(ctx context.Context, entry AuditEntry) error
	RecordTx(ctx context.Context, tx bun.IDB, entry AuditEntry) error
	ListByActor(ctx context.Context, actorID string) ([]*AuditLog, error)
}

type auditLogs struct {
	repository.Repository[*AuditLog]
	db *bun.DB
}

var (
	_ AuditLogs     = (*auditLogs)(nil)
	_ AuditRecorder = (*auditLogs)(nil)
)

func NewAuditLogsRepository(db *bun.DB) AuditLogs {
	repo := repository.NewRepository[*AuditLog](db, repository.ModelHandlers[*AuditLog]{
		NewRecord: func() *AuditLog { return &AuditLog{} },
		GetID: func(record *AuditLog) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *AuditLog, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "actor_email"
		},
	})

	return &auditLogs{
		Repository: repo,
		db:         db,
	}
}

func (a *auditLogs) Record(ctx context.Context, entry AuditEntry) error {
	return a.RecordTx(ctx, a.db, entry)
}

func (a *auditLogs) RecordTx(ctx context.Context, tx bun.IDB, entry AuditEntry) error {
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	record := &AuditLog{
		ID:         uuid.New(),
		ActorID:    entry.Actor.ID,
		ActorEmail: entry.Actor.Email,
		Action:     entry.Action,
		Details:    entry.Details,
		CreatedAt:  occurredAt,
	}

	_, err := a.Repository.CreateTx(ctx, tx, record)
	return err
}

func (a *auditLogs) ListByActor(ctx context.Context, actorID string) ([]*AuditLog, error) {
	var records []*AuditLog
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.actor_id = ?", actorID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
