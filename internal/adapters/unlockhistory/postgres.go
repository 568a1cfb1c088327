package unlockhistory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/reporting"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UnlockHistory is an append-only log of newly detected unlocks. Writes
// are best-effort: reconciliation outcomes never depend on them.
type UnlockHistory interface {
	RecordUnlocks(ctx context.Context, identity domain.TrackedIdentity, apiNames []string, unlockedAt time.Time) error
}

type PostgresUnlockHistory struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresUnlockHistory(db *sqlx.DB, schema string) *PostgresUnlockHistory {
	return &PostgresUnlockHistory{db, schema}
}

func (p *PostgresUnlockHistory) RecordUnlocks(ctx context.Context, identity domain.TrackedIdentity, apiNames []string, unlockedAt time.Time) error {
	if len(apiNames) == 0 {
		return nil
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return err
	}

	for _, apiName := range apiNames {
		dbID, err := uuid.NewV7()
		if err != nil {
			err := fmt.Errorf("failed to generate id for unlock_history entry: %w", err)
			reporting.Report(ctx, err)
			return err
		}

		_, err = txx.ExecContext(
			ctx,
			`INSERT INTO unlock_history
			(id, group_id, steam_id, app_id, apiname, unlocked_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			dbID.String(),
			identity.GroupID,
			identity.SteamID,
			int64(identity.AppID),
			apiName,
			unlockedAt,
		)
		if err != nil {
			err := fmt.Errorf("failed to insert unlock_history entry: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"identity": identity.Key(),
				"apiname":  apiName,
				"appID":    strconv.FormatUint(uint64(identity.AppID), 10),
			})
			return err
		}
	}

	if err := txx.Commit(); err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"identity": identity.Key(),
		})
		return err
	}

	return nil
}
