package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/leeford/team-request-app/core"
)

// RequestStore persists team requests and the app configuration singleton.
// It implements core.RequestStore on bun-backed tables.
type RequestStore struct {
	db          *bun.DB
	requestRepo repository.Repository[*teamRequestRecord]
	configRepo  repository.Repository[*appConfigRecord]
	nowFn       func() time.Time
}

func NewRequestStore(db *bun.DB) (*RequestStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	requestRepo := repository.NewRepository[*teamRequestRecord](db, teamRequestHandlers())
	if validator, ok := requestRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid team request repository wiring: %w", err)
		}
	}
	configRepo := repository.NewRepository[*appConfigRecord](db, appConfigHandlers())
	if validator, ok := configRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid app config repository wiring: %w", err)
		}
	}
	return &RequestStore{
		db:          db,
		requestRepo: requestRepo,
		configRepo:  configRepo,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Get loads one request. The owner id is part of the lookup key: a request
// belonging to another user is indistinguishable from a missing one.
func (s *RequestStore) Get(ctx context.Context, id string, ownerID string) (core.TeamRequest, error) {
	if s == nil || s.db == nil {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: request store is not configured")
	}
	id = strings.TrimSpace(id)
	ownerID = strings.TrimSpace(ownerID)
	if id == "" || ownerID == "" {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: request id and owner id are required")
	}

	record := &teamRequestRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.requested_by_user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.TeamRequest{}, fmt.Errorf("%w: %s", core.ErrRequestNotFound, id)
		}
		return core.TeamRequest{}, err
	}
	return record.toDomain(), nil
}

func (s *RequestStore) ListForOwner(ctx context.Context, ownerID string, limit int) ([]core.TeamRequest, error) {
	if s == nil || s.requestRepo == nil {
		return nil, fmt.Errorf("sqlstore: request store is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("sqlstore: owner id is required")
	}
	criteria := []repository.SelectCriteria{
		repository.SelectBy("requested_by_user_id", "=", ownerID),
		repository.OrderBy("requested_at DESC"),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, 0))
	}
	records, _, err := s.requestRepo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.TeamRequest, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// Upsert fully replaces the stored record; the request id is the only key.
// Inserts keep their creation timestamp across later updates.
func (s *RequestStore) Upsert(ctx context.Context, request core.TeamRequest) (core.TeamRequest, error) {
	if s == nil || s.db == nil {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: request store is not configured")
	}
	if strings.TrimSpace(request.ID) == "" {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: request id is required")
	}
	now := s.now()

	var out core.TeamRequest
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &teamRequestRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.id = ?", request.ID).
			Limit(1).
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		record := newTeamRequestRecord(request, now)
		if err == sql.ErrNoRows {
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				return insertErr
			}
			out = record.toDomain()
			return nil
		}

		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.TeamRequest{}, err
	}
	return out, nil
}

// GetConfiguration returns the singleton configuration, inserting the
// defaults the first time it is asked for.
func (s *RequestStore) GetConfiguration(ctx context.Context) (core.AppConfig, error) {
	if s == nil || s.db == nil {
		return core.AppConfig{}, fmt.Errorf("sqlstore: request store is not configured")
	}

	record := &appConfigRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", core.AppConfigID).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return record.toDomain(), nil
	}
	if err != sql.ErrNoRows {
		return core.AppConfig{}, err
	}

	defaults := newAppConfigRecord(core.DefaultAppConfig(), s.now())
	if _, insertErr := s.db.NewInsert().Model(defaults).Exec(ctx); insertErr != nil {
		// A concurrent first read may have inserted it already.
		reread := &appConfigRecord{}
		rereadErr := s.db.NewSelect().
			Model(reread).
			Where("?TableAlias.id = ?", core.AppConfigID).
			Limit(1).
			Scan(ctx)
		if rereadErr != nil {
			return core.AppConfig{}, insertErr
		}
		return reread.toDomain(), nil
	}
	return defaults.toDomain(), nil
}

func (s *RequestStore) UpsertConfiguration(ctx context.Context, config core.AppConfig) (core.AppConfig, error) {
	if s == nil || s.db == nil {
		return core.AppConfig{}, fmt.Errorf("sqlstore: request store is not configured")
	}
	now := s.now()

	var out core.AppConfig
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &appConfigRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.id = ?", core.AppConfigID).
			Limit(1).
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		record := newAppConfigRecord(config, now)
		record.ID = core.AppConfigID
		if err == sql.ErrNoRows {
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				return insertErr
			}
			out = record.toDomain()
			return nil
		}

		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.AppConfig{}, err
	}
	return out, nil
}

func (s *RequestStore) now() time.Time {
	if s == nil || s.nowFn == nil {
		return time.Now().UTC()
	}
	return s.nowFn()
}
