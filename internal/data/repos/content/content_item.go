package content

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type ContentRepo interface {
	// Get returns nil, nil when no row matches. A nil lang matches global rows.
	Get(dbc dbctx.Context, contentType string, lang *string, key string) (*types.ContentItem, error)
	// Upsert inserts or replaces the payload of the row's key. Rows with a nil
	// Lang go through ReplaceUnscoped.
	Upsert(dbc dbctx.Context, row *types.ContentItem) error
	// ReplaceUnscoped deletes then inserts a global row; NULL lang never conflicts.
	ReplaceUnscoped(dbc dbctx.Context, row *types.ContentItem) error
	DeleteByLanguage(dbc dbctx.Context, lang string) (int64, error)
	ListByLanguage(dbc dbctx.Context, lang string) ([]*types.ContentItem, error)
	ListAll(dbc dbctx.Context) ([]*types.ContentItem, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Get(dbc dbctx.Context, contentType string, lang *string, key string) (*types.ContentItem, error) {
	t := dbc.Conn(r.db)
	q := t.WithContext(dbc.Ctx).Where("type = ? AND content_key = ?", contentType, key)
	if lang == nil {
		q = q.Where("lang IS NULL")
	} else {
		q = q.Where("lang = ?", *lang)
	}
	var row types.ContentItem
	// Concurrent global replaces can leave duplicate NULL-lang rows; the newest wins.
	if err := q.Order("updated_at DESC").Order("id DESC").Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *contentRepo) Upsert(dbc dbctx.Context, row *types.ContentItem) error {
	if row == nil {
		return nil
	}
	if err := validateRow(row); err != nil {
		return err
	}
	if row.Lang == nil {
		return r.ReplaceUnscoped(dbc, row)
	}
	stamp(row)
	t := dbc.Conn(r.db)
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "type"}, {Name: "lang"}, {Name: "content_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"data",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *contentRepo) ReplaceUnscoped(dbc dbctx.Context, row *types.ContentItem) error {
	if row == nil {
		return nil
	}
	if err := validateRow(row); err != nil {
		return err
	}
	stamp(row)
	replace := func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			lockKey := row.Type + ":" + row.ContentKey
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("type = ? AND content_key = ? AND lang IS NULL", row.Type, row.ContentKey).
			Delete(&types.ContentItem{}).Error; err != nil {
			return err
		}
		row.Lang = nil
		return tx.Create(row).Error
	}
	if dbc.Tx != nil {
		return replace(dbc.Tx.WithContext(dbc.Ctx))
	}
	return r.db.WithContext(dbc.Ctx).Transaction(replace)
}

func (r *contentRepo) DeleteByLanguage(dbc dbctx.Context, lang string) (int64, error) {
	if lang == "" {
		return 0, nil
	}
	t := dbc.Conn(r.db)
	res := t.WithContext(dbc.Ctx).Where("lang = ?", lang).Delete(&types.ContentItem{})
	return res.RowsAffected, res.Error
}

func (r *contentRepo) ListByLanguage(dbc dbctx.Context, lang string) ([]*types.ContentItem, error) {
	t := dbc.Conn(r.db)
	var out []*types.ContentItem
	if err := t.WithContext(dbc.Ctx).
		Where("lang = ?", lang).
		Order("type ASC, content_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) ListAll(dbc dbctx.Context) ([]*types.ContentItem, error) {
	t := dbc.Conn(r.db)
	var out []*types.ContentItem
	if err := t.WithContext(dbc.Ctx).
		Order("type ASC, lang ASC, content_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func validateRow(row *types.ContentItem) error {
	if row.Type == "" || row.ContentKey == "" {
		return fmt.Errorf("content item needs a type and a key")
	}
	if len(row.Data) == 0 {
		return fmt.Errorf("content item %s/%s has no data", row.Type, row.ContentKey)
	}
	return nil
}

func stamp(row *types.ContentItem) {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
}
