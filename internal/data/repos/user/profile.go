package user

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByDeviceID(dbc dbctx.Context, deviceID string) (*types.Profile, error)
	Upsert(dbc dbctx.Context, row *types.Profile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByDeviceID(dbc dbctx.Context, deviceID string) (*types.Profile, error) {
	t := dbc.Conn(r.db)
	if deviceID == "" {
		return nil, nil
	}
	var row types.Profile
	if err := t.WithContext(dbc.Ctx).Where("device_id = ?", deviceID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.DeviceID == "" {
		return nil, nil
	}
	return &row, nil
}

func (r *profileRepo) Upsert(dbc dbctx.Context, row *types.Profile) error {
	t := dbc.Conn(r.db)
	if row == nil || row.DeviceID == "" {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"data",
				"updated_at",
			}),
		}).
		Create(row).Error
}
