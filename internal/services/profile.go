package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/codemaster-backend/internal/data/repos"
	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const maxDeviceIDLen = 128

type ProfileSnapshot struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProfileService stores the player's progress blob per device. The payload is
// opaque to the server.
type ProfileService interface {
	Get(ctx context.Context, deviceID string) (*ProfileSnapshot, error)
	Put(ctx context.Context, deviceID string, data json.RawMessage) error
}

type profileService struct {
	log  *logger.Logger
	repo repos.ProfileRepo
}

func NewProfileService(baseLog *logger.Logger, repo repos.ProfileRepo) ProfileService {
	return &profileService{log: baseLog.With("service", "ProfileService"), repo: repo}
}

func normalizeDeviceID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxDeviceIDLen {
		return "", apierr.New(http.StatusBadRequest, "device_id_required", fmt.Errorf("missing or oversized device id"))
	}
	return id, nil
}

func (s *profileService) Get(ctx context.Context, deviceID string) (*ProfileSnapshot, error) {
	id, err := normalizeDeviceID(deviceID)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByDeviceID(dbctx.Background(ctx), id)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "profile_read_failed", err)
	}
	if row == nil {
		return nil, apierr.New(http.StatusNotFound, "profile_not_found", fmt.Errorf("no profile for device"))
	}
	return &ProfileSnapshot{Data: json.RawMessage(row.Data), UpdatedAt: row.UpdatedAt}, nil
}

func (s *profileService) Put(ctx context.Context, deviceID string, data json.RawMessage) error {
	id, err := normalizeDeviceID(deviceID)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return apierr.New(http.StatusBadRequest, "data_required", fmt.Errorf("missing profile data"))
	}
	if !json.Valid(data) {
		return apierr.New(http.StatusBadRequest, "data_required", fmt.Errorf("profile data is not valid JSON"))
	}
	if err := s.repo.Upsert(dbctx.Background(ctx), &types.Profile{DeviceID: id, Data: datatypes.JSON(data)}); err != nil {
		return apierr.New(http.StatusInternalServerError, "profile_write_failed", err)
	}
	s.log.Debug("profile saved", "device_id", id, "bytes", len(data))
	return nil
}
