package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const ExportVersion = 1

var ErrBuiltinLanguage = errors.New("built-in languages cannot be deleted")

// ExportDocument is the portable form of one language's content.
type ExportDocument struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Language   content.LanguageEntry      `json:"language"`
	Content    map[string]json.RawMessage `json:"content"`
}

// SeedItem is one stored row as read from a seed file.
type SeedItem struct {
	Type string          `json:"type"`
	Lang string          `json:"lang,omitempty"`
	Key  string          `json:"key,omitempty"`
	Data json.RawMessage `json:"data"`
}

type ContentService interface {
	Get(ctx context.Context, contentType, lang, key string) (json.RawMessage, error)
	// All nests payloads as type -> lang -> key, or type -> key for global rows.
	All(ctx context.Context) (map[string]any, error)
	Languages(ctx context.Context) ([]content.LanguageEntry, error)
	DeleteLanguage(ctx context.Context, id string) (int64, error)
	Export(ctx context.Context, id string) (*ExportDocument, error)
	Import(ctx context.Context, doc *ExportDocument) (content.LanguageEntry, error)
	Seed(ctx context.Context, items []SeedItem) (int, error)
}

type contentService struct {
	db      *gorm.DB
	log     *logger.Logger
	catalog *catalog.Catalog
}

func NewContentService(db *gorm.DB, baseLog *logger.Logger, cat *catalog.Catalog) ContentService {
	return &contentService{
		db:      db,
		log:     baseLog.With("service", "ContentService"),
		catalog: cat,
	}
}

func (s *contentService) Get(ctx context.Context, contentType, lang, key string) (json.RawMessage, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil, apierr.New(http.StatusBadRequest, "type_required", fmt.Errorf("missing type"))
	}
	if strings.TrimSpace(key) == "" {
		key = types.DefaultContentKey
	}
	lang = strings.TrimSpace(lang)
	if contentType == types.ContentTypeLanguages && lang == "" && key == types.DefaultContentKey {
		reg, err := s.Languages(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(reg)
	}
	var langPtr *string
	if lang != "" {
		langPtr = &lang
	}
	row, err := s.catalog.Get(dbctx.Background(ctx), contentType, langPtr, key)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "content_read_failed", err)
	}
	if row == nil {
		return nil, apierr.New(http.StatusNotFound, "content_not_found", fmt.Errorf("no %s content for %q/%q", contentType, lang, key))
	}
	return json.RawMessage(row.Data), nil
}

func (s *contentService) All(ctx context.Context) (map[string]any, error) {
	rows, err := s.catalog.ListAll(dbctx.Background(ctx))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "content_read_failed", err)
	}
	out := map[string]any{}
	for _, row := range rows {
		data := json.RawMessage(row.Data)
		if row.Type == types.ContentTypeLanguages && row.Lang == nil {
			data, _ = json.Marshal(content.NormalizeRegistry(content.DecodeRegistry(row.Data)))
		}
		if row.Lang == nil {
			byKey, _ := out[row.Type].(map[string]any)
			if byKey == nil {
				byKey = map[string]any{}
				out[row.Type] = byKey
			}
			byKey[row.ContentKey] = data
			continue
		}
		byLang, _ := out[row.Type].(map[string]any)
		if byLang == nil {
			byLang = map[string]any{}
			out[row.Type] = byLang
		}
		byKey, _ := byLang[*row.Lang].(map[string]any)
		if byKey == nil {
			byKey = map[string]any{}
			byLang[*row.Lang] = byKey
		}
		byKey[row.ContentKey] = data
	}
	if _, ok := out[types.ContentTypeLanguages]; !ok {
		out[types.ContentTypeLanguages] = map[string]any{types.DefaultContentKey: content.BuiltinLanguages()}
	}
	return out, nil
}

func (s *contentService) Languages(ctx context.Context) ([]content.LanguageEntry, error) {
	reg, err := s.catalog.Registry(dbctx.Background(ctx))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "content_read_failed", err)
	}
	return reg, nil
}

func (s *contentService) DeleteLanguage(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apierr.New(http.StatusBadRequest, "language_required", fmt.Errorf("missing language id"))
	}
	if content.IsBuiltinLanguage(id) {
		return 0, apierr.New(http.StatusForbidden, "cannot_delete_builtin", ErrBuiltinLanguage)
	}
	var removed int64
	notFound := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		reg, err := s.catalog.Registry(dbc)
		if err != nil {
			return err
		}
		reg, listed := content.RemoveFromRegistry(reg, id)
		removed, err = s.catalog.DeleteLanguage(dbc, id)
		if err != nil {
			return err
		}
		if !listed && removed == 0 {
			notFound = true
			return nil
		}
		return s.catalog.SaveRegistry(dbc, reg)
	})
	if err != nil {
		return 0, apierr.New(http.StatusInternalServerError, "delete_failed", err)
	}
	if notFound {
		return 0, apierr.New(http.StatusNotFound, "language_not_found", fmt.Errorf("language %q not found", id))
	}
	s.log.Info("language deleted", "language_id", id, "rows", removed)
	return removed, nil
}

func (s *contentService) Export(ctx context.Context, id string) (*ExportDocument, error) {
	id = strings.TrimSpace(id)
	dbc := dbctx.Background(ctx)
	collections, err := s.catalog.Collections(dbc, id)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "export_failed", err)
	}
	reg, err := s.catalog.Registry(dbc)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "export_failed", err)
	}
	entry, listed := content.FindLanguage(reg, id)
	if len(collections) == 0 {
		return nil, apierr.New(http.StatusNotFound, "language_not_found", fmt.Errorf("no content stored for %q", id))
	}
	if !listed {
		entry = content.NormalizeLanguage(id, id, content.LanguageEntry{})
	}
	return &ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Language:   entry,
		Content:    collections,
	}, nil
}

// Import upserts every known collection in doc and adds or updates the registry
// entry. The id is derived again from the document, never trusted as is.
func (s *contentService) Import(ctx context.Context, doc *ExportDocument) (content.LanguageEntry, error) {
	if doc == nil || len(doc.Content) == 0 {
		return content.LanguageEntry{}, apierr.New(http.StatusBadRequest, "invalid_format", fmt.Errorf("document has no content"))
	}
	source := strings.TrimSpace(doc.Language.ID)
	if source == "" {
		source = doc.Language.Name
	}
	id, err := content.LanguageID(source)
	if err != nil {
		return content.LanguageEntry{}, apierr.New(http.StatusBadRequest, "invalid_format", err)
	}
	name := strings.TrimSpace(doc.Language.Name)
	if name == "" {
		name = id
	}
	entry := content.NormalizeLanguage(id, name, doc.Language)

	known := map[string]bool{}
	for _, t := range types.ContentTypes() {
		known[t] = true
	}
	payloads := map[string][]byte{}
	for t, raw := range doc.Content {
		if !known[t] {
			s.log.Warn("import skipped unknown content type", "language_id", id, "type", t)
			continue
		}
		trimmed := strings.TrimSpace(string(raw))
		if trimmed == "" || trimmed == "null" || !json.Valid(raw) {
			return content.LanguageEntry{}, apierr.New(http.StatusBadRequest, "invalid_format", fmt.Errorf("content %q is not a JSON payload", t))
		}
		payloads[t] = raw
	}
	if len(payloads) == 0 {
		return content.LanguageEntry{}, apierr.New(http.StatusBadRequest, "invalid_format", fmt.Errorf("document has no known content types"))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, t := range types.ContentTypes() {
			raw, ok := payloads[t]
			if !ok {
				continue
			}
			if err := s.catalog.PutRaw(dbc, t, id, raw); err != nil {
				return err
			}
		}
		reg, err := s.catalog.Registry(dbc)
		if err != nil {
			return err
		}
		return s.catalog.SaveRegistry(dbc, content.MergeRegistry(reg, entry, true))
	})
	if err != nil {
		return content.LanguageEntry{}, apierr.New(http.StatusInternalServerError, "import_failed", err)
	}
	s.log.Info("language imported", "language_id", id, "types", len(payloads))
	return entry, nil
}

// Seed writes rows as given and makes sure the registry lists the built-ins.
func (s *contentService) Seed(ctx context.Context, items []SeedItem) (int, error) {
	n := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, it := range items {
			key := strings.TrimSpace(it.Key)
			if key == "" {
				key = types.DefaultContentKey
			}
			if it.Type == "" || !json.Valid(it.Data) {
				return fmt.Errorf("seed item %d: missing type or invalid data", n)
			}
			row := &types.ContentItem{Type: it.Type, ContentKey: key, Data: []byte(it.Data)}
			if lang := strings.TrimSpace(it.Lang); lang != "" {
				row.Lang = &lang
			}
			if it.Type == types.ContentTypeLanguages && row.Lang == nil && key == types.DefaultContentKey {
				if err := s.catalog.SaveRegistry(dbc, content.DecodeRegistry(it.Data)); err != nil {
					return err
				}
				n++
				continue
			}
			if err := s.catalog.Write(dbc, row); err != nil {
				return err
			}
			n++
		}
		reg, err := s.catalog.Registry(dbc)
		if err != nil {
			return err
		}
		return s.catalog.SaveRegistry(dbc, reg)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
