package catalog

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/yungbote/codemaster-backend/internal/data/repos"
	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
)

// Catalog reads and writes learning content as typed payloads. Every row lives
// under the default key; the language registry is the only row without a language.
type Catalog struct {
	repo repos.ContentRepo
}

func New(repo repos.ContentRepo) *Catalog {
	return &Catalog{repo: repo}
}

// Registry returns the stored language list with the built-ins always present.
func (c *Catalog) Registry(dbc dbctx.Context) ([]content.LanguageEntry, error) {
	row, err := c.repo.Get(dbc, types.ContentTypeLanguages, nil, types.DefaultContentKey)
	if err != nil {
		return nil, storeErr("read registry", err)
	}
	if row == nil {
		return content.NormalizeRegistry(nil), nil
	}
	return content.NormalizeRegistry(content.DecodeRegistry(row.Data)), nil
}

func (c *Catalog) SaveRegistry(dbc dbctx.Context, entries []content.LanguageEntry) error {
	raw, err := json.Marshal(content.NormalizeRegistry(entries))
	if err != nil {
		return storeErr("encode registry", err)
	}
	return storeErr("write registry", c.repo.ReplaceUnscoped(dbc, &types.ContentItem{
		Type:       types.ContentTypeLanguages,
		ContentKey: types.DefaultContentKey,
		Data:       datatypes.JSON(raw),
	}))
}

// Raw returns nil when the language has no row of that type.
func (c *Catalog) Raw(dbc dbctx.Context, contentType, lang string) ([]byte, error) {
	row, err := c.repo.Get(dbc, contentType, &lang, types.DefaultContentKey)
	if err != nil {
		return nil, storeErr("read "+contentType, err)
	}
	if row == nil {
		return nil, nil
	}
	return []byte(row.Data), nil
}

func (c *Catalog) Put(dbc dbctx.Context, contentType, lang string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return storeErr("encode "+contentType, err)
	}
	return c.PutRaw(dbc, contentType, lang, raw)
}

func (c *Catalog) PutRaw(dbc dbctx.Context, contentType, lang string, raw []byte) error {
	l := lang
	return storeErr("write "+contentType, c.repo.Upsert(dbc, &types.ContentItem{
		Type:       contentType,
		Lang:       &l,
		ContentKey: types.DefaultContentKey,
		Data:       datatypes.JSON(raw),
	}))
}

// Collections returns every stored payload for lang, keyed by content type.
func (c *Catalog) Collections(dbc dbctx.Context, lang string) (map[string]json.RawMessage, error) {
	rows, err := c.repo.ListByLanguage(dbc, lang)
	if err != nil {
		return nil, storeErr("list "+lang, err)
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		if row.ContentKey != types.DefaultContentKey {
			continue
		}
		out[row.Type] = json.RawMessage(row.Data)
	}
	return out, nil
}

func (c *Catalog) DeleteLanguage(dbc dbctx.Context, lang string) (int64, error) {
	n, err := c.repo.DeleteByLanguage(dbc, lang)
	return n, storeErr("delete "+lang, err)
}

// ListAll exposes every row for the bulk content dump.
func (c *Catalog) ListAll(dbc dbctx.Context) ([]*types.ContentItem, error) {
	rows, err := c.repo.ListAll(dbc)
	return rows, storeErr("list all", err)
}

// Get fetches one row by its full key. A nil lang addresses global rows.
func (c *Catalog) Get(dbc dbctx.Context, contentType string, lang *string, key string) (*types.ContentItem, error) {
	row, err := c.repo.Get(dbc, contentType, lang, key)
	return row, storeErr("read "+contentType, err)
}

// Write upserts a row under its own key; global rows are replaced.
func (c *Catalog) Write(dbc dbctx.Context, row *types.ContentItem) error {
	return storeErr("write "+row.Type, c.repo.Upsert(dbc, row))
}
