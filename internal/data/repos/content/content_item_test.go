package content

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/codemaster-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
)

func TestContentRepoUpsertIsIdempotentPerKey(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewContentRepo(db, testutil.Logger(t))

	lang := testutil.PtrString("go")
	first := &types.ContentItem{Type: types.ContentTypeQuizQuestions, Lang: lang, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`[1]`)}
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := &types.ContentItem{Type: types.ContentTypeQuizQuestions, Lang: lang, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`[1,2]`)}
	if err := repo.Upsert(dbc, second); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	rows, err := repo.ListByLanguage(dbc, "go")
	if err != nil {
		t.Fatalf("ListByLanguage: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per key, got %d", len(rows))
	}
	if string(rows[0].Data) != `[1,2]` {
		t.Fatalf("payload not replaced: %s", rows[0].Data)
	}
}

func TestContentRepoReplaceUnscopedKeepsOneGlobalRow(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewContentRepo(db, testutil.Logger(t))

	for _, payload := range []string{`[{"id":"javascript"}]`, `[{"id":"javascript"},{"id":"go"}]`} {
		row := &types.ContentItem{Type: types.ContentTypeLanguages, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(payload)}
		if err := repo.Upsert(dbc, row); err != nil {
			t.Fatalf("Upsert global: %v", err)
		}
	}

	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single registry row, got %d", len(all))
	}
	got, err := repo.Get(dbc, types.ContentTypeLanguages, nil, types.DefaultContentKey)
	if err != nil || got == nil {
		t.Fatalf("Get: row=%v err=%v", got, err)
	}
	if string(got.Data) != `[{"id":"javascript"},{"id":"go"}]` {
		t.Fatalf("unexpected registry payload: %s", got.Data)
	}
}

func TestContentRepoDeleteByLanguageIsScoped(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewContentRepo(db, testutil.Logger(t))

	for _, lang := range []string{"go", "rust"} {
		for _, typ := range types.ContentTypes() {
			row := &types.ContentItem{Type: typ, Lang: testutil.PtrString(lang), ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`{}`)}
			if err := repo.Upsert(dbc, row); err != nil {
				t.Fatalf("Upsert %s/%s: %v", lang, typ, err)
			}
		}
	}

	n, err := repo.DeleteByLanguage(dbc, "go")
	if err != nil {
		t.Fatalf("DeleteByLanguage: %v", err)
	}
	if n != int64(len(types.ContentTypes())) {
		t.Fatalf("deleted %d rows", n)
	}
	if rows, _ := repo.ListByLanguage(dbc, "go"); len(rows) != 0 {
		t.Fatalf("go rows survived: %d", len(rows))
	}
	if rows, _ := repo.ListByLanguage(dbc, "rust"); len(rows) != len(types.ContentTypes()) {
		t.Fatalf("rust rows affected: %d", len(rows))
	}
}

func TestContentRepoRollsBackWithTransaction(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContentRepo(db, testutil.Logger(t))

	tx := db.Begin()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	row := &types.ContentItem{Type: types.ContentTypeCurriculum, Lang: testutil.PtrString("go"), ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`[]`)}
	if err := repo.Upsert(dbc, row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.ReplaceUnscoped(dbc, &types.ContentItem{Type: types.ContentTypeLanguages, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`[]`)}); err != nil {
		t.Fatalf("ReplaceUnscoped: %v", err)
	}
	if err := tx.Rollback().Error; err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	all, err := repo.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected nothing persisted, got %d rows", len(all))
	}
}

func TestContentRepoGetMissingReturnsNil(t *testing.T) {
	db := testutil.DB(t)
	repo := NewContentRepo(db, testutil.Logger(t))
	got, err := repo.Get(dbctx.Context{Ctx: context.Background()}, types.ContentTypeCurriculum, testutil.PtrString("go"), types.DefaultContentKey)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestContentRepoGetPicksNewestDuplicateGlobalRow(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewContentRepo(db, testutil.Logger(t))

	base := time.Now().UTC().Add(-time.Hour)
	newer := &types.ContentItem{Type: types.ContentTypeLanguages, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`["newer"]`)}
	older := &types.ContentItem{Type: types.ContentTypeLanguages, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`["older"]`)}
	stamp(newer)
	stamp(older)
	newer.CreatedAt, newer.UpdatedAt = base, base.Add(time.Minute)
	older.CreatedAt, older.UpdatedAt = base, base
	// Newest first so insertion order cannot decide the result.
	for _, row := range []*types.ContentItem{newer, older} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed duplicate global row: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		got, err := repo.Get(dbc, types.ContentTypeLanguages, nil, types.DefaultContentKey)
		if err != nil || got == nil {
			t.Fatalf("Get: row=%v err=%v", got, err)
		}
		if string(got.Data) != `["newer"]` {
			t.Fatalf("expected newest global row, got %s", got.Data)
		}
	}

	if err := repo.Upsert(dbc, &types.ContentItem{Type: types.ContentTypeLanguages, ContentKey: types.DefaultContentKey, Data: datatypes.JSON(`["replaced"]`)}); err != nil {
		t.Fatalf("Upsert global: %v", err)
	}
	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 || string(all[0].Data) != `["replaced"]` {
		t.Fatalf("replace should collapse duplicates, got %d rows", len(all))
	}
}
