package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/data/repos"
	"github.com/yungbote/codemaster-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
)

func newContentService(t *testing.T) (ContentService, *catalog.Catalog, *gorm.DB) {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)
	cat := catalog.New(repos.NewContentRepo(db, log))
	return NewContentService(db, log, cat), cat, db
}

func seedLanguage(t *testing.T, cat *catalog.Catalog, entry content.LanguageEntry) {
	t.Helper()
	dbc := dbctx.Background(context.Background())
	reg, err := cat.Registry(dbc)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if err := cat.SaveRegistry(dbc, content.MergeRegistry(reg, entry, false)); err != nil {
		t.Fatalf("SaveRegistry: %v", err)
	}
	payloads := map[string]string{
		types.ContentTypeCurriculum:           `[{"id":1,"title":"Les Bases","lessons":[{"id":"` + entry.ID + `-l1-01","extra":{"kept":true}}]}]`,
		types.ContentTypeQuizQuestions:        `[{"id":"q-` + entry.ID + `-01","question":"?"}]`,
		types.ContentTypeTypingWords:          `{"keywords":["fn"],"expressions":[],"statements":[]}`,
		types.ContentTypeMemoryPairs:          `[]`,
		types.ContentTypeBugSnippets:          `[]`,
		types.ContentTypeCompletionChallenges: `[]`,
	}
	for typ, raw := range payloads {
		if err := cat.PutRaw(dbc, typ, entry.ID, []byte(raw)); err != nil {
			t.Fatalf("PutRaw %s: %v", typ, err)
		}
	}
}

func statusOf(t *testing.T, err error) (int, string) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	return ae.Status, ae.Code
}

func TestDeleteBuiltinLanguageIsRejected(t *testing.T) {
	svc, _, _ := newContentService(t)
	ctx := context.Background()
	before, _ := svc.Languages(ctx)

	_, err := svc.DeleteLanguage(ctx, "js")
	if !errors.Is(err, ErrBuiltinLanguage) {
		t.Fatalf("expected ErrBuiltinLanguage, got %v", err)
	}
	if status, code := statusOf(t, err); status != http.StatusForbidden || code != "cannot_delete_builtin" {
		t.Fatalf("status=%d code=%s", status, code)
	}
	after, _ := svc.Languages(ctx)
	if len(after) != len(before) {
		t.Fatalf("registry changed: %+v -> %+v", before, after)
	}
}

func TestDeleteLanguageRemovesRowsAndEntry(t *testing.T) {
	svc, cat, _ := newContentService(t)
	ctx := context.Background()
	seedLanguage(t, cat, content.LanguageEntry{ID: "rust", Name: "Rust", Icon: "🦀"})

	n, err := svc.DeleteLanguage(ctx, "rust")
	if err != nil || n != 6 {
		t.Fatalf("DeleteLanguage: n=%d err=%v", n, err)
	}
	reg, _ := svc.Languages(ctx)
	if _, ok := content.FindLanguage(reg, "rust"); ok {
		t.Fatalf("rust still listed")
	}
	_, err = svc.DeleteLanguage(ctx, "rust")
	if status, _ := statusOf(t, err); status != http.StatusNotFound {
		t.Fatalf("second delete status=%d", status)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, cat, _ := newContentService(t)
	ctx := context.Background()
	seedLanguage(t, cat, content.LanguageEntry{ID: "rust", Name: "Rust", Icon: "🦀"})
	dbc := dbctx.Background(ctx)
	before, err := cat.Collections(dbc, "rust")
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}

	doc, err := svc.Export(ctx, "rust")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Version != ExportVersion || doc.Language.Name != "Rust" || len(doc.Content) != 6 {
		t.Fatalf("export: %+v", doc)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if _, err := svc.DeleteLanguage(ctx, "rust"); err != nil {
		t.Fatalf("DeleteLanguage: %v", err)
	}
	var decoded ExportDocument
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	entry, err := svc.Import(ctx, &decoded)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if entry != doc.Language {
		t.Fatalf("entry: %+v", entry)
	}

	after, err := cat.Collections(dbc, "rust")
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("collections: %d vs %d", len(after), len(before))
	}
	for typ, raw := range before {
		if !bytes.Equal(raw, after[typ]) {
			t.Fatalf("%s changed:\n%s\n%s", typ, raw, after[typ])
		}
	}
	reg, _ := svc.Languages(ctx)
	if _, ok := content.FindLanguage(reg, "rust"); !ok {
		t.Fatalf("rust not re-registered")
	}
}

func TestImportReslugifiesAndUpdatesInPlace(t *testing.T) {
	svc, cat, _ := newContentService(t)
	ctx := context.Background()
	seedLanguage(t, cat, content.LanguageEntry{ID: "cpp", Name: "C++", Icon: "⚙️"})

	doc := &ExportDocument{
		Version:  ExportVersion,
		Language: content.LanguageEntry{ID: " C++ ", Name: "C++ 20", Icon: "🧩"},
		Content: map[string]json.RawMessage{
			types.ContentTypeTypingWords: json.RawMessage(`{"keywords":["auto"]}`),
			"achievements":               json.RawMessage(`[]`),
		},
	}
	entry, err := svc.Import(ctx, doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if entry.ID != "cpp" || entry.Name != "C++ 20" {
		t.Fatalf("entry: %+v", entry)
	}
	reg, _ := svc.Languages(ctx)
	count := 0
	for _, e := range reg {
		if e.ID == "cpp" {
			count++
			if e.Icon != "🧩" {
				t.Fatalf("entry not updated: %+v", e)
			}
		}
	}
	if count != 1 {
		t.Fatalf("cpp listed %d times", count)
	}
	raw, _ := cat.Raw(dbctx.Background(ctx), types.ContentTypeTypingWords, "cpp")
	if string(raw) != `{"keywords":["auto"]}` {
		t.Fatalf("typing words: %s", raw)
	}
}

func TestImportRejectsBadDocuments(t *testing.T) {
	svc, _, db := newContentService(t)
	ctx := context.Background()
	cases := []*ExportDocument{
		nil,
		{Language: content.LanguageEntry{Name: "Go"}},
		{Language: content.LanguageEntry{Name: "!!!"}, Content: map[string]json.RawMessage{types.ContentTypeTypingWords: json.RawMessage(`{}`)}},
		{Language: content.LanguageEntry{Name: "Go"}, Content: map[string]json.RawMessage{types.ContentTypeTypingWords: json.RawMessage(`null`)}},
		{Language: content.LanguageEntry{Name: "Go"}, Content: map[string]json.RawMessage{"unknown": json.RawMessage(`[]`)}},
	}
	for i, doc := range cases {
		_, err := svc.Import(ctx, doc)
		if status, code := statusOf(t, err); status != http.StatusBadRequest || code != "invalid_format" {
			t.Fatalf("case %d: status=%d code=%s", i, status, code)
		}
	}
	var n int64
	db.Model(&types.ContentItem{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected imports wrote %d rows", n)
	}
}

func TestAllNestsByLanguage(t *testing.T) {
	svc, cat, _ := newContentService(t)
	ctx := context.Background()
	seedLanguage(t, cat, content.LanguageEntry{ID: "go", Name: "Go", Icon: "🐹"})
	if _, err := svc.Seed(ctx, []SeedItem{{Type: "achievements", Data: json.RawMessage(`[{"id":"first"}]`)}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	byLang, ok := all[types.ContentTypeCurriculum].(map[string]any)
	if !ok {
		t.Fatalf("curriculum not nested: %#v", all[types.ContentTypeCurriculum])
	}
	if _, ok := byLang["go"].(map[string]any)[types.DefaultContentKey]; !ok {
		t.Fatalf("go curriculum missing: %#v", byLang)
	}
	global, ok := all["achievements"].(map[string]any)
	if !ok || global[types.DefaultContentKey] == nil {
		t.Fatalf("achievements: %#v", all["achievements"])
	}
	encoded, err := json.Marshal(all[types.ContentTypeLanguages])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var langs map[string][]content.LanguageEntry
	if err := json.Unmarshal(encoded, &langs); err != nil || len(langs[types.DefaultContentKey]) != 3 {
		t.Fatalf("languages: %s (%v)", encoded, err)
	}
}

func TestGetContent(t *testing.T) {
	svc, cat, _ := newContentService(t)
	ctx := context.Background()
	seedLanguage(t, cat, content.LanguageEntry{ID: "go", Name: "Go", Icon: "🐹"})

	raw, err := svc.Get(ctx, types.ContentTypeTypingWords, "go", "")
	if err != nil || !bytes.Contains(raw, []byte(`"fn"`)) {
		t.Fatalf("Get: %s %v", raw, err)
	}
	_, err = svc.Get(ctx, types.ContentTypeTypingWords, "zig", "")
	if status, code := statusOf(t, err); status != http.StatusNotFound || code != "content_not_found" {
		t.Fatalf("missing: status=%d code=%s", status, code)
	}
	raw, err = svc.Get(ctx, types.ContentTypeLanguages, "", "")
	if err != nil || !bytes.Contains(raw, []byte(`"python"`)) {
		t.Fatalf("languages: %s %v", raw, err)
	}
}
