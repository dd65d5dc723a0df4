package content

import "testing"

func TestMergeRegistryIsIdempotentAndKeepsBuiltins(t *testing.T) {
	cpp := LanguageEntry{ID: "cpp", Name: "C++", Icon: "⚡"}
	reg := MergeRegistry(nil, cpp, false)
	reg = MergeRegistry(reg, cpp, false)
	if len(reg) != 3 {
		t.Fatalf("registry: %+v", reg)
	}
	if reg[0].ID != "js" || reg[1].ID != "python" || reg[2].ID != "cpp" {
		t.Fatalf("order: %+v", reg)
	}

	renamed := LanguageEntry{ID: "cpp", Name: "C++ 20", Icon: "🧩"}
	if got := MergeRegistry(reg, renamed, false); got[2].Name != "C++" {
		t.Fatalf("merge without replace changed entry: %+v", got[2])
	}
	if got := MergeRegistry(reg, renamed, true); got[2].Name != "C++ 20" || len(got) != 3 {
		t.Fatalf("replace failed: %+v", got)
	}
}

func TestRemoveFromRegistryProtectsBuiltins(t *testing.T) {
	reg := MergeRegistry(nil, LanguageEntry{ID: "go", Name: "Go", Icon: "🐹"}, false)
	if _, ok := RemoveFromRegistry(reg, "js"); ok {
		t.Fatalf("built-in removed")
	}
	out, ok := RemoveFromRegistry(reg, "go")
	if !ok || len(out) != 2 {
		t.Fatalf("remove go: ok=%v reg=%+v", ok, out)
	}
	if len(reg) != 3 {
		t.Fatalf("input slice modified: %+v", reg)
	}
	if _, ok := RemoveFromRegistry(out, "go"); ok {
		t.Fatalf("removing an absent id reported success")
	}
}

func TestDecodeRegistryToleratesGarbage(t *testing.T) {
	if got := DecodeRegistry([]byte(`{"not":"a list"}`)); got == nil || len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
	got := NormalizeRegistry(DecodeRegistry([]byte(`[{"id":"go","name":"Go","icon":"🐹"},{"id":"go","name":"dup"},{"id":""}]`)))
	if len(got) != 3 || got[2].Name != "Go" {
		t.Fatalf("normalize: %+v", got)
	}
}
