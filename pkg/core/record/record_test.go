package record

import (
	"slices"
	"testing"
)

func TestManifestID(t *testing.T) {
	tests := []struct {
		name   string
		dataID string
		want   string
	}{
		{"three segments", "oai:example.org:1234", "1234"},
		{"more segments", "oai:example.org:coll:1234", "coll:1234"},
		{"two segments", "oai:1234", ""},
		{"single", "1234", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ManifestID(tt.dataID); got != tt.want {
				t.Errorf("ManifestID(%q) = %q, want %q", tt.dataID, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	r := New("X:Y:123", "img.tif")
	if r.ManifestID != "123" {
		t.Errorf("ManifestID = %q, want 123", r.ManifestID)
	}
	if r.SortOrder != DefaultSortOrder {
		t.Errorf("SortOrder = %d, want %d", r.SortOrder, DefaultSortOrder)
	}
	if r.Metadata == nil || r.RelatedWorks == nil {
		t.Error("maps should be initialized")
	}
}

func TestAddRelated(t *testing.T) {
	r := New("X:Y:1", "a")

	if r.AddRelated(RelatedWork{DataID: "X:Y:1"}) {
		t.Error("self reference should be rejected")
	}
	if r.AddRelated(RelatedWork{}) {
		t.Error("empty data id should be rejected")
	}
	if !r.AddRelated(RelatedWork{DataID: "X:Y:2", Kind: "hasPart"}) {
		t.Fatal("first ref should be stored")
	}
	if r.AddRelated(RelatedWork{DataID: "X:Y:2", Kind: KindRelated}) {
		t.Error("existing ref should not be replaced")
	}
	if got := r.RelatedWorks["X:Y:2"].Kind; got != "hasPart" {
		t.Errorf("Kind = %q, want hasPart", got)
	}
}

func TestRelatedIDsInsertionOrder(t *testing.T) {
	r := New("X:Y:1", "a")
	r.SetRelated(RelatedWork{DataID: "X:Y:9", Kind: "hasPart"})
	r.SetRelated(RelatedWork{DataID: "X:Y:10", Kind: "hasPart"})
	r.AddRelated(RelatedWork{DataID: "X:Y:2", Kind: KindRelated})
	r.SetRelated(RelatedWork{DataID: "X:Y:9", Kind: "isPartOf"})
	r.RelatedWorks["X:Y:0"] = RelatedWork{DataID: "X:Y:0"}

	want := []string{"X:Y:9", "X:Y:10", "X:Y:2", "X:Y:0"}
	if got := r.RelatedIDs(); !slices.Equal(got, want) {
		t.Errorf("RelatedIDs() = %v, want %v", got, want)
	}
	if got := r.RelatedWorks["X:Y:9"].Kind; got != "isPartOf" {
		t.Errorf("SetRelated should replace in place, kind = %q", got)
	}
}

func TestSetIDsSorted(t *testing.T) {
	s := Set{
		"c": New("c", ""),
		"a": New("a", ""),
		"b": New("b", ""),
	}
	if got := s.IDs(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("IDs() = %v", got)
	}
}

func TestSetMetadata(t *testing.T) {
	var r Record
	r.SetMetadata("Title", "nl", "Titel")
	r.SetMetadata("Title", "en", "Title")
	if len(r.Metadata["Title"]) != 2 {
		t.Errorf("got %v", r.Metadata)
	}
}
