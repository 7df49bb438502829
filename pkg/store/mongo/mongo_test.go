package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDocumentEncoding(t *testing.T) {
	tests := []struct {
		name    string
		doc     document
		present string
		absent  string
	}{
		{"manifest", document{ID: "m", ManifestID: "m", Data: "{}"}, "manifest_id", "canvas_id"},
		{"canvas", document{ID: "c", CanvasID: "c", Data: "{}"}, "canvas_id", "manifest_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatal(err)
			}
			var m bson.M
			if err := bson.Unmarshal(raw, &m); err != nil {
				t.Fatal(err)
			}
			if m["_id"] != tt.doc.ID || m["data"] != "{}" {
				t.Errorf("encoded = %v", m)
			}
			if _, ok := m[tt.present]; !ok {
				t.Errorf("%s missing from %v", tt.present, m)
			}
			if _, ok := m[tt.absent]; ok {
				t.Errorf("%s should be omitted from %v", tt.absent, m)
			}
		})
	}
}
