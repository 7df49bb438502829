package iiif

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/imagehub/pkg/core/ordering"
	"github.com/matzehuels/imagehub/pkg/core/record"
)

func sampleRecord() *record.Record {
	rec := record.New("oai:example.org:100", "img-100")
	rec.Width, rec.Height = 1000, 800
	rec.Label = "Portret van een man"
	rec.Attribution = "Museum"
	rec.Related = "https://catalog.example.org/100"
	rec.SetMetadata("Titel", "nl", "Portret van een man")
	rec.SetMetadata("Titel", "en", "Portrait of a man")
	rec.SetMetadata("Datering", "nl", "1450")
	rec.RelatedWorks["oai:example.org:200"] = record.RelatedWork{
		Kind: "hasPart", DataID: "oai:example.org:200", ImageID: "img-200", SortOrder: 1, Width: 300, Height: 400,
	}
	return rec
}

func TestAssemble_Identifiers(t *testing.T) {
	a := Assembler{ServiceURL: "https://iiif.example.org/iiif/2/"}
	rec := sampleRecord()
	m, canvases := a.Assemble(rec, ordering.Order(rec))

	if m.ID != "https://iiif.example.org/iiif/2/100/manifest.json" {
		t.Errorf("manifest id = %s", m.ID)
	}
	if len(canvases) != 2 {
		t.Fatalf("got %d canvases, want 2", len(canvases))
	}
	for i, c := range canvases {
		want := fmt.Sprintf("https://iiif.example.org/iiif/2/100/canvas/%d.json", i+1)
		if c.ID != want || c.Images[0].On != want {
			t.Errorf("canvas %d id = %s on = %s, want %s", i, c.ID, c.Images[0].On, want)
		}
	}

	second := canvases[1]
	if second.Label != "img-200" || second.Width != 300 || second.Height != 400 {
		t.Errorf("second canvas = %+v", second)
	}
	res := second.Images[0].Resource
	if res.ID != "https://iiif.example.org/iiif/2/img-200/full/full/0/default.jpg" {
		t.Errorf("resource id = %s", res.ID)
	}
	if res.Service.ID != "https://iiif.example.org/iiif/2/img-200" {
		t.Errorf("service id = %s", res.Service.ID)
	}
	if m.Sequences[0].Canvases[1] != second {
		t.Error("manifest should embed the returned canvases")
	}
}

func TestAssemble_ImageURL(t *testing.T) {
	a := Assembler{ServiceURL: "https://p.example.org/", ImageURL: "https://img.example.org/iiif/"}
	rec := sampleRecord()
	_, canvases := a.Assemble(rec, ordering.Order(rec))
	if got := canvases[0].Images[0].Resource.Service.ID; got != "https://img.example.org/iiif/img-100" {
		t.Errorf("service id = %s", got)
	}
	if !strings.HasPrefix(canvases[0].ID, "https://p.example.org/") {
		t.Errorf("canvas id = %s", canvases[0].ID)
	}
}

func TestAssemble_MetadataSorted(t *testing.T) {
	rec := sampleRecord()
	m, _ := Assembler{ServiceURL: "s/"}.Assemble(rec, ordering.Order(rec))
	want := []MetadataEntry{
		{Label: "Datering", Value: []LanguageValue{{"nl", "1450"}}},
		{Label: "Titel", Value: []LanguageValue{{"en", "Portrait of a man"}, {"nl", "Portret van een man"}}},
	}
	if len(m.Metadata) != len(want) {
		t.Fatalf("metadata = %+v", m.Metadata)
	}
	for i := range want {
		if m.Metadata[i].Label != want[i].Label || fmt.Sprint(m.Metadata[i].Value) != fmt.Sprint(want[i].Value) {
			t.Errorf("entry %d = %+v, want %+v", i, m.Metadata[i], want[i])
		}
	}
}

func TestAssemble_JSONShape(t *testing.T) {
	rec := sampleRecord()
	m, _ := Assembler{ServiceURL: "https://iiif.example.org/"}.Assemble(rec, ordering.Order(rec))
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	checks := map[string]any{
		"@context":         PresentationContext,
		"@type":            "sc:Manifest",
		"viewingDirection": "left-to-right",
		"viewingHint":      "individuals",
		"related":          "https://catalog.example.org/100",
	}
	for k, want := range checks {
		if doc[k] != want {
			t.Errorf("%s = %v, want %v", k, doc[k], want)
		}
	}

	seq := doc["sequences"].([]any)[0].(map[string]any)
	canvas := seq["canvases"].([]any)[0].(map[string]any)
	image := canvas["images"].([]any)[0].(map[string]any)
	if image["@type"] != "oa:Annotation" || image["motivation"] != "sc:painting" {
		t.Errorf("image annotation = %v", image)
	}
	resource := image["resource"].(map[string]any)
	if resource["format"] != "image/jpeg" || resource["@type"] != "dctypes:Image" {
		t.Errorf("resource = %v", resource)
	}
	service := resource["service"].(map[string]any)
	if service["profile"] != ImageProfile {
		t.Errorf("service profile = %v", service["profile"])
	}
}

func ExampleAssembler_Assemble() {
	rec := record.New("oai:example.org:42", "panel-42")
	rec.Width, rec.Height = 640, 480

	a := Assembler{ServiceURL: "https://iiif.example.org/"}
	_, canvases := a.Assemble(rec, ordering.Order(rec))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(canvases[0])
	// Output:
	// {
	//   "@id": "https://iiif.example.org/42/canvas/1.json",
	//   "@type": "sc:Canvas",
	//   "label": "panel-42",
	//   "height": 480,
	//   "width": 640,
	//   "images": [
	//     {
	//       "@context": "http://iiif.io/api/presentation/2/context.json",
	//       "@type": "oa:Annotation",
	//       "motivation": "sc:painting",
	//       "resource": {
	//         "@id": "https://iiif.example.org/panel-42/full/full/0/default.jpg",
	//         "@type": "dctypes:Image",
	//         "format": "image/jpeg",
	//         "service": {
	//           "@context": "http://iiif.io/api/image/2/context.json",
	//           "@id": "https://iiif.example.org/panel-42",
	//           "profile": "http://iiif.io/api/image/2/level2.json"
	//         },
	//         "height": 480,
	//         "width": 640
	//       },
	//       "on": "https://iiif.example.org/42/canvas/1.json"
	//     }
	//   ]
	// }
}
