package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagehub/pkg/core/iiif"
	"github.com/matzehuels/imagehub/pkg/core/metadata"
	"github.com/matzehuels/imagehub/pkg/errors"
	"github.com/matzehuels/imagehub/pkg/integrations"
	"github.com/matzehuels/imagehub/pkg/integrations/cantaloupe"
	"github.com/matzehuels/imagehub/pkg/integrations/resourcespace"
	"github.com/matzehuels/imagehub/pkg/observability"
	"github.com/matzehuels/imagehub/pkg/store"
	"github.com/matzehuels/imagehub/pkg/store/memory"
)

const serviceURL = "https://iiif.example.org/"

type fakeCatalog struct {
	resources []resourcespace.Resource
	err       error
	failRefs  map[string]error
}

func (f *fakeCatalog) Search(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	refs := make([]string, len(f.resources))
	for i, r := range f.resources {
		refs[i] = r.Ref
	}
	return refs, nil
}

func (f *fakeCatalog) Resource(ctx context.Context, ref string) (resourcespace.Resource, error) {
	if err := f.failRefs[ref]; err != nil {
		return resourcespace.Resource{}, err
	}
	for _, r := range f.resources {
		if r.Ref == ref {
			return r, nil
		}
	}
	return resourcespace.Resource{}, integrations.ErrNotFound
}

type fakeDimensions struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (f *fakeDimensions) Dimensions(ctx context.Context, imageID string, refresh bool) (cantaloupe.Info, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[imageID] {
		return cantaloupe.Info{}, fmt.Errorf("status 500")
	}
	return cantaloupe.Info{Width: 100 + len(imageID), Height: 200}, nil
}

type fakeHarvester map[string]string

func (f fakeHarvester) GetRecord(ctx context.Context, id string, refresh bool) ([]byte, error) {
	payload, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("oai-pmh idDoesNotExist: %s", id)
	}
	return []byte(payload), nil
}

type rel struct {
	id, kind string
	sort     int
}

func lido(title string, related ...rel) string {
	var b strings.Builder
	b.WriteString(`<lido:lido xmlns:lido="http://www.lido-schema.org"><lido:descriptiveMetadata xml:lang="nl">`)
	fmt.Fprintf(&b, `<lido:objectIdentificationWrap><lido:titleWrap><lido:titleSet><lido:appellationValue>%s</lido:appellationValue></lido:titleSet></lido:titleWrap></lido:objectIdentificationWrap>`, title)
	b.WriteString(`<lido:objectRelationWrap><lido:relatedWorksWrap>`)
	for _, r := range related {
		fmt.Fprintf(&b, `<lido:relatedWorkSet lido:sortorder="%d"><lido:relatedWork><lido:object><lido:objectID lido:type="oai">%s</lido:objectID></lido:object></lido:relatedWork>`, r.sort, r.id)
		if r.kind != "" {
			fmt.Fprintf(&b, `<lido:relatedWorkRelType><lido:conceptID>http://purl.org/dc/terms/%s</lido:conceptID></lido:relatedWorkRelType>`, r.kind)
		}
		b.WriteString(`</lido:relatedWorkSet>`)
	}
	b.WriteString(`</lido:relatedWorksWrap></lido:objectRelationWrap></lido:descriptiveMetadata></lido:lido>`)
	return b.String()
}

type fixture struct {
	catalog   *fakeCatalog
	dims      *fakeDimensions
	harvester fakeHarvester
}

// newFixture describes a catalog of three linked works, a duplicate image
// of the first, a work without a metadata record and a resource without a
// data identifier.
func newFixture() *fixture {
	return &fixture{
		catalog: &fakeCatalog{resources: []resourcespace.Resource{
			{Ref: "1", DataID: "oai:x:1", ImageID: "img-1"},
			{Ref: "2", DataID: "oai:x:2", ImageID: "img-2"},
			{Ref: "3", DataID: "oai:x:3", ImageID: "img-3"},
			{Ref: "4", DataID: "oai:x:1", ImageID: "img-1b"},
			{Ref: "5", DataID: "X:Y:123", ImageID: "img-123"},
			{Ref: "6", DataID: "", ImageID: "orphan"},
		}},
		dims: &fakeDimensions{},
		harvester: fakeHarvester{
			"oai:x:1": lido("Een", rel{"oai:x:2", "hasPart", 2}),
			"oai:x:2": lido("Twee", rel{"oai:x:3", "hasPart", 1}),
			"oai:x:3": lido("Drie"),
		},
	}
}

func (f *fixture) runner(st store.Store) *Runner {
	return NewRunner(Sources{Catalog: f.catalog, Dimensions: f.dims, Harvester: f.harvester}, st, log.New(&strings.Builder{}))
}

func testOptions(t *testing.T) Options {
	t.Helper()
	ex, err := metadata.New(metadata.Config{
		Namespace: "lido",
		Language:  "nl",
		Languages: []string{"nl"},
		Fields: metadata.Table{
			metadata.FieldTitle: {XPath: `descriptiveMetadata[@xml:lang="{language}"]/objectIdentificationWrap/titleWrap/titleSet/appellationValue`, Label: "Titel"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return Options{
		Extractor:  ex,
		Assembler:  iiif.Assembler{ServiceURL: serviceURL},
		CatalogURL: "https://catalog.example.org/",
		Workers:    3,
	}
}

func loadManifest(t *testing.T, st *memory.Store, manifestID string) iiif.Manifest {
	t.Helper()
	data, ok := st.Get(store.KindManifest, serviceURL+manifestID+"/manifest.json")
	if !ok {
		t.Fatalf("manifest %s not stored", manifestID)
	}
	var m iiif.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func canvasLabels(m iiif.Manifest) []string {
	var out []string
	for _, c := range m.Sequences[0].Canvases {
		out = append(out, c.Label)
	}
	return out
}

func TestExecute(t *testing.T) {
	f := newFixture()
	st := memory.NewStore()
	res, err := f.runner(st).Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := Stats{Resources: 6, Skipped: 1, Duplicates: 1, Records: 3, Manifests: 3, Canvases: 10}
	got := res.Stats
	if got.Resources != want.Resources || got.Skipped != want.Skipped || got.Duplicates != want.Duplicates ||
		got.Records != want.Records || got.Manifests != want.Manifests || got.Canvases != want.Canvases {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].DataID != "X:Y:123" || !errors.Is(res.Dropped[0].Err, errors.ErrCodeHarvestFailed) {
		t.Errorf("dropped = %+v", res.Dropped)
	}
	if _, ok := st.Get(store.KindManifest, serviceURL+"123/manifest.json"); ok {
		t.Error("dropped record has a manifest")
	}
	if res.RunID == "" {
		t.Error("run id not set")
	}

	// 1 -> 2 -> 3 closes into a clique; the duplicate image of 1 is placed
	// before its related works and takes the slot after the record itself.
	m1 := loadManifest(t, st, "1")
	if m1.Label != "Een" || m1.Related != "https://catalog.example.org/1" {
		t.Errorf("manifest 1 = %q related %q", m1.Label, m1.Related)
	}
	if got, want := canvasLabels(m1), []string{"img-1", "img-1b", "img-2", "img-3"}; fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("manifest 1 canvases = %v, want %v", got, want)
	}
	if c := m1.Sequences[0].Canvases[1]; c.Width != 106 || c.ID != serviceURL+"1/canvas/2.json" {
		t.Errorf("extra canvas = %+v", c)
	}

	m3 := loadManifest(t, st, "3")
	if got, want := canvasLabels(m3), []string{"img-3", "img-1", "img-2"}; fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("manifest 3 canvases = %v, want %v", got, want)
	}
	if st.Len(store.KindCanvas) != 10 {
		t.Errorf("stored %d canvases", st.Len(store.KindCanvas))
	}
}

func TestExecute_Idempotent(t *testing.T) {
	snapshot := func() string {
		st := memory.NewStore()
		if _, err := newFixture().runner(st).Execute(context.Background(), testOptions(t)); err != nil {
			t.Fatal(err)
		}
		var b strings.Builder
		for _, kind := range []store.Kind{store.KindManifest, store.KindCanvas} {
			docs, _ := st.List(context.Background(), kind)
			for _, d := range docs {
				fmt.Fprintf(&b, "%s %s\n", d.ID, d.Data)
			}
		}
		return b.String()
	}
	first := snapshot()
	for range 3 {
		if again := snapshot(); again != first {
			t.Fatal("repeated runs produced different store contents")
		}
	}
}

func TestExecute_FetchFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.catalog.err = fmt.Errorf("connection refused")

	st := memory.NewStore()
	st.PutManifest(ctx, store.Document{ID: "previous", Data: []byte("{}")})

	_, err := f.runner(st).Execute(ctx, testOptions(t))
	if !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Fatalf("Execute() error = %v, want FETCH_FAILED", err)
	}
	if !errors.Fatal(err) {
		t.Error("fetch failure should be fatal")
	}
	if _, ok := st.Get(store.KindManifest, "previous"); !ok || st.Len(store.KindCanvas) != 0 {
		t.Error("store modified by failed run")
	}
	if f.dims.calls != 0 {
		t.Errorf("dimension lookups after fatal fetch: %d", f.dims.calls)
	}
}

func TestExecute_ResourceFailureSkipsResource(t *testing.T) {
	f := newFixture()
	f.catalog.resources = append(f.catalog.resources, resourcespace.Resource{Ref: "7", DataID: "oai:x:7", ImageID: "img-7"})
	f.catalog.failRefs = map[string]error{"7": fmt.Errorf("status 500")}
	st := memory.NewStore()

	res, err := f.runner(st).Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute() error = %v, want the run to continue", err)
	}
	if res.Stats.Resources != 7 || res.Stats.Skipped != 2 || res.Stats.Manifests != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	var failed *Issue
	for i := range res.Skipped {
		if res.Skipped[i].Ref == "7" {
			failed = &res.Skipped[i]
		}
	}
	if failed == nil {
		t.Fatalf("skipped = %+v, want ref 7 listed", res.Skipped)
	}
	if failed.Stage != StageFetch || !errors.Is(failed.Err, errors.ErrCodeResourceFailed) || errors.Fatal(failed.Err) {
		t.Errorf("skip issue = %+v", failed)
	}
	if st.Len(store.KindManifest) != 3 {
		t.Errorf("stored %d manifests, want 3", st.Len(store.KindManifest))
	}
}

func TestExecute_DimensionsDegrade(t *testing.T) {
	f := newFixture()
	f.dims.fail = map[string]bool{"img-2": true}
	st := memory.NewStore()

	res, err := f.runner(st).Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Degraded) != 1 || res.Degraded[0].DataID != "oai:x:2" {
		t.Fatalf("degraded = %+v", res.Degraded)
	}
	if errors.Fatal(res.Degraded[0].Err) {
		t.Error("dimension failure should not be fatal")
	}
	m2 := loadManifest(t, st, "2")
	if c := m2.Sequences[0].Canvases[0]; c.Width != 0 || c.Height != 0 {
		t.Errorf("degraded canvas = %dx%d, want 0x0", c.Width, c.Height)
	}
	if res.Stats.Manifests != 3 {
		t.Errorf("manifests = %d", res.Stats.Manifests)
	}
}

func TestExecute_PrimaryOnly(t *testing.T) {
	opts := testOptions(t)
	opts.DuplicatePolicy = DuplicatePrimaryOnly
	st := memory.NewStore()
	if _, err := newFixture().runner(st).Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if got := canvasLabels(loadManifest(t, st, "1")); len(got) != 3 {
		t.Errorf("canvases = %v, want duplicate discarded", got)
	}
}

func TestExecute_PlaceholdersUseFirstSeenImage(t *testing.T) {
	for _, policy := range []DuplicatePolicy{DuplicateFirstSeen, DuplicatePrimaryOnly} {
		t.Run(string(policy), func(t *testing.T) {
			opts := testOptions(t)
			opts.DuplicatePolicy = policy
			st := memory.NewStore()
			if _, err := newFixture().runner(st).Execute(context.Background(), opts); err != nil {
				t.Fatal(err)
			}
			m3 := loadManifest(t, st, "3")
			if got, want := canvasLabels(m3), []string{"img-3", "img-1", "img-2"}; fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("manifest 3 canvases = %v, want %v", got, want)
			}
			if c := m3.Sequences[0].Canvases[1]; c.Width != 105 {
				t.Errorf("placeholder width = %d, want the first-seen image's 105", c.Width)
			}
		})
	}
}

func TestExecute_Limit(t *testing.T) {
	opts := testOptions(t)
	opts.Limit = 2
	res, err := newFixture().runner(memory.NewStore()).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Resources != 2 || res.Stats.Manifests != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestCollect_LeavesStoreAlone(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	st.PutManifest(ctx, store.Document{ID: "previous", Data: []byte("{}")})

	res, err := newFixture().runner(st).Collect(ctx, testOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 3 || res.Stats.Placeholders == 0 {
		t.Errorf("records = %d placeholders = %d", len(res.Records), res.Stats.Placeholders)
	}
	if st.Len(store.KindManifest) != 1 {
		t.Error("Collect() wrote to the store")
	}
}

type failingStore struct{ *memory.Store }

func (failingStore) PutManifest(context.Context, store.Document) error {
	return fmt.Errorf("disk full")
}

func TestExecute_StoreFailure(t *testing.T) {
	_, err := newFixture().runner(failingStore{memory.NewStore()}).Execute(context.Background(), testOptions(t))
	if !errors.Is(err, errors.ErrCodeStoreFailed) {
		t.Errorf("Execute() error = %v, want STORE_FAILED", err)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFixture().runner(memory.NewStore()).Execute(ctx, testOptions(t)); err == nil {
		t.Error("Execute() with cancelled context succeeded")
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	stages  []string
	dropped []string
}

func (s *stageRecorder) OnStageStart(_ context.Context, stage string, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stage)
}

func (s *stageRecorder) OnRecordDropped(_ context.Context, _ string, dataID string, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, dataID)
}

func TestExecute_Hooks(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	if _, err := newFixture().runner(memory.NewStore()).Execute(context.Background(), testOptions(t)); err != nil {
		t.Fatal(err)
	}
	want := []string{StageFetch, StageDimensions, StageHarvest, StageClose, StageLink, StagePersist}
	if fmt.Sprint(rec.stages) != fmt.Sprint(want) {
		t.Errorf("stages = %v, want %v", rec.stages, want)
	}
	if fmt.Sprint(rec.dropped) != "[X:Y:123]" {
		t.Errorf("dropped = %v", rec.dropped)
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicateFirstSeen, false},
		{"first-seen", DuplicateFirstSeen, false},
		{"primary-only", DuplicatePrimaryOnly, false},
		{"newest", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := testOptions(t)
	opts.CatalogURL, opts.Workers = "", 0
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.CatalogURL != DefaultCatalogURL || opts.Workers != DefaultWorkers || opts.DuplicatePolicy != DuplicateFirstSeen {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := []func(*Options){
		func(o *Options) { o.Extractor = nil },
		func(o *Options) { o.Assembler.ServiceURL = "" },
		func(o *Options) { o.Limit = -1 },
		func(o *Options) { o.DuplicatePolicy = "x" },
	}
	for i, mutate := range bad {
		o := testOptions(t)
		mutate(&o)
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
