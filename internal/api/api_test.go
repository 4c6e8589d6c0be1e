package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/backup"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/modulestore"
	"github.com/starford/ansuz/internal/pipeline"
	"github.com/starford/ansuz/internal/provider"
	"github.com/starford/ansuz/internal/settings"
	"github.com/starford/ansuz/internal/sourcestore"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

// fakeProvider answers with queued replies.
type fakeProvider struct {
	mu      sync.Mutex
	replies []string
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, req provider.Request) (*provider.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	return &provider.Completion{Content: reply, Citations: []string{}, Model: req.Model}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, url string) (*extract.Article, error) {
	if !strings.HasPrefix(url, "http") {
		return nil, fmt.Errorf("%w: unsupported url", apperr.ErrInvalidInput)
	}
	return &extract.Article{Title: "Artikel", Content: "Langer Text."}, nil
}

type fakeBackup struct {
	res *backup.Result
	err error
}

func (f *fakeBackup) Run(context.Context) (*backup.Result, error) { return f.res, f.err }

type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEvents) PublishModuleEvent(kind, slug string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+slug)
	r.mu.Unlock()
}

type testEnv struct {
	router   http.Handler
	root     string
	reasoner *fakeProvider
	searcher *fakeProvider
	backup   *fakeBackup
	events   *recordingEvents
}

// newTestEnv wires a temp content root, SQLite index and fake providers.
// A non-empty token enables Bearer auth.
func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	return newTestEnvWithSSE(t, token, nil)
}

func newTestEnvWithSSE(t *testing.T, token string, sseHandler http.Handler) *testEnv {
	t.Helper()
	root, content := testutil.TestContent(t)
	settingsFS, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestDB(t)
	logger := testutil.Logger()

	sources := sourcestore.New(content)
	env := &testEnv{
		root:     root,
		reasoner: &fakeProvider{},
		searcher: &fakeProvider{},
		backup:   &fakeBackup{res: &backup.Result{Success: true, Message: "ok"}},
		events:   &recordingEvents{},
	}
	env.router = NewRouter(Deps{
		Modules:  modulestore.New(content, logger, modulestore.WithIndexer(db)),
		Sources:  sources,
		Settings: settings.New(settingsFS, "format-settings.json"),
		Pipeline: pipeline.New(env.reasoner, env.searcher, logger,
			pipeline.WithImport(fakeExtractor{}, sources)),
		Index:  db,
		Backup: env.backup,
		Events: env.events,
		Logger: logger,
	}, token != "", token, sseHandler)
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetModule(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/modules", map[string]any{
		"title":       "Lernen durch Lehren",
		"content":     "# Einleitung\n\nText",
		"frontmatter": map[string]any{"kapitel": 1, "status": "draft"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[MutationResponse](t, w)
	if !created.Success || created.Slug != "lernen-durch-lehren" {
		t.Fatalf("create response = %+v", created)
	}

	w = env.do(t, http.MethodGet, "/modules/lernen-durch-lehren", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	m := decode[models.Module](t, w)
	if m.Title != "Lernen durch Lehren" || m.Kapitel != "1" || m.Status != models.StatusDraft {
		t.Errorf("module = %+v", m)
	}
	if !strings.Contains(m.HTMLContent, "<h1") {
		t.Errorf("htmlContent = %q", m.HTMLContent)
	}
	if diff := cmp.Diff([]string{"created:lernen-durch-lehren"}, env.events.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveModule_NestedSlug(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/modules/kapitel-1/intro", map[string]any{
		"content":     "Text",
		"frontmatter": map[string]any{"title": "Intro", "unterkapitel": "2"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[MutationResponse](t, w); got.Slug != "kapitel-1/intro" {
		t.Errorf("slug = %q", got.Slug)
	}
	if _, err := os.Stat(filepath.Join(env.root, "kapitel-1", "intro.md")); err != nil {
		t.Errorf("module file missing: %v", err)
	}

	w = env.do(t, http.MethodGet, "/modules/kapitel-1/intro", nil)
	m := decode[models.Module](t, w)
	if m.Title != "Intro" || m.Unterkapitel != "2" || m.Content != "Text" {
		t.Errorf("module = %+v", m)
	}
}

func TestSaveModule_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	cases := []struct {
		name string
		body any
		want string
	}{
		{"missing content", map[string]any{"frontmatter": map[string]any{}}, "content"},
		{"bad status", map[string]any{"content": "x", "frontmatter": map[string]any{"status": "fertig"}}, "status"},
		{"bad kapitel type", map[string]any{"content": "x", "frontmatter": map[string]any{"kapitel": true}}, "kapitel"},
		{"not json", "{", "invalid JSON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/modules/a", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
			if msg := decode[errResponse](t, w).Error; !strings.Contains(msg, tc.want) {
				t.Errorf("error = %q, want mention of %q", msg, tc.want)
			}
		})
	}
}

func TestSaveModule_EmptyContentAllowed(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPost, "/modules/leer", map[string]any{"content": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestSaveModule_ReservedSlug(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPost, "/modules/template", map[string]any{"content": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("reserved slug = %d, want 400", w.Code)
	}
}

func TestDeleteModule(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/kapitel-2/weg", map[string]any{"content": "x"})

	w := env.do(t, http.MethodDelete, "/modules/kapitel-2/weg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.root, "kapitel-2")); !os.IsNotExist(err) {
		t.Error("empty chapter directory should be removed")
	}

	w = env.do(t, http.MethodDelete, "/modules/kapitel-2/weg", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	w = env.do(t, http.MethodGet, "/modules/kapitel-2/weg", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestListModules_StatusFilter(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/a", map[string]any{"content": "eins zwei", "frontmatter": map[string]any{"kapitel": 2}})
	env.do(t, http.MethodPost, "/modules/b", map[string]any{"content": "drei", "frontmatter": map[string]any{"kapitel": 1, "status": "final"}})

	w := env.do(t, http.MethodGet, "/modules", nil)
	all := decode[ModuleListResponse](t, w)
	if all.Total != 2 || all.Modules[0].Slug != "b" {
		t.Errorf("list = %+v, want 2 modules sorted by kapitel", all)
	}

	w = env.do(t, http.MethodGet, "/modules?status=final", nil)
	final := decode[ModuleListResponse](t, w)
	if final.Total != 1 || final.Modules[0].Slug != "b" {
		t.Errorf("filtered list = %+v", final)
	}
}

func TestStatsAndMatrix(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/a", map[string]any{"content": "eins zwei", "frontmatter": map[string]any{"importance": "high", "urgency": "high"}})
	env.do(t, http.MethodPost, "/modules/b", map[string]any{"content": "drei", "frontmatter": map[string]any{"status": "final"}})

	w := env.do(t, http.MethodGet, "/stats", nil)
	want := models.Stats{TotalWords: 3, TotalModules: 2, CompletedModules: 1, Progress: 50}
	if diff := cmp.Diff(want, decode[models.Stats](t, w)); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	w = env.do(t, http.MethodGet, "/matrix", nil)
	mx := decode[models.Matrix](t, w)
	if len(mx.DoFirst) != 1 || mx.DoFirst[0].Slug != "a" || len(mx.Eliminate) != 1 {
		t.Errorf("matrix = %+v", mx)
	}
}

func TestDownloadChapter(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/k3/b", map[string]any{"content": "Zwei", "frontmatter": map[string]any{"title": "B", "kapitel": 3, "unterkapitel": 2}})
	env.do(t, http.MethodPost, "/modules/k3/a", map[string]any{"content": "Eins", "frontmatter": map[string]any{"title": "A", "kapitel": 3, "unterkapitel": 1}})

	w := env.do(t, http.MethodGet, "/chapters/3/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="Kapitel-3_Complete.md"` {
		t.Errorf("content disposition = %q", cd)
	}
	want := "# Kapitel 3\n\n## 3.1 A\n\nEins\n\n---\n\n## 3.2 B\n\nZwei\n\n---\n\n"
	if diff := cmp.Diff(want, w.Body.String()); diff != "" {
		t.Errorf("chapter mismatch (-want +got):\n%s", diff)
	}

	w = env.do(t, http.MethodGet, "/chapters/9/download", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("empty chapter = %d, want 404", w.Code)
	}
}

func TestSources(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/sources", map[string]any{"id": "s1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/sources", map[string]any{
		"id": "s1", "title": "Hattie", "url": "https://example.org", "linkedModules": []string{"a", "a"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}
	saved := decode[models.Source](t, w)
	if saved.Type != models.SourceURL || len(saved.LinkedModules) != 1 {
		t.Errorf("saved = %+v", saved)
	}

	w = env.do(t, http.MethodGet, "/sources", nil)
	if list := decode[[]models.Source](t, w); len(list) != 1 {
		t.Errorf("list = %+v", list)
	}

	w = env.do(t, http.MethodDelete, "/sources", map[string]any{"id": "s1"})
	if w.Code != http.StatusOK {
		t.Errorf("delete = %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/sources", map[string]any{"id": "s1"})
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/sources", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("delete without id = %d, want 400", w.Code)
	}
}

func TestFormatSettings(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/settings/formats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	if _, ok := decode[models.FormatSettings](t, w)["haiku"]; !ok {
		t.Error("defaults should include haiku")
	}

	next := models.FormatSettings{"haiku": {"color": "red"}}
	w = env.do(t, http.MethodPost, "/settings/formats", next)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/settings/formats", nil)
	if diff := cmp.Diff(next, decode[models.FormatSettings](t, w)); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestAITags(t *testing.T) {
	env := newTestEnv(t, "")
	env.reasoner.replies = []string{`{"tags":["Mut","Angst"]}`}

	w := env.do(t, http.MethodPost, "/ai/tags", map[string]any{"content": "Ein Text über Mut."})
	if w.Code != http.StatusOK {
		t.Fatalf("tags = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[pipeline.TagsResult](t, w)
	if diff := cmp.Diff([]string{"Mut", "Angst"}, got.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	w = env.do(t, http.MethodPost, "/ai/tags", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing content = %d, want 400", w.Code)
	}
}

func TestAITags_UnparseableReplyYieldsEmptyList(t *testing.T) {
	env := newTestEnv(t, "")
	env.reasoner.replies = []string{"kein json"}

	w := env.do(t, http.MethodPost, "/ai/tags", map[string]any{"content": "Ein Text über Mut."})
	if w.Code != http.StatusOK {
		t.Fatalf("tags = %d, body = %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"tags":[]}` {
		t.Errorf("body = %s, want {\"tags\":[]}", got)
	}
}

func TestAIReferences_ExcludesCurrent(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/a", map[string]any{"content": "x", "frontmatter": map[string]any{"title": "A"}})
	env.do(t, http.MethodPost, "/modules/b", map[string]any{"content": "y", "frontmatter": map[string]any{"title": "B"}})
	env.reasoner.replies = []string{`{"references":[{"targetId":"a","targetTitle":"A","reason":"selbst"},{"targetId":"b","targetTitle":"B","reason":"passt"}]}`}

	w := env.do(t, http.MethodPost, "/ai/references", map[string]any{"content": "x", "currentId": "a"})
	if w.Code != http.StatusOK {
		t.Fatalf("references = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[pipeline.ReferencesResult](t, w)
	if len(got.References) != 1 || got.References[0].TargetID != "b" {
		t.Errorf("references = %+v, want only b", got.References)
	}
}

func TestAIQuotes_ActionValidation(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/ai/quotes", map[string]any{"action": "erfinden"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad action = %d, want 400", w.Code)
	}
	w = env.do(t, http.MethodPost, "/ai/quotes", map[string]any{"action": "verify"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("verify without quote = %d, want 400", w.Code)
	}

	env.searcher.replies = []string{`{"isCorrect":true,"author":"Seneca"}`}
	w = env.do(t, http.MethodPost, "/ai/quotes", map[string]any{"action": "verify", "quote": "Non scholae sed vitae discimus"})
	if w.Code != http.StatusOK {
		t.Fatalf("verify = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[pipeline.VerifyResult](t, w); !got.IsCorrect || got.Author != "Seneca" {
		t.Errorf("verify = %+v", got)
	}
}

func TestAIPersona(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/ai/personas", nil)
	if got := decode[map[string][]pipeline.Persona](t, w)["personas"]; len(got) != 5 {
		t.Errorf("personas = %d, want 5", len(got))
	}

	w = env.do(t, http.MethodPost, "/ai/persona-feedback", map[string]any{"content": "x", "personaId": "alien"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown persona = %d, want 400", w.Code)
	}
}

func TestProviderAuthError(t *testing.T) {
	env := newTestEnv(t, "")
	env.reasoner.err = fmt.Errorf("openai: %w", apperr.ErrProviderAuth)

	w := env.do(t, http.MethodPost, "/ai/style", map[string]any{"content": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := decode[errResponse](t, w).Error; got != providerAuthHint {
		t.Errorf("error = %q", got)
	}
}

func TestResearchQuery_StageNamed(t *testing.T) {
	env := newTestEnv(t, "")
	env.reasoner.replies = []string{"bessere Frage"}
	env.searcher.err = fmt.Errorf("perplexity: %w: status 502", apperr.ErrProvider)

	w := env.do(t, http.MethodPost, "/research/query", map[string]any{"input": "Hausaufgaben", "mode": "question"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decode[errResponse](t, w); got.Stage != pipeline.StageSearch {
		t.Errorf("response = %+v, want stage %q", got, pipeline.StageSearch)
	}
}

func TestResearchPerplexityAlias(t *testing.T) {
	env := newTestEnv(t, "")
	env.searcher.replies = []string{"Antwort"}

	w := env.do(t, http.MethodPost, "/research/perplexity", map[string]any{"query": "Feedback", "focus": "academic"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[pipeline.SearchResult](t, w); got.Answer != "Antwort" {
		t.Errorf("answer = %q", got.Answer)
	}

	w = env.do(t, http.MethodPost, "/research/search", map[string]any{"query": "Feedback", "focus": "esoteric"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad focus = %d, want 400", w.Code)
	}
}

func TestResearchImport(t *testing.T) {
	env := newTestEnv(t, "")
	env.reasoner.replies = []string{`{"summary":"Kurz","keyQuotes":["Zitat"],"tags":["T"]}`}

	w := env.do(t, http.MethodPost, "/research/import", map[string]any{"url": "https://example.org/a", "linkedModules": []string{"a"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	src := decode[models.Source](t, w)
	if !strings.HasPrefix(src.ID, "src-") || src.Summary != "Kurz" || src.Title != "Artikel" {
		t.Errorf("source = %+v", src)
	}

	w = env.do(t, http.MethodPost, "/research/import", map[string]any{"url": "ftp://x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad url = %d, want 400", w.Code)
	}
	if got := decode[errResponse](t, w); got.Stage != pipeline.StageExtract {
		t.Errorf("stage = %q", got.Stage)
	}
}

func TestSearchAndGraph(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/modules/a", map[string]any{"content": "einzigartigeswort", "frontmatter": map[string]any{"tags": []string{"schule"}}})
	env.do(t, http.MethodPost, "/modules/b", map[string]any{"content": "anderes", "frontmatter": map[string]any{"tags": "schule"}})

	w := env.do(t, http.MethodGet, "/search?q=einzigartigeswort", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Results []map[string]any `json:"results"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0]["slug"] != "a" {
		t.Errorf("results = %+v", resp.Results)
	}

	w = env.do(t, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodGet, "/graph", nil)
	var g struct {
		Nodes []any `json:"nodes"`
		Links []any `json:"links"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &g)
	if len(g.Nodes) != 2 || len(g.Links) != 1 {
		t.Errorf("graph = %d nodes, %d links; want 2, 1", len(g.Nodes), len(g.Links))
	}
}

func TestBackupEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/backup", nil)
	if w.Code != http.StatusOK || !decode[backup.Result](t, w).Success {
		t.Errorf("backup = %d %s", w.Code, w.Body.String())
	}

	env.backup.res = &backup.Result{Success: false, Message: "Fehler beim Cloud-Backup: push"}
	env.backup.err = errors.New("push")
	w = env.do(t, http.MethodPost, "/backup", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("failed backup = %d, want 500", w.Code)
	}
	if got := decode[backup.Result](t, w); got.Success || got.Message == "" {
		t.Errorf("failed backup body = %+v", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, "secret123")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret123", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer wrong", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/modules", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodGet, "/modules", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// sseStub writes headers and blocks until the request context is done.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	env := newTestEnvWithSSE(t, "secret", sseStub)

	w := env.do(t, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	env := newTestEnvWithSSE(t, "tok", sseStub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
