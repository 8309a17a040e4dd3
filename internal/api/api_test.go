package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/site"
	"github.com/coursekit/coursekit/internal/siteservice"
	"github.com/coursekit/coursekit/internal/testutil"
)

var courseFiles = map[string]string{
	"materials/scanner.md": "---\ntitle: Scanner\npublished: 2025-08-11\ntags: [lab]\n---\nTokenize the toy language.\n",
	"materials/parser.md":  "---\ntitle: Parser\npublished: 2025-09-01\ndeadline: 2025-09-10T23:59:00+08:00\ntags: [lab, cmsc-124]\n---\nRecursive descent.\n",
	"materials/draft.md":   "---\ntitle: Draft\npublished: 2025-09-02\nisDraft: true\n---\n",
	"events/defense.md":    "---\ntitle: Proposal Defense\ndate: 2025-09-15\neventType: defense\n---\n",
}

// testEnv builds a site over courseFiles with the clock at 2025-09-10 12:00
// local. An empty authToken disables auth.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	_, store := testutil.TestContent(t, courseFiles)
	c := testutil.Clock(t, time.Date(2025, 9, 10, 4, 0, 0, 0, time.UTC))
	hol := holidays.NewCalendar([]holidays.Holiday{
		{Date: time.Date(2025, 8, 25, 0, 0, 0, 0, clock.Location), Name: "National Heroes Day"},
	})

	build := func(context.Context) (*site.Site, error) {
		b, err := content.NewLoader(store, content.DefaultLayout(), testutil.Logger()).Load()
		if err != nil {
			return nil, err
		}
		return site.New(c, b, hol, site.Options{}), nil
	}
	svc := siteservice.New(build, store, testutil.Logger(), siteservice.WithIndex(testutil.TestDB(t)))
	if err := svc.Rebuild(context.Background(), nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return NewRouter(svc, authEnabled, token, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListPosts(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/posts")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Posts []struct {
			Slug   string `json:"slug"`
			Status string `json:"status"`
		} `json:"posts"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Posts[0].Slug != "parser" || resp.Posts[1].Slug != "scanner" {
		t.Fatalf("posts = %+v", resp)
	}
	if resp.Posts[0].Status != "due-today" {
		t.Errorf("parser status = %q", resp.Posts[0].Status)
	}
}

func TestListPosts_TagFilter(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/posts?tag=CMSC-124")
	var resp PostListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestListTags(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/tags")
	var resp TagListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 2 || resp.Tags[0] != "cmsc-124" || resp.Tags[1] != "lab" {
		t.Errorf("tags = %v", resp.Tags)
	}
}

func TestPostStatus(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/posts/status/scanner")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var view struct {
		Status            string    `json:"status"`
		EffectiveDeadline time.Time `json:"effective_deadline"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Status != "future" {
		t.Errorf("status = %q", view.Status)
	}
	if view.EffectiveDeadline.In(clock.Location).Day() != 11 {
		t.Errorf("effective deadline = %v, want Sep 11", view.EffectiveDeadline)
	}
}

func TestPostStatus_NotFound(t *testing.T) {
	router := testEnv(t, "")

	for _, slug := range []string{"nope", "draft"} {
		if w := get(t, router, "/posts/status/"+slug); w.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", slug, w.Code)
		}
	}
}

func TestHolidays(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/holidays?start=2025-08-01&end=2025-08-31")
	var resp HolidayListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Holidays) != 1 || resp.Holidays[0].Name != "National Heroes Day" {
		t.Errorf("holidays = %+v", resp.Holidays)
	}

	if w := get(t, router, "/holidays?start=2025-09-01&end=2025-08-01"); w.Code != http.StatusBadRequest {
		t.Errorf("reversed range = %d, want 400", w.Code)
	}
	if w := get(t, router, "/holidays?start=tomorrow"); w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", w.Code)
	}
}

func TestCalendar(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/calendar?start=2025-09-01&end=2025-09-30")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Events []struct {
			Title    string `json:"title"`
			Type     string `json:"type"`
			CSSClass string `json:"css_class"`
		} `json:"events"`
		Months []struct {
			Label string `json:"label"`
		} `json:"months"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	// Parser release (1st), parser deadline (10th), scanner deadline (11th), defense (15th).
	if len(resp.Events) != 4 {
		t.Fatalf("events = %+v", resp.Events)
	}
	if resp.Events[0].CSSClass != "event-release tag-lab tag-cmsc-124" {
		t.Errorf("css = %q", resp.Events[0].CSSClass)
	}
	if resp.Events[3].Type != "defense" {
		t.Errorf("last event = %+v", resp.Events[3])
	}
	if len(resp.Months) != 1 || resp.Months[0].Label != "September 2025" {
		t.Errorf("months = %+v", resp.Months)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=descent")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "parser" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearch_DraftsNotIndexed(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=Draft")
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 0 {
		t.Errorf("drafts leaked into search: %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestNotReady(t *testing.T) {
	svc := siteservice.New(func(context.Context) (*site.Site, error) { return nil, nil }, nil, testutil.Logger())
	router := NewRouter(svc, false, "", nil)

	if w := get(t, router, "/posts"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unbuilt site = %d, want 503", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := get(t, router, "/posts"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("EventSource clients authenticate with ?token=")
	}

	if w := get(t, router, "/events?token=nope"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong query token = %d, want 401", w.Code)
	}
}

func TestErrorBodyCarriesCode(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/posts/status/nope")
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != codeNotFound {
		t.Errorf("code = %q, want %q", body.Code, codeNotFound)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}
}
