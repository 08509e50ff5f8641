package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/emberview/crest/internal/adapters/http/api"
	"github.com/emberview/crest/internal/domain/catalog"
	"github.com/emberview/crest/internal/domain/ranking"
	"github.com/emberview/crest/internal/domain/types"
	"github.com/emberview/crest/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDeps struct {
	catalog       []types.CatalogEntry
	catalogErr    error
	lastPolicy    ranking.Policy
	lastLimit     int
	summary       types.CollectionSummary
	summaryErr    error
	lastUserID    string
	refreshErr    error
	refreshCalled int
}

func (m *mockDeps) Catalog(_ context.Context, policy ranking.Policy, limit int) ([]types.CatalogEntry, error) {
	m.lastPolicy = policy
	m.lastLimit = limit
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	if limit > 0 && limit < len(m.catalog) {
		return m.catalog[:limit], nil
	}
	return m.catalog, nil
}

func (m *mockDeps) CollectionSummary(_ context.Context, userID string) (types.CollectionSummary, error) {
	m.lastUserID = userID
	if m.summaryErr != nil {
		return types.CollectionSummary{}, m.summaryErr
	}
	return m.summary, nil
}

func (m *mockDeps) Refresh(_ context.Context) error {
	m.refreshCalled++
	return m.refreshErr
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"catalog_sets": 4}
}

func newTestServer(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, 100).Register(context.Background(), mux)
	return mux
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestServer(&mockDeps{})

		Convey("GET /healthz returns ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("GET /stats returns the provider payload", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["catalog_sets"], ShouldEqual, float64(4))
		})

		Convey("POST /healthz is not found", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGetCatalog(t *testing.T) {
	Convey("Given a catalog of three badges", t, func() {
		deps := &mockDeps{catalog: []types.CatalogEntry{
			{Key: "moments/1", Status: "available"},
			{Key: "moments/2", Status: "expired"},
			{Key: "bits/1", Status: "unknown", Pending: true},
		}}
		mux := newTestServer(deps)

		Convey("The default request returns everything under the default policy", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastPolicy, ShouldEqual, ranking.PolicyNewestAdded)
			So(deps.lastLimit, ShouldEqual, 0)

			var entries []types.CatalogEntry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
		})

		Convey("sort and limit parameters pass through", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog?sort=most_used&limit=2", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastPolicy, ShouldEqual, ranking.PolicyMostUsed)

			var entries []types.CatalogEntry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
		})

		Convey("An unknown sort policy is a client error", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog?sort=bogus", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A malformed or oversized limit is a client error", func() {
			for _, q := range []string{"limit=abc", "limit=0", "limit=-1", "limit=101"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog?"+q, nil))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("A not-ready catalog maps to 503", func() {
			deps.catalogErr = catalog.ErrCatalogUnavailable
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Any other failure maps to 500", func() {
			deps.catalogErr = errors.New("boom")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestGetCollection(t *testing.T) {
	Convey("Given a viewer with a ranked collection", t, func() {
		deps := &mockDeps{summary: types.CollectionSummary{
			UserID:     "viewer-7",
			Collected:  5,
			Total:      20,
			Percentage: 25,
			RankName:   "Bronze",
			RankColor:  "#cd7f32",
			Ranked:     true,
		}}
		mux := newTestServer(deps)

		Convey("GET /collection/{user_id} returns the summary", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collection/viewer-7", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastUserID, ShouldEqual, "viewer-7")

			var body types.CollectionSummary
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.RankName, ShouldEqual, "Bronze")
			So(body.Ranked, ShouldBeTrue)
		})

		Convey("A missing or nested user id is a client error", func() {
			for _, path := range []string{"/collection/", "/collection/a/b"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("An upstream failure maps to 500", func() {
			deps.summaryErr = errors.New("ownership lookup failed")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collection/viewer-7", nil))
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestPostRefresh(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestServer(deps)

		Convey("POST /refresh triggers a reload", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.refreshCalled, ShouldEqual, 1)
		})

		Convey("GET /refresh is not found", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(deps.refreshCalled, ShouldEqual, 0)
		})

		Convey("A failed refresh is retryable", func() {
			deps.refreshErr = errors.New("origin down")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(rec.Header().Get("Retry-After"), ShouldNotBeEmpty)
		})
	})
}
