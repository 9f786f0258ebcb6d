package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/cinelog/internal/catalog"
	"github.com/hitoshi/cinelog/internal/model"
)

// --- モック定義 ---

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	getMovieFn func(ctx context.Context, movieID int64) (*model.Movie, error)
	searchFn   func(ctx context.Context, query string, page int) (*catalog.SearchResult, error)
}

func (m *mockCatalogService) GetMovie(ctx context.Context, movieID int64) (*model.Movie, error) {
	if m.getMovieFn != nil {
		return m.getMovieFn(ctx, movieID)
	}
	return &model.Movie{ID: movieID}, nil
}

func (m *mockCatalogService) Search(ctx context.Context, query string, page int) (*catalog.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, page)
	}
	return &catalog.SearchResult{Movies: []model.Movie{}, Page: page}, nil
}

// --- GET /api/movies/search テスト ---

func TestMovieHandler_Search_Success(t *testing.T) {
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query string, page int) (*catalog.SearchResult, error) {
			if query != "マトリックス" {
				t.Errorf("query = %q, want %q", query, "マトリックス")
			}
			if page != 1 {
				t.Errorf("page = %d, want 1", page)
			}
			return &catalog.SearchResult{
				Movies: []model.Movie{
					{ID: 603, Title: "マトリックス", ReleaseDate: "1999-09-11"},
				},
				Page:         1,
				TotalPages:   1,
				TotalResults: 1,
			}, nil
		},
	}

	h := NewMovieHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/search?q="+"%E3%83%9E%E3%83%88%E3%83%AA%E3%83%83%E3%82%AF%E3%82%B9", nil)
	w := httptest.NewRecorder()

	h.Search(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body movieSearchResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Movies) != 1 {
		t.Fatalf("len(Movies) = %d, want 1", len(body.Movies))
	}
	if body.Movies[0].ID != 603 {
		t.Errorf("ID = %d, want 603", body.Movies[0].ID)
	}
	if body.TotalResults != 1 {
		t.Errorf("TotalResults = %d, want 1", body.TotalResults)
	}
}

func TestMovieHandler_Search_EmptyQuery_ReturnsBadRequest(t *testing.T) {
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query string, page int) (*catalog.SearchResult, error) {
			return nil, model.NewInvalidQueryError("検索キーワードが入力されていません")
		},
	}

	h := NewMovieHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/search", nil)
	w := httptest.NewRecorder()

	h.Search(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeInvalidQuery {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeInvalidQuery)
	}
}

func TestMovieHandler_Search_NonNumericPage_ReturnsBadRequest(t *testing.T) {
	h := NewMovieHandler(&mockCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/movies/search?q=a&page=abc", nil)
	w := httptest.NewRecorder()

	h.Search(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestMovieHandler_Search_CatalogUnavailable_ReturnsBadGateway(t *testing.T) {
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query string, page int) (*catalog.SearchResult, error) {
			return nil, model.NewCatalogUnavailableError("接続がタイムアウトしました")
		},
	}

	h := NewMovieHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/search?q=matrix", nil)
	w := httptest.NewRecorder()

	h.Search(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeCatalogUnavailable {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeCatalogUnavailable)
	}
}

// --- GET /api/movies/{id} テスト ---

func TestMovieHandler_GetMovie_Success(t *testing.T) {
	svc := &mockCatalogService{
		getMovieFn: func(ctx context.Context, movieID int64) (*model.Movie, error) {
			if movieID != 603 {
				t.Errorf("movieID = %d, want 603", movieID)
			}
			return &model.Movie{
				ID:            603,
				Title:         "マトリックス",
				OriginalTitle: "The Matrix",
				ReleaseDate:   "1999-09-11",
			}, nil
		},
	}

	h := NewMovieHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/603", nil)
	req = withChiURLParam(req, "id", "603")
	w := httptest.NewRecorder()

	h.GetMovie(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body movieResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.OriginalTitle != "The Matrix" {
		t.Errorf("OriginalTitle = %q, want %q", body.OriginalTitle, "The Matrix")
	}
}

func TestMovieHandler_GetMovie_NotFound(t *testing.T) {
	svc := &mockCatalogService{
		getMovieFn: func(ctx context.Context, movieID int64) (*model.Movie, error) {
			return nil, model.NewMovieNotFoundError(movieID)
		},
	}

	h := NewMovieHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movies/999999", nil)
	req = withChiURLParam(req, "id", "999999")
	w := httptest.NewRecorder()

	h.GetMovie(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestMovieHandler_GetMovie_NonNumericID_ReturnsBadRequest(t *testing.T) {
	h := NewMovieHandler(&mockCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/movies/abc", nil)
	req = withChiURLParam(req, "id", "abc")
	w := httptest.NewRecorder()

	h.GetMovie(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
