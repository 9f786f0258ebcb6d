package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/wishlist"
)

// --- モック定義 ---

// mockWishlistService はWishlistServiceInterfaceのモック実装。
type mockWishlistService struct {
	addFn    func(ctx context.Context, userID string, movieID int64) (bool, error)
	removeFn func(ctx context.Context, userID string, movieID int64) (bool, error)
	listFn   func(ctx context.Context, actorID, ownerID string, page, size int) (*wishlist.Page, error)
}

func (m *mockWishlistService) Add(ctx context.Context, userID string, movieID int64) (bool, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, movieID)
	}
	return true, nil
}

func (m *mockWishlistService) Remove(ctx context.Context, userID string, movieID int64) (bool, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, movieID)
	}
	return true, nil
}

func (m *mockWishlistService) List(ctx context.Context, actorID, ownerID string, page, size int) (*wishlist.Page, error) {
	if m.listFn != nil {
		return m.listFn(ctx, actorID, ownerID, page, size)
	}
	return &wishlist.Page{Items: []*model.WishlistItem{}, Page: page, Size: size}, nil
}

// --- GET /api/wishlist テスト ---

func TestWishlistHandler_List_Success(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockWishlistService{
		listFn: func(ctx context.Context, actorID, ownerID string, page, size int) (*wishlist.Page, error) {
			// 自分のリストなのでactorとownerは同一
			if actorID != "user-123" || ownerID != "user-123" {
				t.Errorf("actorID = %q, ownerID = %q, want both %q", actorID, ownerID, "user-123")
			}
			return &wishlist.Page{
				Items: []*model.WishlistItem{
					{ID: "wish-1", UserID: "user-123", MovieID: 550, MovieTitle: "ファイト・クラブ", CreatedAt: now},
				},
				Page:  0,
				Size:  20,
				Total: 1,
			}, nil
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body wishlistResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(body.Items))
	}
	if body.Items[0].MovieTitle != "ファイト・クラブ" {
		t.Errorf("MovieTitle = %q, want %q", body.Items[0].MovieTitle, "ファイト・クラブ")
	}
	if body.Total != 1 {
		t.Errorf("Total = %d, want 1", body.Total)
	}
}

func TestWishlistHandler_List_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewWishlistHandler(&mockWishlistService{})

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

// --- POST /api/wishlist テスト ---

func TestWishlistHandler_Add_Created(t *testing.T) {
	svc := &mockWishlistService{
		addFn: func(ctx context.Context, userID string, movieID int64) (bool, error) {
			if userID != "user-123" || movieID != 550 {
				t.Errorf("userID = %q, movieID = %d", userID, movieID)
			}
			return true, nil
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/wishlist", strings.NewReader(`{"movie_id":550}`))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Add(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body followResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Created {
		t.Error("expected created = true")
	}
}

func TestWishlistHandler_Add_AlreadyExists_ReturnsCreatedFalse(t *testing.T) {
	svc := &mockWishlistService{
		addFn: func(ctx context.Context, userID string, movieID int64) (bool, error) {
			return false, nil
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/wishlist", strings.NewReader(`{"movie_id":550}`))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Add(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body followResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Created {
		t.Error("expected created = false")
	}
}

func TestWishlistHandler_Add_MovieNotFound(t *testing.T) {
	svc := &mockWishlistService{
		addFn: func(ctx context.Context, userID string, movieID int64) (bool, error) {
			return false, model.NewMovieNotFoundError(movieID)
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/wishlist", strings.NewReader(`{"movie_id":999999}`))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Add(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeMovieNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeMovieNotFound)
	}
}

func TestWishlistHandler_Add_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewWishlistHandler(&mockWishlistService{})

	req := httptest.NewRequest(http.MethodPost, "/api/wishlist", strings.NewReader("{invalid"))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Add(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// --- DELETE /api/wishlist/{movieId} テスト ---

func TestWishlistHandler_Remove_Removed(t *testing.T) {
	svc := &mockWishlistService{
		removeFn: func(ctx context.Context, userID string, movieID int64) (bool, error) {
			if movieID != 550 {
				t.Errorf("movieID = %d, want 550", movieID)
			}
			return true, nil
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/wishlist/550", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "movieId", "550")
	w := httptest.NewRecorder()

	h.Remove(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body unfollowResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Removed {
		t.Error("expected removed = true")
	}
}

func TestWishlistHandler_Remove_NotInList_ReturnsRemovedFalse(t *testing.T) {
	svc := &mockWishlistService{
		removeFn: func(ctx context.Context, userID string, movieID int64) (bool, error) {
			return false, nil
		},
	}

	h := NewWishlistHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/wishlist/550", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "movieId", "550")
	w := httptest.NewRecorder()

	h.Remove(w, req)

	var body unfollowResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Removed {
		t.Error("expected removed = false")
	}
}

func TestWishlistHandler_Remove_InvalidMovieID_ReturnsBadRequest(t *testing.T) {
	h := NewWishlistHandler(&mockWishlistService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/wishlist/abc", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "movieId", "abc")
	w := httptest.NewRecorder()

	h.Remove(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
