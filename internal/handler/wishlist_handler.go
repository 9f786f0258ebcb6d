package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/wishlist"
)

// WishlistServiceInterface はウィッシュリストハンドラーが必要とするサービスインターフェース。
type WishlistServiceInterface interface {
	Add(ctx context.Context, userID string, movieID int64) (bool, error)
	Remove(ctx context.Context, userID string, movieID int64) (bool, error)
	List(ctx context.Context, actorID, ownerID string, page, size int) (*wishlist.Page, error)
}

// WishlistHandler は観たい映画リストのHTTPハンドラー。
type WishlistHandler struct {
	service WishlistServiceInterface
}

// NewWishlistHandler はWishlistHandlerを生成する。
func NewWishlistHandler(service WishlistServiceInterface) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// addWishlistRequest はウィッシュリスト追加リクエストのボディ。
type addWishlistRequest struct {
	MovieID int64 `json:"movie_id"`
}

// wishlistResponse はウィッシュリストのページ付きレスポンス。
type wishlistResponse struct {
	Items []wishlistItemResponse `json:"items"`
	Page  int                    `json:"page"`
	Size  int                    `json:"size"`
	Total int                    `json:"total"`
}

// List は自分のウィッシュリストを返す。
// GET /api/wishlist?page=0&size=20
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, size, err := parsePageParams(r, 20)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.List(r.Context(), userID, userID, page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]wishlistItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = toWishlistItemResponse(item)
	}

	writeJSON(w, http.StatusOK, wishlistResponse{
		Items: items,
		Page:  result.Page,
		Size:  result.Size,
		Total: result.Total,
	})
}

// Add はウィッシュリストに映画を追加する。冪等であり、追加済みの場合は
// created=falseを返す。
// POST /api/wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req addWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, err := h.service.Add(r.Context(), userID, req.MovieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, followResultResponse{Created: created})
}

// Remove はウィッシュリストから映画を削除する。冪等であり、未登録の場合は
// removed=falseを返す。
// DELETE /api/wishlist/{movieId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "映画IDの形式が不正です。",
			Category: "validation",
			Action:   "数値の映画IDを指定してください。",
		})
		return
	}

	removed, err := h.service.Remove(r.Context(), userID, movieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unfollowResultResponse{Removed: removed})
}
