package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/activity"
	"github.com/hitoshi/cinelog/internal/middleware"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// GetFeed は自分とフォロー中ユーザーのアクティビティをマージしたフィードを返す。
	GetFeed(ctx context.Context, actorID string, page, size int) (*activity.FeedPage, error)
	// GetOwnerRecords は閲覧権限を検証した上で指定ユーザーの視聴記録を返す。
	GetOwnerRecords(ctx context.Context, actorID, ownerID string, page, size int) (*activity.RecordPage, error)
}

// FeedHandler はアクティビティフィードのHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// feedResponse はフィードのページ付きレスポンス。
type feedResponse struct {
	Events []activityEventResponse `json:"events"`
	Page   int                     `json:"page"`
	Size   int                     `json:"size"`
	Total  int                     `json:"total"`
}

// recordListResponse は視聴記録一覧のページ付きレスポンス。
type recordListResponse struct {
	Records []recordResponse `json:"records"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
	Total   int              `json:"total"`
}

// GetFeed はアクティビティフィードを返す。
// GET /api/feed?page=0&size=20
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, size, err := parsePageParams(r, activity.DefaultPageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	feed, err := h.service.GetFeed(r.Context(), actorID, page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	events := make([]activityEventResponse, len(feed.Events))
	for i, ev := range feed.Events {
		events[i] = toActivityEventResponse(ev)
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Events: events,
		Page:   feed.Page,
		Size:   feed.Size,
		Total:  feed.Total,
	})
}

// GetOwnerRecords は指定ユーザーの視聴記録一覧を返す。
// 記録の所有者本人またはフォロワーのみ閲覧可能（デフォルト拒否）。
// GET /api/users/{id}/records?page=0&size=20
func (h *FeedHandler) GetOwnerRecords(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	ownerID := chi.URLParam(r, "id")
	page, size, err := parsePageParams(r, activity.DefaultPageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.GetOwnerRecords(r.Context(), actorID, ownerID, page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	records := make([]recordResponse, len(result.Records))
	for i, rec := range result.Records {
		records[i] = toRecordResponse(rec)
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Records: records,
		Page:    result.Page,
		Size:    result.Size,
		Total:   result.Total,
	})
}
