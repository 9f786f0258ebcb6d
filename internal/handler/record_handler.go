package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
)

// DiaryServiceInterface は視聴記録ハンドラーが必要とするサービスインターフェース。
type DiaryServiceInterface interface {
	Create(ctx context.Context, ownerID string, movieID int64, rating float64, review string, viewedOn time.Time) (*model.ViewingRecord, error)
	Get(ctx context.Context, actorID, recordID string) (*model.ViewingRecord, error)
	Update(ctx context.Context, actorID, recordID string, rating float64, review string, viewedOn time.Time) (*model.ViewingRecord, error)
	Delete(ctx context.Context, actorID, recordID string) error
}

// RecordHandler は視聴記録のHTTPハンドラー。
type RecordHandler struct {
	service DiaryServiceInterface
}

// NewRecordHandler はRecordHandlerを生成する。
func NewRecordHandler(service DiaryServiceInterface) *RecordHandler {
	return &RecordHandler{service: service}
}

// recordRequest は視聴記録の作成・更新リクエストのボディ。
// ViewedOnは "2006-01-02" 形式で指定する。
type recordRequest struct {
	MovieID  int64   `json:"movie_id"`
	Rating   float64 `json:"rating"`
	Review   string  `json:"review"`
	ViewedOn string  `json:"viewed_on"`
}

// parseViewedOn は視聴日文字列を解析する。形式不正はINVALID_VIEWING_DATEとなる。
func parseViewedOn(value string) (time.Time, error) {
	viewedOn, err := time.Parse(viewedOnLayout, value)
	if err != nil {
		return time.Time{}, &model.APIError{
			Code:     model.ErrCodeInvalidViewingDate,
			Message:  "視聴日の形式が不正です。",
			Category: "diary",
			Action:   "YYYY-MM-DD形式で指定してください。",
		}
	}
	return viewedOn, nil
}

// Create は視聴記録を作成する。
// POST /api/records
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	viewedOn, err := parseViewedOn(req.ViewedOn)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	rec, err := h.service.Create(r.Context(), ownerID, req.MovieID, req.Rating, req.Review, viewedOn)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// Get は視聴記録の詳細を返す。所有者本人またはフォロワーのみ閲覧可能。
// GET /api/records/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	recordID := chi.URLParam(r, "id")
	rec, err := h.service.Get(r.Context(), actorID, recordID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Update は視聴記録の評価・感想・視聴日を更新する。所有者のみ実行可能。
// PUT /api/records/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	viewedOn, err := parseViewedOn(req.ViewedOn)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	rec, err := h.service.Update(r.Context(), actorID, recordID, req.Rating, req.Review, viewedOn)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Delete は視聴記録を削除する。所有者のみ実行可能。
// DELETE /api/records/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	recordID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), actorID, recordID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
