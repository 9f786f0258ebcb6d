package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/catalog"
	"github.com/hitoshi/cinelog/internal/model"
)

// CatalogServiceInterface は映画ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
	Search(ctx context.Context, query string, page int) (*catalog.SearchResult, error)
}

// MovieHandler は映画カタログのHTTPハンドラー。
type MovieHandler struct {
	service CatalogServiceInterface
}

// NewMovieHandler はMovieHandlerを生成する。
func NewMovieHandler(service CatalogServiceInterface) *MovieHandler {
	return &MovieHandler{service: service}
}

// movieSearchResponse は映画検索のレスポンス。pageは1始まり。
type movieSearchResponse struct {
	Movies       []movieResponse `json:"movies"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// Search は外部カタログの映画検索を中継する。
// GET /api/movies/search?q=キーワード&page=1
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			handleServiceError(w, model.NewInvalidPageError("pageが数値ではありません"))
			return
		}
		page = parsed
	}

	result, err := h.service.Search(r.Context(), query, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	movies := make([]movieResponse, len(result.Movies))
	for i, m := range result.Movies {
		movies[i] = toMovieResponse(m)
	}

	writeJSON(w, http.StatusOK, movieSearchResponse{
		Movies:       movies,
		Page:         result.Page,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
	})
}

// GetMovie は映画の詳細情報を返す。
// GET /api/movies/{id}
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "映画IDの形式が不正です。",
			Category: "validation",
			Action:   "数値の映画IDを指定してください。",
		})
		return
	}

	movie, err := h.service.GetMovie(r.Context(), movieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMovieResponse(*movie))
}
