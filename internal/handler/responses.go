package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
)

const viewedOnLayout = "2006-01-02"

// userSummaryResponse はプロフィール表示のAPIレスポンス。
// フォロー関係フラグは自分自身のプロフィールではnull（省略）となる。
type userSummaryResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`

	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`

	WatchedCount  int      `json:"watched_count"`
	AverageRating *float64 `json:"average_rating"`

	IsFollowing    *bool `json:"is_following,omitempty"`
	IsFollowedBy   *bool `json:"is_followed_by,omitempty"`
	IsMutualFollow *bool `json:"is_mutual_follow,omitempty"`
}

func toUserSummaryResponse(s *model.UserSummary) userSummaryResponse {
	return userSummaryResponse{
		ID:             s.ID,
		Username:       s.Username,
		DisplayName:    s.DisplayName,
		Bio:            s.Bio,
		AvatarURL:      s.AvatarURL,
		CreatedAt:      s.CreatedAt,
		FollowerCount:  s.FollowerCount,
		FollowingCount: s.FollowingCount,
		WatchedCount:   s.WatchedCount,
		AverageRating:  s.AverageRating,
		IsFollowing:    s.IsFollowing,
		IsFollowedBy:   s.IsFollowedBy,
		IsMutualFollow: s.IsMutualFollow,
	}
}

func toUserSummaryResponses(summaries []*model.UserSummary) []userSummaryResponse {
	results := make([]userSummaryResponse, len(summaries))
	for i, s := range summaries {
		results[i] = toUserSummaryResponse(s)
	}
	return results
}

// recordResponse は視聴記録のAPIレスポンス。
type recordResponse struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	MovieID    int64     `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	PosterURL  string    `json:"poster_url"`
	Rating     float64   `json:"rating"`
	Review     string    `json:"review"`
	ViewedOn   string    `json:"viewed_on"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toRecordResponse(rec *model.ViewingRecord) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		OwnerID:    rec.OwnerID,
		MovieID:    rec.MovieID,
		MovieTitle: rec.MovieTitle,
		PosterURL:  rec.PosterURL,
		Rating:     rec.Rating,
		Review:     rec.Review,
		ViewedOn:   rec.ViewedOn.Format(viewedOnLayout),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// activityEventResponse はフィードの1イベントのAPIレスポンス。
type activityEventResponse struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	MovieID     int64     `json:"movie_id"`
	MovieTitle  string    `json:"movie_title"`
	PosterURL   string    `json:"poster_url"`
	Rating      *float64  `json:"rating,omitempty"`
	Review      string    `json:"review,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toActivityEventResponse(ev model.ActivityEvent) activityEventResponse {
	return activityEventResponse{
		Type:        string(ev.Type),
		UserID:      ev.UserID,
		Username:    ev.Username,
		DisplayName: ev.DisplayName,
		AvatarURL:   ev.AvatarURL,
		MovieID:     ev.MovieID,
		MovieTitle:  ev.MovieTitle,
		PosterURL:   ev.PosterURL,
		Rating:      ev.Rating,
		Review:      ev.Review,
		Description: ev.Description,
		CreatedAt:   ev.CreatedAt,
	}
}

// wishlistItemResponse はウィッシュリスト1件のAPIレスポンス。
type wishlistItemResponse struct {
	ID         string    `json:"id"`
	MovieID    int64     `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	PosterURL  string    `json:"poster_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func toWishlistItemResponse(item *model.WishlistItem) wishlistItemResponse {
	return wishlistItemResponse{
		ID:         item.ID,
		MovieID:    item.MovieID,
		MovieTitle: item.MovieTitle,
		PosterURL:  item.PosterURL,
		CreatedAt:  item.CreatedAt,
	}
}

// movieResponse は映画カタログ情報のAPIレスポンス。
type movieResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	PosterURL     string `json:"poster_url"`
	ReleaseDate   string `json:"release_date"`
	Overview      string `json:"overview"`
}

func toMovieResponse(m model.Movie) movieResponse {
	return movieResponse{
		ID:            m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		PosterURL:     m.PosterURL,
		ReleaseDate:   m.ReleaseDate,
		Overview:      m.Overview,
	}
}

// parsePageParams はクエリからpage/sizeを取得する。
// 未指定時はpage=0、size=defaultSizeを使用する。数値として解析できない
// 値はINVALID_PAGEエラーとなる。範囲の検証はサービス層が行う。
func parsePageParams(r *http.Request, defaultSize int) (int, int, error) {
	page := 0
	size := defaultSize

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, model.NewInvalidPageError("pageが数値ではありません")
		}
		page = n
	}
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, model.NewInvalidPageError("sizeが数値ではありません")
		}
		size = n
	}

	return page, size, nil
}
