package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/activity"
	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
)

// ProfileServiceInterface はプロフィール組み立てのサービスインターフェース。
type ProfileServiceInterface interface {
	// Assemble は閲覧者視点のプロフィールを組み立てる。
	Assemble(ctx context.Context, actorID, targetID string) (*model.UserSummary, error)
	// AssembleByUsername はユーザー名でプロフィールを組み立てる。
	AssembleByUsername(ctx context.Context, actorID, username string) (*model.UserSummary, error)
	// AssembleList は複数ユーザーのプロフィールを入力順を保って組み立てる。
	AssembleList(ctx context.Context, actorID string, users []*model.User) ([]*model.UserSummary, error)
	// Search はユーザー名の部分一致検索を行う。検索者自身は結果から除外される。
	Search(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error)
}

// SocialServiceInterface はフォローグラフ操作のサービスインターフェース。
type SocialServiceInterface interface {
	Follow(ctx context.Context, actorID, targetID string) (bool, error)
	Unfollow(ctx context.Context, actorID, targetID string) (bool, error)
	ListFollowing(ctx context.Context, userID string) ([]*model.User, error)
	ListFollowers(ctx context.Context, userID string) ([]*model.User, error)
}

// AccountServiceInterface はアカウント管理のサービスインターフェース。
type AccountServiceInterface interface {
	UpdateProfile(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error)
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー関連のHTTPハンドラー。
type UserHandler struct {
	profiles ProfileServiceInterface
	social   SocialServiceInterface
	account  AccountServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(profiles ProfileServiceInterface, social SocialServiceInterface, account AccountServiceInterface) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		social:   social,
		account:  account,
	}
}

// userListResponse はユーザー一覧のページ付きレスポンス。
type userListResponse struct {
	Users []userSummaryResponse `json:"users"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Total int                   `json:"total"`
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
}

// followResultResponse はフォロー操作の結果レスポンス。
type followResultResponse struct {
	Created bool `json:"created"`
}

// unfollowResultResponse はフォロー解除操作の結果レスポンス。
type unfollowResultResponse struct {
	Removed bool `json:"removed"`
}

// SearchUsers はユーザー名の部分一致検索を処理する。
// GET /api/users?q=xxx&page=0&size=20
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, size, err := parsePageParams(r, 20)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if page < 0 || size < 1 || size > activity.MaxPageSize {
		handleServiceError(w, model.NewInvalidPageError(
			fmt.Sprintf("pageは0以上、sizeは1〜%dで指定してください", activity.MaxPageSize)))
		return
	}

	query := r.URL.Query().Get("q")
	summaries, total, err := h.profiles.Search(r.Context(), actorID, query, activity.PageOffset(page, size), size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userListResponse{
		Users: toUserSummaryResponses(summaries),
		Page:  page,
		Size:  size,
		Total: total,
	})
}

// GetProfile は閲覧者視点のプロフィールを返す。
// GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	targetID := chi.URLParam(r, "id")
	summary, err := h.profiles.Assemble(r.Context(), actorID, targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserSummaryResponse(summary))
}

// GetProfileByUsername はユーザー名でプロフィールを返す。
// GET /api/users/username/{username}
func (h *UserHandler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	username := chi.URLParam(r, "username")
	summary, err := h.profiles.AssembleByUsername(r.Context(), actorID, username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserSummaryResponse(summary))
}

// Follow はフォローエッジを作成する。冪等であり、フォロー済みの場合は
// created=falseを返す。
// POST /api/users/{id}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	targetID := chi.URLParam(r, "id")
	created, err := h.social.Follow(r.Context(), actorID, targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, followResultResponse{Created: created})
}

// Unfollow はフォローエッジを削除する。冪等であり、未フォローの場合は
// removed=falseを返す。
// DELETE /api/users/{id}/follow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	targetID := chi.URLParam(r, "id")
	removed, err := h.social.Unfollow(r.Context(), actorID, targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unfollowResultResponse{Removed: removed})
}

// ListFollowing は指定ユーザーのフォロー一覧を閲覧者視点で返す。
// GET /api/users/{id}/following
func (h *UserHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.social.ListFollowing)
}

// ListFollowers は指定ユーザーのフォロワー一覧を閲覧者視点で返す。
// GET /api/users/{id}/followers
func (h *UserHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.social.ListFollowers)
}

func (h *UserHandler) listRelated(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID string) ([]*model.User, error)) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	targetID := chi.URLParam(r, "id")
	users, err := list(r.Context(), targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	summaries, err := h.profiles.AssembleList(r.Context(), actorID, users)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserSummaryResponses(summaries),
		"total": len(summaries),
	})
}

// UpdateProfile は自分のプロフィールを更新する。
// PUT /api/users/me/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	user, err := h.account.UpdateProfile(r.Context(), userID, req.DisplayName, req.Bio, req.AvatarURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayNameOrUsername(),
		"bio":          user.Bio,
		"avatar_url":   user.AvatarURL,
	})
}

// Withdraw はユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.account.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
