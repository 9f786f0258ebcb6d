package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/cinelog/internal/model"
)

// --- モック定義 ---

// mockProfileService はProfileServiceInterfaceのモック実装。
type mockProfileService struct {
	assembleFn           func(ctx context.Context, actorID, targetID string) (*model.UserSummary, error)
	assembleByUsernameFn func(ctx context.Context, actorID, username string) (*model.UserSummary, error)
	assembleListFn       func(ctx context.Context, actorID string, users []*model.User) ([]*model.UserSummary, error)
	searchFn             func(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error)
}

func (m *mockProfileService) Assemble(ctx context.Context, actorID, targetID string) (*model.UserSummary, error) {
	if m.assembleFn != nil {
		return m.assembleFn(ctx, actorID, targetID)
	}
	return &model.UserSummary{ID: targetID}, nil
}

func (m *mockProfileService) AssembleByUsername(ctx context.Context, actorID, username string) (*model.UserSummary, error) {
	if m.assembleByUsernameFn != nil {
		return m.assembleByUsernameFn(ctx, actorID, username)
	}
	return &model.UserSummary{Username: username}, nil
}

func (m *mockProfileService) AssembleList(ctx context.Context, actorID string, users []*model.User) ([]*model.UserSummary, error) {
	if m.assembleListFn != nil {
		return m.assembleListFn(ctx, actorID, users)
	}
	summaries := make([]*model.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = &model.UserSummary{ID: u.ID, Username: u.Username}
	}
	return summaries, nil
}

func (m *mockProfileService) Search(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, actorID, query, offset, limit)
	}
	return []*model.UserSummary{}, 0, nil
}

// mockSocialService はSocialServiceInterfaceのモック実装。
type mockSocialService struct {
	followFn        func(ctx context.Context, actorID, targetID string) (bool, error)
	unfollowFn      func(ctx context.Context, actorID, targetID string) (bool, error)
	listFollowingFn func(ctx context.Context, userID string) ([]*model.User, error)
	listFollowersFn func(ctx context.Context, userID string) ([]*model.User, error)
}

func (m *mockSocialService) Follow(ctx context.Context, actorID, targetID string) (bool, error) {
	if m.followFn != nil {
		return m.followFn(ctx, actorID, targetID)
	}
	return true, nil
}

func (m *mockSocialService) Unfollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if m.unfollowFn != nil {
		return m.unfollowFn(ctx, actorID, targetID)
	}
	return true, nil
}

func (m *mockSocialService) ListFollowing(ctx context.Context, userID string) ([]*model.User, error) {
	if m.listFollowingFn != nil {
		return m.listFollowingFn(ctx, userID)
	}
	return []*model.User{}, nil
}

func (m *mockSocialService) ListFollowers(ctx context.Context, userID string) ([]*model.User, error) {
	if m.listFollowersFn != nil {
		return m.listFollowersFn(ctx, userID)
	}
	return []*model.User{}, nil
}

// mockAccountService はAccountServiceInterfaceのモック実装。
type mockAccountService struct {
	updateProfileFn func(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error)
	withdrawFn      func(ctx context.Context, userID string) error
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, displayName, bio, avatarURL)
	}
	return &model.User{ID: userID, DisplayName: displayName, Bio: bio, AvatarURL: avatarURL}, nil
}

func (m *mockAccountService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

func newTestUserHandler(profiles *mockProfileService, social *mockSocialService, account *mockAccountService) *UserHandler {
	if profiles == nil {
		profiles = &mockProfileService{}
	}
	if social == nil {
		social = &mockSocialService{}
	}
	if account == nil {
		account = &mockAccountService{}
	}
	return NewUserHandler(profiles, social, account)
}

func boolPtr(v bool) *bool { return &v }

// --- GET /api/users テスト ---

func TestUserHandler_SearchUsers_Success(t *testing.T) {
	profiles := &mockProfileService{
		searchFn: func(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error) {
			if query != "taro" {
				t.Errorf("query = %q, want %q", query, "taro")
			}
			if offset != 20 || limit != 20 {
				t.Errorf("offset = %d, limit = %d, want 20, 20", offset, limit)
			}
			return []*model.UserSummary{
				{ID: "user-456", Username: "taro", DisplayName: "太郎", IsFollowing: boolPtr(true)},
			}, 1, nil
		},
	}

	h := newTestUserHandler(profiles, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users?q=taro&page=1&size=20", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.SearchUsers(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body userListResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(body.Users) != 1 {
		t.Fatalf("len(Users) = %d, want 1", len(body.Users))
	}
	if body.Users[0].Username != "taro" {
		t.Errorf("Username = %q, want %q", body.Users[0].Username, "taro")
	}
	if body.Users[0].IsFollowing == nil || !*body.Users[0].IsFollowing {
		t.Error("expected IsFollowing to be true")
	}
	if body.Total != 1 {
		t.Errorf("Total = %d, want 1", body.Total)
	}
}

func TestUserHandler_SearchUsers_HugePage_DoesNotOverflowOffset(t *testing.T) {
	gotOffset := -1
	profiles := &mockProfileService{
		searchFn: func(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error) {
			gotOffset = offset
			return nil, 0, nil
		},
	}

	h := newTestUserHandler(profiles, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users?q=a&page=461168601842738791&size=20", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.SearchUsers(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotOffset < 0 {
		t.Errorf("offset = %d, want non-negative", gotOffset)
	}
}

func TestUserHandler_SearchUsers_SizeOutOfRange_ReturnsBadRequest(t *testing.T) {
	h := newTestUserHandler(nil, nil, nil)

	for _, size := range []string{"0", "101", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users?q=a&size="+size, nil)
		req = withUserID(req, "user-123")
		w := httptest.NewRecorder()

		h.SearchUsers(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("size=%s: status = %d, want %d", size, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestUserHandler_SearchUsers_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := newTestUserHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users?q=a", nil)
	w := httptest.NewRecorder()

	h.SearchUsers(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

// --- GET /api/users/{id} テスト ---

func TestUserHandler_GetProfile_Success(t *testing.T) {
	profiles := &mockProfileService{
		assembleFn: func(ctx context.Context, actorID, targetID string) (*model.UserSummary, error) {
			if actorID != "user-123" || targetID != "user-456" {
				t.Errorf("actorID = %q, targetID = %q", actorID, targetID)
			}
			return &model.UserSummary{
				ID:             "user-456",
				Username:       "taro",
				DisplayName:    "太郎",
				FollowerCount:  10,
				FollowingCount: 5,
				WatchedCount:   42,
				AverageRating:  floatPtr(3.8),
				IsFollowing:    boolPtr(true),
				IsFollowedBy:   boolPtr(false),
				IsMutualFollow: boolPtr(false),
			}, nil
		},
	}

	h := newTestUserHandler(profiles, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-456", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.GetProfile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body userSummaryResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.WatchedCount != 42 {
		t.Errorf("WatchedCount = %d, want 42", body.WatchedCount)
	}
	if body.AverageRating == nil || *body.AverageRating != 3.8 {
		t.Errorf("AverageRating = %v, want 3.8", body.AverageRating)
	}
}

func TestUserHandler_GetProfile_SelfProfile_OmitsFollowFlags(t *testing.T) {
	profiles := &mockProfileService{
		assembleFn: func(ctx context.Context, actorID, targetID string) (*model.UserSummary, error) {
			// 自分自身のプロフィールではフォロー関係フラグはnil
			return &model.UserSummary{ID: targetID, Username: "hanako"}, nil
		},
	}

	h := newTestUserHandler(profiles, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-123", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.GetProfile(w, req)

	raw := w.Body.String()
	if strings.Contains(raw, "is_following") {
		t.Errorf("expected is_following to be omitted, got body: %s", raw)
	}
	// average_ratingは記録ゼロでもnullとして常に出力する
	if !strings.Contains(raw, "average_rating") {
		t.Errorf("expected average_rating to be present, got body: %s", raw)
	}
}

func TestUserHandler_GetProfile_NotFound(t *testing.T) {
	profiles := &mockProfileService{
		assembleFn: func(ctx context.Context, actorID, targetID string) (*model.UserSummary, error) {
			return nil, model.NewUserNotFoundError(targetID)
		},
	}

	h := newTestUserHandler(profiles, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/unknown", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "unknown")
	w := httptest.NewRecorder()

	h.GetProfile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeUserNotFound)
	}
}

// --- POST /api/users/{id}/follow テスト ---

func TestUserHandler_Follow_Created(t *testing.T) {
	social := &mockSocialService{
		followFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			if actorID != "user-123" || targetID != "user-456" {
				t.Errorf("actorID = %q, targetID = %q", actorID, targetID)
			}
			return true, nil
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-456/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.Follow(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body followResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Created {
		t.Error("expected created = true")
	}
}

func TestUserHandler_Follow_AlreadyFollowing_ReturnsCreatedFalse(t *testing.T) {
	social := &mockSocialService{
		followFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			return false, nil
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-456/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.Follow(w, req)

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

func TestUserHandler_Follow_Self_ReturnsUnprocessableEntity(t *testing.T) {
	social := &mockSocialService{
		followFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			return false, model.NewSelfFollowError()
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-123/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Follow(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeSelfFollow {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeSelfFollow)
	}
}

func TestUserHandler_Follow_TargetNotFound(t *testing.T) {
	social := &mockSocialService{
		followFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			return false, model.NewUserNotFoundError(targetID)
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/unknown/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "unknown")
	w := httptest.NewRecorder()

	h.Follow(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- DELETE /api/users/{id}/follow テスト ---

func TestUserHandler_Unfollow_Removed(t *testing.T) {
	social := &mockSocialService{
		unfollowFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			return true, nil
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-456/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.Unfollow(w, req)

	var body unfollowResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Removed {
		t.Error("expected removed = true")
	}
}

func TestUserHandler_Unfollow_NotFollowing_ReturnsRemovedFalse(t *testing.T) {
	social := &mockSocialService{
		unfollowFn: func(ctx context.Context, actorID, targetID string) (bool, error) {
			return false, nil
		},
	}

	h := newTestUserHandler(nil, social, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-456/follow", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.Unfollow(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body unfollowResultResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Removed {
		t.Error("expected removed = false")
	}
}

// --- GET /api/users/{id}/following テスト ---

func TestUserHandler_ListFollowing_AssemblesSummaries(t *testing.T) {
	social := &mockSocialService{
		listFollowingFn: func(ctx context.Context, userID string) ([]*model.User, error) {
			if userID != "user-456" {
				t.Errorf("userID = %q, want %q", userID, "user-456")
			}
			return []*model.User{
				{ID: "user-1", Username: "alice"},
				{ID: "user-2", Username: "bob"},
			}, nil
		},
	}
	profiles := &mockProfileService{
		assembleListFn: func(ctx context.Context, actorID string, users []*model.User) ([]*model.UserSummary, error) {
			if actorID != "user-123" {
				t.Errorf("actorID = %q, want %q", actorID, "user-123")
			}
			summaries := make([]*model.UserSummary, len(users))
			for i, u := range users {
				summaries[i] = &model.UserSummary{ID: u.ID, Username: u.Username}
			}
			return summaries, nil
		},
	}

	h := newTestUserHandler(profiles, social, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-456/following", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "user-456")
	w := httptest.NewRecorder()

	h.ListFollowing(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Users []userSummaryResponse `json:"users"`
		Total int                   `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Users) != 2 || body.Total != 2 {
		t.Errorf("len(Users) = %d, Total = %d, want 2, 2", len(body.Users), body.Total)
	}
}

// --- PUT /api/users/me/profile テスト ---

func TestUserHandler_UpdateProfile_Success(t *testing.T) {
	account := &mockAccountService{
		updateProfileFn: func(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error) {
			if displayName != "花子" || bio != "映画が好きです" {
				t.Errorf("displayName = %q, bio = %q", displayName, bio)
			}
			return &model.User{
				ID:          userID,
				Username:    "hanako",
				DisplayName: displayName,
				Bio:         bio,
				AvatarURL:   avatarURL,
			}, nil
		},
	}

	h := newTestUserHandler(nil, nil, account)

	reqBody := `{"display_name":"花子","bio":"映画が好きです","avatar_url":""}`
	req := httptest.NewRequest(http.MethodPut, "/api/users/me/profile", strings.NewReader(reqBody))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.UpdateProfile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["display_name"] != "花子" {
		t.Errorf("display_name = %v, want %q", body["display_name"], "花子")
	}
}

func TestUserHandler_UpdateProfile_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := newTestUserHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/users/me/profile", strings.NewReader("{invalid"))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.UpdateProfile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestUserHandler_UpdateProfile_TooLong_ReturnsBadRequest(t *testing.T) {
	account := &mockAccountService{
		updateProfileFn: func(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error) {
			return nil, model.NewInvalidProfileError("表示名は50文字以内で入力してください")
		},
	}

	h := newTestUserHandler(nil, nil, account)

	reqBody := `{"display_name":"` + strings.Repeat("あ", 51) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/api/users/me/profile", strings.NewReader(reqBody))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.UpdateProfile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeInvalidProfile {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeInvalidProfile)
	}
}

// --- DELETE /api/users/me テスト ---

func TestUserHandler_Withdraw_Success(t *testing.T) {
	withdrawCalled := false
	account := &mockAccountService{
		withdrawFn: func(ctx context.Context, userID string) error {
			withdrawCalled = true
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			return nil
		},
	}

	h := newTestUserHandler(nil, nil, account)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if !withdrawCalled {
		t.Error("expected Withdraw to be called")
	}
}

func TestUserHandler_Withdraw_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := newTestUserHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	// ユーザーIDを注入しない
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestUserHandler_Withdraw_InternalError(t *testing.T) {
	account := &mockAccountService{
		withdrawFn: func(ctx context.Context, userID string) error {
			return errors.New("transaction failed")
		},
	}

	h := newTestUserHandler(nil, nil, account)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}
