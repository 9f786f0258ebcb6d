// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
	"github.com/hitoshi/cinelog/internal/security"
)

const (
	maxDisplayNameLength = 50
	maxBioLength         = 500
)

// WishlistDeleter はウィッシュリストの一括削除インターフェース。
type WishlistDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ViewingRecordDeleter は視聴記録の一括削除インターフェース。
type ViewingRecordDeleter interface {
	DeleteByOwnerID(ctx context.Context, ownerID string) error
}

// FollowEdgeDeleter はフォローエッジの一括削除インターフェース。
type FollowEdgeDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Service はユーザー管理のサービス層。
// プロフィール更新と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	wishDeleter   WishlistDeleter
	recordDeleter ViewingRecordDeleter
	followDeleter FollowEdgeDeleter
	sanitizer     security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	wishDeleter WishlistDeleter,
	recordDeleter ViewingRecordDeleter,
	followDeleter FollowEdgeDeleter,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		wishDeleter:   wishDeleter,
		recordDeleter: recordDeleter,
		followDeleter: followDeleter,
		sanitizer:     sanitizer,
	}
}

// UpdateProfile は表示名・自己紹介・アバターURLを更新する。
// 自己紹介はHTMLタグを除去したプレーンテキストとして保存される。
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName, bio, avatarURL string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	if s.sanitizer != nil {
		displayName = s.sanitizer.Sanitize(displayName)
		bio = s.sanitizer.Sanitize(bio)
	}

	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return nil, model.NewInvalidProfileError(fmt.Sprintf("表示名は%d文字以内で指定してください", maxDisplayNameLength))
	}
	if utf8.RuneCountInString(bio) > maxBioLength {
		return nil, model.NewInvalidProfileError(fmt.Sprintf("自己紹介は%d文字以内で指定してください", maxBioLength))
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, displayName, bio, avatarURL); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	user.DisplayName = displayName
	user.Bio = bio
	user.AvatarURL = avatarURL

	slog.Info("プロフィールを更新しました",
		slog.String("user_id", userID),
	)

	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: wishlist_items → viewing_records → follows（両方向）→ sessions → user
// （+ CASCADE: identities）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. ウィッシュリストを削除
	if s.wishDeleter != nil {
		if err := s.wishDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("ウィッシュリストの削除に失敗しました: %w", err)
		}
	}

	// 2. 視聴記録を削除
	if s.recordDeleter != nil {
		if err := s.recordDeleter.DeleteByOwnerID(ctx, userID); err != nil {
			return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
		}
	}

	// 3. フォローエッジを両方向削除（退会ユーザーは他ユーザーのフィードから消える）
	if s.followDeleter != nil {
		if err := s.followDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("フォロー関係の削除に失敗しました: %w", err)
		}
	}

	// 4. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 5. ユーザーを削除（identitiesはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
