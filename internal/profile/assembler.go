// Package profile はプロフィール表示用のユーザー情報組み立てを提供する。
package profile

import (
	"context"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// FollowChecker はフォロー関係の照会インターフェース。
type FollowChecker interface {
	IsFollowing(ctx context.Context, a, b string) (bool, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
}

// Assembler はユーザープロフィールのサマリーを組み立てる。
// フォロー数・視聴統計・閲覧者との関係フラグをすべてリクエスト時点の
// 状態から計算する。関係フラグを共有キャッシュに載せると閲覧者Aへの
// 応答がBに漏れるため、組み立て結果は必ず呼び出しごとに新規生成する。
type Assembler struct {
	userRepo   repository.UserRepository
	recordRepo repository.ViewingRecordRepository
	follows    FollowChecker
}

// NewAssembler はAssemblerの新しいインスタンスを生成する。
func NewAssembler(
	userRepo repository.UserRepository,
	recordRepo repository.ViewingRecordRepository,
	follows FollowChecker,
) *Assembler {
	return &Assembler{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		follows:    follows,
	}
}

// Assemble は閲覧者actorから見たtargetのプロフィールサマリーを組み立てる。
// targetが存在しない場合はUserNotFoundErrorを返す。
// actor == target の場合、関係フラグ3つはnilになる。
func (a *Assembler) Assemble(ctx context.Context, actorID, targetID string) (*model.UserSummary, error) {
	target, err := a.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError(targetID)
	}
	return a.assembleFor(ctx, actorID, target)
}

// AssembleByUsername はユーザー名指定でプロフィールサマリーを組み立てる。
func (a *Assembler) AssembleByUsername(ctx context.Context, actorID, username string) (*model.UserSummary, error) {
	target, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError(username)
	}
	return a.assembleFor(ctx, actorID, target)
}

// AssembleList は複数ユーザーを一括で組み立てる。入力の順序を保持する。
// フォロー一覧・検索結果の表示用。
func (a *Assembler) AssembleList(ctx context.Context, actorID string, users []*model.User) ([]*model.UserSummary, error) {
	summaries := make([]*model.UserSummary, 0, len(users))
	for _, u := range users {
		summary, err := a.assembleFor(ctx, actorID, u)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Search はユーザー名の部分一致でユーザーを検索し、サマリーに組み立てて返す。
// 閲覧者自身は結果から除外され、ユーザー名昇順で返る。
func (a *Assembler) Search(ctx context.Context, actorID, query string, offset, limit int) ([]*model.UserSummary, int, error) {
	users, total, err := a.userRepo.SearchByUsername(ctx, query, actorID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー検索に失敗しました: %w", err)
	}
	summaries, err := a.AssembleList(ctx, actorID, users)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (a *Assembler) assembleFor(ctx context.Context, actorID string, target *model.User) (*model.UserSummary, error) {
	followerCount, err := a.follows.CountFollowers(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー数の取得に失敗しました: %w", err)
	}
	followingCount, err := a.follows.CountFollowing(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	watchedCount, err := a.recordRepo.CountByOwner(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("視聴記録数の取得に失敗しました: %w", err)
	}
	avgRating, err := a.recordRepo.AverageRatingByOwner(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("平均評価の取得に失敗しました: %w", err)
	}

	summary := &model.UserSummary{
		ID:             target.ID,
		Username:       target.Username,
		DisplayName:    target.DisplayNameOrUsername(),
		Bio:            target.Bio,
		AvatarURL:      target.AvatarURL,
		CreatedAt:      target.CreatedAt,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		WatchedCount:   watchedCount,
		AverageRating:  avgRating,
	}

	// 自分自身のプロフィールに関係フラグは付けない。
	if actorID == target.ID {
		return summary, nil
	}

	isFollowing, err := a.follows.IsFollowing(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	isFollowedBy, err := a.follows.IsFollowing(ctx, target.ID, actorID)
	if err != nil {
		return nil, err
	}
	isMutual := isFollowing && isFollowedBy

	summary.IsFollowing = &isFollowing
	summary.IsFollowedBy = &isFollowedBy
	summary.IsMutualFollow = &isMutual
	return summary, nil
}
