// Package social はフォローグラフと視聴記録の可視性ポリシーを提供する。
package social

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// MetricsRecorder はフォロー操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordFollow()
	RecordUnfollow()
}

// Service はフォローグラフのサービス層。
// エッジの作成・削除・照会と、視聴記録の可視性判定を提供する。
// 状態を変更するのはFollowとUnfollowのみで、それ以外は現在のグラフ状態に
// 対する純粋な読み取り。
type Service struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	metrics    MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		followRepo: followRepo,
		userRepo:   userRepo,
		metrics:    metrics,
	}
}

// Follow はactorがtargetをフォローする。
// 新しくエッジが作成された場合はtrue、すでにフォロー済みの場合はfalseを返す。
// 自己フォローはSelfFollowError、存在しないtargetはUserNotFoundErrorとなる。
// 同一ペアに対する並行followはストレージ層のアトミックな挿入で一本化され、
// 競合した側も同じfalseを受け取る（生のストレージエラーは漏れない）。
func (s *Service) Follow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, model.NewSelfFollowError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("フォロー対象ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return false, model.NewUserNotFoundError(targetID)
	}

	created, err := s.followRepo.Create(ctx, actorID, targetID)
	if err != nil {
		return false, fmt.Errorf("フォローエッジの作成に失敗しました: %w", err)
	}

	if created {
		if s.metrics != nil {
			s.metrics.RecordFollow()
		}
		slog.Info("フォローしました",
			slog.String("follower_id", actorID),
			slog.String("following_id", targetID),
		)
	}
	return created, nil
}

// Unfollow はactorのtargetへのフォローを解除する。
// エッジを削除した場合はtrue、もともとフォローしていない場合はfalseを返す
// （どちらもエラーではない）。
func (s *Service) Unfollow(ctx context.Context, actorID, targetID string) (bool, error) {
	removed, err := s.followRepo.Delete(ctx, actorID, targetID)
	if err != nil {
		return false, fmt.Errorf("フォローエッジの削除に失敗しました: %w", err)
	}

	if removed {
		if s.metrics != nil {
			s.metrics.RecordUnfollow()
		}
		slog.Info("フォローを解除しました",
			slog.String("follower_id", actorID),
			slog.String("following_id", targetID),
		)
	}
	return removed, nil
}

// IsFollowing はa→bのフォローエッジが存在するかを返す。
func (s *Service) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	exists, err := s.followRepo.Exists(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// IsMutual はaとbが相互フォローかどうかを返す。
// IsFollowing(a,b) && IsFollowing(b,a) と等価。
func (s *Service) IsMutual(ctx context.Context, a, b string) (bool, error) {
	ab, err := s.IsFollowing(ctx, a, b)
	if err != nil {
		return false, err
	}
	if !ab {
		return false, nil
	}
	ba, err := s.IsFollowing(ctx, b, a)
	if err != nil {
		return false, err
	}
	return ba, nil
}

// ListFollowing は指定ユーザーがフォローしているユーザー一覧を返す。
func (s *Service) ListFollowing(ctx context.Context, userID string) ([]*model.User, error) {
	return s.followRepo.ListFollowing(ctx, userID)
}

// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す。
func (s *Service) ListFollowers(ctx context.Context, userID string) ([]*model.User, error) {
	return s.followRepo.ListFollowers(ctx, userID)
}

// CountFollowing は指定ユーザーのフォロー数を返す。
func (s *Service) CountFollowing(ctx context.Context, userID string) (int, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// CountFollowers は指定ユーザーのフォロワー数を返す。
func (s *Service) CountFollowers(ctx context.Context, userID string) (int, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

// CanViewRecords はactorがownerの個々の視聴記録を閲覧できるかを判定する。
// 本人（actor == owner）またはactorがownerをフォローしている場合のみtrue。
// デフォルトは拒否（フェイルクローズド）。このポリシーが制限するのは
// 個々の視聴記録のみで、プロフィール・集計値・フォロー数は対象外。
func (s *Service) CanViewRecords(ctx context.Context, actorID, ownerID string) (bool, error) {
	if actorID == ownerID {
		return true, nil
	}
	return s.IsFollowing(ctx, actorID, ownerID)
}
