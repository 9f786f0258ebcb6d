// Package wishlist は観たい映画リストの管理を提供する。
package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinelog/internal/activity"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// MovieResolver は映画IDからカタログ上の映画情報を解決するインターフェース。
type MovieResolver interface {
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
}

// VisibilityPolicy はリストの閲覧可否を判定するインターフェース。
// 視聴記録と同じポリシーを適用する。
type VisibilityPolicy interface {
	CanViewRecords(ctx context.Context, actorID, ownerID string) (bool, error)
}

// Page はウィッシュリストの1ページ分の結果を表す。
type Page struct {
	Items []*model.WishlistItem
	Page  int
	Size  int
	Total int
}

// Service はウィッシュリストのサービス層。
// 追加・削除は結果を真偽値で返し、重複追加や未登録の削除をエラーにしない。
type Service struct {
	wishlistRepo repository.WishlistRepository
	movies       MovieResolver
	visibility   VisibilityPolicy
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	wishlistRepo repository.WishlistRepository,
	movies MovieResolver,
	visibility VisibilityPolicy,
) *Service {
	return &Service{
		wishlistRepo: wishlistRepo,
		movies:       movies,
		visibility:   visibility,
	}
}

// Add はウィッシュリストに映画を追加する。
// 新しく追加された場合はtrue、すでに登録済みの場合はfalseを返す。
// 同一映画の並行追加はストレージ層のアトミックな挿入で一本化される。
func (s *Service) Add(ctx context.Context, userID string, movieID int64) (bool, error) {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return false, err
	}

	item := &model.WishlistItem{
		ID:         uuid.NewString(),
		UserID:     userID,
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		PosterURL:  movie.PosterURL,
		CreatedAt:  time.Now(),
	}

	added, err := s.wishlistRepo.Add(ctx, item)
	if err != nil {
		return false, fmt.Errorf("ウィッシュリストへの追加に失敗しました: %w", err)
	}
	return added, nil
}

// Remove はウィッシュリストから映画を削除する。
// 削除した場合はtrue、もともと登録されていない場合はfalseを返す
// （どちらもエラーではない）。
func (s *Service) Remove(ctx context.Context, userID string, movieID int64) (bool, error) {
	removed, err := s.wishlistRepo.Remove(ctx, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("ウィッシュリストからの削除に失敗しました: %w", err)
	}
	return removed, nil
}

// List は指定ユーザーのウィッシュリストを追加日時降順で返す。
// 閲覧可否は視聴記録と同じ可視性ポリシーで判定する。
func (s *Service) List(ctx context.Context, actorID, ownerID string, page, size int) (*Page, error) {
	if page < 0 {
		return nil, model.NewInvalidPageError("pageは0以上である必要があります")
	}
	if size <= 0 || size > activity.MaxPageSize {
		return nil, model.NewInvalidPageError(fmt.Sprintf("sizeは1以上%d以下である必要があります", activity.MaxPageSize))
	}

	allowed, err := s.visibility.CanViewRecords(ctx, actorID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("閲覧可否の判定に失敗しました: %w", err)
	}
	if !allowed {
		return nil, model.NewAccessDeniedError()
	}

	items, total, err := s.wishlistRepo.PageByOwner(ctx, ownerID, activity.PageOffset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("ウィッシュリストの取得に失敗しました: %w", err)
	}

	return &Page{
		Items: items,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}
