// Package diary は視聴記録（映画日記）の作成・更新・削除を提供する。
package diary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
	"github.com/hitoshi/cinelog/internal/security"
)

const (
	// RatingMin は評価の最小値。
	RatingMin = 0.5
	// RatingMax は評価の最大値。
	RatingMax = 5.0
)

// MovieResolver は映画IDからカタログ上の映画情報を解決するインターフェース。
type MovieResolver interface {
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
}

// VisibilityPolicy は視聴記録の閲覧可否を判定するインターフェース。
type VisibilityPolicy interface {
	CanViewRecords(ctx context.Context, actorID, ownerID string) (bool, error)
}

// Service は視聴記録のサービス層。
// 記録の変更は所有者本人のみ可能で、閲覧は可視性ポリシーに従う。
// 映画のタイトルとポスターは作成時にカタログから解決して記録に写し取るため、
// 表示時にカタログAPIへの問い合わせは発生しない。
type Service struct {
	recordRepo repository.ViewingRecordRepository
	movies     MovieResolver
	visibility VisibilityPolicy
	sanitizer  security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	recordRepo repository.ViewingRecordRepository,
	movies MovieResolver,
	visibility VisibilityPolicy,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		recordRepo: recordRepo,
		movies:     movies,
		visibility: visibility,
		sanitizer:  sanitizer,
	}
}

// Create は視聴記録を作成する。
// 評価は0.5〜5.0の0.5刻み、視聴日は未来日を指定できない。
// 感想はサニタイズされてから保存される。
func (s *Service) Create(ctx context.Context, ownerID string, movieID int64, rating float64, review string, viewedOn time.Time) (*model.ViewingRecord, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := validateViewedOn(viewedOn); err != nil {
		return nil, err
	}

	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &model.ViewingRecord{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		PosterURL:  movie.PosterURL,
		Rating:     rating,
		Review:     s.sanitizer.Sanitize(review),
		ViewedOn:   viewedOn,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("視聴記録の作成に失敗しました: %w", err)
	}
	return rec, nil
}

// Get は視聴記録を1件取得する。
// 閲覧可否は可視性ポリシーで判定し、閲覧不可の場合はAccessDeniedErrorを返す。
func (s *Service) Get(ctx context.Context, actorID, recordID string) (*model.ViewingRecord, error) {
	rec, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	if rec == nil {
		return nil, model.NewRecordNotFoundError(recordID)
	}

	allowed, err := s.visibility.CanViewRecords(ctx, actorID, rec.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("閲覧可否の判定に失敗しました: %w", err)
	}
	if !allowed {
		return nil, model.NewAccessDeniedError()
	}
	return rec, nil
}

// Update は視聴記録の評価・感想・視聴日を更新する。
// 所有者本人以外はAccessDeniedErrorとなる。
func (s *Service) Update(ctx context.Context, actorID, recordID string, rating float64, review string, viewedOn time.Time) (*model.ViewingRecord, error) {
	rec, err := s.findOwned(ctx, actorID, recordID)
	if err != nil {
		return nil, err
	}

	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := validateViewedOn(viewedOn); err != nil {
		return nil, err
	}

	rec.Rating = rating
	rec.Review = s.sanitizer.Sanitize(review)
	rec.ViewedOn = viewedOn
	rec.UpdatedAt = time.Now()

	if err := s.recordRepo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("視聴記録の更新に失敗しました: %w", err)
	}
	return rec, nil
}

// Delete は視聴記録を削除する。
// 所有者本人以外はAccessDeniedErrorとなる。
func (s *Service) Delete(ctx context.Context, actorID, recordID string) error {
	rec, err := s.findOwned(ctx, actorID, recordID)
	if err != nil {
		return err
	}

	if err := s.recordRepo.DeleteByID(ctx, rec.ID); err != nil {
		return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
	}
	return nil
}

// findOwned は記録を取得し、actorが所有者であることを検証する。
// 記録の存在は所有者にしか明かさないため、他人の記録IDを指定した場合も
// 存在確認より先に所有チェックで弾かれる。
func (s *Service) findOwned(ctx context.Context, actorID, recordID string) (*model.ViewingRecord, error) {
	rec, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	if rec == nil {
		return nil, model.NewRecordNotFoundError(recordID)
	}
	if rec.OwnerID != actorID {
		return nil, model.NewAccessDeniedError()
	}
	return rec, nil
}

// validateRating は評価が0.5〜5.0の0.5刻みであることを検証する。
func validateRating(rating float64) error {
	if rating < RatingMin || rating > RatingMax {
		return model.NewInvalidRatingError(rating)
	}
	// 0.5刻みなら2倍が整数になる
	doubled := rating * 2
	if doubled != float64(int64(doubled)) {
		return model.NewInvalidRatingError(rating)
	}
	return nil
}

// validateViewedOn は視聴日が未来日でないことを検証する。
// 視聴日は日付単位なので、当日中はどの時刻でも有効。
func validateViewedOn(viewedOn time.Time) error {
	if viewedOn.IsZero() {
		return model.NewInvalidViewingDateError()
	}
	today := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if !viewedOn.Before(today) {
		return model.NewInvalidViewingDateError()
	}
	return nil
}
