// Package activity はフォロー中ユーザーの行動を集約したアクティビティフィードを提供する。
package activity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

const (
	// recentRecordsPerSource はソースユーザー1人あたりの視聴記録の取得上限。
	recentRecordsPerSource = 20
	// recentWishlistPerSource はソースユーザー1人あたりのウィッシュリスト追加の取得上限。
	recentWishlistPerSource = 10

	// DefaultPageSize はフィードの既定のページサイズ。
	DefaultPageSize = 20
	// MaxPageSize はフィードの最大ページサイズ。
	MaxPageSize = 100
)

// PageOffset は0始まりのページ番号からページ先頭のオフセットを返す。
// page*sizeがintの範囲を超える場合はmath.MaxIntを返し、総件数を
// 超える遠いページとして扱う。オフセット計算で負の値が生じることはない。
func PageOffset(page, size int) int {
	if size > 0 && page > math.MaxInt/size {
		return math.MaxInt
	}
	return page * size
}

// MetricsRecorder はフィード構築のメトリクス記録インターフェース。
type MetricsRecorder interface {
	ObserveFeedBuild(duration time.Duration, mergedEvents int)
}

// VisibilityPolicy は視聴記録の閲覧可否を判定するインターフェース。
type VisibilityPolicy interface {
	CanViewRecords(ctx context.Context, actorID, ownerID string) (bool, error)
}

// FollowSource はフィードのソースユーザー集合を決めるインターフェース。
type FollowSource interface {
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// FeedPage はフィードの1ページ分の結果を表す。
// Totalはマージ後の全イベント数（ソースごとの取得上限適用後）であり、
// 全履歴の件数ではない。
type FeedPage struct {
	Events []model.ActivityEvent
	Page   int
	Size   int
	Total  int
}

// RecordPage は特定ユーザーの視聴記録の1ページ分の結果を表す。
// こちらのTotalはそのユーザーの全記録数を表す。
type RecordPage struct {
	Records []*model.ViewingRecord
	Page    int
	Size    int
	Total   int
}

// Aggregator はアクティビティフィードをリクエスト時に構築する。
// フィードは永続化されず、毎回フォローグラフの現在の状態から計算される。
// フォロー解除は次のフィード取得に即座に反映され、遅延削除のような
// 結果整合性の問題は発生しない。
type Aggregator struct {
	follows      FollowSource
	visibility   VisibilityPolicy
	userRepo     repository.UserRepository
	recordRepo   repository.ViewingRecordRepository
	wishlistRepo repository.WishlistRepository
	metrics      MetricsRecorder
}

// NewAggregator はAggregatorの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewAggregator(
	follows FollowSource,
	visibility VisibilityPolicy,
	userRepo repository.UserRepository,
	recordRepo repository.ViewingRecordRepository,
	wishlistRepo repository.WishlistRepository,
	metrics MetricsRecorder,
) *Aggregator {
	return &Aggregator{
		follows:      follows,
		visibility:   visibility,
		userRepo:     userRepo,
		recordRepo:   recordRepo,
		wishlistRepo: wishlistRepo,
		metrics:      metrics,
	}
}

// GetFeed はactorのアクティビティフィードを構築して返す。
//
// ソース集合はactor自身とフォロー中の全ユーザー。各ソースから直近の
// 視聴記録とウィッシュリスト追加を取得上限つきで集め、イベントに変換し、
// created_at降順の単一タイムラインにマージしてからページを切り出す。
// ソートは安定ソートなので、同時刻のイベントはマージ順（自分が先、
// 同一ユーザー内では視聴記録が先）を保持し、同じグラフ状態に対する
// 順序は再取得しても変わらない。
//
// pageは0始まり。負のpage、0以下または上限超過のsizeはInvalidPageError。
func (a *Aggregator) GetFeed(ctx context.Context, actorID string, page, size int) (*FeedPage, error) {
	if page < 0 {
		return nil, model.NewInvalidPageError("pageは0以上である必要があります")
	}
	if size <= 0 || size > MaxPageSize {
		return nil, model.NewInvalidPageError(fmt.Sprintf("sizeは1以上%d以下である必要があります", MaxPageSize))
	}

	start := time.Now()

	followingIDs, err := a.follows.ListFollowingIDs(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}

	// ソース集合 = 自分 + フォロー中。自分を先頭に置く。
	sourceIDs := make([]string, 0, len(followingIDs)+1)
	sourceIDs = append(sourceIDs, actorID)
	for _, id := range followingIDs {
		if id != actorID {
			sourceIDs = append(sourceIDs, id)
		}
	}

	actors, err := a.userRepo.FindByIDs(ctx, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("ユーザー情報の取得に失敗しました: %w", err)
	}

	events := make([]model.ActivityEvent, 0, len(sourceIDs)*(recentRecordsPerSource+recentWishlistPerSource))
	for _, sourceID := range sourceIDs {
		actor, ok := actors[sourceID]
		if !ok {
			// フォロー先が退会で消えている場合はスキップ。
			continue
		}

		records, err := a.recordRepo.RecentByOwner(ctx, sourceID, recentRecordsPerSource)
		if err != nil {
			return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
		}
		for _, rec := range records {
			events = append(events, model.NewWatchedEvent(actor, rec))
		}

		items, err := a.wishlistRepo.RecentByOwner(ctx, sourceID, recentWishlistPerSource)
		if err != nil {
			return nil, fmt.Errorf("ウィッシュリストの取得に失敗しました: %w", err)
		}
		for _, item := range items {
			events = append(events, model.NewWishlistedEvent(actor, item))
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	total := len(events)
	offset := PageOffset(page, size)
	if offset > total {
		offset = total
	}
	end := offset + size
	if end > total {
		end = total
	}

	if a.metrics != nil {
		a.metrics.ObserveFeedBuild(time.Since(start), total)
	}

	return &FeedPage{
		Events: events[offset:end],
		Page:   page,
		Size:   size,
		Total:  total,
	}, nil
}

// GetOwnerRecords は指定ユーザーの視聴記録一覧をviewed_on降順で返す。
// 閲覧可否は可視性ポリシーで判定し、閲覧不可の場合はAccessDeniedErrorを
// 返す（記録の存在有無は漏らさない）。
func (a *Aggregator) GetOwnerRecords(ctx context.Context, actorID, ownerID string, page, size int) (*RecordPage, error) {
	if page < 0 {
		return nil, model.NewInvalidPageError("pageは0以上である必要があります")
	}
	if size <= 0 || size > MaxPageSize {
		return nil, model.NewInvalidPageError(fmt.Sprintf("sizeは1以上%d以下である必要があります", MaxPageSize))
	}

	owner, err := a.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError(ownerID)
	}

	allowed, err := a.visibility.CanViewRecords(ctx, actorID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("閲覧可否の判定に失敗しました: %w", err)
	}
	if !allowed {
		return nil, model.NewAccessDeniedError()
	}

	records, total, err := a.recordRepo.PageByOwner(ctx, ownerID, PageOffset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}

	return &RecordPage{
		Records: records,
		Page:    page,
		Size:    size,
		Total:   total,
	}, nil
}
