// Package catalog は外部映画カタログAPIとの連携機能を提供する。
package catalog

import (
	"context"
	"strings"

	"github.com/hitoshi/cinelog/internal/model"
)

// MetricsRecorder はカタログAPI呼び出しのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordCatalogLookup(cacheHit bool)
}

// Service は映画カタログのサービス層。
// キャッシュ→API→ポスターフォールバックの順で映画情報を解決する。
type Service struct {
	client  *Client
	scraper PosterScraperService
	cache   MovieCache
	metrics MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// cacheとmetricsはnilでもよい（それぞれキャッシュなし・記録なしで動作する）。
func NewService(client *Client, scraper PosterScraperService, cache MovieCache, metrics MetricsRecorder) *Service {
	return &Service{
		client:  client,
		scraper: scraper,
		cache:   cache,
		metrics: metrics,
	}
}

// GetMovie は映画IDで映画情報を取得する。
// キャッシュヒット時はAPIを呼ばない。カタログにポスターがない場合は
// 公式サイトのOGP画像で補完を試みる。
func (s *Service) GetMovie(ctx context.Context, movieID int64) (*model.Movie, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, movieID)
		if err == nil && cached != nil {
			if s.metrics != nil {
				s.metrics.RecordCatalogLookup(true)
			}
			return cached, nil
		}
	}

	detail, err := s.client.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCatalogLookup(false)
	}

	movie := detail.Movie
	if movie.PosterURL == "" && detail.Homepage != "" && s.scraper != nil {
		movie.PosterURL = s.scraper.ScrapePosterURL(ctx, detail.Homepage)
	}

	if s.cache != nil {
		// キャッシュ保存の失敗は無視する
		_ = s.cache.Set(ctx, &movie)
	}
	return &movie, nil
}

// Search はタイトルの部分一致で映画を検索する。
// 空白のみのクエリはInvalidQueryErrorとなる。pageは1始まり。
func (s *Service) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewInvalidQueryError("検索キーワードが入力されていません")
	}
	if page < 1 {
		page = 1
	}
	return s.client.SearchMovies(ctx, query, page)
}
