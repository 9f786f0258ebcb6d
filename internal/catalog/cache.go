// Package catalog は外部映画カタログAPIとの連携機能を提供する。
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/cinelog/internal/model"
)

// MovieCache はカタログ応答のキャッシュインターフェース。
type MovieCache interface {
	// Get はキャッシュから映画情報を取得する。ミスの場合はnilを返す。
	Get(ctx context.Context, movieID int64) (*model.Movie, error)
	// Set は映画情報をTTL付きでキャッシュに保存する。
	Set(ctx context.Context, movie *model.Movie) error
}

// RedisMovieCache はRedisを使用したMovieCacheの実装。
// カタログAPIのレート制限と応答遅延を緩和するための任意コンポーネントで、
// Redisが構成されていない環境ではキャッシュなしで動作する。
type RedisMovieCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMovieCache はRedisMovieCacheの新しいインスタンスを生成する。
func NewRedisMovieCache(client *redis.Client, ttl time.Duration) *RedisMovieCache {
	return &RedisMovieCache{
		client: client,
		ttl:    ttl,
	}
}

// movieKey は映画IDからキャッシュキーを組み立てる。
func movieKey(movieID int64) string {
	return fmt.Sprintf("catalog:movie:%d", movieID)
}

// Get はキャッシュから映画情報を取得する。
// ミスとRedis障害はどちらもnilを返す（キャッシュ障害で本体を止めない）。
func (c *RedisMovieCache) Get(ctx context.Context, movieID int64) (*model.Movie, error) {
	data, err := c.client.Get(ctx, movieKey(movieID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Warn("カタログキャッシュの取得に失敗しました",
			slog.Int64("movie_id", movieID),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var movie model.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		// 壊れたエントリはミス扱い
		return nil, nil
	}
	return &movie, nil
}

// Set は映画情報をTTL付きでキャッシュに保存する。
// 保存失敗はログに残すのみでエラーにしない。
func (c *RedisMovieCache) Set(ctx context.Context, movie *model.Movie) error {
	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("キャッシュエントリのエンコードに失敗しました: %w", err)
	}

	if err := c.client.Set(ctx, movieKey(movie.ID), data, c.ttl).Err(); err != nil {
		slog.Warn("カタログキャッシュの保存に失敗しました",
			slog.Int64("movie_id", movie.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// compile-time interface check
var _ MovieCache = (*RedisMovieCache)(nil)
