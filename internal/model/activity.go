// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// ActivityType はアクティビティイベントの種別を表す。
type ActivityType string

const (
	// ActivityWatched は視聴記録イベント。
	ActivityWatched ActivityType = "watched"
	// ActivityWishlisted はウィッシュリスト追加イベント。
	ActivityWishlisted ActivityType = "wishlisted"
)

// ActivityEvent はフィードに表示される1件のアクティビティを表す。
// フィード取得のたびに元データ（視聴記録・ウィッシュリスト）から構築される
// 派生オブジェクトであり、永続化されることはない。
type ActivityEvent struct {
	Type ActivityType

	// 行為者の表示用情報
	UserID      string
	Username    string
	DisplayName string // フォールバック適用済み
	AvatarURL   string

	// 対象映画
	MovieID    int64
	MovieTitle string
	PosterURL  string

	// 種別固有のペイロード（watchedのみ）
	Rating *float64
	Review string

	Description string
	CreatedAt   time.Time // 元レコードのcreated_at。フィードの順序キー
}

// NewWatchedEvent は視聴記録からアクティビティイベントを構築する。
func NewWatchedEvent(actor *User, rec *ViewingRecord) ActivityEvent {
	name := actor.DisplayNameOrUsername()
	rating := rec.Rating
	return ActivityEvent{
		Type:        ActivityWatched,
		UserID:      actor.ID,
		Username:    actor.Username,
		DisplayName: name,
		AvatarURL:   actor.AvatarURL,
		MovieID:     rec.MovieID,
		MovieTitle:  rec.MovieTitle,
		PosterURL:   rec.PosterURL,
		Rating:      &rating,
		Review:      rec.Review,
		Description: fmt.Sprintf("%sが「%s」を観ました", name, rec.MovieTitle),
		CreatedAt:   rec.CreatedAt,
	}
}

// NewWishlistedEvent はウィッシュリスト追加からアクティビティイベントを構築する。
func NewWishlistedEvent(actor *User, item *WishlistItem) ActivityEvent {
	name := actor.DisplayNameOrUsername()
	return ActivityEvent{
		Type:        ActivityWishlisted,
		UserID:      actor.ID,
		Username:    actor.Username,
		DisplayName: name,
		AvatarURL:   actor.AvatarURL,
		MovieID:     item.MovieID,
		MovieTitle:  item.MovieTitle,
		PosterURL:   item.PosterURL,
		Description: fmt.Sprintf("%sが「%s」を観たい映画に追加しました", name, item.MovieTitle),
		CreatedAt:   item.CreatedAt,
	}
}
