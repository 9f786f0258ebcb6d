// Package model はドメインモデルを定義する。
package model

import "time"

// ViewingRecord は視聴記録（日記の1エントリ）を表す。
// CreatedAtがアクティビティフィードの順序キーとなる。
type ViewingRecord struct {
	ID         string
	OwnerID    string
	MovieID    int64
	MovieTitle string
	PosterURL  string
	Rating     float64 // 0.5〜5.0、0.5刻み
	Review     string  // サニタイズ済みプレーンテキスト。空の場合あり
	ViewedOn   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WishlistItem は観たい映画リストの1件を表す。
// (UserID, MovieID) の組み合わせは一意。
type WishlistItem struct {
	ID         string
	UserID     string
	MovieID    int64
	MovieTitle string
	PosterURL  string
	CreatedAt  time.Time
}
