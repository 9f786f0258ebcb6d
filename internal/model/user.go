// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Usernameは一意で、他ユーザーからの検索・表示に使用される。
type User struct {
	ID          string
	Username    string
	DisplayName string // 未設定の場合は空文字列。表示時はUsernameにフォールバックする。
	Bio         string
	AvatarURL   string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayNameOrUsername は表示名を返す。
// DisplayNameが未設定の場合はUsernameにフォールバックする。
func (u *User) DisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserSummary はプロフィール表示用に組み立てられるユーザー情報。
// フォロー関係フラグは閲覧者（actor）に依存するため、リクエストごとに
// 計算され、共有オブジェクトにキャッシュされることはない。
type UserSummary struct {
	ID          string
	Username    string
	DisplayName string // フォールバック適用済み
	Bio         string
	AvatarURL   string
	CreatedAt   time.Time

	FollowerCount  int
	FollowingCount int

	WatchedCount  int
	AverageRating *float64 // 視聴記録が1件もない場合はnil

	// target == actor の場合、以下3つはnil（自分自身に対して意味を持たない）。
	IsFollowing    *bool // actor→target のフォロー有無
	IsFollowedBy   *bool // target→actor のフォロー有無
	IsMutualFollow *bool // 相互フォローの場合true
}
