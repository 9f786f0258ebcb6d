// Package model はドメインモデルを定義する。
package model

import "time"

// Follow はフォロー関係（有向エッジ）を表す。
// (FollowerID, FollowingID) の組み合わせは一意で、自己フォローは許可されない。
// 一意性はストレージ層の複合主キーで保証され、followで作成、unfollowで削除される。
// 更新されることはない。
type Follow struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}
