// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/cinelog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByIDs は指定IDのユーザーをまとめて取得し、ID→Userのマップで返す。
	// 存在しないIDはマップに含まれない。
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// ユーザー名の一意制約違反はそのまま返す（呼び出し元がIsUniqueViolationで判定する）。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateProfile は表示名・自己紹介・アバターURLを更新する。
	UpdateProfile(ctx context.Context, id, displayName, bio, avatarURL string) error

	// SearchByUsername はユーザー名の部分一致検索を行う（大文字小文字を区別しない）。
	// queryが空の場合は全ユーザーが対象となる。excludeIDのユーザーは常に除外される。
	// ユーザー名昇順で返し、totalは除外適用後の総件数を表す。
	SearchByUsername(ctx context.Context, query, excludeID string, offset, limit int) ([]*model.User, int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentitiesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// FollowRepository はフォロー関係（有向エッジ）の永続化インターフェース。
// エッジの一意性は (follower_id, following_id) の複合主キーで保証される。
type FollowRepository interface {
	// Create はフォローエッジを作成する。
	// すでにエッジが存在する場合はfalseを返す（エラーにはしない）。
	// ON CONFLICT DO NOTHINGによるアトミックな挿入のため、並行する重複followが
	// 二重エッジを作成することはなく、競合した側はfalseを受け取る。
	Create(ctx context.Context, followerID, followingID string) (bool, error)

	// Delete はフォローエッジを削除する。
	// エッジが存在しない場合はfalseを返す（エラーにはしない）。
	Delete(ctx context.Context, followerID, followingID string) (bool, error)

	// Exists はfollower→followingのエッジが存在するかを返す。
	Exists(ctx context.Context, followerID, followingID string) (bool, error)

	// ListFollowing は指定ユーザーがフォローしているユーザー一覧を返す（フォロー日時降順）。
	ListFollowing(ctx context.Context, userID string) ([]*model.User, error)

	// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す（フォロー日時降順）。
	ListFollowers(ctx context.Context, userID string) ([]*model.User, error)

	// ListFollowingIDs は指定ユーザーがフォローしているユーザーIDの一覧を返す。
	// フィードのクロージャ計算用。キャッシュせず常に現在のグラフ状態を反映する。
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)

	// CountFollowing は指定ユーザーのフォロー数を返す。
	CountFollowing(ctx context.Context, userID string) (int, error)

	// CountFollowers は指定ユーザーのフォロワー数を返す。
	CountFollowers(ctx context.Context, userID string) (int, error)

	// DeleteByUserID は指定ユーザーが関与する全エッジ（両方向）を削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ViewingRecordRepository は視聴記録の永続化インターフェース。
type ViewingRecordRepository interface {
	// FindByID は指定IDの視聴記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ViewingRecord, error)

	// Create は視聴記録を作成する。
	Create(ctx context.Context, rec *model.ViewingRecord) error

	// Update は視聴記録の評価・感想・視聴日を更新する。
	Update(ctx context.Context, rec *model.ViewingRecord) error

	// DeleteByID は指定IDの視聴記録を削除する。
	DeleteByID(ctx context.Context, id string) error

	// RecentByOwner は指定ユーザーの直近の視聴記録をcreated_at降順で最大limit件返す。
	// フィード集約のソース取得用。
	RecentByOwner(ctx context.Context, ownerID string, limit int) ([]*model.ViewingRecord, error)

	// PageByOwner は指定ユーザーの視聴記録をviewed_on降順でページネーションして返す。
	// totalはそのユーザーの総記録数を表す。
	PageByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.ViewingRecord, int, error)

	// CountByOwner は指定ユーザーの視聴記録数を返す。
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// AverageRatingByOwner は指定ユーザーの平均評価を返す。
	// 記録が1件もない場合はnilを返す。
	AverageRatingByOwner(ctx context.Context, ownerID string) (*float64, error)

	// DeleteByOwnerID は指定ユーザーの全視聴記録を削除する。退会処理用。
	DeleteByOwnerID(ctx context.Context, ownerID string) error
}

// WishlistRepository は観たい映画リストの永続化インターフェース。
type WishlistRepository interface {
	// Add はウィッシュリストに映画を追加する。
	// すでに同じ映画が存在する場合はfalseを返す（エラーにはしない）。
	Add(ctx context.Context, item *model.WishlistItem) (bool, error)

	// Remove はウィッシュリストから映画を削除する。
	// 存在しない場合はfalseを返す（エラーにはしない）。
	Remove(ctx context.Context, userID string, movieID int64) (bool, error)

	// RecentByOwner は指定ユーザーの直近の追加をcreated_at降順で最大limit件返す。
	// フィード集約のソース取得用。
	RecentByOwner(ctx context.Context, userID string, limit int) ([]*model.WishlistItem, error)

	// PageByOwner は指定ユーザーのウィッシュリストをcreated_at降順でページネーションして返す。
	PageByOwner(ctx context.Context, userID string, offset, limit int) ([]*model.WishlistItem, int, error)

	// DeleteByUserID は指定ユーザーの全ウィッシュリストを削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
