package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
)

// PostgresFollowRepo はPostgreSQLを使用したフォローリポジトリ。
// followsテーブルは (follower_id, following_id) を複合主キーとし、
// エッジの一意性をストレージ層で保証する。
type PostgresFollowRepo struct {
	db *sql.DB
}

// NewPostgresFollowRepo はPostgresFollowRepoを生成する。
func NewPostgresFollowRepo(db *sql.DB) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: db}
}

// Create はフォローエッジを作成する。すでに存在する場合はfalseを返す。
// ON CONFLICT DO NOTHINGにより挿入はアトミックで、同一ペアに対して並行する
// followが競合しても二重エッジにはならない。競合に敗れた側はRowsAffected==0
// となり、非競合時の重複followと同じfalseを受け取る。
func (r *PostgresFollowRepo) Create(ctx context.Context, followerID, followingID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID,
	)
	if err != nil {
		// ON CONFLICT対象外の一意制約違反が返るドライバ実装への保険。
		// 重複エッジは「すでにフォロー済み」と等価に扱う。
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("フォローエッジの作成に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("作成結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete はフォローエッジを削除する。エッジが存在しない場合はfalseを返す。
func (r *PostgresFollowRepo) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		return false, fmt.Errorf("フォローエッジの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// Exists はfollower→followingのエッジが存在するかを返す。
func (r *PostgresFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		 )`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("フォローエッジの確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListFollowing は指定ユーザーがフォローしているユーザー一覧を返す（フォロー日時降順）。
func (r *PostgresFollowRepo) ListFollowing(ctx context.Context, userID string) ([]*model.User, error) {
	return r.listRelated(ctx,
		`SELECT u.id, u.username, u.display_name, u.bio, u.avatar_url, u.email, u.created_at, u.updated_at
		 FROM follows f
		 JOIN users u ON u.id = f.following_id
		 WHERE f.follower_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す（フォロー日時降順）。
func (r *PostgresFollowRepo) ListFollowers(ctx context.Context, userID string) ([]*model.User, error) {
	return r.listRelated(ctx,
		`SELECT u.id, u.username, u.display_name, u.bio, u.avatar_url, u.email, u.created_at, u.updated_at
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

// listRelated はフォロー関係でJOINしたユーザー一覧クエリを実行する。
func (r *PostgresFollowRepo) listRelated(ctx context.Context, query, userID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー関係ユーザー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("フォロー関係ユーザー行の読み取りに失敗しました: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー関係ユーザー一覧の走査に失敗しました: %w", err)
	}
	return users, nil
}

// ListFollowingIDs は指定ユーザーがフォローしているユーザーIDの一覧を返す。
func (r *PostgresFollowRepo) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー先IDの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("フォロー先ID行の読み取りに失敗しました: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー先IDの走査に失敗しました: %w", err)
	}
	return ids, nil
}

// CountFollowing は指定ユーザーのフォロー数を返す。
func (r *PostgresFollowRepo) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountFollowers は指定ユーザーのフォロワー数を返す。
func (r *PostgresFollowRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE following_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("フォロワー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// DeleteByUserID は指定ユーザーが関与する全エッジ（両方向）を削除する。
func (r *PostgresFollowRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 OR following_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全フォローエッジの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FollowRepository = (*PostgresFollowRepo)(nil)
