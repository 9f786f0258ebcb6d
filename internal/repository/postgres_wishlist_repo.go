package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
)

// PostgresWishlistRepo はPostgreSQLを使用したウィッシュリストリポジトリ。
// wishlist_itemsテーブルは (user_id, movie_id) に一意制約を持つ。
type PostgresWishlistRepo struct {
	db *sql.DB
}

// NewPostgresWishlistRepo はPostgresWishlistRepoを生成する。
func NewPostgresWishlistRepo(db *sql.DB) *PostgresWishlistRepo {
	return &PostgresWishlistRepo{db: db}
}

const wishlistColumns = `id, user_id, movie_id, movie_title, poster_url, created_at`

// scanWishlistItem は1行分のウィッシュリストを読み取る。
func scanWishlistItem(row interface{ Scan(...any) error }) (*model.WishlistItem, error) {
	item := &model.WishlistItem{}
	err := row.Scan(
		&item.ID, &item.UserID, &item.MovieID, &item.MovieTitle,
		&item.PosterURL, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Add はウィッシュリストに映画を追加する。すでに存在する場合はfalseを返す。
// フォローエッジと同じく、一意性はON CONFLICT DO NOTHINGでアトミックに保証される。
func (r *PostgresWishlistRepo) Add(ctx context.Context, item *model.WishlistItem) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (id, user_id, movie_id, movie_title, poster_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		item.ID, item.UserID, item.MovieID, item.MovieTitle, item.PosterURL, item.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("ウィッシュリストへの追加に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("追加結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// Remove はウィッシュリストから映画を削除する。存在しない場合はfalseを返す。
func (r *PostgresWishlistRepo) Remove(ctx context.Context, userID string, movieID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return false, fmt.Errorf("ウィッシュリストからの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// RecentByOwner は指定ユーザーの直近の追加をcreated_at降順で最大limit件返す。
func (r *PostgresWishlistRepo) RecentByOwner(ctx context.Context, userID string, limit int) ([]*model.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_items
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("直近のウィッシュリストの取得に失敗しました: %w", err)
	}
	defer rows.Close()
	return collectWishlistItems(rows)
}

// PageByOwner は指定ユーザーのウィッシュリストをcreated_at降順でページネーションして返す。
func (r *PostgresWishlistRepo) PageByOwner(ctx context.Context, userID string, offset, limit int) ([]*model.WishlistItem, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ウィッシュリスト件数の取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_items
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ウィッシュリスト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	items, err := collectWishlistItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteByUserID は指定ユーザーの全ウィッシュリストを削除する。
func (r *PostgresWishlistRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全ウィッシュリストの削除に失敗しました: %w", err)
	}
	return nil
}

// collectWishlistItems はクエリ結果の全行を読み取る。
func collectWishlistItems(rows *sql.Rows) ([]*model.WishlistItem, error) {
	var items []*model.WishlistItem
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ウィッシュリスト行の読み取りに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ウィッシュリストの走査に失敗しました: %w", err)
	}
	return items, nil
}

// compile-time interface check
var _ WishlistRepository = (*PostgresWishlistRepo)(nil)
