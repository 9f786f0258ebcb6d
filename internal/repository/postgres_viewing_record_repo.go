package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
)

// PostgresViewingRecordRepo はPostgreSQLを使用した視聴記録リポジトリ。
type PostgresViewingRecordRepo struct {
	db *sql.DB
}

// NewPostgresViewingRecordRepo はPostgresViewingRecordRepoを生成する。
func NewPostgresViewingRecordRepo(db *sql.DB) *PostgresViewingRecordRepo {
	return &PostgresViewingRecordRepo{db: db}
}

const viewingRecordColumns = `id, owner_id, movie_id, movie_title, poster_url, rating, review, viewed_on, created_at, updated_at`

// scanViewingRecord は1行分の視聴記録を読み取る。
func scanViewingRecord(row interface{ Scan(...any) error }) (*model.ViewingRecord, error) {
	rec := &model.ViewingRecord{}
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.MovieID, &rec.MovieTitle, &rec.PosterURL,
		&rec.Rating, &rec.Review, &rec.ViewedOn, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByID は指定IDの視聴記録を取得する。見つからない場合はnilを返す。
func (r *PostgresViewingRecordRepo) FindByID(ctx context.Context, id string) (*model.ViewingRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+viewingRecordColumns+` FROM viewing_records WHERE id = $1`,
		id,
	)
	rec, err := scanViewingRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	return rec, nil
}

// Create は視聴記録を作成する。
func (r *PostgresViewingRecordRepo) Create(ctx context.Context, rec *model.ViewingRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO viewing_records (id, owner_id, movie_id, movie_title, poster_url, rating, review, viewed_on, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.OwnerID, rec.MovieID, rec.MovieTitle, rec.PosterURL,
		rec.Rating, rec.Review, rec.ViewedOn, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("視聴記録の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は視聴記録の評価・感想・視聴日を更新する。
func (r *PostgresViewingRecordRepo) Update(ctx context.Context, rec *model.ViewingRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE viewing_records
		 SET rating = $2, review = $3, viewed_on = $4, updated_at = NOW()
		 WHERE id = $1`,
		rec.ID, rec.Rating, rec.Review, rec.ViewedOn,
	)
	if err != nil {
		return fmt.Errorf("視聴記録の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("視聴記録が見つかりません: %s", rec.ID)
	}
	return nil
}

// DeleteByID は指定IDの視聴記録を削除する。
func (r *PostgresViewingRecordRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM viewing_records WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("視聴記録が見つかりません: %s", id)
	}
	return nil
}

// RecentByOwner は指定ユーザーの直近の視聴記録をcreated_at降順で最大limit件返す。
func (r *PostgresViewingRecordRepo) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]*model.ViewingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+viewingRecordColumns+` FROM viewing_records
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("直近の視聴記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()
	return collectViewingRecords(rows)
}

// PageByOwner は指定ユーザーの視聴記録をviewed_on降順でページネーションして返す。
func (r *PostgresViewingRecordRepo) PageByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.ViewingRecord, int, error) {
	total, err := r.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+viewingRecordColumns+` FROM viewing_records
		 WHERE owner_id = $1
		 ORDER BY viewed_on DESC, created_at DESC
		 OFFSET $2 LIMIT $3`,
		ownerID, offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("視聴記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	recs, err := collectViewingRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// CountByOwner は指定ユーザーの視聴記録数を返す。
func (r *PostgresViewingRecordRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM viewing_records WHERE owner_id = $1`,
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("視聴記録数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// AverageRatingByOwner は指定ユーザーの平均評価を返す。記録がない場合はnilを返す。
func (r *PostgresViewingRecordRepo) AverageRatingByOwner(ctx context.Context, ownerID string) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(rating) FROM viewing_records WHERE owner_id = $1`,
		ownerID,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("平均評価の取得に失敗しました: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// DeleteByOwnerID は指定ユーザーの全視聴記録を削除する。
func (r *PostgresViewingRecordRepo) DeleteByOwnerID(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM viewing_records WHERE owner_id = $1`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全視聴記録の削除に失敗しました: %w", err)
	}
	return nil
}

// collectViewingRecords はクエリ結果の全行を読み取る。
func collectViewingRecords(rows *sql.Rows) ([]*model.ViewingRecord, error) {
	var recs []*model.ViewingRecord
	for rows.Next() {
		rec, err := scanViewingRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("視聴記録行の読み取りに失敗しました: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("視聴記録の走査に失敗しました: %w", err)
	}
	return recs, nil
}

// compile-time interface check
var _ ViewingRecordRepository = (*PostgresViewingRecordRepo)(nil)
