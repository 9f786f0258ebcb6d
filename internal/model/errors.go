// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, social, diary, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeSelfFollow         = "SELF_FOLLOW"
	ErrCodeAccessDenied       = "ACCESS_DENIED"
	ErrCodeInvalidPage        = "INVALID_PAGE"
	ErrCodeInvalidRating      = "INVALID_RATING"
	ErrCodeInvalidViewingDate = "INVALID_VIEWING_DATE"
	ErrCodeInvalidProfile     = "INVALID_PROFILE"
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeMovieNotFound      = "MOVIE_NOT_FOUND"
	ErrCodeInvalidQuery       = "INVALID_QUERY"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
)

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "social",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewSelfFollowError は自己フォローエラーを生成する。
func NewSelfFollowError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfFollow,
		Message:  "自分自身をフォローすることはできません。",
		Category: "social",
		Action:   "他のユーザーを指定してください。",
	}
}

// NewAccessDeniedError は視聴記録の閲覧権限エラーを生成する。
// 記録の所有者本人またはフォロワー以外には常にこのエラーを返す（デフォルト拒否）。
func NewAccessDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodeAccessDenied,
		Message:  "このユーザーの視聴記録を閲覧する権限がありません。",
		Category: "social",
		Action:   "相手をフォローすると視聴記録を閲覧できます。",
	}
}

// NewInvalidPageError はページネーションパラメータエラーを生成する。
func NewInvalidPageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  fmt.Sprintf("無効なページ指定です: %s", reason),
		Category: "validation",
		Action:   "pageは0以上、sizeは1〜100の範囲で指定してください。",
	}
}

// NewInvalidRatingError は評価値エラーを生成する。
func NewInvalidRatingError(rating float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価値です: %g", rating),
		Category: "diary",
		Action:   "評価は0.5から5.0の範囲で、0.5刻みで指定してください。",
	}
}

// NewInvalidViewingDateError は視聴日エラーを生成する。
func NewInvalidViewingDateError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidViewingDate,
		Message:  "視聴日に未来の日付は指定できません。",
		Category: "diary",
		Action:   "今日以前の日付を指定してください。",
	}
}

// NewInvalidProfileError はプロフィール更新のバリデーションエラーを生成する。
func NewInvalidProfileError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProfile,
		Message:  fmt.Sprintf("無効なプロフィールです: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewRecordNotFoundError は視聴記録未検出エラーを生成する。
func NewRecordNotFoundError(recordID string) *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  fmt.Sprintf("指定された視聴記録が見つかりません: %s", recordID),
		Category: "diary",
		Action:   "記録IDを確認してください。",
	}
}

// NewMovieNotFoundError は映画未検出エラーを生成する。
func NewMovieNotFoundError(movieID int64) *APIError {
	return &APIError{
		Code:     ErrCodeMovieNotFound,
		Message:  fmt.Sprintf("指定された映画が見つかりません: %d", movieID),
		Category: "catalog",
		Action:   "映画IDを確認してください。",
	}
}

// NewInvalidQueryError は検索クエリエラーを生成する。
func NewInvalidQueryError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuery,
		Message:  fmt.Sprintf("無効な検索クエリです: %s", reason),
		Category: "validation",
		Action:   "検索キーワードを確認してください。",
	}
}

// NewCatalogUnavailableError は映画カタログAPIの呼び出し失敗エラーを生成する。
func NewCatalogUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeCatalogUnavailable,
		Message:  fmt.Sprintf("映画カタログの取得に失敗しました: %s", reason),
		Category: "catalog",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
