// Package model はドメインモデルを定義する。
package model

// Movie は外部カタログから取得した映画情報を表す。
// 自前のマスタは持たず、カタログAPIの応答を必要な範囲だけ写し取る。
type Movie struct {
	ID            int64
	Title         string
	OriginalTitle string
	PosterURL     string
	ReleaseDate   string // YYYY-MM-DD。未公開・不明の場合は空文字列
	Overview      string
}
