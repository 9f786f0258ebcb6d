// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は感想・自己紹介などのユーザー入力テキストを
// サニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーで全HTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// 視聴記録の感想・プロフィールの自己紹介の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力文字列から全HTMLタグを除去したプレーンテキストを返す。
	// scriptタグ・イベント属性を含むあらゆるマークアップが除去される。
	// 前後の空白はトリムされる。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 感想・自己紹介はプレーンテキストとして扱うため、許可タグを一切持たない
// StrictPolicyを使用する。許可リストが空なので、scriptやiframeだけでなく
// 装飾タグも含めて全タグが除去される。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力文字列から全HTMLタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
