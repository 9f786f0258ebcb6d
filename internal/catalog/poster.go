// Package catalog は外部映画カタログAPIとの連携機能を提供する。
package catalog

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxPosterPageSize はポスター探索で読み込むHTMLの最大サイズ（2MB）。
const maxPosterPageSize = 2 * 1024 * 1024

// posterScrapeTimeout はポスター探索のタイムアウト。
const posterScrapeTimeout = 5 * time.Second

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// PosterScraperService はポスター画像URLの探索インターフェース。
// カタログにポスターがない映画について、公式サイトのOGP画像を代替として使う。
type PosterScraperService interface {
	// ScrapePosterURL は指定ページのog:imageメタタグから画像URLを取得する。
	// 見つからない場合・取得失敗時は空文字列を返す（エラーは返さない）。
	ScrapePosterURL(ctx context.Context, pageURL string) string
}

// PosterScraper はPosterScraperServiceの実装。
type PosterScraper struct {
	ssrfGuard SSRFValidator
}

// NewPosterScraper はPosterScraperの新しいインスタンスを生成する。
func NewPosterScraper(ssrfGuard SSRFValidator) *PosterScraper {
	return &PosterScraper{
		ssrfGuard: ssrfGuard,
	}
}

// ScrapePosterURL は指定ページのog:imageメタタグから画像URLを取得する。
// 取得失敗はポスターなしとして扱うため、エラーは返さずログに残す。
func (p *PosterScraper) ScrapePosterURL(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	// SSRF検証
	if p.ssrfGuard != nil {
		if err := p.ssrfGuard.ValidateURL(pageURL); err != nil {
			slog.Warn("ポスター探索: SSRFブロック", "url", pageURL, "error", err)
			return ""
		}
	}

	client := p.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Warn("ポスター探索: リクエスト作成失敗", "url", pageURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", "Cinelog/1.0 Movie Diary")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("ポスター探索: HTTPリクエスト失敗", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("ポスター探索: HTTPステータス異常", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterPageSize))
	if err != nil {
		slog.Warn("ポスター探索: レスポンス読み取り失敗", "url", pageURL, "error", err)
		return ""
	}

	imageURL := parseOGImage(body, pageURL)
	if imageURL == "" {
		return ""
	}

	// 取得した画像URL自体も検証する
	if p.ssrfGuard != nil {
		if err := p.ssrfGuard.ValidateURL(imageURL); err != nil {
			slog.Warn("ポスター探索: 画像URLのSSRFブロック", "url", imageURL, "error", err)
			return ""
		}
	}

	return imageURL
}

// parseOGImage はHTMLのheadタグからog:imageメタタグの画像URLを解析する。
// 相対URLはbaseURLを基準に絶対URLに解決される。
func parseOGImage(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "body" {
				// OGPメタタグはheadにしか現れない
				return ""
			}

			if tagName != "meta" || !hasAttr {
				continue
			}

			// meta要素の属性を解析
			var property, content string
			for {
				key, val, more := tokenizer.TagAttr()
				k := strings.ToLower(string(key))
				v := string(val)
				switch k {
				case "property", "name":
					property = strings.ToLower(v)
				case "content":
					content = v
				}
				if !more {
					break
				}
			}

			if property != "og:image" || content == "" {
				continue
			}

			// 相対URLを絶対URLに解決
			ref, err := url.Parse(content)
			if err != nil {
				continue
			}
			return baseU.ResolveReference(ref).String()
		}
	}
}

// getHTTPClient はHTTPクライアントを取得する。
// SSRFGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (p *PosterScraper) getHTTPClient() *http.Client {
	if p.ssrfGuard != nil {
		return p.ssrfGuard.NewSafeClient(posterScrapeTimeout)
	}
	return &http.Client{Timeout: posterScrapeTimeout}
}

// compile-time interface check
var _ PosterScraperService = (*PosterScraper)(nil)
