// Package catalog は外部映画カタログAPIとの連携機能を提供する。
// 映画情報の検索・取得と、任意のRedisキャッシュによる応答の再利用を含む。
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/cinelog/internal/model"
)

// posterBaseURL はポスター画像URLの組み立てに使用するベースURL。
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// maxResponseSize はカタログAPI応答の最大サイズ（1MB）。
const maxResponseSize = 1 * 1024 * 1024

// Client は外部映画カタログAPIのクライアント。
// TMDB互換のREST APIを想定し、映画詳細と検索のエンドポイントを使用する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// movieResponse はカタログAPIの映画詳細レスポンス。
type movieResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
	Overview      string `json:"overview"`
	Homepage      string `json:"homepage"`
}

// searchResponse はカタログAPIの検索レスポンス。
type searchResponse struct {
	Page         int             `json:"page"`
	Results      []movieResponse `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// MovieDetail はカタログAPIから取得した映画詳細。
// HomepageはポスターがないときのOG画像フォールバックに使用する。
type MovieDetail struct {
	Movie    model.Movie
	Homepage string
}

// GetMovie は映画IDで映画詳細を取得する。
// 存在しないIDはMovieNotFoundError、API障害はCatalogUnavailableErrorとなる。
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*MovieDetail, error) {
	body, status, err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, model.NewMovieNotFoundError(movieID)
	}
	if status != http.StatusOK {
		c.logger.Error("カタログAPIがエラーステータスを返しました",
			slog.Int("http_status", status),
			slog.Int64("movie_id", movieID),
		)
		return nil, model.NewCatalogUnavailableError(fmt.Sprintf("ステータス %d", status))
	}

	var res movieResponse
	if err := json.Unmarshal(body, &res); err != nil {
		c.logger.Error("カタログAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewCatalogUnavailableError("レスポンスのパースに失敗しました")
	}

	return &MovieDetail{
		Movie:    toMovie(res),
		Homepage: res.Homepage,
	}, nil
}

// SearchResult は映画検索の結果を表す。
type SearchResult struct {
	Movies       []model.Movie
	Page         int
	TotalPages   int
	TotalResults int
}

// SearchMovies はタイトルの部分一致で映画を検索する。
// pageは1始まり（カタログAPIの仕様に合わせる）。
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	body, status, err := c.get(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Error("カタログAPIがエラーステータスを返しました",
			slog.Int("http_status", status),
			slog.String("query", query),
		)
		return nil, model.NewCatalogUnavailableError(fmt.Sprintf("ステータス %d", status))
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		c.logger.Error("カタログAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewCatalogUnavailableError("レスポンスのパースに失敗しました")
	}

	movies := make([]model.Movie, 0, len(res.Results))
	for _, r := range res.Results {
		movies = append(movies, toMovie(r))
	}

	return &SearchResult{
		Movies:       movies,
		Page:         res.Page,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResults,
	}, nil
}

// get はカタログAPIにGETリクエストを送信し、ボディとステータスを返す。
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, model.NewCatalogUnavailableError("エンドポイントURLのパースに失敗しました")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", "ja-JP")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, 0, model.NewCatalogUnavailableError("リクエストの作成に失敗しました")
	}
	req.Header.Set("User-Agent", "Cinelog/1.0 Movie Diary")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("カタログAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("path", path),
		)
		return nil, 0, model.NewCatalogUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, 0, model.NewCatalogUnavailableError("レスポンスの読み取りに失敗しました")
	}

	return body, resp.StatusCode, nil
}

// toMovie はAPIレスポンスをドメインモデルに変換する。
// poster_pathは相対パスで返るため、画像配信ベースURLと結合する。
func toMovie(r movieResponse) model.Movie {
	posterURL := ""
	if r.PosterPath != "" {
		posterURL = posterBaseURL + r.PosterPath
	}
	return model.Movie{
		ID:            r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		PosterURL:     posterURL,
		ReleaseDate:   r.ReleaseDate,
		Overview:      r.Overview,
	}
}
