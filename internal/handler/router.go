package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cinelog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー・フォロー
	ProfileService ProfileServiceInterface
	SocialService  SocialServiceInterface
	AccountService AccountServiceInterface

	// フィード・視聴記録
	FeedService  FeedServiceInterface
	DiaryService DiaryServiceInterface

	// ウィッシュリスト
	WishlistService WishlistServiceInterface

	// 映画カタログ
	CatalogService CatalogServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging →
//	SessionMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェアを最上位に適用
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.ProfileService, deps.SocialService, deps.AccountService)
	feedHandler := NewFeedHandler(deps.FeedService)
	recordHandler := NewRecordHandler(deps.DiaryService)
	wishlistHandler := NewWishlistHandler(deps.WishlistService)
	movieHandler := NewMovieHandler(deps.CatalogService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", userHandler.SearchUsers)
			r.Get("/username/{username}", userHandler.GetProfileByUsername)

			// PUT /api/users/me/profile - プロフィール更新（更新系レート制限を追加）
			r.With(mutation).Put("/me/profile", userHandler.UpdateProfile)
			// DELETE /api/users/me - 退会
			r.With(mutation).Delete("/me", userHandler.Withdraw)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetProfile)
				r.Get("/following", userHandler.ListFollowing)
				r.Get("/followers", userHandler.ListFollowers)

				// フォロー・フォロー解除
				r.With(mutation).Post("/follow", userHandler.Follow)
				r.With(mutation).Delete("/follow", userHandler.Unfollow)

				// GET /api/users/{id}/records - 公開範囲に従った視聴記録一覧
				r.Get("/records", feedHandler.GetOwnerRecords)
			})
		})

		// アクティビティフィード
		r.Get("/api/feed", feedHandler.GetFeed)

		// 視聴記録管理
		r.Route("/api/records", func(r chi.Router) {
			r.With(mutation).Post("/", recordHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recordHandler.Get)
				r.With(mutation).Put("/", recordHandler.Update)
				r.With(mutation).Delete("/", recordHandler.Delete)
			})
		})

		// ウィッシュリスト管理
		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.List)
			r.With(mutation).Post("/", wishlistHandler.Add)
			r.With(mutation).Delete("/{movieId}", wishlistHandler.Remove)
		})

		// 映画カタログ
		r.Route("/api/movies", func(r chi.Router) {
			r.Get("/search", movieHandler.Search)
			r.Get("/{id}", movieHandler.GetMovie)
		})
	})

	return r
}
