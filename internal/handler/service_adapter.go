package handler

import (
	"github.com/hitoshi/cinelog/internal/activity"
	"github.com/hitoshi/cinelog/internal/auth"
	"github.com/hitoshi/cinelog/internal/catalog"
	"github.com/hitoshi/cinelog/internal/diary"
	"github.com/hitoshi/cinelog/internal/profile"
	"github.com/hitoshi/cinelog/internal/social"
	"github.com/hitoshi/cinelog/internal/user"
	"github.com/hitoshi/cinelog/internal/wishlist"
)

// 各サービスがハンドラーのインターフェースを満たすことをコンパイル時に確認する。
var (
	_ AuthServiceInterface     = (*auth.Service)(nil)
	_ ProfileServiceInterface  = (*profile.Assembler)(nil)
	_ SocialServiceInterface   = (*social.Service)(nil)
	_ AccountServiceInterface  = (*user.Service)(nil)
	_ FeedServiceInterface     = (*activity.Aggregator)(nil)
	_ DiaryServiceInterface    = (*diary.Service)(nil)
	_ WishlistServiceInterface = (*wishlist.Service)(nil)
	_ CatalogServiceInterface  = (*catalog.Service)(nil)
)
