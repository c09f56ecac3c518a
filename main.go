package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/socialdash/config"
	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/routes"
	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

// demoPassword signs in the seeded demo account when BACKEND=database.
const demoPassword = "demo1234"

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync() //nolint:errcheck

	ctx := context.Background()
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	markers := newMarkerStore(cfg, tokenTTL)
	auth, backends := newBackends(ctx, cfg)

	session := store.NewSessionStore(auth, markers, utils.NewJWTIssuer(cfg.JWTSecret, tokenTTL),
		store.WithSessionLogger(utils.Logger.Named("session")))
	ws := store.NewWorkspace(session, backends, utils.Logger.Named("workspace"),
		store.WithContentLogger(utils.Logger.Named("content")))
	ws.Start(ctx)
	go session.Init(ctx)

	r := routes.SetupRouter(cfg, ws)

	utils.Sugar.Infof("Starting server on port %s (graceful), backend=%s marker=%s", cfg.AppPort, cfg.Backend, cfg.MarkerStore)
	if err := utils.GraceServer(":"+cfg.AppPort, r, func() {
		ws.Close()
		session.Close()
	}); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func newMarkerStore(cfg config.AppConfig, ttl time.Duration) store.MarkerStore {
	switch cfg.MarkerStore {
	case "redis":
		return store.NewRedisMarkerStore(utils.NewRedis(cfg), "socialdash:", ttl)
	case "file", "":
		return store.NewFileMarkerStore(cfg.MarkerPath)
	default:
		utils.Sugar.Fatalf("unknown MARKER_STORE %q", cfg.MarkerStore)
		return nil
	}
}

func newBackends(ctx context.Context, cfg config.AppConfig) (store.Authenticator, store.BackendFactory) {
	switch cfg.Backend {
	case "database":
		db := config.InitDatabase(store.Models()...)
		if seeded, err := store.SeedDemoData(ctx, db, demoPassword); err != nil {
			utils.Sugar.Warnf("seed demo data failed: %v", err)
		} else if seeded {
			utils.Sugar.Infof("seeded demo account %s", store.DemoUser().Email)
		}
		var cache *utils.Cache
		if cfg.RedisHost != "" && cfg.FeedCacheSec > 0 {
			cache = utils.NewCache(utils.NewRedis(cfg))
		}
		ttl := time.Duration(cfg.FeedCacheSec) * time.Second
		logger := utils.Logger.Named("backend")
		return store.NewGormAuthenticator(db), func(u models.User) store.Backend {
			return store.NewGormBackend(db, u.ID,
				store.WithFeedCache(cache, ttl),
				store.WithBackendLogger(logger.With(zap.String("user_id", u.ID))))
		}
	case "mock", "":
		latency := mockLatency(cfg)
		failures := store.NeverFail
		if cfg.FailureRate > 0 {
			failures = store.NewFailureRate(cfg.FailureRate, time.Now().UnixNano())
		}
		auth := store.NewMockAuthenticator(store.WithLatency(latency))
		return auth, func(models.User) store.Backend {
			return store.NewMockBackend(store.WithLatency(latency), store.WithFailures(failures))
		}
	default:
		utils.Sugar.Fatalf("unknown BACKEND %q", cfg.Backend)
		return nil, nil
	}
}

func mockLatency(cfg config.AppConfig) store.FixedLatency {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return store.FixedLatency{
		store.OpFetch:    ms(cfg.LatencyFetchMS),
		store.OpCreate:   ms(cfg.LatencyCreateMS),
		store.OpComment:  ms(cfg.LatencyCommentMS),
		store.OpDelete:   ms(cfg.LatencyDeleteMS),
		store.OpShare:    ms(cfg.LatencyShareMS),
		store.OpLogin:    ms(cfg.LatencyLoginMS),
		store.OpRegister: ms(cfg.LatencyRegisterMS),
		store.OpRestore:  ms(cfg.LatencyRestoreMS),
	}
}
