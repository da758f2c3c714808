package app

import (
	"context"
	"fmt"
	"time"

	"invensys/clock"
	"invensys/config"
	"invensys/db"
	"invensys/documents"
	"invensys/forms"
	"invensys/lifecycle"
	"invensys/session"
	"invensys/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Repo     *db.Repo
	Sessions session.Store
	Blobs    storage.BlobStore
	Docs     *documents.Workflow
	Log      *zap.Logger
	Config   config.Config
}

// Deps are the collaborators Assemble wires into the router.
type Deps struct {
	DB       *gorm.DB
	RDB      *redis.Client
	Repo     *db.Repo
	Sessions session.Store
	Blobs    storage.BlobStore
	Renderer forms.Renderer
}

func MustNew(cfg config.Config, log *zap.Logger) *App {
	a, err := New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	return a
}

// New connects Postgres and Redis, resolves the status vocabulary and picks
// the blob backend. Any failure here must stop the process.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- DB: Postgres ---
	conn, err := db.ConnectDB(cfg.DB, cfg.StrictAllocation, log)
	if err != nil {
		return nil, err
	}
	if err := db.SeedStatuses(ctx, conn); err != nil {
		return nil, err
	}
	vocab, err := db.LoadVocabulary(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("status vocabulary: %w", err)
	}
	repo := db.NewRepo(conn, vocab, lifecycle.PolicyFor(cfg.StrictAllocation), clock.Real(), log)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- Blob storage ---
	blobs, err := newBlobStore(ctx, cfg.Blob, log)
	if err != nil {
		return nil, err
	}

	if err := BootstrapAdmin(ctx, cfg, repo, log); err != nil {
		return nil, err
	}

	return Assemble(cfg, log, Deps{
		DB:       conn,
		RDB:      rdb,
		Repo:     repo,
		Sessions: session.NewAppSessionStore(rdb, cfg.SessionTTL),
		Blobs:    blobs,
		Renderer: forms.NewPDFRenderer(),
	}), nil
}

// Assemble builds the router around already constructed dependencies.
func Assemble(cfg config.Config, log *zap.Logger, d Deps) *App {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg)

	docs := documents.New(d.Repo, d.Blobs, d.Renderer, d.Repo.Clock, log, documents.Options{
		Timeout:    cfg.DocumentTimeout,
		PresignTTL: cfg.PresignTTL,
		OrgName:    cfg.OrgName,
	})
	return &App{
		Router:   r,
		DB:       d.DB,
		RDB:      d.RDB,
		Repo:     d.Repo,
		Sessions: d.Sessions,
		Blobs:    d.Blobs,
		Docs:     docs,
		Log:      log,
		Config:   cfg,
	}
}

func newBlobStore(ctx context.Context, cfg config.BlobConfig, log *zap.Logger) (storage.BlobStore, error) {
	if cfg.Backend == "memory" {
		log.Warn("using in-memory blob store, documents are lost on restart")
		return storage.NewMemStore(clock.Real()), nil
	}
	s3, err := storage.NewS3Store(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("blob bucket %s: %w", cfg.Bucket, err)
	}
	return s3, nil
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
