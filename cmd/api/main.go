package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/auth"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/cache"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/config"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/database"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/logger"
	"github.com/akramasif506/cloudstore3-sub001/internal/core/server"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/repo"
	"github.com/akramasif506/cloudstore3-sub001/internal/service"
	"github.com/akramasif506/cloudstore3-sub001/internal/storage"
	"github.com/akramasif506/cloudstore3-sub001/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	// 协作方配置缺失 → fail closed
	if err := cfg.Validate(); err != nil {
		log.Fatal("config invalid", zap.Error(err))
	}

	// 数据库（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{}, &domain.Listing{}, &domain.Review{},
			&domain.CartItem{}, &domain.Order{}, &domain.OrderItem{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT：身份令牌短期，会话 Cookie 固定 5 天窗口
	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		TTL:        time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		SessionTTL: time.Duration(cfg.JWT.SessionTTLDays) * 24 * time.Hour,
	}

	// redis 可选；没配就直读数据库
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 图片落盘存储
	blobs, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		log.Fatal("blob store init failed", zap.Error(err))
	}

	// 依赖装配
	userRepo := repo.NewUserRepo(db)
	listingRepo := repo.NewListingRepo(db)
	reviewRepo := repo.NewReviewRepo(db)
	orderRepo := repo.NewOrderRepo(db)

	sessions := service.NewSessionManager(jwter, userRepo)
	users := service.NewUserService(userRepo, jwter)
	listings := service.NewListingService(listingRepo, blobs, c)
	reviews := service.NewReviewService(reviewRepo, listingRepo)
	orders := service.NewOrderService(orderRepo, listingRepo)

	// 路由（用户端）
	r := router.NewAPIEngine(router.APIDeps{
		Log: log, DB: db, Cfg: cfg,
		Sessions: sessions, Users: users,
		Listings: listings, Reviews: reviews, Orders: orders,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("marketplace api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("marketplace api start FAILED", zap.Error(err))
		}
	}()
	log.Info("marketplace api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("marketplace api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
