package main

import (
	"log"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	accountadapters "account_backend/internal/feature/account/adapters"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	accountusecase "account_backend/internal/feature/account/usecase"
	infradb "account_backend/internal/platform/db"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/mail"
	"account_backend/internal/platform/ratelimit"
	infraredis "account_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis（任意。ない場合はインメモリのレートリミットで動作する）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Falling back to in-memory rate limiting.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 署名シークレットチェック（開発中の注意喚起）
	jwtCfg := jwtmw.LoadConfig()
	if jwtCfg.AccessSecret == "" || jwtCfg.RefreshSecret == "" {
		log.Println("[WARN] ACCESS_TOKEN_SECRET / REFRESH_TOKEN_SECRET is not set. Set strong secrets in production.")
	}
	tokens := jwtmw.NewGenerator(jwtCfg.AccessSecret, jwtCfg.RefreshSecret,
		jwtmw.AccessTokenTTL, jwtmw.RefreshTokenTTL)

	// Mail
	mailer := mail.New(mail.LoadConfig())

	// Repository
	userRepo := accountadapters.NewUserMySQL(db)

	// Usecase
	accountUC := accountusecase.NewAccountUsecase(userRepo, tokens, mailer, os.Getenv("CLIENT_URL"))

	// Handler
	accountH := accounthandler.NewAccountHandler(accountUC)

	// ミドルウェア
	authRequired := jwtmw.AuthRequired(tokens, userRepo)
	authLimit := ratelimit.Middleware(di.NewAuthLimiter(rdb))

	// ルータ生成
	r := router.NewRouter(accountH, authRequired, authLimit)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
