package main

import (
	"context"
	"log"
	"os"

	"fernlink/internal/db"
	"fernlink/internal/middleware"
	"fernlink/internal/router"
	"fernlink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Initialize Database
	db.Init()
	store := db.NewCommentStore(db.DB)

	// 分类词库加载失败必须中止启动：没有分类器整个审核流程都无法工作
	lexiconPath := os.Getenv("CLASSIFIER_LEXICON")
	if lexiconPath == "" {
		lexiconPath = "./data/lexicon.json"
	}
	classifier, err := services.NewLexiconClassifier(lexiconPath)
	if err != nil {
		log.Fatalf("Failed to load classifier lexicon: %v", err)
	}

	// 审核队列 + worker（评论状态的唯一写入方）
	moderation := services.NewModerationService(classifier, store.UpdateStatus, sugar)
	moderation.Start()

	// 自动回复调度器
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	autoreply := services.NewAutoreplyService(store, services.NewLLMService(), moderation, sugar)
	autoreply.Start(ctx)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	cookieStore := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("fernlink_session", cookieStore))

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r, moderation, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("FernLink server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
