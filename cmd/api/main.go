package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/orders"
	"storefront/internal/shutdown"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "storefront-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// Price fields must reach clients as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	pool, err := db.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer:         cfg.JWTIssuer,
		AccessSecret:   cfg.JWTAccessSecret,
		RefreshSecret:  cfg.JWTRefreshSecret,
		AccessTTLMin:   cfg.AccessTokenTTLMin,
		RefreshTTLDays: cfg.RefreshTokenTTLDays,
	})

	authHandler := auth.NewHandler(auth.Dependencies{
		JWT:     jwtMgr,
		Users:   auth.NewUserRepo(pool),
		Refresh: auth.NewRefreshRepo(pool),
		Log:     log,
	})
	catalogHandler := catalog.NewHandler(catalog.NewRepo(pool), log)
	cartHandler := cart.NewHandler(cart.NewRepo(pool), log)
	orderHandler := orders.NewHandler(orders.NewRepo(pool), log)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Public catalog
	api.GET("/products", catalogHandler.List)
	api.GET("/products/:id", catalogHandler.Get)

	// Everything touching a cart or order resolves the user from the token.
	protected := api.Group("/")
	protected.Use(auth.Middleware(jwtMgr))
	{
		protected.GET("/me", authHandler.Me)

		protected.GET("/cart", cartHandler.GetMyCart)
		protected.POST("/cart/items", cartHandler.AddItem)
		protected.DELETE("/cart/items/:id", cartHandler.RemoveItem)

		protected.POST("/orders", orderHandler.Place)
		protected.GET("/orders", orderHandler.ListMine)
		protected.GET("/orders/:id", orderHandler.Get)
	}

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("stopped")
}
