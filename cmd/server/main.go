package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/config"
	"github.com/businesspro/auth-api/internal/email"
	"github.com/businesspro/auth-api/internal/handlers"
	"github.com/businesspro/auth-api/internal/middleware"
	"github.com/businesspro/auth-api/internal/ratelimit"
	"github.com/businesspro/auth-api/internal/service"
	"github.com/businesspro/auth-api/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	accountStore, otpStore, limiter, err := initStorage(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}

	tokenService, err := service.NewTokenService(&cfg.JWT, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token service")
	}

	authService := service.NewAuthService(
		accountStore,
		otpStore,
		limiter,
		initSender(cfg, logger),
		tokenService,
		cfg.OTP,
		cfg.RateLimit,
		cfg.Email.SendTimeout,
		logger,
	)

	authHandlers := handlers.NewAuthHandlers(authService, logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenService, logger)
	router := setupRouter(authHandlers, authMiddleware, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// initStorage picks the backends: DynamoDB for accounts when a table
// is configured, Redis for OTPs and rate limits when an endpoint is
// configured, process memory otherwise.
func initStorage(cfg *config.Config, logger *logrus.Logger) (store.AccountStore, store.OTPStore, ratelimit.Limiter, error) {
	var accountStore store.AccountStore = store.NewMemoryAccountStore()
	if cfg.DynamoDB.TableName != "" {
		client, err := initDynamoDB(cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		accountStore = store.NewDynamoAccountStore(client, cfg.DynamoDB.TableName, logger)
	}

	var otpStore store.OTPStore = store.NewMemoryOTPStore()
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.Redis.Endpoint != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Endpoint,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		otpStore = store.NewRedisOTPStore(client, logger)
		limiter = ratelimit.NewRedisLimiter(client, logger)
		logger.WithField("endpoint", cfg.Redis.Endpoint).Info("Redis backend initialized")
	}

	return accountStore, otpStore, limiter, nil
}

func initDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Info("DynamoDB client initialized")
	return client, nil
}

func initSender(cfg *config.Config, logger *logrus.Logger) email.Sender {
	if cfg.Email.PostmarkToken != "" {
		return email.NewPostmarkSender(
			cfg.Email.PostmarkToken,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
			email.WithHTTPClient(&http.Client{Timeout: cfg.Email.SendTimeout}),
		)
	}
	logger.Warn("No Postmark token configured, emails will be logged instead of sent")
	return email.NewLogSender(logger)
}

func setupRouter(
	authHandlers *handlers.AuthHandlers,
	authMiddleware *middleware.AuthMiddleware,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", authHandlers.Signup).Methods("POST", "OPTIONS")
	auth.HandleFunc("/signin", authHandlers.Signin).Methods("POST", "OPTIONS")
	auth.HandleFunc("/verify-otp", authHandlers.VerifyOTP).Methods("POST", "OPTIONS")
	auth.HandleFunc("/resend-otp", authHandlers.ResendOTP).Methods("POST", "OPTIONS")
	auth.HandleFunc("/forgot-password", authHandlers.ForgotPassword).Methods("POST", "OPTIONS")
	auth.HandleFunc("/reset-password", authHandlers.ResetPassword).Methods("POST", "OPTIONS")

	protected := auth.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	protected.HandleFunc("/me", authHandlers.Me).Methods("GET")
	protected.HandleFunc("/profile", authHandlers.UpdateProfile).Methods("PUT")

	return router
}
