package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botthef/content-admin/pkg/contentadmin"
	"github.com/botthef/content-admin/pkg/contentadmin/api"
	"github.com/botthef/content-admin/pkg/contentadmin/auth"
	dynamorepo "github.com/botthef/content-admin/pkg/contentadmin/repo/dynamodb"
	memoryrepo "github.com/botthef/content-admin/pkg/contentadmin/repo/memory"
	postgresrepo "github.com/botthef/content-admin/pkg/contentadmin/repo/postgres"
	memorystorage "github.com/botthef/content-admin/pkg/contentadmin/storage/memory"
	s3storage "github.com/botthef/content-admin/pkg/contentadmin/storage/s3"
)

type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENV" env-default:"production"`

	AdminEmail string `env:"ADMIN_EMAIL"`
	AuthSecret string `env:"NEXTAUTH_SECRET"`

	// Repository: "dynamodb" (default), "postgres", or "memory"
	Repository  string `env:"CONTENT_REPOSITORY" env-default:"dynamodb"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Storage: "s3" (default) or "memory"
	Storage string `env:"CONTENT_STORAGE" env-default:"s3"`

	AWS AWSConfig
}

type AWSConfig struct {
	Region           string `env:"AWS_REGION" env-default:"us-west-2"`
	BlogTable        string `env:"DYNAMODB_BLOG_TABLE" env-default:"blog"`
	PlaybookTable    string `env:"DYNAMODB_PLAYBOOK_TABLE" env-default:"playbook"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"` // local only
	S3Bucket         string `env:"S3_BUCKET" env-default:"botthef-content-bucket"`
	S3Endpoint       string `env:"S3_ENDPOINT"` // local only (MinIO)
	AccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey  string `env:"AWS_SECRET_ACCESS_KEY"`
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	if config.AdminEmail == "" || config.AuthSecret == "" {
		slog.Error("ADMIN_EMAIL and NEXTAUTH_SECRET must be configured")
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := newRepository(ctx, config)
	if err != nil {
		slog.Error("Failed to initialize repository", "repository", config.Repository, "err", err)
		os.Exit(1)
	}

	blobStore, err := newBlobStore(config)
	if err != nil {
		slog.Error("Failed to initialize storage", "storage", config.Storage, "err", err)
		os.Exit(1)
	}

	svc, err := contentadmin.New(
		contentadmin.WithRepository(repo),
		contentadmin.WithBlobStore(blobStore),
	)
	if err != nil {
		slog.Error("Failed to create service", "err", err)
		os.Exit(1)
	}

	validator := auth.New([]byte(config.AuthSecret), config.AdminEmail)
	handler := api.NewHandler(svc, validator)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/api", handler.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Server starting", "port", config.Port, "repository", config.Repository, "storage", config.Storage)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}
}

func newRepository(ctx context.Context, config Config) (contentadmin.Repository, error) {
	switch config.Repository {
	case "dynamodb":
		return dynamorepo.New(ctx, dynamorepo.Config{
			Region:          config.AWS.Region,
			BlogTable:       config.AWS.BlogTable,
			PlaybookTable:   config.AWS.PlaybookTable,
			Endpoint:        config.AWS.DynamoDBEndpoint,
			AccessKeyID:     config.AWS.AccessKeyID,
			SecretAccessKey: config.AWS.SecretAccessKey,
		})
	case "postgres":
		pool, err := pgxpool.New(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgresrepo.New(pool), nil
	case "memory":
		return memoryrepo.New(), nil
	default:
		return nil, fmt.Errorf("unsupported repository %q (use dynamodb, postgres, or memory)", config.Repository)
	}
}

func newBlobStore(config Config) (contentadmin.BlobStore, error) {
	switch config.Storage {
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          config.AWS.Region,
			Bucket:          config.AWS.S3Bucket,
			Endpoint:        config.AWS.S3Endpoint,
			UsePathStyle:    config.AWS.S3Endpoint != "",
			AccessKeyID:     config.AWS.AccessKeyID,
			SecretAccessKey: config.AWS.SecretAccessKey,
			PresignDuration: int(contentadmin.DefaultUploadExpiry.Seconds()),
		})
	case "memory":
		return memorystorage.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage %q (use s3 or memory)", config.Storage)
	}
}
