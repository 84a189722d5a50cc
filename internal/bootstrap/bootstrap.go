// Package bootstrap provides dependency initialization for the Nova Reel API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/novareel-api/internal/awsauth"
	"github.com/maauso/novareel-api/internal/config"
	"github.com/maauso/novareel-api/internal/generator"
	"github.com/maauso/novareel-api/internal/job"
	"github.com/maauso/novareel-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	VideoService *job.Service
	Clients      *awsauth.Clients
	// OutputDir is where downloaded videos are written and served from.
	OutputDir string
}

// NewDependencies creates and initializes all dependencies for the application.
// AWS clients are built lazily, on the first request that needs them.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize credentials and AWS clients
	clients, err := initClients(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := storage.NewS3Storage(cfg.OutputDir, cfg.S3Bucket, func(ctx context.Context) (storage.S3API, error) {
		c, err := clients.S3(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 storage: %w", err)
	}
	logger.Info("S3 storage configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("prefix", cfg.S3Prefix),
		slog.String("output_dir", store.Dir()),
	)

	// Initialize Bedrock generator
	gen := generator.NewBedrock(cfg.S3Bucket, func(ctx context.Context) (generator.BedrockAPI, error) {
		c, err := clients.Bedrock(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, generator.WithModelID(cfg.ModelID))

	// Initialize job repository
	repo := job.NewMemoryRepository()

	svc := job.NewService(
		repo,
		gen,
		store,
		logger,
		job.WithStoragePrefix(cfg.S3Prefix),
		job.WithSubmitOptions(generator.SubmitOptions{
			DurationSeconds: cfg.VideoDurationSec,
			FPS:             cfg.VideoFPS,
			Dimension:       cfg.VideoDimension,
		}),
	)

	return &Dependencies{
		VideoService: svc,
		Clients:      clients,
		OutputDir:    store.Dir(),
	}, nil
}

// initClients creates the STS-backed credential provider and the lazily
// built Bedrock and S3 clients that share it.
func initClients(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*awsauth.Clients, error) {
	stsClient, err := awsauth.NewSTSClient(ctx, awsauth.BaseConfig{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		SessionToken:    cfg.AWSSessionToken,
		STSEndpoint:     cfg.STSEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("create STS client: %w", err)
	}

	provider := awsauth.NewAssumeRoleProvider(stsClient, cfg.RoleARN, awsauth.WithLogger(logger))

	logger.Info("AWS credentials configured",
		slog.String("region", cfg.AWSRegion),
		slog.String("role_arn", cfg.RoleARN),
		slog.Bool("static_base_credentials", cfg.StaticCredentials()),
	)

	return awsauth.NewClients(provider, awsauth.ClientOptions{
		Region:          cfg.AWSRegion,
		BedrockEndpoint: cfg.BedrockEndpoint,
		S3Endpoint:      cfg.S3Endpoint,
		// Custom S3 endpoints (LocalStack, MinIO) need path-style addressing.
		S3UsePathStyle: cfg.S3Endpoint != "",
	}, logger), nil
}
