package awsauth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Retry settings shared by the Bedrock and S3 clients.
const (
	retryMaxAttempts = 5
	retryMode        = aws.RetryModeAdaptive
)

// BaseConfig holds the long-lived settings used to reach STS.
type BaseConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// STSEndpoint overrides the STS endpoint when set.
	STSEndpoint string
}

// NewSTSClient creates an STS client from base. Static keys are used when
// both AccessKeyID and SecretAccessKey are set; otherwise the SDK default
// credential chain applies.
func NewSTSClient(ctx context.Context, base BaseConfig) (*sts.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(base.Region),
	}
	if base.AccessKeyID != "" && base.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(base.AccessKeyID, base.SecretAccessKey, base.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		if base.STSEndpoint != "" {
			o.BaseEndpoint = aws.String(base.STSEndpoint)
		}
	}), nil
}

// ClientOptions configures a Clients instance.
type ClientOptions struct {
	Region           string
	BedrockEndpoint  string
	S3Endpoint       string
	S3UsePathStyle   bool
	RetryMaxAttempts int
}

// Clients builds the Bedrock runtime and S3 clients on first use and then
// reuses them. Both share one aws.Config backed by the credentials provider.
type Clients struct {
	provider aws.CredentialsProvider
	opts     ClientOptions
	logger   *slog.Logger

	mu      sync.Mutex
	cfg     *aws.Config
	bedrock *bedrockruntime.Client
	s3      *s3.Client
}

// NewClients creates a Clients that signs requests with provider.
func NewClients(provider aws.CredentialsProvider, opts ClientOptions, logger *slog.Logger) *Clients {
	if opts.RetryMaxAttempts <= 0 {
		opts.RetryMaxAttempts = retryMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Clients{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Bedrock returns the memoized Bedrock runtime client.
func (c *Clients) Bedrock(ctx context.Context) (*bedrockruntime.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bedrock != nil {
		return c.bedrock, nil
	}

	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}

	c.bedrock = bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if c.opts.BedrockEndpoint != "" {
			o.BaseEndpoint = aws.String(c.opts.BedrockEndpoint)
		}
	})
	c.logger.Debug("bedrock runtime client created", slog.String("region", cfg.Region))
	return c.bedrock, nil
}

// S3 returns the memoized S3 client.
func (c *Clients) S3(ctx context.Context) (*s3.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s3 != nil {
		return c.s3, nil
	}

	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}

	c.s3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.opts.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.opts.S3Endpoint)
		}
		o.UsePathStyle = c.opts.S3UsePathStyle
	})
	c.logger.Debug("s3 client created", slog.String("region", cfg.Region))
	return c.s3, nil
}

// config must be called with c.mu held. A failed build is not memoized.
func (c *Clients) config(ctx context.Context) (aws.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}

	// Fail fast when the role cannot be assumed.
	if _, err := c.provider.Retrieve(ctx); err != nil {
		return aws.Config{}, err
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.opts.Region),
		config.WithRetryMode(retryMode),
		config.WithRetryMaxAttempts(c.opts.RetryMaxAttempts),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	// The provider already caches; wrapping it in aws.CredentialsCache
	// would add a second expiry window.
	cfg.Credentials = c.provider

	c.cfg = &cfg
	return cfg, nil
}
