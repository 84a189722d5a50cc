// Package awsauth provides the credentials and memoized AWS service
// clients used to talk to Bedrock and S3. Credentials come from an STS
// AssumeRole exchange that is cached until shortly before it expires.
package awsauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/singleflight"
)

// ErrCredentials is returned when temporary credentials cannot be obtained.
var ErrCredentials = errors.New("awsauth: unable to obtain credentials")

// Defaults for the role exchange.
const (
	DefaultSessionName  = "nova-reel-local-app"
	DefaultDuration     = time.Hour
	DefaultExpiryMargin = 5 * time.Minute
)

// STSAPI is the subset of the STS client used by AssumeRoleProvider.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// AssumeRoleProvider implements aws.CredentialsProvider by assuming a role
// with long-lived base credentials. Results are cached until they are
// within the expiry margin; concurrent refreshes share one STS call.
type AssumeRoleProvider struct {
	client      STSAPI
	roleARN     string
	sessionName string
	duration    time.Duration
	margin      time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu     sync.RWMutex
	cached aws.Credentials
	group  singleflight.Group
}

// ProviderOption configures an AssumeRoleProvider.
type ProviderOption func(*AssumeRoleProvider)

// WithSessionName sets the role session name.
func WithSessionName(name string) ProviderOption {
	return func(p *AssumeRoleProvider) {
		p.sessionName = name
	}
}

// WithDuration sets the requested credential lifetime.
func WithDuration(d time.Duration) ProviderOption {
	return func(p *AssumeRoleProvider) {
		p.duration = d
	}
}

// WithExpiryMargin sets how long before expiry credentials are refreshed.
func WithExpiryMargin(d time.Duration) ProviderOption {
	return func(p *AssumeRoleProvider) {
		p.margin = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *AssumeRoleProvider) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *AssumeRoleProvider) {
		p.logger = logger
	}
}

// NewAssumeRoleProvider creates a provider that assumes roleARN through client.
func NewAssumeRoleProvider(client STSAPI, roleARN string, opts ...ProviderOption) *AssumeRoleProvider {
	p := &AssumeRoleProvider{
		client:      client,
		roleARN:     roleARN,
		sessionName: DefaultSessionName,
		duration:    DefaultDuration,
		margin:      DefaultExpiryMargin,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Retrieve returns cached credentials, refreshing them if they expire
// within the margin. A failed refresh is not cached.
func (p *AssumeRoleProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	if creds, ok := p.fresh(); ok {
		return creds, nil
	}

	v, err, _ := p.group.Do(p.roleARN, func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		if creds, ok := p.fresh(); ok {
			return creds, nil
		}
		return p.assume(ctx)
	})
	if err != nil {
		return aws.Credentials{}, err
	}
	return v.(aws.Credentials), nil
}

func (p *AssumeRoleProvider) fresh() (aws.Credentials, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.cached.HasKeys() {
		return aws.Credentials{}, false
	}
	if p.cached.Expires.Sub(p.now()) <= p.margin {
		return aws.Credentials{}, false
	}
	return p.cached, true
}

func (p *AssumeRoleProvider) assume(ctx context.Context) (aws.Credentials, error) {
	out, err := p.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(p.roleARN),
		RoleSessionName: aws.String(p.sessionName),
		DurationSeconds: aws.Int32(int32(p.duration / time.Second)),
	})
	if err != nil {
		attrs := []any{
			slog.String("role_arn", p.roleARN),
			slog.String("error", err.Error()),
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs, slog.String("code", apiErr.ErrorCode()))
		}
		p.logger.Error("unable to assume IAM role for Bedrock access", attrs...)
		return aws.Credentials{}, fmt.Errorf("%w: assume role %s: %w", ErrCredentials, p.roleARN, err)
	}
	if out.Credentials == nil {
		return aws.Credentials{}, fmt.Errorf("%w: assume role %s: empty credentials", ErrCredentials, p.roleARN)
	}

	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          "AssumeRoleProvider",
		CanExpire:       true,
		Expires:         aws.ToTime(out.Credentials.Expiration).UTC(),
	}

	p.mu.Lock()
	p.cached = creds
	p.mu.Unlock()

	p.logger.Debug("assumed IAM role",
		slog.String("role_arn", p.roleARN),
		slog.Time("expires", creds.Expires),
	)
	return creds, nil
}

// Compile-time check that AssumeRoleProvider implements aws.CredentialsProvider.
var _ aws.CredentialsProvider = (*AssumeRoleProvider)(nil)
