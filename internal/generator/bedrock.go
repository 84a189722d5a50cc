package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// DefaultModelID is the Nova Reel model used when none is configured.
const DefaultModelID = "amazon.nova-reel-v1:0"

// maxSeed is the largest seed Nova Reel accepts.
const maxSeed = 2147483646

// BedrockAPI is the subset of the Bedrock Runtime client used by the adapter.
type BedrockAPI interface {
	StartAsyncInvoke(ctx context.Context, params *bedrockruntime.StartAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.StartAsyncInvokeOutput, error)
	GetAsyncInvoke(ctx context.Context, params *bedrockruntime.GetAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.GetAsyncInvokeOutput, error)
}

// BedrockClientFunc returns the Bedrock Runtime client to use for a call.
// Implementations are expected to build the client once and reuse it.
type BedrockClientFunc func(ctx context.Context) (BedrockAPI, error)

// Bedrock implements Generator on top of Bedrock async invocations.
type Bedrock struct {
	client  BedrockClientFunc
	modelID string
	bucket  string
	seed    func() int
}

// BedrockOption configures a Bedrock adapter.
type BedrockOption func(*Bedrock)

// WithModelID overrides the model ID.
func WithModelID(id string) BedrockOption {
	return func(b *Bedrock) {
		if id != "" {
			b.modelID = id
		}
	}
}

// WithSeedFunc overrides the random seed source.
func WithSeedFunc(fn func() int) BedrockOption {
	return func(b *Bedrock) {
		b.seed = fn
	}
}

// NewBedrock creates a Bedrock generator that writes output to bucket.
func NewBedrock(bucket string, client BedrockClientFunc, opts ...BedrockOption) *Bedrock {
	b := &Bedrock{
		client:  client,
		modelID: DefaultModelID,
		bucket:  bucket,
		seed:    func() int { return rand.IntN(maxSeed + 1) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit starts a Nova Reel TEXT_VIDEO invocation.
func (b *Bedrock) Submit(ctx context.Context, prompt string, opts SubmitOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrPromptRequired
	}

	defaults := DefaultSubmitOptions()
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = defaults.DurationSeconds
	}
	if opts.FPS <= 0 {
		opts.FPS = defaults.FPS
	}
	if opts.Dimension == "" {
		opts.Dimension = defaults.Dimension
	}

	client, err := b.client(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	input := &bedrockruntime.StartAsyncInvokeInput{
		ModelId:    aws.String(b.modelID),
		ModelInput: document.NewLazyDocument(b.modelInput(prompt, opts)),
		OutputDataConfig: &types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig{
			Value: types.AsyncInvokeS3OutputDataConfig{
				S3Uri: aws.String(s3URI(b.bucket, opts.OutputPrefix)),
			},
		},
	}
	if opts.ClientToken != "" {
		input.ClientRequestToken = aws.String(opts.ClientToken)
	}

	out, err := client.StartAsyncInvoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	arn := aws.ToString(out.InvocationArn)
	if arn == "" {
		return "", fmt.Errorf("%w: %w", ErrSubmit, ErrNoInvocationARN)
	}
	return arn, nil
}

// Poll fetches the current status of an invocation.
func (b *Bedrock) Poll(ctx context.Context, invocationARN string) (PollResult, error) {
	if invocationARN == "" {
		return PollResult{}, ErrInvocationARNRequired
	}

	client, err := b.client(ctx)
	if err != nil {
		return PollResult{}, fmt.Errorf("%w: %w", ErrPoll, err)
	}

	out, err := client.GetAsyncInvoke(ctx, &bedrockruntime.GetAsyncInvokeInput{
		InvocationArn: aws.String(invocationARN),
	})
	if err != nil {
		return PollResult{}, fmt.Errorf("%w: %w", ErrPoll, err)
	}

	return PollResult{
		Status:         NormalizeStatus(string(out.Status)),
		FailureMessage: aws.ToString(out.FailureMessage),
	}, nil
}

// modelInput builds the Nova Reel request body.
func (b *Bedrock) modelInput(prompt string, opts SubmitOptions) map[string]any {
	return map[string]any{
		"taskType": "TEXT_VIDEO",
		"textToVideoParams": map[string]any{
			"text": prompt,
		},
		"videoGenerationConfig": map[string]any{
			"durationSeconds": opts.DurationSeconds,
			"fps":             opts.FPS,
			"dimension":       opts.Dimension,
			"seed":            b.seed(),
		},
	}
}

func s3URI(bucket, prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("s3://%s/", bucket)
	}
	return fmt.Sprintf("s3://%s/%s/", bucket, prefix)
}

// Compile-time check that Bedrock implements Generator.
var _ Generator = (*Bedrock)(nil)
