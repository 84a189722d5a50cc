package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maauso/novareel-api/internal/generator"
	"github.com/maauso/novareel-api/internal/job/id"
	"github.com/maauso/novareel-api/internal/storage"
)

// Static errors returned or logged by Service.
var (
	// ErrEmptyPrompt is returned when Submit is called with a blank prompt.
	ErrEmptyPrompt = errors.New("job: prompt is empty")
	// ErrSubmission is returned when the generation service rejects a submission.
	ErrSubmission = errors.New("job: submission failed")
	// ErrUpstream is returned when the generation service cannot be polled.
	ErrUpstream = errors.New("job: upstream status check failed")
	// ErrArtifactMissing marks a job whose completed output has no video file.
	ErrArtifactMissing = errors.New("job: video artifact not found")
	// ErrDownload marks a job whose video could not be downloaded.
	ErrDownload = errors.New("job: video download failed")
)

// Details recorded on jobs. These are shown to API callers.
const (
	DetailGenerationFailed = "Video generation failed."
	DetailArtifactMissing  = "Video file was not found in the S3 output."
	DetailDownloadFailed   = "Failed to download the generated video."
	DetailCompleted        = "Video generation completed."
)

// Defaults for Service options.
const (
	DefaultStoragePrefix  = "bedrock-temp"
	DefaultVideoExtension = ".mp4"
	DefaultVideoURLPrefix = "/videos"
)

// TranslateStatus maps a remote status onto the local state machine.
// Unrecognized values map to StatusPending.
func TranslateStatus(remote generator.RemoteStatus) Status {
	switch remote {
	case generator.RemoteStarting, generator.RemoteInProgress, generator.RemoteInProgressCompact:
		return StatusInProgress
	case generator.RemoteCompleted:
		return StatusCompleted
	case generator.RemoteFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

// Service drives jobs from submission to a downloaded video.
// It coordinates the generation service, the object store holding the
// output, and the job repository.
type Service struct {
	repo      Repository
	generator generator.Generator
	storage   storage.Storage
	logger    *slog.Logger

	storagePrefix  string
	submitOpts     generator.SubmitOptions
	videoExt       string
	videoURLPrefix string
	newID          func() string

	locks keyedMutex
}

// ServiceOption configures optional Service parameters.
type ServiceOption func(*Service)

// WithStoragePrefix sets the object store prefix job output is written under.
// Leading and trailing slashes are removed.
func WithStoragePrefix(prefix string) ServiceOption {
	return func(s *Service) {
		s.storagePrefix = strings.Trim(prefix, "/")
	}
}

// WithSubmitOptions sets the generation parameters sent with every job.
// OutputPrefix and ClientToken are always set per job.
func WithSubmitOptions(opts generator.SubmitOptions) ServiceOption {
	return func(s *Service) {
		s.submitOpts = opts
	}
}

// WithVideoExtension sets the extension used to find and name the video.
func WithVideoExtension(ext string) ServiceOption {
	return func(s *Service) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.videoExt = strings.ToLower(ext)
	}
}

// WithVideoURLPrefix sets the URL path downloaded videos are served under.
func WithVideoURLPrefix(prefix string) ServiceOption {
	return func(s *Service) {
		s.videoURLPrefix = strings.TrimRight(prefix, "/")
	}
}

// WithIDGenerator overrides how job IDs are generated.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a new Service.
func NewService(
	repo Repository,
	gen generator.Generator,
	store storage.Storage,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		repo:           repo,
		generator:      gen,
		storage:        store,
		logger:         logger,
		storagePrefix:  DefaultStoragePrefix,
		submitOpts:     generator.DefaultSubmitOptions(),
		videoExt:       DefaultVideoExtension,
		videoURLPrefix: DefaultVideoURLPrefix,
		newID:          id.Generate,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit starts a generation for prompt and stores a pending job.
// If the generation service rejects the request no job is stored.
func (s *Service) Submit(ctx context.Context, prompt string) (*Job, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	jobID := s.newID()
	prefix := s.prefixFor(jobID)

	opts := s.submitOpts
	opts.OutputPrefix = prefix
	opts.ClientToken = jobID

	arn, err := s.generator.Submit(ctx, prompt, opts)
	if err != nil {
		s.logger.Error("failed to start video generation",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	j := New(jobID, arn, prefix, prompt)
	if err := s.repo.Create(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.logger.Info("video generation started",
		slog.String("job_id", jobID),
		slog.String("storage_prefix", prefix),
		slog.Int("prompt_chars", len([]rune(prompt))),
	)

	return j.Clone(), nil
}

// GetStatus returns the current state of a job, polling the generation
// service if the job is not yet terminal. Terminal jobs are returned from
// the repository without any remote call.
//
// Polls of the same job are serialized, so completion handling runs at
// most once per job.
func (s *Service) GetStatus(ctx context.Context, jobID string) (*Job, error) {
	j, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.IsTerminal() {
		return j, nil
	}

	unlock := s.locks.Lock(jobID)
	defer unlock()

	// Another poll may have finished the job while we waited.
	j, err = s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.IsTerminal() {
		return j, nil
	}

	result, err := s.generator.Poll(ctx, j.InvocationARN)
	if err != nil {
		s.logger.Warn("failed to poll video generation",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	switch TranslateStatus(result.Status) {
	case StatusInProgress:
		return s.repo.Update(ctx, jobID, func(j *Job) error {
			return j.Start()
		})
	case StatusFailed:
		detail := strings.TrimSpace(result.FailureMessage)
		if detail == "" {
			detail = DetailGenerationFailed
		}
		s.logger.Warn("video generation failed",
			slog.String("job_id", jobID),
			slog.String("detail", detail),
		)
		return s.fail(ctx, jobID, detail)
	case StatusCompleted:
		return s.complete(ctx, j)
	default:
		// Unknown remote states leave the job where it is. A job that
		// already reported progress does not move back to pending.
		s.logger.Debug("unrecognized remote status",
			slog.String("job_id", jobID),
			slog.String("remote_status", string(result.Status)),
		)
		return j, nil
	}
}

// List returns snapshots of all jobs, oldest first.
func (s *Service) List(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// complete retrieves the finished video, marks the job completed and
// removes the remote output. The caller must hold the job's lock.
func (s *Service) complete(ctx context.Context, j *Job) (*Job, error) {
	logger := s.logger.With(
		slog.String("job_id", j.ID),
		slog.String("storage_prefix", j.StoragePrefix),
	)

	objects, err := s.storage.ListObjects(ctx, j.StoragePrefix)
	if err != nil {
		logger.Error("failed to list generated output",
			slog.String("error", fmt.Errorf("%w: %w", ErrArtifactMissing, err).Error()),
		)
		return s.fail(ctx, j.ID, DetailArtifactMissing)
	}

	key, ok := s.findVideo(objects)
	if !ok {
		logger.Error("generated output has no video file",
			slog.String("error", ErrArtifactMissing.Error()),
			slog.Int("objects", len(objects)),
		)
		return s.fail(ctx, j.ID, DetailArtifactMissing)
	}

	name := j.ID + s.videoExt
	localPath, err := s.storage.Download(ctx, key, name)
	if err != nil {
		logger.Error("failed to download generated video",
			slog.String("key", key),
			slog.String("error", fmt.Errorf("%w: %w", ErrDownload, err).Error()),
		)
		return s.fail(ctx, j.ID, DetailDownloadFailed)
	}

	videoURL := s.videoURLPrefix + "/" + name
	updated, err := s.repo.Update(ctx, j.ID, func(j *Job) error {
		return j.Complete(localPath, videoURL, DetailCompleted)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("video generation completed",
		slog.String("local_path", localPath),
		slog.String("video_url", videoURL),
	)

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	if err := s.storage.DeleteObjects(ctx, keys); err != nil {
		logger.Warn("failed to clean up generated output",
			slog.Int("objects", len(keys)),
			slog.String("error", err.Error()),
		)
	}

	return updated, nil
}

func (s *Service) fail(ctx context.Context, jobID, detail string) (*Job, error) {
	return s.repo.Update(ctx, jobID, func(j *Job) error {
		return j.Fail(detail)
	})
}

// findVideo returns the first key ending in the video extension, ignoring case.
func (s *Service) findVideo(objects []storage.Object) (string, bool) {
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), s.videoExt) {
			return obj.Key, true
		}
	}
	return "", false
}

func (s *Service) prefixFor(jobID string) string {
	if s.storagePrefix == "" {
		return jobID
	}
	return s.storagePrefix + "/" + jobID
}
