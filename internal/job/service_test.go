package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maauso/novareel-api/internal/generator"
	"github.com/maauso/novareel-api/internal/storage"
)

// fakeGenerator returns scripted poll results.
type fakeGenerator struct {
	mu         sync.Mutex
	submitErr  error
	pollErr    error
	poll       generator.PollResult
	submits    []generator.SubmitOptions
	prompts    []string
	pollCalls  int
	arnCounter int
}

func (f *fakeGenerator) Submit(_ context.Context, prompt string, opts generator.SubmitOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.submits = append(f.submits, opts)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.arnCounter++
	return fmt.Sprintf("arn:aws:bedrock:us-east-1:123456789012:async-invoke/inv%d", f.arnCounter), nil
}

func (f *fakeGenerator) Poll(_ context.Context, _ string) (generator.PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls++
	if f.pollErr != nil {
		return generator.PollResult{}, f.pollErr
	}
	return f.poll, nil
}

func (f *fakeGenerator) setPoll(status generator.RemoteStatus, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poll = generator.PollResult{Status: status, FailureMessage: msg}
	f.pollErr = nil
}

func (f *fakeGenerator) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pollCalls
}

// fakeStorage is an in-memory object store. Downloads record the target
// path without touching the filesystem.
type fakeStorage struct {
	mu            sync.Mutex
	dir           string
	objects       map[string]string
	listErr       error
	downloadErr   error
	deleteErr     error
	downloadDelay time.Duration
	downloads     []string
	deleteCalls   int
}

func newFakeStorage(dir string) *fakeStorage {
	return &fakeStorage{dir: dir, objects: make(map[string]string)}
}

func (f *fakeStorage) ListObjects(_ context.Context, prefix string) ([]storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.Object
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.Object{Key: k, Size: int64(len(v))})
		}
	}
	// S3 lists keys in lexical order.
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeStorage) Download(_ context.Context, key, name string) (string, error) {
	if f.downloadDelay > 0 {
		time.Sleep(f.downloadDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, key)
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	if _, ok := f.objects[key]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return filepath.Join(f.dir, name), nil
}

func (f *fakeStorage) DeleteObjects(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, k := range keys {
		delete(f.objects, k)
	}
	return nil
}

func (f *fakeStorage) put(key, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
}

func (f *fakeStorage) counts() (downloads, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads), f.deleteCalls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceFixture struct {
	svc   *Service
	repo  *MemoryRepository
	gen   *fakeGenerator
	store *fakeStorage
}

func newServiceFixture(t *testing.T, opts ...ServiceOption) *serviceFixture {
	t.Helper()
	repo := NewMemoryRepository()
	gen := &fakeGenerator{}
	store := newFakeStorage(t.TempDir())
	return &serviceFixture{
		svc:   NewService(repo, gen, store, discardLogger(), opts...),
		repo:  repo,
		gen:   gen,
		store: store,
	}
}

func (f *serviceFixture) submit(t *testing.T) *Job {
	t.Helper()
	job, err := f.svc.Submit(context.Background(), "a cat on a skateboard")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return job
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &fakeGenerator{}, newFakeStorage(""), nil)

	if svc.logger == nil {
		t.Error("expected default logger")
	}
	if svc.storagePrefix != DefaultStoragePrefix {
		t.Errorf("expected prefix %s, got %s", DefaultStoragePrefix, svc.storagePrefix)
	}
	if svc.videoExt != DefaultVideoExtension {
		t.Errorf("expected extension %s, got %s", DefaultVideoExtension, svc.videoExt)
	}
	if svc.submitOpts != generator.DefaultSubmitOptions() {
		t.Errorf("unexpected submit options %+v", svc.submitOpts)
	}
}

func TestNewService_Options(t *testing.T) {
	opts := generator.SubmitOptions{DurationSeconds: 6, FPS: 24, Dimension: "1280x720"}
	svc := NewService(NewMemoryRepository(), &fakeGenerator{}, newFakeStorage(""), nil,
		WithStoragePrefix("/custom/prefix/"),
		WithSubmitOptions(opts),
		WithVideoExtension("MP4"),
		WithVideoURLPrefix("/media/"),
		WithIDGenerator(func() string { return "fixed" }),
	)

	if svc.storagePrefix != "custom/prefix" {
		t.Errorf("expected trimmed prefix, got %s", svc.storagePrefix)
	}
	if svc.videoExt != ".mp4" {
		t.Errorf("expected .mp4, got %s", svc.videoExt)
	}
	if svc.videoURLPrefix != "/media" {
		t.Errorf("expected /media, got %s", svc.videoURLPrefix)
	}
	if svc.newID() != "fixed" {
		t.Error("expected custom ID generator")
	}
}

func TestTranslateStatus(t *testing.T) {
	tests := []struct {
		remote generator.RemoteStatus
		want   Status
	}{
		{generator.RemoteStarting, StatusInProgress},
		{generator.RemoteInProgress, StatusInProgress},
		{generator.RemoteInProgressCompact, StatusInProgress},
		{generator.RemoteCompleted, StatusCompleted},
		{generator.RemoteFailed, StatusFailed},
		{generator.NormalizeStatus("InProgress"), StatusInProgress},
		{generator.NormalizeStatus("Completed"), StatusCompleted},
		{generator.NormalizeStatus("Failed"), StatusFailed},
		{"", StatusPending},
		{"queued", StatusPending},
		{"cancelled", StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.remote), func(t *testing.T) {
			if got := TranslateStatus(tt.remote); got != tt.want {
				t.Errorf("TranslateStatus(%q) = %s, want %s", tt.remote, got, tt.want)
			}
		})
	}
}

func TestService_Submit(t *testing.T) {
	f := newServiceFixture(t)

	job := f.submit(t)

	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("expected UUID job ID, got %q", job.ID)
	}
	if job.Status != StatusPending {
		t.Errorf("expected status %s, got %s", StatusPending, job.Status)
	}
	if job.StoragePrefix != "bedrock-temp/"+job.ID {
		t.Errorf("unexpected storage prefix %s", job.StoragePrefix)
	}

	if len(f.gen.submits) != 1 {
		t.Fatalf("expected 1 submit, got %d", len(f.gen.submits))
	}
	opts := f.gen.submits[0]
	if opts.OutputPrefix != job.StoragePrefix {
		t.Errorf("expected output prefix %s, got %s", job.StoragePrefix, opts.OutputPrefix)
	}
	if opts.ClientToken != job.ID {
		t.Errorf("expected client token %s, got %s", job.ID, opts.ClientToken)
	}
	if opts.DurationSeconds != 6 || opts.FPS != 24 || opts.Dimension != "1280x720" {
		t.Errorf("unexpected generation parameters %+v", opts)
	}

	saved, err := f.repo.FindByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("job should be stored: %v", err)
	}
	if saved.InvocationARN == "" {
		t.Error("expected invocation ARN to be stored")
	}
}

func TestService_Submit_UniqueIDs(t *testing.T) {
	f := newServiceFixture(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		job := f.submit(t)
		if seen[job.ID] {
			t.Fatalf("duplicate job ID %s", job.ID)
		}
		seen[job.ID] = true
	}
}

func TestService_Submit_EmptyPrefix(t *testing.T) {
	f := newServiceFixture(t, WithStoragePrefix("/"))

	job := f.submit(t)
	if job.StoragePrefix != job.ID {
		t.Errorf("expected prefix to equal job ID, got %s", job.StoragePrefix)
	}
}

func TestService_Submit_TrimsPrompt(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Submit(context.Background(), "  a cat  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.gen.prompts[0] != "a cat" {
		t.Errorf("expected trimmed prompt, got %q", f.gen.prompts[0])
	}
}

func TestService_Submit_EmptyPrompt(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Submit(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("expected ErrEmptyPrompt, got %v", err)
	}
	if len(f.gen.submits) != 0 {
		t.Error("generator should not be called for an empty prompt")
	}
}

func TestService_Submit_GatewayFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.gen.submitErr = generator.ErrSubmit

	_, err := f.svc.Submit(context.Background(), "a cat")
	if !errors.Is(err, ErrSubmission) {
		t.Errorf("expected ErrSubmission, got %v", err)
	}
	if !errors.Is(err, generator.ErrSubmit) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}

	jobs, _ := f.repo.List(context.Background())
	if len(jobs) != 0 {
		t.Errorf("no job should be stored after a failed submission, got %d", len(jobs))
	}
}

func TestService_GetStatus_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetStatus(context.Background(), "nonexistent")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if f.gen.polls() != 0 {
		t.Error("generator should not be polled for an unknown job")
	}
}

func TestService_GetStatus_InProgress(t *testing.T) {
	for _, remote := range []generator.RemoteStatus{
		generator.RemoteStarting,
		generator.RemoteInProgress,
		generator.RemoteInProgressCompact,
	} {
		t.Run(string(remote), func(t *testing.T) {
			f := newServiceFixture(t)
			job := f.submit(t)
			f.gen.setPoll(remote, "")

			got, err := f.svc.GetStatus(context.Background(), job.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != StatusInProgress {
				t.Errorf("expected status %s, got %s", StatusInProgress, got.Status)
			}
		})
	}
}

func TestService_GetStatus_UnknownStatus(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	ctx := context.Background()

	f.gen.setPoll("queued", "")
	got, err := f.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("expected status %s, got %s", StatusPending, got.Status)
	}

	// A job that reported progress does not move back to pending.
	f.gen.setPoll(generator.RemoteInProgress, "")
	_, _ = f.svc.GetStatus(ctx, job.ID)
	f.gen.setPoll("something-new", "")
	got, err = f.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected status %s, got %s", StatusInProgress, got.Status)
	}
}

func TestService_GetStatus_RemoteFailed(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantDetail string
	}{
		{"with message", "content policy violation", "content policy violation"},
		{"without message", "", DetailGenerationFailed},
		{"blank message", "   ", DetailGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			job := f.submit(t)
			f.gen.setPoll(generator.RemoteFailed, tt.message)

			got, err := f.svc.GetStatus(context.Background(), job.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != StatusFailed {
				t.Errorf("expected status %s, got %s", StatusFailed, got.Status)
			}
			if got.Detail != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, got.Detail)
			}
			if got.VideoURL != "" {
				t.Error("failed job must not have a video URL")
			}
		})
	}
}

func TestService_GetStatus_PollError(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	ctx := context.Background()

	f.gen.setPoll(generator.RemoteInProgress, "")
	_, _ = f.svc.GetStatus(ctx, job.ID)

	f.gen.mu.Lock()
	f.gen.pollErr = generator.ErrPoll
	f.gen.mu.Unlock()

	_, err := f.svc.GetStatus(ctx, job.ID)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}

	saved, _ := f.repo.FindByID(ctx, job.ID)
	if saved.Status != StatusInProgress {
		t.Errorf("poll failure must leave job unchanged, got %s", saved.Status)
	}

	// The next poll succeeds once the condition clears.
	f.gen.setPoll(generator.RemoteInProgress, "")
	if _, err := f.svc.GetStatus(ctx, job.ID); err != nil {
		t.Errorf("unexpected error after recovery: %v", err)
	}
}

func TestService_GetStatus_Completed(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	ctx := context.Background()

	f.store.put(job.StoragePrefix+"/abc123/manifest.json", "{}")
	f.store.put(job.StoragePrefix+"/abc123/output.MP4", "video")
	f.store.put("bedrock-temp/other-job/output.mp4", "other")
	f.gen.setPoll(generator.RemoteCompleted, "")

	got, err := f.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != StatusCompleted {
		t.Fatalf("expected status %s, got %s", StatusCompleted, got.Status)
	}
	if got.VideoURL != "/videos/"+job.ID+".mp4" {
		t.Errorf("unexpected video URL %s", got.VideoURL)
	}
	if got.LocalPath != filepath.Join(f.store.dir, job.ID+".mp4") {
		t.Errorf("unexpected local path %s", got.LocalPath)
	}
	if got.Detail != DetailCompleted {
		t.Errorf("unexpected detail %q", got.Detail)
	}
	if f.store.downloads[0] != job.StoragePrefix+"/abc123/output.MP4" {
		t.Errorf("downloaded wrong key %s", f.store.downloads[0])
	}

	remaining, _ := f.store.ListObjects(ctx, job.StoragePrefix)
	if len(remaining) != 0 {
		t.Errorf("expected job prefix to be cleaned up, %d objects remain", len(remaining))
	}
	other, _ := f.store.ListObjects(ctx, "bedrock-temp/other-job")
	if len(other) != 1 {
		t.Error("cleanup must not touch other jobs")
	}
}

func TestService_GetStatus_ArtifactMissing(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	f.store.put(job.StoragePrefix+"/abc123/manifest.json", "{}")
	f.gen.setPoll(generator.RemoteCompleted, "")

	got, err := f.svc.GetStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, got.Status)
	}
	if got.Detail != DetailArtifactMissing {
		t.Errorf("unexpected detail %q", got.Detail)
	}
	if got.VideoURL != "" || got.LocalPath != "" {
		t.Error("video must not be set when the artifact is missing")
	}
	downloads, deletes := f.store.counts()
	if downloads != 0 || deletes != 0 {
		t.Errorf("expected no download or cleanup, got %d downloads %d deletes", downloads, deletes)
	}
}

func TestService_GetStatus_ListError(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	f.store.listErr = errors.New("access denied")
	f.gen.setPoll(generator.RemoteCompleted, "")

	got, err := f.svc.GetStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusFailed || got.Detail != DetailArtifactMissing {
		t.Errorf("expected failed job with %q, got %s %q", DetailArtifactMissing, got.Status, got.Detail)
	}
}

func TestService_GetStatus_DownloadError(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	f.store.put(job.StoragePrefix+"/abc123/output.mp4", "video")
	f.store.downloadErr = errors.New("connection reset")
	f.gen.setPoll(generator.RemoteCompleted, "")

	got, err := f.svc.GetStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, got.Status)
	}
	if got.Detail != DetailDownloadFailed {
		t.Errorf("unexpected detail %q", got.Detail)
	}
	_, deletes := f.store.counts()
	if deletes != 0 {
		t.Error("cleanup must not run after a failed download")
	}
}

func TestService_GetStatus_CleanupErrorKeepsCompleted(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	f.store.put(job.StoragePrefix+"/abc123/output.mp4", "video")
	f.store.deleteErr = storage.ErrDeleteIncomplete
	f.gen.setPoll(generator.RemoteCompleted, "")

	got, err := f.svc.GetStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("cleanup failure must not surface, got %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, got.Status)
	}
}

func TestService_GetStatus_TerminalIsCached(t *testing.T) {
	tests := []struct {
		name   string
		remote generator.RemoteStatus
		setup  func(f *serviceFixture, job *Job)
	}{
		{
			name:   "completed",
			remote: generator.RemoteCompleted,
			setup: func(f *serviceFixture, job *Job) {
				f.store.put(job.StoragePrefix+"/x/output.mp4", "video")
			},
		},
		{
			name:   "failed",
			remote: generator.RemoteFailed,
			setup:  func(*serviceFixture, *Job) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			job := f.submit(t)
			ctx := context.Background()
			tt.setup(f, job)
			f.gen.setPoll(tt.remote, "")

			first, err := f.svc.GetStatus(ctx, job.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			pollsAfterFirst := f.gen.polls()

			// Even if the remote now reports something else, the record is final.
			f.gen.setPoll(generator.RemoteInProgress, "")
			for i := 0; i < 3; i++ {
				again, err := f.svc.GetStatus(ctx, job.ID)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if *again != *first {
					t.Errorf("terminal record changed: %+v != %+v", again, first)
				}
			}
			if f.gen.polls() != pollsAfterFirst {
				t.Errorf("terminal job was polled again: %d polls", f.gen.polls())
			}
		})
	}
}

func TestService_GetStatus_ConcurrentCompletionRunsOnce(t *testing.T) {
	f := newServiceFixture(t)
	job := f.submit(t)
	f.store.put(job.StoragePrefix+"/abc123/output.mp4", "video")
	f.store.downloadDelay = 20 * time.Millisecond
	f.gen.setPoll(generator.RemoteCompleted, "")

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*Job, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.GetStatus(context.Background(), job.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if results[i].Status != StatusCompleted {
			t.Errorf("caller %d: expected completed, got %s", i, results[i].Status)
		}
	}

	downloads, deletes := f.store.counts()
	if downloads != 1 {
		t.Errorf("expected exactly 1 download, got %d", downloads)
	}
	if deletes != 1 {
		t.Errorf("expected exactly 1 cleanup, got %d", deletes)
	}
	if f.gen.polls() != 1 {
		t.Errorf("expected exactly 1 remote poll, got %d", f.gen.polls())
	}
}

func TestService_GetStatus_DifferentJobsDoNotBlock(t *testing.T) {
	f := newServiceFixture(t)
	slow := f.submit(t)
	fast := f.submit(t)
	f.store.put(slow.StoragePrefix+"/x/output.mp4", "video")
	f.store.put(fast.StoragePrefix+"/x/output.mp4", "video")
	f.store.downloadDelay = 200 * time.Millisecond
	f.gen.setPoll(generator.RemoteCompleted, "")

	start := time.Now()
	var wg sync.WaitGroup
	for _, id := range []string{slow.ID, fast.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = f.svc.GetStatus(context.Background(), id)
		}(id)
	}
	wg.Wait()

	// Serialized completions would take at least two download delays.
	if elapsed := time.Since(start); elapsed >= 400*time.Millisecond {
		t.Errorf("different jobs were serialized: took %v", elapsed)
	}
}

func TestService_ExampleScenario(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	job, err := f.svc.Submit(ctx, "a cat on a skateboard")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.Status != StatusPending {
		t.Fatalf("expected pending, got %s", job.Status)
	}

	f.gen.setPoll(generator.NormalizeStatus("InProgress"), "")
	got, err := f.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}

	f.store.put(job.StoragePrefix+"/out.mp4", "video")
	f.gen.setPoll(generator.NormalizeStatus("Completed"), "")
	got, err = f.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.VideoURL != "/videos/"+job.ID+".mp4" {
		t.Errorf("unexpected video URL %s", got.VideoURL)
	}

	remaining, _ := f.store.ListObjects(ctx, job.StoragePrefix)
	if len(remaining) != 0 {
		t.Error("expected remote prefix to be empty after completion")
	}
}

func TestService_List(t *testing.T) {
	f := newServiceFixture(t)
	f.submit(t)
	f.submit(t)

	jobs, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}
}
