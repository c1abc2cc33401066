package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/jobs"
	"github.com/floodlight/altmon/internal/models"
	"github.com/floodlight/altmon/internal/scanner"
)

type memJobStorage struct {
	mu  sync.Mutex
	job *models.ScanJob
}

func (m *memJobStorage) GetCurrent(ctx context.Context) (*models.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil, interfaces.ErrJobNotFound
	}
	copied := *m.job
	return &copied, nil
}

func (m *memJobStorage) SaveCurrent(ctx context.Context, job *models.ScanJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.job = &copied
	return nil
}

func (m *memJobStorage) ClearCurrent(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = nil
	return nil
}

// current snapshots the stored job for assertions
func (m *memJobStorage) current() *models.ScanJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil
	}
	copied := *m.job
	return &copied
}

type memFindingsStorage struct {
	collections map[string]*models.FindingsCollection
}

func (m *memFindingsStorage) Init(ctx context.Context, jobID string) error {
	m.collections[jobID] = models.NewFindingsCollection(jobID)
	return nil
}

func (m *memFindingsStorage) Get(ctx context.Context, jobID string) (*models.FindingsCollection, error) {
	collection, ok := m.collections[jobID]
	if !ok {
		return nil, interfaces.ErrFindingsNotFound
	}
	return collection, nil
}

func (m *memFindingsStorage) AddMany(ctx context.Context, jobID string, rows []models.Finding) error {
	collection, ok := m.collections[jobID]
	if !ok {
		return interfaces.ErrFindingsNotFound
	}
	collection.Append(rows...)
	return nil
}

type memAssetRepo struct {
	assets map[int64]*models.AssetMetadata
	ids    []int64
}

func (m *memAssetRepo) GetAssetMetadata(ctx context.Context, id int64) (*models.AssetMetadata, error) {
	if meta, ok := m.assets[id]; ok {
		return meta, nil
	}
	return nil, interfaces.ErrAssetNotFound
}

func (m *memAssetRepo) ListImageAssets(ctx context.Context, offset, limit int) ([]int64, int, error) {
	total := len(m.ids)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return m.ids[offset:end], total, nil
}

func (m *memAssetRepo) ResolveAssetIDFromURL(ctx context.Context, url string) (int64, error) {
	return 0, interfaces.ErrAssetNotFound
}

type memContentRepo struct{}

func (m *memContentRepo) ListContentRecords(ctx context.Context, offset, limit int, scope models.ScanScope) ([]*models.ContentRecord, int, error) {
	return nil, 0, nil
}

func newTestCoordinator(assetCount int, mediaBatchSize int) (*jobs.Coordinator, *memJobStorage) {
	logger := arbor.NewLogger()

	assets := &memAssetRepo{assets: make(map[int64]*models.AssetMetadata)}
	for i := 1; i <= assetCount; i++ {
		id := int64(i)
		assets.assets[id] = &models.AssetMetadata{
			ID:       id,
			FileName: fmt.Sprintf("file-%d.jpg", i),
			MimeType: "image/jpeg",
		}
		assets.ids = append(assets.ids, id)
	}

	jobStore := &memJobStorage{}
	findings := &memFindingsStorage{collections: make(map[string]*models.FindingsCollection)}

	eval := scanner.NewAttachmentEvaluator(assets, logger)
	walker := scanner.NewFieldWalker(eval, assets, logger)
	media := scanner.NewMediaScanner(assets, eval, logger)
	content := scanner.NewContentScanner(&memContentRepo{}, walker, logger)

	opts := jobs.DefaultOptions()
	opts.MediaBatchSize = mediaBatchSize

	return jobs.NewCoordinator(jobStore, findings, media, content, opts, logger), jobStore
}

func TestService_ScheduledScanRunsToCompletion(t *testing.T) {
	coordinator, jobStore := newTestCoordinator(10, 5)
	service := NewService(coordinator, models.ScanTypeMedia, 10*time.Millisecond, arbor.NewLogger())

	require.NoError(t, service.Start("@every 1s"))
	defer service.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job := jobStore.current(); job != nil && job.IsTerminal() {
			assert.Equal(t, models.JobStatusCompleted, job.Status)
			assert.Equal(t, 10, job.Progress.Current)
			assert.Equal(t, 10, job.Progress.Total)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("scheduled scan did not complete in time")
}

func TestService_StopReturnsWhileScanInFlight(t *testing.T) {
	// a slow many-batch scan keeps the step loop busy long past the stop
	coordinator, jobStore := newTestCoordinator(500, 5)
	service := NewService(coordinator, models.ScanTypeMedia, 50*time.Millisecond, arbor.NewLogger())

	require.NoError(t, service.Start("@every 1s"))

	deadline := time.Now().Add(5 * time.Second)
	for !service.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduled scan never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		service.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop() did not return while a scheduled scan was in flight")
	}

	// the interrupted job stays resumable: still running with its cursor intact
	job := jobStore.current()
	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusRunning, job.Status)
	assert.Less(t, job.Cursor.Offset, 500)

	deadline = time.Now().Add(2 * time.Second)
	for service.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scan loop did not exit after Stop()")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestService_StartTwiceFails(t *testing.T) {
	coordinator, _ := newTestCoordinator(1, 5)
	service := NewService(coordinator, models.ScanTypeMedia, 10*time.Millisecond, arbor.NewLogger())

	require.NoError(t, service.Start("@every 1h"))
	defer service.Stop()

	assert.Error(t, service.Start("@every 1h"))
}

func TestService_StopWithoutStartIsNoOp(t *testing.T) {
	coordinator, _ := newTestCoordinator(1, 5)
	service := NewService(coordinator, models.ScanTypeMedia, 10*time.Millisecond, arbor.NewLogger())

	service.Stop() // must not panic or block
}
