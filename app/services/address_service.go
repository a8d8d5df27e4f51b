package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cn-address-resolver/app/config"
	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/helpers/utils"
	"github.com/cn-address-resolver/internal/metrics"
	"github.com/cn-address-resolver/internal/resolver"
	"github.com/cn-address-resolver/internal/table"
	"go.uber.org/zap"
)

var (
	// ErrJobNotFound job không tồn tại hoặc đã hết hạn
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotFinished job chưa chạy xong nên chưa có kết quả
	ErrJobNotFinished = errors.New("job not finished")
	// ErrTooManyAddresses vượt quá batch.max_addresses
	ErrTooManyAddresses = errors.New("too many addresses")
)

// JobStatus trạng thái của job
type JobStatus string

// JobStatus constants
const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// JobInfo ảnh chụp trạng thái job, an toàn để trả ra ngoài
type JobInfo struct {
	JobID      string           `json:"job_id"`
	Status     JobStatus        `json:"status"`
	Progress   float64          `json:"progress"`
	Processed  int              `json:"processed"`
	Total      int              `json:"total"`
	Options    resolver.Options `json:"options"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

type job struct {
	info    JobInfo
	results []models.AddressRecord
}

// AddressService service resolve địa chỉ: từng dòng, batch, job nền và bảng
type AddressService struct {
	executor     *resolver.Executor
	cache        ICacheService
	logger       *zap.Logger
	maxAddresses int
	maxBodyBytes int64
	jobTTL       time.Duration
	startTime    time.Time

	mu   sync.RWMutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

// NewAddressService tạo mới AddressService. cache có thể nil.
func NewAddressService(executor *resolver.Executor, cache ICacheService, cfg config.BatchConfig, logger *zap.Logger) *AddressService {
	return &AddressService{
		executor:     executor,
		cache:        cache,
		logger:       logger,
		maxAddresses: cfg.MaxAddresses,
		maxBodyBytes: cfg.MaxBodyBytes,
		jobTTL:       cfg.JobTTL,
		startTime:    time.Now(),
		jobs:         make(map[string]*job),
	}
}

// DefaultOptions tùy chọn resolve mặc định theo cấu hình
func (as *AddressService) DefaultOptions() resolver.Options {
	return as.executor.Resolver().Options()
}

// GazetteerVersion phiên bản gazetteer đang dùng
func (as *AddressService) GazetteerVersion() string {
	return as.executor.Resolver().Gazetteer().Version()
}

// MaxBodyBytes giới hạn kích thước body request, 0 là không giới hạn
func (as *AddressService) MaxBodyBytes() int64 { return as.maxBodyBytes }

// GetStartTime thời điểm service khởi động
func (as *AddressService) GetStartTime() time.Time { return as.startTime }

// Cache cache kết quả (có thể nil)
func (as *AddressService) Cache() ICacheService { return as.cache }

// ResolveOne resolve một địa chỉ, dùng cache nếu có. Trả về cacheHit = true khi lấy từ cache.
func (as *AddressService) ResolveOne(ctx context.Context, raw string, opts resolver.Options) (models.AddressRecord, bool, error) {
	defer metrics.ObserveSince("single", time.Now())

	version := as.GazetteerVersion()
	key := cacheKey(version, opts, raw)
	if as.cache != nil {
		cached, found, err := as.cache.Get(ctx, key)
		if err != nil {
			as.logger.Warn("Lỗi đọc cache, resolve trực tiếp", zap.Error(err))
		} else if found {
			metrics.CacheHitsTotal.Inc()
			return *cached, true, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	if err := ctx.Err(); err != nil {
		return models.AddressRecord{}, false, err
	}
	record := as.executor.Resolver().WithOptions(opts).Resolve(raw)
	countOutcome(record)
	as.logger.Debug("Resolved address", zap.String("raw", raw), zap.String("adcode", record.Adcode))

	if as.cache != nil {
		if err := as.cache.Set(ctx, key, models.NewAddressCache(key, record, version)); err != nil {
			as.logger.Warn("Lỗi ghi cache", zap.Error(err))
		}
	}
	return record, false, nil
}

// Transform resolve một dãy địa chỉ song song, giữ nguyên thứ tự
func (as *AddressService) Transform(ctx context.Context, addresses []string, opts resolver.Options) ([]models.AddressRecord, error) {
	if err := as.checkLimit(len(addresses)); err != nil {
		return nil, err
	}
	defer metrics.ObserveSince("batch", time.Now())

	records, err := as.executor.WithOptions(opts).Transform(ctx, addresses)
	if err != nil {
		return nil, err
	}
	for i := range records {
		countOutcome(records[i])
	}
	return records, nil
}

// TransformTable thêm các cột kết quả resolve vào bảng
func (as *AddressService) TransformTable(ctx context.Context, input any, column string, positionSensitive bool) (*table.Frame, error) {
	frame, err := table.AsFrame(input)
	if err != nil {
		return nil, err
	}
	if err := as.checkLimit(frame.Len()); err != nil {
		return nil, err
	}
	defer metrics.ObserveSince("table", time.Now())

	out, err := table.TransformColumn(ctx, as.executor, frame, column, positionSensitive)
	if err != nil {
		return nil, err
	}
	metrics.TableRowsTotal.Add(float64(out.Len()))
	return out, nil
}

// SubmitJob tạo job resolve chạy nền và trả về trạng thái ban đầu
func (as *AddressService) SubmitJob(addresses []string, opts resolver.Options) (JobInfo, error) {
	if err := as.checkLimit(len(addresses)); err != nil {
		return JobInfo{}, err
	}
	as.pruneJobs()

	now := time.Now()
	j := &job{info: JobInfo{
		JobID:     utils.GenerateUUID(),
		Status:    JobStatusPending,
		Total:     len(addresses),
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}}

	as.mu.Lock()
	as.jobs[j.info.JobID] = j
	info := j.info
	as.mu.Unlock()

	input := append([]string(nil), addresses...)
	as.wg.Add(1)
	go func() {
		defer as.wg.Done()
		as.runJob(context.Background(), j, input)
	}()

	return info, nil
}

// Wait chờ mọi job nền kết thúc
func (as *AddressService) Wait() { as.wg.Wait() }

func (as *AddressService) runJob(ctx context.Context, j *job, addresses []string) {
	start := time.Now()
	as.update(j, func(info *JobInfo) { info.Status = JobStatusRunning })
	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	as.logger.Info("Batch job started", zap.String("job_id", j.info.JobID), zap.Int("total_addresses", len(addresses)))

	progress := func(n int) {
		as.update(j, func(info *JobInfo) { info.Processed += n })
	}
	records, err := as.executor.WithOptions(j.info.Options).TransformWithProgress(ctx, addresses, progress)

	as.mu.Lock()
	finished := time.Now()
	j.info.UpdatedAt = finished
	j.info.FinishedAt = &finished
	if err != nil {
		j.info.Status = JobStatusFailed
		j.info.Error = err.Error()
	} else {
		j.info.Status = JobStatusDone
		j.info.Processed = len(records)
		j.results = records
	}
	status := j.info.Status
	as.mu.Unlock()

	for i := range records {
		countOutcome(records[i])
	}
	metrics.JobsTotal.WithLabelValues(string(status)).Inc()
	metrics.ObserveSince("job", start)

	as.logger.Info("Batch job finished",
		zap.String("job_id", j.info.JobID),
		zap.String("status", string(status)),
		zap.Int("total_addresses", len(addresses)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
}

func (as *AddressService) update(j *job, fn func(info *JobInfo)) {
	as.mu.Lock()
	defer as.mu.Unlock()
	fn(&j.info)
	j.info.UpdatedAt = time.Now()
}

// GetJobStatus lấy trạng thái job
func (as *AddressService) GetJobStatus(jobID string) (JobInfo, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	j, ok := as.jobs[jobID]
	if !ok {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	info := j.info
	if info.Total > 0 {
		info.Progress = float64(info.Processed) / float64(info.Total)
	} else if info.Status == JobStatusDone {
		info.Progress = 1
	}
	return info, nil
}

// GetJobResults lấy kết quả job đã hoàn thành
func (as *AddressService) GetJobResults(jobID string) ([]models.AddressRecord, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	j, ok := as.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	switch j.info.Status {
	case JobStatusDone:
		return j.results, nil
	case JobStatusFailed:
		return nil, fmt.Errorf("job %s failed: %s", jobID, j.info.Error)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrJobNotFinished, jobID, j.info.Status)
	}
}

// ListJobs liệt kê job, mới nhất trước
func (as *AddressService) ListJobs() []JobInfo {
	as.mu.RLock()
	out := make([]JobInfo, 0, len(as.jobs))
	for _, j := range as.jobs {
		out = append(out, j.info)
	}
	as.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// JobCounts số job theo trạng thái
func (as *AddressService) JobCounts() map[JobStatus]int {
	as.mu.RLock()
	defer as.mu.RUnlock()

	counts := make(map[JobStatus]int, 4)
	for _, j := range as.jobs {
		counts[j.info.Status]++
	}
	return counts
}

// pruneJobs xóa job đã kết thúc quá jobTTL
func (as *AddressService) pruneJobs() {
	if as.jobTTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-as.jobTTL)

	as.mu.Lock()
	defer as.mu.Unlock()
	for id, j := range as.jobs {
		if j.info.FinishedAt != nil && j.info.FinishedAt.Before(cutoff) {
			delete(as.jobs, id)
		}
	}
}

func (as *AddressService) checkLimit(n int) error {
	if as.maxAddresses > 0 && n > as.maxAddresses {
		return fmt.Errorf("%w: %d > %d", ErrTooManyAddresses, n, as.maxAddresses)
	}
	return nil
}

// cacheKey fingerprint của phiên bản gazetteer, tùy chọn và chuỗi địa chỉ
func cacheKey(version string, opts resolver.Options, raw string) string {
	return utils.Fingerprint(version,
		strconv.FormatBool(opts.PositionSensitive),
		strconv.FormatBool(opts.FillParents),
		raw)
}

// countOutcome đếm record theo cấp sâu nhất đã match
func countOutcome(record models.AddressRecord) {
	outcome := "none"
	for _, level := range models.Levels {
		if record.Name(level) != "" {
			outcome = level.String()
		}
	}
	metrics.AddressesResolvedTotal.WithLabelValues(outcome).Inc()
}
