package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"portfolio-backend/pkg/logger"
)

type SchedulerConfig struct {
	WorkerCount int
	QueueSize   int
}

type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Job is a unit of background work. Name identifies one job in logs and for
// ScheduleUnique. Kind groups jobs for metrics and must come from a small fixed set.
type Job struct {
	Name        string
	Kind        string
	Run         func(ctx context.Context) error
	Delay       time.Duration
	Timeout     time.Duration
	RetryPolicy RetryPolicy
}

var (
	ErrSchedulerNotStarted   = errors.New("scheduler not started")
	ErrJobAlreadyScheduled   = errors.New("job already scheduled")
	ErrQueueFull             = errors.New("job queue is full")
	errSchedulerShuttingDown = errors.New("scheduler is shutting down")
)

const defaultJobKind = "other"

func (j Job) metricKind() string {
	if j.Kind == "" {
		return defaultJobKind
	}
	return j.Kind
}

// Enqueuer is the part of the scheduler that services depend on.
type Enqueuer interface {
	Schedule(job Job) error
	ScheduleUnique(job Job) error
}

// Scheduler runs jobs on a fixed pool of workers. Schedule never blocks:
// when the queue is full the job is rejected with ErrQueueFull.
type Scheduler struct {
	config SchedulerConfig

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	queue chan scheduledJob

	// gate is held for reading while a job is counted and queued, and for
	// writing while the context is canceled, so no job enters jobWG after
	// Shutdown starts waiting.
	gate sync.RWMutex

	workerWG sync.WaitGroup
	jobWG    sync.WaitGroup

	activeJobs map[string]struct{}
}

type scheduledJob struct {
	job     Job
	attempt int
	unique  bool
}

var (
	metricsOnce        sync.Once
	jobRunsTotal       *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
	jobLastSuccess     *prometheus.GaugeVec
	jobsDropped        *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Total background job executions",
		}, []string{"kind", "status"})

		jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"})

		jobLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "portfolio",
			Subsystem: "background",
			Name:      "job_last_success_timestamp",
			Help:      "Unix timestamp of the last successful background job execution",
		}, []string{"kind"})

		jobsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "background",
			Name:      "jobs_dropped_total",
			Help:      "Jobs rejected because the queue was full or shutting down",
		}, []string{"kind"})
	})
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	initMetrics()

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}

	return &Scheduler{
		config:     cfg,
		queue:      make(chan scheduledJob, cfg.QueueSize),
		activeJobs: make(map[string]struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for i := 0; i < s.config.WorkerCount; i++ {
		s.workerWG.Add(1)
		go s.worker()
	}
}

func (s *Scheduler) worker() {
	defer s.workerWG.Done()

	for {
		select {
		case <-s.ctx.Done():
			s.drain()
			return
		case job := <-s.queue:
			s.execute(job)
		}
	}
}

// drain finishes jobs queued before cancellation. They run against a canceled
// context and are reported as canceled.
func (s *Scheduler) drain() {
	for {
		select {
		case job := <-s.queue:
			s.execute(job)
		default:
			return
		}
	}
}

// execute releases the jobWG slot taken by offer.
func (s *Scheduler) execute(job scheduledJob) {
	defer s.jobWG.Done()

	err := s.runJob(job)
	if err != nil && s.shouldRetry(job, err) {
		retry := job
		retry.attempt++
		retry.job.Delay = retry.job.RetryPolicy.Backoff
		if enqueueErr := s.submit(retry); enqueueErr == nil {
			return
		}
	}

	s.finishJob(job, err)
}

func (s *Scheduler) runJob(job scheduledJob) (runErr error) {
	start := time.Now()
	status := "success"

	ctx := s.ctx
	if job.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.job.Timeout)
		defer cancel()
	}

	defer func() {
		kind := job.job.metricKind()
		jobDurationSeconds.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		jobRunsTotal.WithLabelValues(kind, status).Inc()
		if status == "success" {
			jobLastSuccess.WithLabelValues(kind).Set(float64(time.Now().Unix()))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic: %v", r)
			status = "failure"
			logger.Error(runErr, "Background job panicked", map[string]interface{}{"job": job.job.Name, "attempt": job.attempt})
		}
	}()

	select {
	case <-ctx.Done():
		status = "canceled"
		return ctx.Err()
	default:
	}

	runErr = job.job.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			status = "canceled"
		} else {
			status = "failure"
		}
		logger.Warn("Background job attempt failed", map[string]interface{}{"job": job.job.Name, "attempt": job.attempt, "error": runErr.Error()})
	}
	return runErr
}

func (s *Scheduler) shouldRetry(job scheduledJob, err error) bool {
	if job.job.RetryPolicy.MaxRetries <= 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return job.attempt <= job.job.RetryPolicy.MaxRetries
}

// submit hands a job to the queue without blocking. Delayed jobs wait on a
// timer outside the worker pool so a backoff never pins a worker.
func (s *Scheduler) submit(job scheduledJob) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if s.ctx.Err() != nil {
		return errSchedulerShuttingDown
	}
	if job.job.Delay <= 0 {
		return s.offer(job)
	}

	delay := job.job.Delay
	job.job.Delay = 0

	s.jobWG.Add(1)
	timer := time.NewTimer(delay)
	go func() {
		defer s.jobWG.Done()
		select {
		case <-timer.C:
			if err := s.submit(job); err != nil {
				s.finishJob(job, err)
			}
		case <-s.ctx.Done():
			timer.Stop()
			s.finishJob(job, context.Canceled)
		}
	}()
	return nil
}

// offer counts the job in jobWG before it becomes visible to a worker.
// The caller holds gate for reading.
func (s *Scheduler) offer(job scheduledJob) error {
	s.jobWG.Add(1)
	select {
	case s.queue <- job:
		return nil
	default:
		s.jobWG.Done()
		jobsDropped.WithLabelValues(job.job.metricKind()).Inc()
		return ErrQueueFull
	}
}

func (s *Scheduler) finishJob(job scheduledJob, runErr error) {
	if job.unique {
		s.mu.Lock()
		delete(s.activeJobs, job.job.Name)
		s.mu.Unlock()
	}

	fields := map[string]interface{}{"job": job.job.Name, "kind": job.job.metricKind(), "attempt": job.attempt}

	switch {
	case runErr == nil:
		logger.Debug("Background job completed", fields)
	case errors.Is(runErr, context.Canceled):
		logger.Warn("Background job canceled", fields)
	default:
		logger.Error(runErr, "Background job gave up", fields)
	}
}

func (s *Scheduler) Schedule(job Job) error {
	return s.schedule(job, false)
}

// ScheduleUnique rejects a job whose name is already queued or running.
func (s *Scheduler) ScheduleUnique(job Job) error {
	return s.schedule(job, true)
}

func (s *Scheduler) schedule(job Job, unique bool) error {
	if job.Name == "" {
		return errors.New("job name is required")
	}
	if job.Run == nil {
		return errors.New("job runner is required")
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrSchedulerNotStarted
	}
	if unique {
		if _, exists := s.activeJobs[job.Name]; exists {
			s.mu.Unlock()
			return ErrJobAlreadyScheduled
		}
		s.activeJobs[job.Name] = struct{}{}
	}
	s.mu.Unlock()

	if err := s.submit(scheduledJob{job: job, attempt: 1, unique: unique}); err != nil {
		if unique {
			s.mu.Lock()
			delete(s.activeJobs, job.Name)
			s.mu.Unlock()
		}
		return err
	}

	return nil
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	s.gate.Lock()
	cancel()
	s.gate.Unlock()

	done := make(chan struct{})
	go func() {
		s.workerWG.Wait()
		s.jobWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveJobCount reports unique jobs that are queued, waiting on a retry or running.
func (s *Scheduler) ActiveJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeJobs)
}
