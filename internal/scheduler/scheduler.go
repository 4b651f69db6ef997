// Package scheduler registers and runs per-site crawl jobs on cron,
// interval, or one-shot date triggers, tracking each job's running state
// and recent run history.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// recentRunRetention bounds the ring buffer of observed runs kept per job.
const recentRunRetention = 20

// manualIDTimeFormat matches the Python original's manual_crawl_<site>_<timestamp> convention.
const manualIDTimeFormat = "20060102150405"

// JobFunc performs one crawl of site and reports the count newly stored.
// The scheduler has no knowledge of spiders or site configuration beyond
// the name; the caller's JobFunc closes over whatever it needs to look up
// and run the site.
type JobFunc func(ctx context.Context, site string) (int, error)

// job is the scheduler's internal bookkeeping for one registered id.
type job struct {
	record  entity.JobRecord
	stop    func() // cancels the underlying cron entry/timer/ticker
	entryID cron.EntryID // valid only when record.Trigger == entity.TriggerCron
}

// Scheduler registers crawl jobs against a single in-process
// github.com/robfig/cron/v3 controller for cron triggers, plus ad-hoc
// timers for interval and date triggers (cron/v3's default parser has no
// @every/descriptor support, so those two trigger kinds are driven
// directly off the standard library).
type Scheduler struct {
	mu         sync.Mutex
	cronRunner *cron.Cron
	jobFn      JobFunc
	sites      map[string]entity.SiteConfig
	jobs       map[string]*job
	running    map[string]bool
	recent     map[string][]entity.JobRun
	wg         sync.WaitGroup
	started    bool
}

// New builds a Scheduler. sites is the loaded site-configuration map,
// consulted only to validate TriggerManualCrawl's site argument; jobFn is
// the shared crawl routine invoked for every registered job, regardless of
// trigger kind.
func New(jobFn JobFunc, sites map[string]entity.SiteConfig) *Scheduler {
	return &Scheduler{
		cronRunner: cron.New(),
		jobFn:      jobFn,
		sites:      sites,
		jobs:       make(map[string]*job),
		running:    make(map[string]bool),
		recent:     make(map[string][]entity.JobRun),
	}
}

// Start begins firing registered cron triggers. Interval and date triggers
// already run on their own timers regardless of Start.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cronRunner.Start()
	s.started = true
	slog.Info("scheduler: started")
}

// Shutdown stops all triggers from firing again and waits for any jobs
// currently running to finish.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	for _, j := range s.jobs {
		j.stop()
	}
	s.started = false
	s.mu.Unlock()

	cronDone := s.cronRunner.Stop()
	<-cronDone.Done()
	s.wg.Wait()
	slog.Info("scheduler: shut down")
}

// AddJob registers id against trigger/spec, replacing any prior entry with
// the same id. trigger must be one of entity.TriggerCron, TriggerInterval,
// TriggerDate.
//
//   - cron: spec is a 5-field cron expression (minute hour dom month dow).
//   - interval: spec parses with time.ParseDuration (e.g. "15m").
//   - date: spec is an RFC3339 timestamp; a past timestamp fires immediately.
func (s *Scheduler) AddJob(id, site string, trigger entity.TriggerKind, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[id]; ok {
		existing.stop()
		delete(s.jobs, id)
	}

	wrapped := s.wrap(id, site)

	var (
		j   *job
		err error
	)
	switch trigger {
	case entity.TriggerCron:
		j, err = s.addCronJob(id, site, spec, wrapped)
	case entity.TriggerInterval:
		j, err = s.addIntervalJob(id, site, spec, wrapped)
	case entity.TriggerDate:
		j, err = s.addDateJob(id, site, spec, wrapped)
	default:
		return fmt.Errorf("scheduler: unknown trigger kind %q", trigger)
	}
	if err != nil {
		return err
	}

	s.jobs[id] = j
	s.running[id] = false
	slog.Info("scheduler: added job", slog.String("id", id), slog.String("trigger", string(trigger)))
	return nil
}

func (s *Scheduler) addCronJob(id, site, spec string, fn func()) (*job, error) {
	entryID, err := s.cronRunner.AddFunc(spec, fn)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	return &job{
		record: entity.JobRecord{ID: id, Site: site, Trigger: entity.TriggerCron, Spec: spec,
			NextRun: s.cronRunner.Entry(entryID).Next},
		stop:    func() { s.cronRunner.Remove(entryID) },
		entryID: entryID,
	}, nil
}

func (s *Scheduler) addIntervalJob(id, site, spec string, fn func()) (*job, error) {
	every, err := time.ParseDuration(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid interval spec %q: %w", spec, err)
	}
	if every <= 0 {
		return nil, fmt.Errorf("scheduler: interval spec %q must be positive", spec)
	}
	ticker := time.NewTicker(every)
	stopCh := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stopCh:
				return
			}
		}
	}()
	return &job{
		record: entity.JobRecord{ID: id, Site: site, Trigger: entity.TriggerInterval, Spec: spec,
			NextRun: time.Now().Add(every)},
		stop: func() { ticker.Stop(); close(stopCh) },
	}, nil
}

func (s *Scheduler) addDateJob(id, site, spec string, fn func()) (*job, error) {
	runAt, err := time.Parse(time.RFC3339, spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid date spec %q: %w", spec, err)
	}
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}
	timer := time.AfterFunc(delay, fn)
	return &job{
		record: entity.JobRecord{ID: id, Site: site, Trigger: entity.TriggerDate, Spec: spec,
			NextRun: runAt},
		stop: func() { timer.Stop() },
	}, nil
}

// wrap tracks id's running state across one execution of jobFn and
// appends the outcome to id's recent-run history.
func (s *Scheduler) wrap(id, site string) func() {
	return func() {
		s.mu.Lock()
		s.running[id] = true
		s.mu.Unlock()

		s.wg.Add(1)
		defer s.wg.Done()

		start := time.Now()
		stored, err := s.jobFn(context.Background(), site)
		run := entity.JobRun{StartTime: start, EndTime: time.Now(), Stored: stored}
		if err != nil {
			run.Status = entity.RunFailed
			run.Err = err.Error()
			slog.Error("scheduler: job failed", slog.String("id", id), slog.Any("error", err))
		} else {
			run.Status = entity.RunSucceeded
		}

		s.mu.Lock()
		s.running[id] = false
		s.recent[id] = appendBounded(s.recent[id], run, recentRunRetention)
		s.mu.Unlock()
	}
}

// appendBounded appends run, trimming the oldest entries once len exceeds max.
func appendBounded(runs []entity.JobRun, run entity.JobRun, max int) []entity.JobRun {
	runs = append(runs, run)
	if len(runs) > max {
		runs = runs[len(runs)-max:]
	}
	return runs
}

// RemoveJob unregisters id, stopping its trigger. A no-op if id is unknown.
func (s *Scheduler) RemoveJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	j.stop()
	delete(s.jobs, id)
	delete(s.running, id)
	delete(s.recent, id)
}

// GetJob returns id's current descriptor, or false if unknown.
func (s *Scheduler) GetJob(id string) (entity.JobRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return entity.JobRecord{}, false
	}
	rec := j.record
	if rec.Trigger == entity.TriggerCron {
		rec.NextRun = s.cronRunner.Entry(j.entryID).Next
	}
	rec.Running = s.running[id]
	return rec, true
}

// GetJobs returns all registered job descriptors, in no particular order.
func (s *Scheduler) GetJobs() []entity.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.JobRecord, 0, len(s.jobs))
	for id, j := range s.jobs {
		rec := j.record
		if rec.Trigger == entity.TriggerCron {
			rec.NextRun = s.cronRunner.Entry(j.entryID).Next
		}
		rec.Running = s.running[id]
		out = append(out, rec)
	}
	return out
}

// RecentRuns returns up to recentRunRetention most recent observed runs of
// id, oldest first.
func (s *Scheduler) RecentRuns(id string) []entity.JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := s.recent[id]
	out := make([]entity.JobRun, len(runs))
	copy(out, runs)
	return out
}

// IsRunning reports whether id's job function is currently executing.
func (s *Scheduler) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[id]
}

// TriggerManualCrawl synthesizes a one-shot date trigger for site,
// returning its job id. It fails with entity.ErrSchedulerUnavailable if
// the scheduler hasn't started, entity.ErrSiteNotFound if site is unknown,
// and entity.ErrJobAlreadyRunning if the site's scheduled job
// ("crawl_<site>") is currently executing.
func (s *Scheduler) TriggerManualCrawl(site string) (string, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return "", entity.ErrSchedulerUnavailable
	}

	if _, ok := s.sites[site]; !ok {
		return "", entity.ErrSiteNotFound
	}

	scheduledID := "crawl_" + site
	if s.IsRunning(scheduledID) {
		return "", entity.ErrJobAlreadyRunning
	}

	manualID := fmt.Sprintf("manual_crawl_%s_%s", site, time.Now().Format(manualIDTimeFormat))
	if err := s.AddJob(manualID, site, entity.TriggerDate, time.Now().Format(time.RFC3339)); err != nil {
		return "", err
	}
	slog.Info("scheduler: triggered manual crawl", slog.String("site", site), slog.String("job_id", manualID))
	return manualID, nil
}
