package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/j0lvera/mica/internal/metrics"
	"github.com/j0lvera/mica/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// everyMinute fires at second zero of every minute.
const everyMinute = "* * * * *"

const defaultConcurrency = 4

// Sender delivers a broadcast to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Options configures a Scheduler.
type Options struct {
	Location    *time.Location
	Signature   string
	Rate        float64 // Sends per second, zero or less is unlimited
	Concurrency int
	Metrics     *metrics.Recorder
	Logger      *zerolog.Logger
	Clock       func() time.Time
}

// Result summarizes one tick.
type Result struct {
	Time    string
	Matched bool
	Sent    int
	Failed  int
}

// Scheduler broadcasts table messages to every known thread at their time of day.
type Scheduler struct {
	cron        *cron.Cron
	table       *Table
	threads     store.Threads
	sender      Sender
	location    *time.Location
	signature   string
	limiter     *rate.Limiter
	concurrency int
	metrics     *metrics.Recorder
	logger      *zerolog.Logger
	now         func() time.Time
}

func NewScheduler(table *Table, threads store.Threads, sender Sender, opts Options) *Scheduler {
	s := &Scheduler{
		table:       table,
		threads:     threads,
		sender:      sender,
		location:    opts.Location,
		signature:   opts.Signature,
		concurrency: opts.Concurrency,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         opts.Clock,
	}

	if s.location == nil {
		s.location = time.UTC
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if s.logger == nil {
		nop := zerolog.Nop()
		s.logger = &nop
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.limiter = rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	cronLogger := cron.PrintfLogger(s.logger)
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		cron.WithLogger(cronLogger),
	)

	return s
}

// Start arms the minute job. Ticks run with ctx until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(everyMinute, func() {
		s.fire(ctx)
	}); err != nil {
		return fmt.Errorf("failed to register schedule job: %w", err)
	}

	s.cron.Start()

	s.logger.Info().
		Int("entries", s.table.Len()).
		Str("timezone", s.location.String()).
		Time("next", s.Next()).
		Msg("scheduler started")

	return nil
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns the next time the minute job fires, zero if not started.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// fire runs the tick for the current minute. Table keys carry seconds, so a
// timer that fires late must still hit ":00".
func (s *Scheduler) fire(ctx context.Context) Result {
	return s.Tick(ctx, s.now().Truncate(time.Minute))
}

// Tick broadcasts the table message for now, if any, to every known thread.
// A failed send is logged and counted and never stops the other sends.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) Result {
	key := now.In(s.location).Format(TimeLayout)
	result := Result{Time: key}

	message, ok := s.table.Lookup(key)
	if !ok {
		return result
	}
	result.Matched = true

	threads, err := s.threads.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("time", key).Msg("unable to list threads")
		return result
	}

	body := FormatBroadcast(key, message, s.signature)

	var sent, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, thread := range threads {
		g.Go(func() error {
			err := s.limiter.Wait(ctx)
			if err == nil {
				err = s.sender.Send(ctx, thread.ChatID, body)
			}
			if err != nil {
				failed.Add(1)
				s.metrics.ObserveBroadcast(metrics.OutcomeFailure)
				s.logger.Warn().Err(err).Int64("thread_id", thread.ChatID).Msg("unable to send scheduled message")
				return nil
			}
			sent.Add(1)
			s.metrics.ObserveBroadcast(metrics.OutcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	result.Sent = int(sent.Load())
	result.Failed = int(failed.Load())

	s.logger.Info().
		Str("time", key).
		Int("threads", len(threads)).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("scheduled message broadcast")

	return result
}

// FormatBroadcast renders the scheduled message body.
func FormatBroadcast(timeText, message, signature string) string {
	return fmt.Sprintf(
		"《《Auto Schedule》》\n⏰ time now - %s\n┃▬▬▬▬▬▬▬▬▬▬▬▬\n%s\n┗━━ [ %s ]━━➣",
		timeText, message, signature,
	)
}
