package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	channelPush = "push"
	channelSMS  = "sms"

	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
)

// Eligibility lists the translators a broadcast for job reaches.
type Eligibility interface {
	EligibleTranslators(ctx context.Context, job model.Job) (model.TranslatorList, error)
}

type DispatchResult struct {
	EventID string
	Targets int
	Pushed  []string
	SMS     []string
	Failed  []string
}

type Dispatcher struct {
	store       store.Store
	eligibility Eligibility
	sink        Sink
	timeout     time.Duration
	concurrency int
}

func NewDispatcher(s store.Store, eligibility Eligibility, sink Sink, timeout time.Duration, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		store:       s,
		eligibility: eligibility,
		sink:        sink,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Notify delivers ev to its targets, resolved against the current state of the job.
// Only resend_sms reports delivery failures as an error; other failures are logged and listed in the result.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) (DispatchResult, error) {
	result := DispatchResult{EventID: ev.ID}
	if err := ev.Validate(); err != nil {
		return result, err
	}

	job, err := d.store.Job().Get(ctx, ev.JobID)
	if err != nil {
		return result, errors.Wrapf(err, "loading job %d", ev.JobID)
	}

	targets, err := d.resolve(ctx, ev, *job)
	if err != nil {
		return result, err
	}
	result.Targets = len(targets)

	payload := newPayload(ev, *job)
	failures := map[string]error{}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(d.concurrency)

	for _, translatorID := range targets {
		g.Go(func() error {
			channel, err := d.deliver(ctx, ev.Type, translatorID, payload)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures[translatorID] = err
				result.Failed = append(result.Failed, translatorID)
			case channel == channelPush:
				result.Pushed = append(result.Pushed, translatorID)
			default:
				result.SMS = append(result.SMS, translatorID)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger := zap.S().Named("dispatcher")
	for id, err := range failures {
		logger.Warnw("notification not delivered", "event_id", ev.ID, "job_id", ev.JobID, "type", ev.Type, "translator_id", id, "error", err)
	}
	logger.Debugw("notification dispatched", "event_id", ev.ID, "job_id", ev.JobID, "type", ev.Type,
		"targets", result.Targets, "push", len(result.Pushed), "sms", len(result.SMS), "failed", len(result.Failed))

	if ev.Type == ResendSMS && len(failures) > 0 {
		return result, NewErrDeliveryFailure(failures)
	}

	return result, nil
}

func (d *Dispatcher) resolve(ctx context.Context, ev Event, job model.Job) ([]string, error) {
	if ev.Target.IsBroadcast() {
		if !job.Status.IsOpen() {
			return nil, nil
		}
		translators, err := d.eligibility.EligibleTranslators(ctx, job)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving translators for job %d", job.ID)
		}
		ids := make([]string, 0, len(translators))
		for _, t := range translators {
			ids = append(ids, t.ID)
		}
		return ids, nil
	}

	translatorID, _ := ev.Target.TranslatorID()
	if (ev.Type == NewJobAvailable || ev.Type == ResendPush || ev.Type == ResendSMS) && !job.Status.IsOpen() {
		return nil, nil
	}

	if _, err := d.store.Translator().Get(ctx, translatorID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			zap.S().Named("dispatcher").Warnw("dropping notification for unknown translator", "event_id", ev.ID, "translator_id", translatorID)
			return nil, nil
		}
		return nil, err
	}

	return []string{translatorID}, nil
}

// deliver sends the payload to one translator and returns the channel that succeeded.
func (d *Dispatcher) deliver(ctx context.Context, eventType EventType, translatorID string, payload Payload) (string, error) {
	if eventType == ResendSMS {
		if err := d.call(ctx, channelSMS, d.sink.SendSMS, translatorID, payload); err != nil {
			return "", errors.Wrapf(err, "sms to %s", translatorID)
		}
		return channelSMS, nil
	}

	pushErr := d.call(ctx, channelPush, d.sink.SendPush, translatorID, payload)
	if pushErr == nil {
		return channelPush, nil
	}

	if smsErr := d.call(ctx, channelSMS, d.sink.SendSMS, translatorID, payload); smsErr != nil {
		return "", errors.Wrapf(smsErr, "push to %s failed (%v), sms fallback", translatorID, pushErr)
	}
	return channelSMS, nil
}

type sendFunc func(ctx context.Context, translatorID string, payload Payload) error

// call runs one provider call and gives up once the timeout elapses, whether or not the provider honours ctx.
func (d *Dispatcher) call(ctx context.Context, channel string, send sendFunc, translatorID string, payload Payload) error {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- send(cctx, translatorID, payload)
	}()

	var err error
	select {
	case err = <-done:
	case <-cctx.Done():
		err = errors.Wrapf(cctx.Err(), "%s provider call", channel)
	}

	if err != nil {
		metrics.IncreaseNotificationMetric(channel, outcomeFailed)
		return err
	}
	metrics.IncreaseNotificationMetric(channel, outcomeDelivered)
	return nil
}

func newPayload(ev Event, job model.Job) Payload {
	var msg string
	switch ev.Type {
	case JobCancelled:
		msg = fmt.Sprintf("Job %d scheduled at %s has been cancelled", job.ID, job.ScheduledTime.Format(time.RFC3339))
	case JobAccepted:
		msg = fmt.Sprintf("You have been assigned job %d scheduled at %s", job.ID, job.ScheduledTime.Format(time.RFC3339))
	default:
		msg = fmt.Sprintf("New %s job available at %s", job.LanguagePair, job.ScheduledTime.Format(time.RFC3339))
	}

	return Payload{
		EventID:      ev.ID,
		JobID:        job.ID,
		Type:         ev.Type,
		LanguagePair: job.LanguagePair,
		Message:      msg,
	}
}
