package service

import (
	"context"
	"log"
	"time"

	"github.com/adilbk/assurauto-backend/internal/model"
	q "github.com/adilbk/assurauto-backend/internal/queue"
	"github.com/adilbk/assurauto-backend/internal/repository"
	"github.com/adilbk/assurauto-backend/internal/schedule"
)

// Sweeper runs the periodic maintenance passes: stale quotes expire, late
// installments go overdue (with an at-risk notification after repeated
// misses) and policies past their end date expire.  Each pass is
// idempotent, so overlapping runs across instances are harmless.
type Sweeper struct {
	Quotes   *repository.QuoteRepo
	Policies *repository.PolicyRepo
	Payments *repository.PaymentRepo
	Interval time.Duration
}

func NewSweeper(quotes *repository.QuoteRepo, policies *repository.PolicyRepo, payments *repository.PaymentRepo, interval time.Duration) *Sweeper {
	return &Sweeper{Quotes: quotes, Policies: policies, Payments: payments, Interval: interval}
}

// Run blocks, sweeping once immediately and then on every tick until the
// context is cancelled.  Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(ctx, time.Now())
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.SweepOnce(ctx, now)
		}
	}
}

// SweepOnce runs all three passes against a single reference time.
// Errors are logged and do not stop the remaining passes.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) {
	if ids, err := s.Quotes.ExpireStale(ctx, now); err != nil {
		log.Printf("sweeper: expire quotes failed: %v", err)
	} else {
		for _, id := range ids {
			s.notifyQuoteExpired(ctx, id)
		}
	}

	if swept, err := s.Payments.MarkOverdue(ctx, now); err != nil {
		log.Printf("sweeper: mark overdue failed: %v", err)
	} else {
		for _, o := range swept {
			s.notifyOverdue(ctx, o)
		}
	}

	if ids, err := s.Policies.ExpireEnded(ctx, now); err != nil {
		log.Printf("sweeper: expire policies failed: %v", err)
	} else {
		for _, id := range ids {
			s.notifyPolicyExpired(ctx, id)
		}
	}
}

func (s *Sweeper) notifyQuoteExpired(ctx context.Context, quoteID uint64) {
	quote, err := s.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		log.Printf("sweeper: load expired quote %d failed: %v", quoteID, err)
		return
	}
	_ = PublishNotification(ctx, q.NotificationEvent{
		Kind:      q.KindQuoteExpired,
		UserID:    quote.UserID,
		Reference: quote.Reference,
	})
}

// notifyOverdue emits payment.overdue for the installment and, once the
// policy reaches the miss threshold, policy.at_risk.  The billing
// calendar keeps moving: the overdue cycle's successor is scheduled
// here, so a policyholder who never reports an outcome still accrues
// one miss per cycle.  The sweeper never suspends the policy itself;
// that stays a human decision.
func (s *Sweeper) notifyOverdue(ctx context.Context, o repository.OverduePayment) {
	payment, err := s.Payments.GetByID(ctx, o.PaymentID)
	if err != nil {
		log.Printf("sweeper: load overdue payment %d failed: %v", o.PaymentID, err)
		return
	}
	policy, err := s.Policies.GetByID(ctx, o.PolicyID)
	if err != nil {
		log.Printf("sweeper: load policy %d failed: %v", o.PolicyID, err)
		return
	}
	_ = PublishNotification(ctx, q.NotificationEvent{
		Kind:        q.KindPaymentOverdue,
		UserID:      payment.UserID,
		Reference:   policy.Reference,
		AmountCents: payment.AmountCents,
	})

	s.scheduleSuccessor(ctx, payment, policy)

	misses, err := s.Payments.ConsecutiveMisses(ctx, o.PolicyID)
	if err != nil {
		log.Printf("sweeper: count misses for policy %d failed: %v", o.PolicyID, err)
		return
	}
	if misses >= schedule.AtRiskThreshold && policy.Status == model.PolicyActive {
		_ = PublishNotification(ctx, q.NotificationEvent{
			Kind:      q.KindPolicyAtRisk,
			UserID:    policy.UserID,
			Reference: policy.Reference,
			Detail:    "consecutive missed premium payments",
		})
	}
}

// scheduleSuccessor creates the next pending cycle after an installment
// went overdue, unless the policy bills annually or the coverage year is
// over.  A duplicate insert means a concurrent writer got there first.
func (s *Sweeper) scheduleSuccessor(ctx context.Context, payment model.Payment, policy model.Policy) {
	if policy.PaymentFrequency == model.FrequencyAnnually {
		return
	}
	nextStart, err := schedule.NextDueDate(payment.CycleStart, policy.PaymentFrequency)
	if err != nil {
		log.Printf("sweeper: advance cycle for policy %d failed: %v", policy.ID, err)
		return
	}
	if !nextStart.Before(policy.EndDate) {
		return
	}
	nextDue, err := schedule.NextDueDate(payment.DueDate, policy.PaymentFrequency)
	if err != nil {
		log.Printf("sweeper: advance cycle for policy %d failed: %v", policy.ID, err)
		return
	}
	next := model.Payment{
		PolicyID:    policy.ID,
		UserID:      policy.UserID,
		AmountCents: payment.AmountCents,
		Method:      payment.Method,
		CycleStart:  nextStart,
		DueDate:     nextDue,
	}
	switch err := s.Payments.CreateCycle(ctx, &next); err {
	case nil:
		if err := s.Policies.SetNextPaymentDue(ctx, policy.ID, nextDue); err != nil {
			log.Printf("sweeper: advance next payment due for policy %d failed: %v", policy.ID, err)
		}
	case repository.ErrDuplicateCycle:
		// already scheduled
	default:
		log.Printf("sweeper: schedule cycle for policy %d failed: %v", policy.ID, err)
	}
}

func (s *Sweeper) notifyPolicyExpired(ctx context.Context, policyID uint64) {
	policy, err := s.Policies.GetByID(ctx, policyID)
	if err != nil {
		log.Printf("sweeper: load expired policy %d failed: %v", policyID, err)
		return
	}
	_ = PublishNotification(ctx, q.NotificationEvent{
		Kind:      q.KindPolicyExpired,
		UserID:    policy.UserID,
		Reference: policy.Reference,
	})
}
