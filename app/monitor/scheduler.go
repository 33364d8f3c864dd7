package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
)

// SEC business hours: Monday through Friday, 9:00 AM to 5:30 PM Eastern.
const (
	openHour    = 9
	closeHour   = 17
	closeMinute = 30

	// Check cadence while outside the operating window.
	closedCheckInterval = 30 * time.Minute
)

// CycleRunner runs one polling cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context)
}

// Scheduler invokes the monitor once per check interval, optionally gated
// to SEC business hours. When gated, window transitions are announced
// through the notification channels.
type Scheduler struct {
	runner            CycleRunner
	notifier          NotificationService
	checkInterval     time.Duration
	businessHoursOnly bool
	location          *time.Location
	now               func() time.Time

	announced bool
	wasOpen   bool
}

func NewScheduler(c *cfg.Cfg, runner CycleRunner, notifier NotificationService) *Scheduler {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		slog.Warn("Failed to load Eastern timezone, using UTC for the operating window", "error", err)
		location = time.UTC
	}

	return &Scheduler{
		runner:            runner,
		notifier:          notifier,
		checkInterval:     time.Duration(c.CheckInterval) * time.Second,
		businessHoursOnly: c.BusinessHoursOnly,
		location:          location,
		now:               time.Now,
	}
}

// WithinOperatingWindow reports whether the SEC is currently accepting
// filings (Mon-Fri 9:00-17:30 Eastern).
func (s *Scheduler) WithinOperatingWindow() bool {
	now := s.now().In(s.location)

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	if now.Hour() < openHour {
		return false
	}
	if now.Hour() > closeHour || (now.Hour() == closeHour && now.Minute() >= closeMinute) {
		return false
	}

	return true
}

// NextOpen returns when the operating window next opens.
func (s *Scheduler) NextOpen() time.Time {
	now := s.now().In(s.location)

	next := time.Date(now.Year(), now.Month(), now.Day(), openHour, 0, 0, 0, s.location)
	if now.Hour() >= closeHour {
		next = next.AddDate(0, 0, 1)
	}

	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// Run loops until ctx is cancelled, invoking a cycle whenever the window
// allows. Cycle panics are recovered so the loop keeps running.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Scheduler starting",
		"check_interval", s.checkInterval,
		"business_hours_only", s.businessHoursOnly)

	for {
		wait := s.checkInterval

		if !s.businessHoursOnly || s.WithinOperatingWindow() {
			s.announceStatus(true)
			s.runOnce(ctx)
		} else {
			s.announceStatus(false)
			nextOpen := s.NextOpen()
			slog.Info("Outside SEC business hours",
				"next_open", nextOpen.Format(time.RFC1123),
				"hours_until", time.Until(nextOpen).Hours())
			wait = closedCheckInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Scheduler stopped")
			return
		case <-timer.C:
		}
	}
}

// announceStatus sends an operating-window transition message through the
// notification channels. Only the first state and actual transitions are
// announced.
func (s *Scheduler) announceStatus(open bool) {
	if s.notifier == nil || !s.businessHoursOnly {
		return
	}
	if s.announced && open == s.wasOpen {
		return
	}
	s.announced = true
	s.wasOpen = open

	var message string
	if open {
		message = "The SEC is now OPEN (9:00 AM to 5:30 PM Eastern). Actively monitoring for new cybersecurity disclosures."
	} else {
		message = fmt.Sprintf("The SEC is now CLOSED. Monitoring resumes %s.", s.NextOpen().Format(time.RFC1123))
	}

	slog.Info("Announcing SEC status change", "open", open)
	s.notifier.SendTextToAll(message)
}

func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic during polling cycle", "panic", r)
		}
	}()

	s.runner.RunCycle(ctx)
}
