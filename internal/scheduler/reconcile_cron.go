package cron

import (
	"context"

	"github.com/givehopebz/givehope-api/internal/jobs"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs wires the background maintenance: a nightly ledger
// reconciliation sweep and daily cleanup of expired notifications.
func StartCronJobs(reconciler *jobs.Reconciler, notificationService *services.NotificationService) {
	c := cron.New()

	// Nightly aggregate reconciliation
	c.AddFunc("0 3 * * *", func() {
		if err := reconciler.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Reconciliation sweep failed")
		}
	})

	// Expired notification cleanup
	c.AddFunc("@daily", func() {
		if err := notificationService.DeleteExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("Notification cleanup failed")
		}
	})

	c.Start()
}
