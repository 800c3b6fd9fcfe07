package jobs

import (
	"context"

	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/sirupsen/logrus"
)

// Reconciler sweeps every live campaign and repairs aggregates that drifted
// from the donation ledger. The ledger is the source of truth; drift only
// appears after manual data edits or historical bugs, so a clean sweep is
// the normal outcome.
type Reconciler struct {
	DonationService *services.DonationService
}

// NewReconciler creates a new instance of Reconciler.
func NewReconciler(donationService *services.DonationService) *Reconciler {
	return &Reconciler{DonationService: donationService}
}

// RunSweep reconciles all campaigns once.
func (r *Reconciler) RunSweep(ctx context.Context) error {
	repaired, err := r.DonationService.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	if repaired > 0 {
		logrus.WithField("repaired", repaired).Warn("Reconciliation sweep repaired campaign aggregates")
	} else {
		logrus.Info("Reconciliation sweep completed, all aggregates consistent")
	}
	return nil
}
