package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
)

// NewReservationHolderRule warns when a changed grave is available but still
// names a holder.
func NewReservationHolderRule() domain.Rule {
	return reservationHolderRule{}
}

type reservationHolderRule struct{}

func (reservationHolderRule) Name() string { return "reservation_holder" }

func (r reservationHolderRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityGrave || change.Action != domain.ActionUpdate {
			continue
		}
		after, ok := change.After.(domain.Grave)
		if !ok {
			continue
		}
		current, ok := view.FindGrave(after.ID)
		if !ok || current.Status != domain.GraveAvailable || current.Holder() == "" {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("grave %s is available but reserved by %q", current.ID, current.Holder()),
			Entity:   domain.EntityGrave,
			EntityID: current.ID,
		})
	}
	return res, nil
}
