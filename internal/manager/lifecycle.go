package manager

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
)

type Transition string

const (
	TransitionActivate   Transition = "activate"
	TransitionSuspend    Transition = "suspend"
	TransitionDeactivate Transition = "deactivate"
)

func (t Transition) String() string {
	return string(t)
}

func statusEvent(transition Transition, src []model.TenantStatus, dst model.TenantStatus) fsm.EventDesc {
	states := make([]string, len(src))
	for i, s := range src {
		states[i] = s.String()
	}

	return fsm.EventDesc{
		Name: transition.String(),
		Src:  states,
		Dst:  dst.String(),
	}
}

// newLifecycle returns the status machine of a tenant positioned at its
// current status.
func newLifecycle(status model.TenantStatus) *fsm.FSM {
	return fsm.NewFSM(
		status.String(),
		fsm.Events{
			statusEvent(
				TransitionActivate,
				[]model.TenantStatus{model.TenantStatusPending, model.TenantStatusSuspended},
				model.TenantStatusActive,
			),
			statusEvent(
				TransitionSuspend,
				[]model.TenantStatus{model.TenantStatusActive},
				model.TenantStatusSuspended,
			),
			statusEvent(
				TransitionDeactivate,
				[]model.TenantStatus{model.TenantStatusPending, model.TenantStatusActive, model.TenantStatusSuspended},
				model.TenantStatusInactive,
			),
		},
		fsm.Callbacks{},
	)
}

// applyTransition moves the tenant to the status the transition leads to.
// The tenant is left untouched when the transition is not allowed.
func applyTransition(ctx context.Context, tenant *model.Tenant, transition Transition) error {
	lifecycle := newLifecycle(tenant.Status)

	err := lifecycle.Event(ctx, transition.String())
	if err != nil {
		return errs.Wrapf(errs.ErrInvalidStatusTransition,
			"cannot %s tenant in status %s: %v", transition, tenant.Status, err)
	}

	tenant.Status = model.TenantStatus(lifecycle.Current())

	return nil
}
