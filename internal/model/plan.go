package model

import "errors"

var ErrInvalidPlanType = errors.New("plan type is not valid")

type PlanType string

const (
	PlanTypeBasic      PlanType = "basic"
	PlanTypePro        PlanType = "pro"
	PlanTypeEnterprise PlanType = "enterprise"
)

const (
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
)

// PlanLimits are the quotas a plan starts with when none are requested.
type PlanLimits struct {
	MaxUsers   int
	MaxStorage int64
}

var planLimits = map[PlanType]PlanLimits{
	PlanTypeBasic:      {MaxUsers: 10, MaxStorage: GiB},
	PlanTypePro:        {MaxUsers: 100, MaxStorage: 100 * GiB},
	PlanTypeEnterprise: {MaxUsers: 10000, MaxStorage: TiB},
}

func (p PlanType) Validate() error {
	if _, ok := planLimits[p]; !ok {
		return ErrInvalidPlanType
	}

	return nil
}

// Limits returns the default quotas of the plan, falling back to basic.
func (p PlanType) Limits() PlanLimits {
	l, ok := planLimits[p]
	if !ok {
		return planLimits[PlanTypeBasic]
	}

	return l
}
