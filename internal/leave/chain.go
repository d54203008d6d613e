package leave

import (
	"sort"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

// Chain is the materialised approval state of one application.
type Chain struct {
	steps []*Approval
}

// NewChain orders steps by creation, ties broken by id.
func NewChain(steps []*Approval) *Chain {
	sorted := append([]*Approval(nil), steps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return &Chain{steps: sorted}
}

func ChainFromRows(rows []*leaveDatamodel.LeaveApproval) *Chain {
	steps := make([]*Approval, 0, len(rows))
	for _, row := range rows {
		steps = append(steps, ApprovalFromDataModel(row))
	}
	return NewChain(steps)
}

func (c *Chain) Steps() []*Approval {
	return c.steps
}

// Current is the earliest created pending step, nil when none is open.
func (c *Chain) Current() *Approval {
	for _, s := range c.steps {
		if s.Status == ApprovalPending {
			return s
		}
	}
	return nil
}

func (c *Chain) Rejected() bool {
	for _, s := range c.steps {
		if s.Status == ApprovalRejected {
			return true
		}
	}
	return false
}

// IsComplete is true once at least one step is approved, none is pending and
// none was rejected.
func (c *Chain) IsComplete() bool {
	if len(c.steps) == 0 || c.Rejected() {
		return false
	}
	for _, s := range c.steps {
		if s.Status != ApprovalApproved {
			return false
		}
	}
	return true
}

// ApprovedBy lists who approved a step so far, in chain order.
func (c *Chain) ApprovedBy() []int64 {
	var ids []int64
	for _, s := range c.steps {
		if s.Status == ApprovalApproved && s.DecidedBy != nil {
			ids = append(ids, *s.DecidedBy)
		}
	}
	return ids
}

// Involves reports whether userID is named on, or decided, any step.
func (c *Chain) Involves(userID int64) bool {
	for _, s := range c.steps {
		if s.ApproverID != nil && *s.ApproverID == userID {
			return true
		}
		if s.DecidedBy != nil && *s.DecidedBy == userID {
			return true
		}
	}
	return false
}
