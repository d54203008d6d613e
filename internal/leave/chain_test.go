package leave_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
)

var _ = Describe("Chain", func() {
	var t0 time.Time

	BeforeEach(func() {
		t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	})

	step := func(id int64, status leave.ApprovalStatus, created time.Time) *leave.Approval {
		return &leave.Approval{ID: id, Step: int(id), Status: status, CreatedAt: created, ApproverRole: internal.RoleDean}
	}

	It("treats the earliest pending step as current", func() {
		chain := leave.NewChain([]*leave.Approval{
			step(3, leave.ApprovalPending, t0.Add(2*time.Minute)),
			step(1, leave.ApprovalApproved, t0),
			step(2, leave.ApprovalPending, t0.Add(time.Minute)),
		})
		Expect(chain.Current().ID).To(Equal(int64(2)))
		Expect(chain.IsComplete()).To(BeFalse())
	})

	It("breaks creation time ties by id", func() {
		chain := leave.NewChain([]*leave.Approval{
			step(2, leave.ApprovalPending, t0),
			step(1, leave.ApprovalPending, t0),
		})
		Expect(chain.Current().ID).To(Equal(int64(1)))
	})

	It("is complete when every step is approved", func() {
		chain := leave.NewChain([]*leave.Approval{
			step(1, leave.ApprovalApproved, t0),
			step(2, leave.ApprovalApproved, t0.Add(time.Minute)),
		})
		Expect(chain.Current()).To(BeNil())
		Expect(chain.IsComplete()).To(BeTrue())
	})

	It("is never complete when empty or rejected", func() {
		Expect(leave.NewChain(nil).IsComplete()).To(BeFalse())

		rejected := leave.NewChain([]*leave.Approval{
			step(1, leave.ApprovalApproved, t0),
			step(2, leave.ApprovalRejected, t0.Add(time.Minute)),
		})
		Expect(rejected.Rejected()).To(BeTrue())
		Expect(rejected.IsComplete()).To(BeFalse())
	})

	It("lists who approved in chain order", func() {
		head, dean := int64(2), int64(3)
		first := step(1, leave.ApprovalApproved, t0)
		first.DecidedBy = &head
		second := step(2, leave.ApprovalApproved, t0.Add(time.Minute))
		second.DecidedBy = &dean
		chain := leave.NewChain([]*leave.Approval{second, first, step(3, leave.ApprovalPending, t0.Add(2*time.Minute))})
		Expect(chain.ApprovedBy()).To(Equal([]int64{head, dean}))
	})

	Describe("Approval.CanDecide", func() {
		It("restricts user-level steps to the named approver", func() {
			approverID := int64(7)
			a := &leave.Approval{ApproverRole: internal.RoleDepartmentHead, ApproverID: &approverID}
			Expect(a.CanDecide(internal.AuthContext{UserID: 7, Role: internal.RoleDepartmentHead}, 1)).To(BeTrue())
			Expect(a.CanDecide(internal.AuthContext{UserID: 8, Role: internal.RoleDepartmentHead}, 1)).To(BeFalse())
		})

		It("opens role-level steps to the role but not to the applicant", func() {
			a := &leave.Approval{ApproverRole: internal.RoleHRAdmin}
			Expect(a.CanDecide(internal.AuthContext{UserID: 9, Role: internal.RoleHRAdmin}, 1)).To(BeTrue())
			Expect(a.CanDecide(internal.AuthContext{UserID: 1, Role: internal.RoleHRAdmin}, 1)).To(BeFalse())
			Expect(a.CanDecide(internal.AuthContext{UserID: 9, Role: internal.RoleDean}, 1)).To(BeFalse())
		})
	})
})
