package leave_test

import (
	"context"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
)

type fakeDirectory struct {
	users map[int64]*leave.Person
	heads map[int64]int64
}

func newFakeDirectory(people ...*leave.Person) *fakeDirectory {
	d := &fakeDirectory{users: map[int64]*leave.Person{}, heads: map[int64]int64{}}
	for _, p := range people {
		p.IsActive = true
		d.users[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) GetUser(_ context.Context, id int64) (*leave.Person, error) {
	return d.users[id], nil
}

func (d *fakeDirectory) DepartmentHead(_ context.Context, departmentID int64) (*leave.Person, error) {
	if id, ok := d.heads[departmentID]; ok {
		return d.users[id], nil
	}
	return nil, nil
}

func (d *fakeDirectory) sorted() []*leave.Person {
	out := make([]*leave.Person, 0, len(d.users))
	for _, p := range d.users {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *fakeDirectory) FacultyLead(_ context.Context, faculty string) (*leave.Person, error) {
	var director *leave.Person
	for _, p := range d.sorted() {
		if p.Faculty != faculty {
			continue
		}
		if p.Role == internal.RoleDean {
			return p, nil
		}
		if p.Role == internal.RoleDirector && director == nil {
			director = p
		}
	}
	return director, nil
}

func (d *fakeDirectory) ActiveByRole(_ context.Context, role internal.Role) ([]*leave.Person, error) {
	var out []*leave.Person
	for _, p := range d.sorted() {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func dept(id int64) *int64 { return &id }

var _ = Describe("Router", func() {
	var (
		ctx       context.Context
		dir       *fakeDirectory
		router    *leave.Router
		staff     *leave.Person
		head      *leave.Person
		dean      *leave.Person
		principal *leave.Person
		hr        *leave.Person
	)

	BeforeEach(func() {
		ctx = context.Background()
		staff = &leave.Person{ID: 1, Role: internal.RoleStaff, DepartmentID: dept(10), Faculty: "Engineering"}
		head = &leave.Person{ID: 2, Role: internal.RoleDepartmentHead, DepartmentID: dept(10), Faculty: "Engineering"}
		dean = &leave.Person{ID: 3, Role: internal.RoleDean, DepartmentID: dept(11), Faculty: "Engineering"}
		principal = &leave.Person{ID: 4, Role: internal.RolePrincipal}
		hr = &leave.Person{ID: 5, Role: internal.RoleHRAdmin}
		dir = newFakeDirectory(staff, head, dean, principal, hr)
		dir.heads[10] = head.ID

		var err error
		router, err = leave.NewRouter(internal.DefaultApprovalChain, dir)
		Expect(err).NotTo(HaveOccurred())
	})

	walk := func(applicant *leave.Person) []internal.Role {
		var (
			roles      []internal.Role
			approvedBy []int64
		)
		approver, err := router.First(ctx, applicant)
		Expect(err).NotTo(HaveOccurred())
		for approver != nil {
			roles = append(roles, approver.Role)
			if approver.UserID != nil {
				approvedBy = append(approvedBy, *approver.UserID)
			}
			approver, err = router.Next(ctx, applicant, approver.Role, approvedBy)
			Expect(err).NotTo(HaveOccurred())
		}
		return roles
	}

	It("routes staff through every configured step", func() {
		Expect(walk(staff)).To(Equal([]internal.Role{
			internal.RoleDepartmentHead, internal.RoleDean, internal.RolePrincipal, internal.RoleHRAdmin,
		}))
	})

	It("names the department head on the first step", func() {
		approver, err := router.First(ctx, staff)
		Expect(err).NotTo(HaveOccurred())
		Expect(approver.UserID).NotTo(BeNil())
		Expect(*approver.UserID).To(Equal(head.ID))
	})

	It("skips the department head step for the head", func() {
		Expect(walk(head)).To(Equal([]internal.Role{internal.RoleDean, internal.RolePrincipal, internal.RoleHRAdmin}))
	})

	It("skips the dean step for the dean", func() {
		Expect(walk(dean)).To(Equal([]internal.Role{internal.RolePrincipal, internal.RoleHRAdmin}))
	})

	It("sends the principal straight to HR", func() {
		Expect(walk(principal)).To(Equal([]internal.Role{internal.RoleHRAdmin}))
	})

	It("skips steps nobody holds", func() {
		delete(dir.heads, 10)
		delete(dir.users, principal.ID)
		Expect(walk(staff)).To(Equal([]internal.Role{internal.RoleDean, internal.RoleHRAdmin}))
	})

	It("skips a step held by someone who already approved", func() {
		dir.heads[10] = dean.ID
		Expect(walk(staff)).To(Equal([]internal.Role{
			internal.RoleDepartmentHead, internal.RolePrincipal, internal.RoleHRAdmin,
		}))

		approver, err := router.Next(ctx, staff, internal.RoleDepartmentHead, []int64{dean.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(approver.Role).To(Equal(internal.RolePrincipal))
	})

	It("falls back to a director when a faculty has no dean", func() {
		dean.Role = internal.RoleDirector
		approver, err := router.Next(ctx, staff, internal.RoleDepartmentHead, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(approver.Role).To(Equal(internal.RoleDean))
		Expect(*approver.UserID).To(Equal(dean.ID))
	})

	It("makes the HR step role-level and excludes the applicant", func() {
		other := &leave.Person{ID: 6, Role: internal.RoleHRAdmin, IsActive: true}
		dir.users[other.ID] = other

		approver, err := router.Next(ctx, hr, internal.RolePrincipal, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(approver.UserID).To(BeNil())
		Expect(approver.DeciderIDs()).To(Equal([]int64{other.ID}))
	})

	It("fails when the only HR admin applies", func() {
		delete(dir.users, principal.ID)
		_, err := router.First(ctx, hr)
		Expect(err).To(MatchError(leave.ErrNoApprover))
	})

	Describe("NewRouter", func() {
		It("appends the HR step when it is not configured", func() {
			r, err := leave.NewRouter([]string{"department_head"}, dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Roles()).To(Equal([]internal.Role{internal.RoleDepartmentHead, internal.RoleHRAdmin}))
		})

		It("rejects unknown, duplicate and misplaced steps", func() {
			_, err := leave.NewRouter([]string{"registrar"}, dir)
			Expect(err).To(HaveOccurred())
			_, err = leave.NewRouter([]string{"dean", "dean"}, dir)
			Expect(err).To(HaveOccurred())
			_, err = leave.NewRouter([]string{"hr_admin", "dean"}, dir)
			Expect(err).To(HaveOccurred())
		})
	})
})
