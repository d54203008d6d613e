package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/calendar"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/events"
)

type RepositoryAPI interface {
	GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	CreateApplication(ctx context.Context, row *leaveDatamodel.LeaveApplication) error
	GetApplication(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error)
	ListApplications(ctx context.Context, filter ListFilter) ([]*leaveDatamodel.LeaveApplicationDetail, error)
	// FindOverlapping returns the user's applications, other than rejected ones, sharing a day with [start, end].
	FindOverlapping(ctx context.Context, userID int64, start, end time.Time) ([]*leaveDatamodel.LeaveApplication, error)
	// TransitionApplication moves an application from one status to another and
	// reports false when it was no longer in the from status.
	TransitionApplication(ctx context.Context, id int64, from, to Status, at time.Time) (bool, error)
	CreateApproval(ctx context.Context, row *leaveDatamodel.LeaveApproval) error
	GetApproval(ctx context.Context, id int64) (*leaveDatamodel.LeaveApproval, error)
	ListApprovals(ctx context.Context, applicationID int64) ([]*leaveDatamodel.LeaveApproval, error)
	// DecideApproval closes a step only while it is still pending.
	DecideApproval(ctx context.Context, id int64, status ApprovalStatus, deciderID int64, comments string, at time.Time) (bool, error)
	DeletePendingApprovals(ctx context.Context, applicationID int64) error
	// ListOpenApprovalsFor returns pending steps addressed to the user or to the role.
	ListOpenApprovalsFor(ctx context.Context, userID int64, role internal.Role) ([]*leaveDatamodel.LeaveApproval, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DayCounter interface {
	Count(ctx context.Context, start, end calendar.Date, halfDay bool) (calendar.DayCount, error)
}

type RestrictionProvider interface {
	ListRestrictedEvents(ctx context.Context, from, to calendar.Date) ([]*calendar.AcademicEvent, error)
}

type BalanceLedger interface {
	Remaining(ctx context.Context, userID, leaveTypeID int64, year int) (float64, error)
	Debit(ctx context.Context, userID, leaveTypeID int64, year int, days float64) error
}

type DocumentStore interface {
	// VerifyAttachable fails unless every id is a document of ownerID that is not attached yet.
	VerifyAttachable(ctx context.Context, ownerID int64, ids []int64) error
	Attach(ctx context.Context, ids []int64, applicationID, ownerID int64) error
}

var (
	ErrApplicationNotFound = internal.NewNotFoundError("leave application not found", internal.ErrCodeApplicationNotFound)
	ErrApprovalNotFound    = internal.NewNotFoundError("approval step not found", internal.ErrCodeApprovalNotFound)
	ErrStaleApproval       = internal.NewConflictError("this approval step has already been decided", internal.ErrCodeStaleApproval)
	ErrNotPending          = internal.NewConflictError("only pending applications can be changed", internal.ErrCodeInvalidStatus)
	ErrNotApprover         = internal.NewForbiddenError("you are not the approver of this step", internal.ErrCodeNotAllowed)
)

type Dependencies struct {
	Repo          RepositoryAPI
	Directory     Directory
	Transactor    Transactor
	Days          DayCounter
	Restrictions  RestrictionProvider
	Ledger        BalanceLedger
	Documents     DocumentStore
	Router        *Router
	Events        events.Publisher
	Logger        *slog.Logger
	MinNoticeDays int
	Clock         func() time.Time
}

// Workflow runs every state change of a leave application. Each mutation is
// one transaction; events are published only after it commits.
type Workflow struct {
	repo          RepositoryAPI
	directory     Directory
	tx            Transactor
	days          DayCounter
	restrictions  RestrictionProvider
	ledger        BalanceLedger
	documents     DocumentStore
	router        *Router
	events        events.Publisher
	logger        *slog.Logger
	minNoticeDays int
	clock         func() time.Time
}

func NewWorkflow(deps Dependencies) *Workflow {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Workflow{
		repo:          deps.Repo,
		directory:     deps.Directory,
		tx:            deps.Transactor,
		days:          deps.Days,
		restrictions:  deps.Restrictions,
		ledger:        deps.Ledger,
		documents:     deps.Documents,
		router:        deps.Router,
		events:        deps.Events,
		logger:        deps.Logger,
		minNoticeDays: deps.MinNoticeDays,
		clock:         clock,
	}
}

// submission carries what validation learned into the write phase.
type submission struct {
	applicant *Person
	leaveType *LeaveType
	start     calendar.Date
	end       calendar.Date
	days      float64
}

// Submit validates a request in a fixed order, collecting every failure, and
// stores it with its first approval step. Nothing is written when any check fails.
func (w *Workflow) Submit(ctx context.Context, actor internal.AuthContext, dto SubmitDTO) (*Application, error) {
	applicant, err := w.directory.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load applicant", err)
	}
	if applicant == nil || !applicant.IsActive {
		return nil, internal.ErrUserInactive
	}

	sub, err := w.validateSubmission(ctx, applicant, dto)
	if err != nil {
		return nil, err
	}

	row := &leaveDatamodel.LeaveApplication{
		UserID:      applicant.ID,
		LeaveTypeID: sub.leaveType.ID,
		StartDate:   sub.start.Time(),
		EndDate:     sub.end.Time(),
		IsHalfDay:   dto.IsHalfDay,
		WorkingDays: sub.days,
		Reason:      strings.TrimSpace(dto.Reason),
		ContactInfo: strings.TrimSpace(dto.ContactInfo),
		Status:      string(StatusPending),
	}
	var approver *Approver

	err = w.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := w.repo.CreateApplication(ctx, row); err != nil {
			return internal.NewInternalError("failed to save leave application", err)
		}
		if len(dto.DocumentIDs) > 0 {
			if err := w.documents.Attach(ctx, dto.DocumentIDs, row.ID, applicant.ID); err != nil {
				return err
			}
		}

		first, err := w.router.First(ctx, applicant)
		if err != nil {
			return err
		}
		approver = first
		return w.openStep(ctx, row.ID, 1, first)
	})
	if err != nil {
		w.logger.Warn("leave submission rolled back", "error", err, "user_id", applicant.ID)
		return nil, asAppError(err, "failed to submit leave application")
	}

	app := FromDataModel(row)
	app.LeaveTypeName = sub.leaveType.Name
	app.ApplicantName = applicant.Name

	w.logger.Info("leave application submitted",
		"application_id", app.ID,
		"user_id", applicant.ID,
		"working_days", app.WorkingDays,
		"first_approver_role", approver.Role)

	w.publish(ctx, events.EventTypeLeaveSubmitted, app, actor.UserID, 1, approver, "")
	return app, nil
}

func (w *Workflow) validateSubmission(ctx context.Context, applicant *Person, dto SubmitDTO) (*submission, error) {
	v := validation.NewValidator()
	v.Field("leave_type_id", dto.LeaveTypeID).Required()
	v.Field("start_date", dto.StartDate).Required()
	v.Field("end_date", dto.EndDate).Required()
	v.Field("reason", dto.Reason).Required().MaxLength(2000)
	v.Field("contact_info", dto.ContactInfo).MaxLength(255)
	errs := v.Errors()

	sub := &submission{applicant: applicant}
	today := calendar.DateOf(w.clock())

	// dates
	var startErr, endErr error
	if dto.StartDate != "" {
		if sub.start, startErr = calendar.ParseDate(dto.StartDate); startErr != nil {
			errs.Add("start_date", "start_date must use the YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		}
	}
	if dto.EndDate != "" {
		if sub.end, endErr = calendar.ParseDate(dto.EndDate); endErr != nil {
			errs.Add("end_date", "end_date must use the YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		}
	}
	datesOK := !sub.start.IsZero() && !sub.end.IsZero()
	if datesOK && sub.end.Before(sub.start) {
		errs.Add("end_date", "end_date must not be before start_date", internal.ErrCodeInvalidRange)
		datesOK = false
	}
	if !sub.start.IsZero() && sub.start.Before(today) {
		errs.Add("start_date", "start_date must not be in the past", internal.ErrCodePastDate)
	}

	// leave type
	if dto.LeaveTypeID > 0 {
		row, err := w.repo.GetLeaveType(ctx, dto.LeaveTypeID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load leave type", err)
		}
		switch {
		case row == nil:
			errs.Add("leave_type_id", "leave type does not exist", internal.ErrCodeLeaveTypeInvalid)
		case !row.IsActive:
			errs.Add("leave_type_id", "leave type is not active", internal.ErrCodeLeaveTypeInvalid)
		default:
			sub.leaveType = LeaveTypeFromDataModel(row)
			if !sub.leaveType.AppliesTo(applicant.Role) {
				errs.Add("leave_type_id", "leave type is not available for your role", internal.ErrCodeLeaveTypeInvalid)
				sub.leaveType = nil
			}
		}
	}

	if !sub.start.IsZero() && !sub.start.Before(today) {
		notice := w.minNoticeDays
		if sub.leaveType != nil && sub.leaveType.MinNoticeDays != nil {
			notice = *sub.leaveType.MinNoticeDays
		}
		if today.DaysUntil(sub.start) < notice {
			errs.Add("start_date", fmt.Sprintf("leave must be requested at least %d days in advance", notice), internal.ErrCodeNoticePeriod)
		}
	}

	if sub.leaveType != nil && sub.leaveType.RequiresAttachment && len(dto.DocumentIDs) == 0 {
		errs.Add("document_ids", "this leave type requires a supporting document", internal.ErrCodeAttachment)
	}
	if len(dto.DocumentIDs) > 0 {
		if err := w.documents.VerifyAttachable(ctx, applicant.ID, dto.DocumentIDs); err != nil {
			appErr, ok := internal.AsAppError(err)
			if !ok || appErr.StatusCode >= 500 {
				return nil, internal.NewInternalError("failed to check documents", err)
			}
			errs.Add("document_ids", appErr.Message, internal.ErrCodeAttachment)
		}
	}

	// working days
	if datesOK {
		count, err := w.days.Count(ctx, sub.start, sub.end, dto.IsHalfDay)
		if err != nil {
			return nil, internal.NewInternalError("failed to count working days", err)
		}
		sub.days = count.WorkingDays
		if sub.days <= 0 {
			errs.Add("end_date", "the requested period contains no working days", internal.ErrCodeNoWorkingDays)
		}
		if sub.leaveType != nil && sub.leaveType.MaxDaysPerRequest != nil && sub.days > *sub.leaveType.MaxDaysPerRequest {
			errs.Add("end_date", fmt.Sprintf("at most %g days may be requested at once", *sub.leaveType.MaxDaysPerRequest), internal.ErrCodeMaxDays)
		}
	}

	// balance
	var balanceMsg string
	if sub.leaveType != nil && sub.days > 0 {
		remaining, err := w.ledger.Remaining(ctx, applicant.ID, sub.leaveType.ID, sub.start.Year())
		switch {
		case internal.IsErrorType(err, internal.ErrorTypeNotFound):
			balanceMsg = fmt.Sprintf("insufficient balance: no %s allocation for %d", sub.leaveType.Name, sub.start.Year())
		case err != nil:
			return nil, internal.NewInternalError("failed to read leave balance", err)
		case remaining < sub.days:
			balanceMsg = fmt.Sprintf("insufficient balance: %g days remaining, %g requested", remaining, sub.days)
		}
		if balanceMsg != "" {
			errs.Add("leave_type_id", balanceMsg, internal.ErrCodeInsufficientBalance)
		}
	}

	if datesOK {
		overlapping, err := w.repo.FindOverlapping(ctx, applicant.ID, sub.start.Time(), sub.end.Time())
		if err != nil {
			return nil, internal.NewInternalError("failed to check overlapping applications", err)
		}
		if len(overlapping) > 0 {
			errs.Add("start_date", "the requested period overlaps another application that was not rejected", internal.ErrCodeOverlap)
		}

		restricted, err := w.restrictions.ListRestrictedEvents(ctx, sub.start, sub.end)
		if err != nil {
			return nil, internal.NewInternalError("failed to check academic calendar", err)
		}
		for _, event := range restricted {
			errs.Add("start_date", fmt.Sprintf("leave is not allowed during %s (%s to %s)", event.Title, event.StartDate, event.EndDate), internal.ErrCodeRestrictedPeriod)
		}
	}

	if !errs.HasErrors() {
		return sub, nil
	}
	// a failed balance check decides the error type; details carry every failure
	if balanceMsg != "" {
		return nil, internal.NewInsufficientBalanceError(balanceMsg).WithDetails(errs)
	}
	return nil, internal.NewValidationErrors(errs)
}

// Decide records an approver's decision on one step. Approval either opens the
// next step or, when the chain is finished, approves the application and debits
// the balance. Rejection closes the application and drops the open steps.
func (w *Workflow) Decide(ctx context.Context, actor internal.AuthContext, approvalID int64, dto DecisionDTO) (*DecisionResponse, error) {
	errs := validation.Struct(dto)
	if dto.Action == ActionReject && strings.TrimSpace(dto.Comments) == "" {
		errs.Add("comments", "a reason is required when rejecting", internal.ErrCodeRequired)
	}
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}

	var (
		app       *Application
		eventType string
		step      int
		next      *Approver
		completed bool
	)

	err := w.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		approvalRow, err := w.repo.GetApproval(ctx, approvalID)
		if err != nil {
			return internal.NewInternalError("failed to load approval step", err)
		}
		if approvalRow == nil {
			return ErrApprovalNotFound
		}
		approval := ApprovalFromDataModel(approvalRow)

		appRow, err := w.repo.GetApplication(ctx, approval.ApplicationID)
		if err != nil {
			return internal.NewInternalError("failed to load leave application", err)
		}
		if appRow == nil {
			return ErrApplicationNotFound
		}
		app = FromDataModel(appRow)
		step = approval.Step

		if !approval.CanDecide(actor, app.UserID) {
			return ErrNotApprover
		}
		if approval.Status != ApprovalPending || app.Status != StatusPending {
			return ErrStaleApproval
		}

		now := w.clock()
		status := ApprovalApproved
		if dto.Action == ActionReject {
			status = ApprovalRejected
		}
		ok, err := w.repo.DecideApproval(ctx, approval.ID, status, actor.UserID, strings.TrimSpace(dto.Comments), now)
		if err != nil {
			return internal.NewInternalError("failed to record decision", err)
		}
		if !ok {
			return ErrStaleApproval
		}

		if dto.Action == ActionReject {
			if err := w.transition(ctx, app, StatusRejected, now); err != nil {
				return err
			}
			if err := w.repo.DeletePendingApprovals(ctx, app.ID); err != nil {
				return internal.NewInternalError("failed to close approval chain", err)
			}
			eventType = events.EventTypeLeaveRejected
			return nil
		}

		applicant, err := w.directory.GetUser(ctx, app.UserID)
		if err != nil {
			return internal.NewInternalError("failed to load applicant", err)
		}
		if applicant == nil {
			return internal.NewNotFoundError("applicant no longer exists", internal.ErrCodeUserNotFound)
		}

		rows, err := w.repo.ListApprovals(ctx, app.ID)
		if err != nil {
			return internal.NewInternalError("failed to load approval chain", err)
		}
		chain := ChainFromRows(rows)

		next, err = w.router.Next(ctx, applicant, approval.ApproverRole, chain.ApprovedBy())
		if err != nil {
			return err
		}
		if next != nil {
			eventType = events.EventTypeLeaveStepApproved
			return w.openStep(ctx, app.ID, approval.Step+1, next)
		}

		if !chain.IsComplete() {
			return ErrStaleApproval
		}
		if err := w.transition(ctx, app, StatusApproved, now); err != nil {
			return err
		}
		if err := w.ledger.Debit(ctx, app.UserID, app.LeaveTypeID, app.BalanceYear(), app.WorkingDays); err != nil {
			return err
		}
		completed = true
		eventType = events.EventTypeLeaveApproved
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to record decision")
	}

	w.logger.Info("leave decision recorded",
		"application_id", app.ID,
		"approval_id", approvalID,
		"step", step,
		"action", dto.Action,
		"actor_id", actor.UserID,
		"status", app.Status)

	detailed, err := w.loadDetail(ctx, app.ID)
	if err == nil {
		app = detailed
	}
	w.publish(ctx, eventType, app, actor.UserID, step, next, strings.TrimSpace(dto.Comments))
	return &DecisionResponse{Application: app, Completed: completed}, nil
}

// Cancel withdraws a pending application. Balances are untouched because they
// are only debited at final approval.
func (w *Workflow) Cancel(ctx context.Context, actor internal.AuthContext, applicationID int64) (*Application, error) {
	var app *Application

	err := w.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := w.repo.GetApplication(ctx, applicationID)
		if err != nil {
			return internal.NewInternalError("failed to load leave application", err)
		}
		if row == nil {
			return ErrApplicationNotFound
		}
		app = FromDataModel(row)

		if app.UserID != actor.UserID && !actor.IsHRAdmin() {
			return internal.ErrForbidden
		}
		if app.Status != StatusPending {
			return ErrNotPending
		}
		if err := w.transition(ctx, app, StatusCancelled, w.clock()); err != nil {
			return err
		}
		if err := w.repo.DeletePendingApprovals(ctx, app.ID); err != nil {
			return internal.NewInternalError("failed to close approval chain", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to cancel leave application")
	}

	w.logger.Info("leave application cancelled", "application_id", app.ID, "actor_id", actor.UserID)

	if detailed, err := w.loadDetail(ctx, app.ID); err == nil {
		app = detailed
	}
	w.publish(ctx, events.EventTypeLeaveCancelled, app, actor.UserID, 0, nil, "")
	return app, nil
}

// Get returns an application with its chain to its owner, to anyone on the
// chain and to HR admins.
func (w *Workflow) Get(ctx context.Context, actor internal.AuthContext, id int64) (*Application, error) {
	app, err := w.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := w.repo.ListApprovals(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load approval chain", err)
	}
	chain := ChainFromRows(rows)

	allowed := app.UserID == actor.UserID || actor.IsHRAdmin() || chain.Involves(actor.UserID)
	if !allowed {
		if current := chain.Current(); current == nil || !current.CanDecide(actor, app.UserID) {
			return nil, internal.ErrForbidden
		}
	}
	app.Approvals = chain.Steps()
	return app, nil
}

// CanView applies the access rule of Get without returning the application.
func (w *Workflow) CanView(ctx context.Context, actor internal.AuthContext, applicationID int64) error {
	_, err := w.Get(ctx, actor, applicationID)
	return err
}

func (w *Workflow) ListMine(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Application, error) {
	filter.UserID = actor.UserID
	return w.list(ctx, filter)
}

func (w *Workflow) ListAll(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Application, error) {
	if !actor.IsHRAdmin() {
		return nil, internal.ErrForbidden
	}
	return w.list(ctx, filter)
}

// PendingApprovals lists the steps the actor may decide right now.
func (w *Workflow) PendingApprovals(ctx context.Context, actor internal.AuthContext) ([]*PendingApproval, error) {
	rows, err := w.repo.ListOpenApprovalsFor(ctx, actor.UserID, actor.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pending approvals", err)
	}
	if len(rows) == 0 {
		return []*PendingApproval{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LeaveApplicationID)
	}
	apps, err := w.list(ctx, ListFilter{IDs: ids, Status: StatusPending, Limit: len(ids)})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*Application, len(apps))
	for _, a := range apps {
		byID[a.ID] = a
	}

	out := make([]*PendingApproval, 0, len(rows))
	for _, row := range rows {
		approval := ApprovalFromDataModel(row)
		app, ok := byID[approval.ApplicationID]
		if !ok || !approval.CanDecide(actor, app.UserID) {
			continue
		}
		out = append(out, &PendingApproval{Approval: approval, Application: app})
	}
	return out, nil
}

func (w *Workflow) list(ctx context.Context, filter ListFilter) ([]*Application, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, internal.NewValidationFieldError("status", "unknown status", internal.ErrCodeInvalidStatus)
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		if len(filter.IDs) == 0 {
			filter.Limit = 50
		}
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := w.repo.ListApplications(ctx, filter)
	if err != nil {
		w.logger.Error("failed to list leave applications", "error", err)
		return nil, internal.NewInternalError("failed to list leave applications", err)
	}
	out := make([]*Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDetail(row))
	}
	return out, nil
}

func (w *Workflow) loadDetail(ctx context.Context, id int64) (*Application, error) {
	rows, err := w.repo.ListApplications(ctx, ListFilter{IDs: []int64{id}, Limit: 1})
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave application", err)
	}
	if len(rows) == 0 {
		return nil, ErrApplicationNotFound
	}
	return FromDetail(rows[0]), nil
}

func (w *Workflow) transition(ctx context.Context, app *Application, to Status, at time.Time) error {
	ok, err := w.repo.TransitionApplication(ctx, app.ID, StatusPending, to, at)
	if err != nil {
		return internal.NewInternalError("failed to update leave application", err)
	}
	if !ok {
		return ErrStaleApproval
	}
	app.Status = to
	app.DecidedAt = &at
	return nil
}

func (w *Workflow) openStep(ctx context.Context, applicationID int64, step int, approver *Approver) error {
	row := &leaveDatamodel.LeaveApproval{
		LeaveApplicationID: applicationID,
		Step:               step,
		ApproverRole:       string(approver.Role),
		ApproverID:         approver.UserID,
		Status:             string(ApprovalPending),
	}
	if err := w.repo.CreateApproval(ctx, row); err != nil {
		return internal.NewInternalError("failed to open approval step", err)
	}
	return nil
}

func (w *Workflow) publish(ctx context.Context, eventType string, app *Application, actorID int64, step int, next *Approver, comments string) {
	if w.events == nil || eventType == "" {
		return
	}
	e := events.LeaveEvent{
		ApplicationID: app.ID,
		ApplicantID:   app.UserID,
		ActorID:       actorID,
		LeaveTypeName: app.LeaveTypeName,
		StartDate:     app.StartDate.String(),
		EndDate:       app.EndDate.String(),
		WorkingDays:   app.WorkingDays,
		Step:          step,
		Comments:      comments,
	}
	if next != nil {
		e.NextApproverIDs = next.DeciderIDs()
		e.NextApproverRole = string(next.Role)
	}
	if err := w.events.Publish(ctx, events.NewLeaveEvent(eventType, e)); err != nil {
		w.logger.Error("failed to publish leave event", "error", err, "event_type", eventType, "application_id", app.ID)
	}
}

func asAppError(err error, message string) error {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return internal.NewInternalError(message, err)
}
