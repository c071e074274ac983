package domain

import (
	"fmt"
	"time"

	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	notifdomain "github.com/unicoop/convenios-backend/internal/notifications/domain"
)

// Action is one of the fixed status transitions.
type Action string

const (
	ActionSubmit              Action = "submit"
	ActionApprove             Action = "approve"
	ActionReject              Action = "reject"
	ActionCorrect             Action = "correct"
	ActionArchive             Action = "archive"
	ActionRequestModification Action = "request_modification"
)

// Folder is a well-known storage bucket agreements are filed into.
type Folder string

const (
	FolderPending  Folder = "pending"
	FolderApproved Folder = "approved"
	FolderRejected Folder = "rejected"
	FolderArchived Folder = "archived"
)

// Stamp names the lifecycle timestamp column a transition sets.
type Stamp int

const (
	StampNone Stamp = iota
	StampSubmitted
	StampApproved
	StampArchived
)

// Who may issue an action.
type Issuer int

const (
	IssuerOwner Issuer = iota
	IssuerAdmin
)

// Transition is one row of the workflow policy table.
type Transition struct {
	Action Action
	Issuer Issuer
	From   []string
	To     string
	Stamp  Stamp
	Folder Folder
	Event  notifdomain.Event
}

// transitions is the only place allowed moves are defined. Every route
// goes through Plan, so there is no other path into a status.
var transitions = map[Action]Transition{
	ActionSubmit: {
		Action: ActionSubmit,
		Issuer: IssuerOwner,
		From:   []string{StatusDraft, StatusInReview},
		To:     StatusSubmitted,
		Stamp:  StampSubmitted,
		Folder: FolderPending,
		Event:  notifdomain.EventCreated,
	},
	ActionApprove: {
		Action: ActionApprove,
		Issuer: IssuerAdmin,
		From:   []string{StatusSubmitted, StatusInReview, StatusModificationReview},
		To:     StatusApproved,
		Stamp:  StampApproved,
		Folder: FolderApproved,
		Event:  notifdomain.EventApproved,
	},
	ActionReject: {
		Action: ActionReject,
		Issuer: IssuerAdmin,
		From:   []string{StatusSubmitted, StatusInReview, StatusModificationReview},
		To:     StatusRejected,
		Folder: FolderRejected,
		Event:  notifdomain.EventRejected,
	},
	ActionCorrect: {
		Action: ActionCorrect,
		Issuer: IssuerAdmin,
		From:   []string{StatusSubmitted, StatusModificationReview},
		To:     StatusInReview,
		Folder: FolderPending,
		Event:  notifdomain.EventCorrected,
	},
	ActionArchive: {
		Action: ActionArchive,
		Issuer: IssuerAdmin,
		From:   []string{StatusInReview, StatusApproved, StatusRejected},
		To:     StatusArchived,
		Stamp:  StampArchived,
		Folder: FolderArchived,
		Event:  notifdomain.EventCustom,
	},
	ActionRequestModification: {
		Action: ActionRequestModification,
		Issuer: IssuerOwner,
		From:   []string{StatusApproved},
		To:     StatusModificationReview,
		Folder: FolderPending,
		Event:  notifdomain.EventCustom,
	},
}

// Caller is the authenticated user issuing an action. IP is only recorded.
type Caller struct {
	ID   string
	Role string
	IP   string
}

// CanReview reports whether the caller may read every agreement.
func (c Caller) CanReview() bool {
	return c.Role == authdomain.RoleAdmin || c.Role == authdomain.RoleReviewer
}

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
	return a, nil
}

// Lookup returns the policy row for an action.
func Lookup(action Action) (Transition, error) {
	t, ok := transitions[action]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return t, nil
}

// Actions lists every action in a stable order.
func Actions() []Action {
	return []Action{
		ActionSubmit,
		ActionApprove,
		ActionReject,
		ActionCorrect,
		ActionArchive,
		ActionRequestModification,
	}
}

// Plan checks authorization and precondition for applying action to c.
// Authorization is checked first, so a caller who may not act never learns
// whether the precondition held.
func Plan(action Action, caller Caller, c *Convenio) (Transition, error) {
	t, err := Lookup(action)
	if err != nil {
		return Transition{}, err
	}

	switch t.Issuer {
	case IssuerAdmin:
		if caller.Role != authdomain.RoleAdmin {
			return Transition{}, ErrUnauthorized
		}
	case IssuerOwner:
		if caller.ID == "" || caller.ID != c.OwnerID {
			return Transition{}, ErrUnauthorized
		}
	}

	if !t.Allows(c.Status) {
		return Transition{}, fmt.Errorf("%w: cannot %s from %s", ErrInvalidPrecondition, action, c.Status)
	}
	return t, nil
}

// Allows reports whether the transition may start from status.
func (t Transition) Allows(status string) bool {
	for _, s := range t.From {
		if s == status {
			return true
		}
	}
	return false
}

// EventFrom is the notification event for the transition when it starts at from.
// A submit coming back from correction is a resubmission.
func (t Transition) EventFrom(from string) notifdomain.Event {
	if t.Action == ActionSubmit && from == StatusInReview {
		return notifdomain.EventResubmitted
	}
	return t.Event
}

// StatusUpdate is the row change produced by a transition.
type StatusUpdate struct {
	From        string
	To          string
	ReviewerID  *string
	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	ArchivedAt  *time.Time
}

// Update computes the status change for a planned transition.
func (t Transition) Update(current string, caller Caller, now time.Time) StatusUpdate {
	u := StatusUpdate{From: current, To: t.To}
	if t.Issuer == IssuerAdmin {
		id := caller.ID
		u.ReviewerID = &id
	}
	switch t.Stamp {
	case StampSubmitted:
		u.SubmittedAt = &now
	case StampApproved:
		u.ApprovedAt = &now
	case StampArchived:
		u.ArchivedAt = &now
	}
	return u
}

// Apply copies a status update onto c.
func (u StatusUpdate) Apply(c *Convenio) {
	c.Status = u.To
	if u.ReviewerID != nil {
		c.ReviewerID = u.ReviewerID
	}
	if u.SubmittedAt != nil {
		c.SubmittedAt = u.SubmittedAt
	}
	if u.ApprovedAt != nil {
		c.ApprovedAt = u.ApprovedAt
	}
	if u.ArchivedAt != nil {
		c.ArchivedAt = u.ArchivedAt
	}
}

// FolderForStatus is the bucket an agreement in status belongs to.
func FolderForStatus(status string) Folder {
	switch status {
	case StatusApproved:
		return FolderApproved
	case StatusRejected:
		return FolderRejected
	case StatusArchived:
		return FolderArchived
	default:
		return FolderPending
	}
}

// Editable reports whether the owner may still change the form data.
func Editable(status string) bool {
	return status == StatusDraft || status == StatusInReview
}

// IsValidStatus checks a raw status filter value.
func IsValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusSubmitted, StatusInReview, StatusModificationReview,
		StatusApproved, StatusRejected, StatusArchived:
		return true
	}
	return false
}
