// Package authz is the single authorization point consulted by every
// service. Read paths ask for a scope that narrows list queries; write
// paths ask for an allow/deny decision. Scope narrowing never errors
// (an out-of-scope read yields an empty result), while a denied write
// always surfaces domain.ErrPermissionDenied.
package authz

import (
	"fmt"
	"time"

	"acetrack-backend/internal/domain"
)

// Actor is the authenticated caller identity. OrgID is the organization
// the actor administers, resolved once per request by the HTTP
// middleware; it is nil for non-org_admins and for org_admins that do
// not currently own an organization.
type Actor struct {
	UserID        int32
	Role          domain.Role
	OrgID         *int32
	Authenticated bool
}

// Anonymous is the actor used for unauthenticated requests.
func Anonymous() Actor {
	return Actor{}
}

func (a Actor) isAdmin() bool {
	return a.Authenticated && a.Role == domain.RoleAdmin
}

func (a Actor) administers(orgID int32) bool {
	return a.Authenticated && a.Role == domain.RoleOrgAdmin && a.OrgID != nil && *a.OrgID == orgID
}

// EventScope narrows an event list or single-event read.
type EventScope struct {
	None           bool // result set is empty regardless of filters
	OrgID          *int32
	Status         *domain.EventStatus
	IncludeDeleted bool
}

// EventReadScope computes the visibility of events for an actor. Only
// admins may see soft-deleted events, and only on explicit request. An
// org_admin is pinned to their own organization no matter what filter
// the request carried; owning no organization yields the empty scope.
func EventReadScope(a Actor, includeDeleted bool) EventScope {
	switch {
	case a.isAdmin():
		return EventScope{IncludeDeleted: includeDeleted}
	case a.Authenticated && a.Role == domain.RoleOrgAdmin:
		if a.OrgID == nil {
			return EventScope{None: true}
		}
		return EventScope{OrgID: a.OrgID}
	default:
		published := domain.EventStatusPublished
		return EventScope{Status: &published}
	}
}

// MemberScope narrows a members list. There is no member-role read path
// for the members list at all, so computing the scope can fail.
type MemberScope struct {
	None  bool
	OrgID *int32
}

func MemberReadScope(a Actor) (MemberScope, error) {
	switch {
	case a.isAdmin():
		return MemberScope{}, nil
	case a.Authenticated && a.Role == domain.RoleOrgAdmin:
		if a.OrgID == nil {
			return MemberScope{None: true}, nil
		}
		return MemberScope{OrgID: a.OrgID}, nil
	default:
		return MemberScope{}, fmt.Errorf("%w: members list requires admin or org_admin", domain.ErrPermissionDenied)
	}
}

// SubscriptionScope narrows a subscriptions list. A caller-supplied
// organization filter is honored for admins and ownership-checked for
// org_admins; it is never trusted blindly.
type SubscriptionScope struct {
	None  bool
	OrgID *int32
}

func SubscriptionReadScope(a Actor, requestedOrgID *int32) (SubscriptionScope, error) {
	switch {
	case a.isAdmin():
		return SubscriptionScope{OrgID: requestedOrgID}, nil
	case a.Authenticated && a.Role == domain.RoleOrgAdmin:
		if a.OrgID == nil {
			return SubscriptionScope{None: true}, nil
		}
		if requestedOrgID != nil && *requestedOrgID != *a.OrgID {
			return SubscriptionScope{None: true}, nil
		}
		return SubscriptionScope{OrgID: a.OrgID}, nil
	default:
		return SubscriptionScope{}, fmt.Errorf("%w: subscriptions list requires admin or org_admin", domain.ErrPermissionDenied)
	}
}

// OrganizationScope narrows an organization list or read. Everyone but
// an admin sees active organizations only.
type OrganizationScope struct {
	Status *domain.OrgStatus
}

func OrganizationReadScope(a Actor) OrganizationScope {
	if a.isAdmin() {
		return OrganizationScope{}
	}
	active := domain.OrgStatusActive
	return OrganizationScope{Status: &active}
}

// CanCreateEvent permits admins anywhere and org_admins inside their
// own organization.
func CanCreateEvent(a Actor, orgID int32) error {
	if a.isAdmin() || a.administers(orgID) {
		return nil
	}
	return fmt.Errorf("%w: creating events requires admin or the organization's org_admin", domain.ErrPermissionDenied)
}

// CanModifyEvent covers update and delete. The creator clause stands on
// its own so an event outlives its author's role changes.
func CanModifyEvent(a Actor, e *domain.Event) error {
	if a.isAdmin() || a.administers(e.OrgID) {
		return nil
	}
	if a.Authenticated && a.UserID == e.CreatedBy {
		return nil
	}
	return fmt.Errorf("%w: not allowed to modify this event", domain.ErrPermissionDenied)
}

// CanEditSchedule guards date and time-window edits of events that are
// already running or finished. Checked before field validation.
func CanEditSchedule(a Actor, e *domain.Event) error {
	if e.Status == domain.EventStatusOngoing || e.Status == domain.EventStatusCompleted {
		if !a.isAdmin() {
			return fmt.Errorf("%w: schedule of an %s event can only be changed by an admin", domain.ErrPermissionDenied, e.Status)
		}
	}
	return nil
}

// CanSoftDeleteEvent blocks deleting ongoing or completed events for
// everyone but admins, on top of the generic modify check.
func CanSoftDeleteEvent(a Actor, e *domain.Event) error {
	if err := CanModifyEvent(a, e); err != nil {
		return err
	}
	if e.Status == domain.EventStatusOngoing || e.Status == domain.EventStatusCompleted {
		if !a.isAdmin() {
			return fmt.Errorf("%w: an %s event can only be deleted by an admin", domain.ErrPermissionDenied, e.Status)
		}
	}
	return nil
}

// CanHardDeleteEvent and CanRestoreEvent are admin-only escape hatches
// for soft-deleted events.
func CanHardDeleteEvent(a Actor) error {
	if a.isAdmin() {
		return nil
	}
	return fmt.Errorf("%w: permanent deletion requires admin", domain.ErrPermissionDenied)
}

func CanRestoreEvent(a Actor) error {
	if a.isAdmin() {
		return nil
	}
	return fmt.Errorf("%w: restoring events requires admin", domain.ErrPermissionDenied)
}

// CanTransitionEvent gates status changes. Unlike CanModifyEvent there
// is no creator clause here.
func CanTransitionEvent(a Actor, e *domain.Event) error {
	if a.isAdmin() || a.administers(e.OrgID) {
		return nil
	}
	return fmt.Errorf("%w: status changes require admin or the organization's org_admin", domain.ErrPermissionDenied)
}

// CanManageMembers covers add, approve, update and remove of
// organization members. A bare member role is always denied.
func CanManageMembers(a Actor, orgID int32) error {
	if a.isAdmin() || a.administers(orgID) {
		return nil
	}
	return fmt.Errorf("%w: member management requires admin or the organization's org_admin", domain.ErrPermissionDenied)
}

// CanCreateOrganization only requires an authenticated caller; the
// one-org-per-admin and name-uniqueness rules are entity conflicts
// checked by the organization service.
func CanCreateOrganization(a Actor) error {
	if a.Authenticated {
		return nil
	}
	return fmt.Errorf("%w: creating an organization requires authentication", domain.ErrPermissionDenied)
}

func CanModifyOrganization(a Actor, org *domain.Organization) error {
	if a.isAdmin() {
		return nil
	}
	if a.Authenticated && a.UserID == org.AdminUserID {
		return nil
	}
	return fmt.Errorf("%w: not allowed to modify this organization", domain.ErrPermissionDenied)
}

func CanCreateSubscription(a Actor, orgID int32) error {
	if a.isAdmin() || a.administers(orgID) {
		return nil
	}
	return fmt.Errorf("%w: creating subscriptions requires admin or the organization's org_admin", domain.ErrPermissionDenied)
}

func CanVerifySubscription(a Actor) error {
	if a.isAdmin() {
		return nil
	}
	return fmt.Errorf("%w: subscription verification requires admin", domain.ErrPermissionDenied)
}

func CanCancelSubscription(a Actor, sub *domain.Subscription) error {
	if a.isAdmin() || a.administers(sub.OrgID) {
		return nil
	}
	return fmt.Errorf("%w: cancelling subscriptions requires admin or the organization's org_admin", domain.ErrPermissionDenied)
}

// SubscriptionUpdate is a sparse patch; nil fields are untouched.
type SubscriptionUpdate struct {
	Duration      *domain.SubscriptionDuration
	StartDate     *time.Time
	AmountCents   *int32
	PaymentMethod *string
	ReceiptRef    *string
	Notes         *string
}

func (u SubscriptionUpdate) touchesRestricted() bool {
	return u.Duration != nil || u.StartDate != nil || u.AmountCents != nil || u.ReceiptRef != nil
}

// CanUpdateSubscription lets admins patch anything. An org_admin may
// only touch payment method and notes on their own organization's
// subscription; a patch carrying any other field is rejected whole.
func CanUpdateSubscription(a Actor, sub *domain.Subscription, u SubscriptionUpdate) error {
	if a.isAdmin() {
		return nil
	}
	if !a.administers(sub.OrgID) {
		return fmt.Errorf("%w: not allowed to update this subscription", domain.ErrPermissionDenied)
	}
	if u.touchesRestricted() {
		return fmt.Errorf("%w: org_admin may only update payment_method and notes", domain.ErrPermissionDenied)
	}
	return nil
}
