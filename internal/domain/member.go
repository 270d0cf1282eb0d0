package domain

import "time"

type MemberRole string

const (
	MemberRoleOrgAdmin MemberRole = "org_admin"
	MemberRoleOfficer  MemberRole = "officer"
	MemberRoleMember   MemberRole = "member"
)

func ParseMemberRole(s string) (MemberRole, bool) {
	switch MemberRole(s) {
	case MemberRoleOrgAdmin, MemberRoleOfficer, MemberRoleMember:
		return MemberRole(s), true
	}
	return "", false
}

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
	MemberStatusPending  MemberStatus = "pending"
)

func ParseMemberStatus(s string) (MemberStatus, bool) {
	switch MemberStatus(s) {
	case MemberStatusActive, MemberStatusInactive, MemberStatusPending:
		return MemberStatus(s), true
	}
	return "", false
}

// Member links a user to an organization. The (org, user) pair is unique.
type Member struct {
	ID       int32        `json:"id"`
	OrgID    int32        `json:"org_id"`
	UserID   int32        `json:"user_id"`
	Role     MemberRole   `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedOn time.Time    `json:"joined_on"`
	Notes    string       `json:"notes,omitempty"`
}
