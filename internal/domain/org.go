package domain

import "time"

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusInactive  OrgStatus = "inactive"
	OrgStatusPending   OrgStatus = "pending"
	OrgStatusSuspended OrgStatus = "suspended"
)

// OrgSettings controls the self-service join flow.
type OrgSettings struct {
	AllowPublicJoin bool   `json:"allow_public_join"`
	RequireApproval bool   `json:"require_approval"`
	MaxMembers      *int32 `json:"max_members,omitempty"`
}

type Organization struct {
	ID          int32       `json:"id"`
	Name        string      `json:"name"` // unique case-insensitively
	Description string      `json:"description"`
	AdminUserID int32       `json:"admin_user_id"` // one user administers at most one org
	Status      OrgStatus   `json:"status"`
	Settings    OrgSettings `json:"settings"`
	MemberCount int32       `json:"member_count"`
	CreatedOn   time.Time   `json:"created_on"`
	UpdatedOn   time.Time   `json:"updated_on"`
}
