// model/member.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	RoleParent MemberRole = "parent"
	RoleKid    MemberRole = "kid"
)

type Member struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	FullName  *string    `json:"full_name,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Role      MemberRole `json:"role"`
	// ParentID is a non-owning back-reference; deleting the guardian
	// nulls it out, it never cascades to the member itself.
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
