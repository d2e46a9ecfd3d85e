package domain

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "Active"
	MembershipStatusSuspended MembershipStatus = "Suspended"
	MembershipStatusExpired   MembershipStatus = "Expired"
)

type MembershipType string

const (
	MembershipTypeMember MembershipType = "Member"
	MembershipTypeStaff  MembershipType = "Staff"
)

// Member is a library patron. Only Active members may borrow or reserve.
type Member struct {
	ID     string
	Name   string
	Email  string
	Status MembershipStatus
	Type   MembershipType
}

func (m Member) IsActive() bool {
	return m.Status == MembershipStatusActive
}

func (m Member) IsStaff() bool {
	return m.Type == MembershipTypeStaff
}
