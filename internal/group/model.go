package group

import "time"

// Type classifies a group. It is informational only: balance computation
// does not change between projects and trips.
type Type string

const (
	TypeProject Type = "PROJECT"
	TypeTrip    Type = "TRIP"
)

// Group represents a named container for members and expenses
type Group struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            Type       `json:"type"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	PrimaryLocation *string    `json:"primaryLocation,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Member represents a participant identity within one group. UserID is an
// optional link to a registered user; ad-hoc members have none.
type Member struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	UserID      *string   `json:"userId,omitempty"`
	DisplayName string    `json:"displayName"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
