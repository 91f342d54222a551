package domain

import "time"

type User struct {
	ID        UserID
	Email     string
	Name      string
	Role      Role
	Blocked   bool
	Verified  bool
	CreatedAt time.Time
}

type UserPage struct {
	Users []User
	Total int
	Page  int
	Limit int
}

type DashboardMetrics struct {
	TotalUsers       int64
	ActiveUsers      int64
	TotalProblems    int64
	SubmissionsToday int64
}

// ActiveShare returns the active user share in percent, 0 when there are no users.
func (m DashboardMetrics) ActiveShare() float64 {
	if m.TotalUsers <= 0 {
		return 0
	}
	return float64(m.ActiveUsers) / float64(m.TotalUsers) * 100
}
