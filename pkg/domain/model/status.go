package model

// Status summarizes what a user has set up so far
type Status struct {
	HasProfile        bool
	HasTodayPlan      bool
	UserName          string
	MessageCountToday int
}
