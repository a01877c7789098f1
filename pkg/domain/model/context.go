package model

// CurrentTimeLayout is the format of ContextBundle.CurrentTime
const CurrentTimeLayout = "2006-01-02 15:04:05 UTC"

// ContextBundle is the textual snapshot assembled for one reply. It is never persisted.
// Any section may be empty.
type ContextBundle struct {
	ProfileInfo string
	DailyPlan   string
	Memories    string
	ChatHistory string
	CurrentTime string
}
