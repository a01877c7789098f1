package types

// Tags attached to memory records by the built-in flows
const (
	TagChat         = "chat"
	TagSystem       = "system"
	TagCheckin      = "checkin"
	TagReflection   = "reflection"
	TagDailyPlan    = "daily_plan"
	TagMood         = "mood"
	TagProfile      = "profile"
	TagPersonalInfo = "personal_info"
)

// Metadata keys stamped on memory records
const (
	MetaUserID     = "user_id"
	MetaCreatedAt  = "created_at"
	MetaType       = "type"
	MetaRole       = "role"
	MetaTimestamp  = "timestamp"
	MetaDate       = "date"
	MetaMood       = "mood"
	MetaQuestionID = "question_id"
)
