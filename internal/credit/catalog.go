package credit

// Event maps an event type to its score delta and audit reason. Exactly one
// of Reason or ReasonTemplate is set; the template renders the day number
// carried in the trigger payload.
type Event struct {
	Change         int
	Reason         string
	ReasonTemplate string
}

// Catalog is the fixed set of score-affecting events. The admin path uses
// the synthetic EventAdminAdjust type instead and is never deduplicated.
var Catalog = map[string]Event{
	// Positive events.
	"TASK_COMPLETE":      {Change: 2, Reason: "completed an operating task step"},
	"DAY_COMPLETE":       {Change: 5, ReasonTemplate: "completed day %v operating cycle"},
	"VISUAL_ASSET_SAVED": {Change: 1, Reason: "saved an AI visual asset"},
	"GOAL_COMPLETE_ON_TIME": {Change: 3, Reason: "completed a goal on time"},
	"ASSET_COMPLETE":        {Change: 5, Reason: "product completed full operating flow"},
	"PUBLIC_POOL_TAKEN":     {Change: 1, Reason: "claimed a product from the public pool"},
	// Negative events.
	"GOAL_COMPLETE_LATE":             {Change: -1, Reason: "goal completed late"},
	"GOAL_OVERDUE_PENALTY":           {Change: -3, Reason: "goal overdue, not completed"},
	"WEEKLY_GOAL_COUNT_INSUFFICIENT": {Change: -2, Reason: "weekly goal count below target"},
	"MANUAL_ABANDON":                 {Change: -5, Reason: "manually abandoned an active product"},
	"ABANDON_WITHOUT_LOG":            {Change: -8, Reason: "abandoned product with no activity log"},
	"ENTER_TRASH":                    {Change: -3, Reason: "product discarded"},
	"EARLY_MAINTAIN":                 {Change: 2, Reason: "entered maintenance period early (good performance)"},
}

const (
	// EventAdminAdjust tags manual adjustments so they never collide with
	// catalog-driven events in the dedup check.
	EventAdminAdjust = "ADMIN_ADJUST"
	// CycleAdmin is the cycle key reserved for admin adjustments.
	CycleAdmin = "admin"
	// CycleDefault scopes deduplication when the caller names no cycle.
	CycleDefault = "default"
)
