// Package ops holds the typed records for the back-office domain: team
// members, products, goals ("targets"), credit ledger records, and login
// accounts. JSON tags match the wire shapes consumed by the frontend.
package ops

import "time"

// ProductStatus enumerates the product lifecycle. Deleting a product is a
// soft transition to StatusTrashed, never row removal.
type ProductStatus string

const (
	StatusPending     ProductStatus = "Pending"
	StatusActive      ProductStatus = "Active"
	StatusAbandoned   ProductStatus = "Abandoned"
	StatusMaintenance ProductStatus = "Maintenance"
	StatusTrashed     ProductStatus = "Trashed"
)

// LifecycleStage tracks where an active product sits in its operating arc.
type LifecycleStage string

const (
	StageNewArrival  LifecycleStage = "new_arrival"
	StageExplosion   LifecycleStage = "explosion"
	StageMaintenance LifecycleStage = "maintenance"
)

// Member is a team member with a gamified credit score.
// CreditHistory is derived: joined from credit_records on every read,
// newest first, and never persisted with the member row.
type Member struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar"`
	Role          string         `json:"role"`
	Contact       string         `json:"contact"`
	CreditScore   int            `json:"creditScore"`
	CreditHistory []CreditRecord `json:"creditHistory,omitempty"`
}

// CreditRecord is one immutable audit entry in the credit ledger.
// Records are append-only: never updated or deleted by normal operation.
// At most one record may exist per (UserID, EventType, RelatedID, CycleKey).
type CreditRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	EventType string    `json:"eventType"`
	RelatedID string    `json:"relatedId"`
	CycleKey  string    `json:"cycleKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is a catalog item partitioned by workspace.
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ProductID        string           `json:"productId"`
	Image            string           `json:"image"`
	StoreName        string           `json:"storeName"`
	Link             string           `json:"link"`
	ProfitLink       string           `json:"profitLink,omitempty"`
	ImagePackagePath string           `json:"imagePackagePath,omitempty"`
	OperatorID       string           `json:"operatorId"`
	Status           ProductStatus    `json:"status"`
	Workspace        string           `json:"workspace"`
	DayCount         int              `json:"dayCount"`
	History          []map[string]any `json:"history"`
	TaskProgress     map[string]any   `json:"taskProgress"`
	Strategy         string           `json:"strategy,omitempty"`
	LifecycleStage   LifecycleStage   `json:"lifecycleStage,omitempty"`
	LastUpdateDate   string           `json:"lastUpdateDate,omitempty"`
	AnalysisRecords  []map[string]any `json:"analysisRecords,omitempty"`
}

// Target is a goal partitioned by workspace. A non-empty CompletedAt is the
// sole "done" signal.
type Target struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Priority         string   `json:"priority"`
	Deadline         string   `json:"deadline"`
	CompletedAt      string   `json:"completedAt,omitempty"`
	CompletionNote   string   `json:"completionNote,omitempty"`
	CompletionImages []string `json:"completionImages,omitempty"`
	OperatorID       string   `json:"operatorId"`
	Workspace        string   `json:"workspace"`
}

// AdminUser is a login account. Column names follow the admin_users table.
type AdminUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	DisplayName    string `json:"display_name"`
	Role           string `json:"role"`
}

// DefaultWorkspace is the partition assumed when a caller names none.
const DefaultWorkspace = "Tmall"
