package httpapi

import (
	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

// Members

type createMemberRequest struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Role        string `json:"role"`
	Contact     string `json:"contact"`
	CreditScore *int   `json:"creditScore"`
	// Optional linked login account, created alongside the member.
	Username    string `json:"username"`
	Password    string `json:"password"`
	AccountRole string `json:"accountRole"`
}

type updateMemberRequest struct {
	Name        *string `json:"name"`
	Avatar      *string `json:"avatar"`
	Role        *string `json:"role"`
	Contact     *string `json:"contact"`
	CreditScore *int    `json:"creditScore"`
}

func (r updateMemberRequest) patch() storage.Row {
	p := storage.Row{}
	if r.Name != nil {
		p["name"] = *r.Name
	}
	if r.Avatar != nil {
		p["avatar"] = *r.Avatar
	}
	if r.Role != nil {
		p["role"] = *r.Role
	}
	if r.Contact != nil {
		p["contact"] = *r.Contact
	}
	if r.CreditScore != nil {
		p["creditScore"] = *r.CreditScore
	}
	return p
}

// memberResponse always carries creditHistory, even when empty.
type memberResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Avatar        string             `json:"avatar"`
	Role          string             `json:"role"`
	Contact       string             `json:"contact"`
	CreditScore   int                `json:"creditScore"`
	CreditHistory []ops.CreditRecord `json:"creditHistory"`
}

func toMemberResponse(m ops.Member, history []ops.CreditRecord) memberResponse {
	if history == nil {
		history = []ops.CreditRecord{}
	}
	return memberResponse{
		ID:            m.ID,
		Name:          m.Name,
		Avatar:        m.Avatar,
		Role:          m.Role,
		Contact:       m.Contact,
		CreditScore:   m.CreditScore,
		CreditHistory: history,
	}
}

// Products

type createProductRequest struct {
	Name             string `json:"name"`
	ProductID        string `json:"productId"`
	Image            string `json:"image"`
	StoreName        string `json:"storeName"`
	Link             string `json:"link"`
	ProfitLink       string `json:"profitLink"`
	ImagePackagePath string `json:"imagePackagePath"`
	OperatorID       string `json:"operatorId"`
	Status           string `json:"status"`
	Workspace        string `json:"workspace"`
	Strategy         string `json:"strategy"`
	LifecycleStage   string `json:"lifecycleStage"`
}

type updateProductRequest struct {
	Name             *string          `json:"name"`
	ProductID        *string          `json:"productId"`
	Image            *string          `json:"image"`
	StoreName        *string          `json:"storeName"`
	Link             *string          `json:"link"`
	ProfitLink       *string          `json:"profitLink"`
	ImagePackagePath *string          `json:"imagePackagePath"`
	OperatorID       *string          `json:"operatorId"`
	Status           *string          `json:"status"`
	DayCount         *int             `json:"dayCount"`
	Strategy         *string          `json:"strategy"`
	LifecycleStage   *string          `json:"lifecycleStage"`
	LastUpdateDate   *string          `json:"lastUpdateDate"`
	TaskProgress     map[string]any   `json:"taskProgress"`
	History          []map[string]any `json:"history"`
	AnalysisRecords  []map[string]any `json:"analysisRecords"`
}

func (r updateProductRequest) patch() storage.Row {
	p := storage.Row{}
	if r.Name != nil {
		p["name"] = *r.Name
	}
	if r.ProductID != nil {
		p["productId"] = *r.ProductID
	}
	if r.Image != nil {
		p["image"] = *r.Image
	}
	if r.StoreName != nil {
		p["storeName"] = *r.StoreName
	}
	if r.Link != nil {
		p["link"] = *r.Link
	}
	if r.ProfitLink != nil {
		p["profitLink"] = *r.ProfitLink
	}
	if r.ImagePackagePath != nil {
		p["imagePackagePath"] = *r.ImagePackagePath
	}
	if r.OperatorID != nil {
		p["operatorId"] = *r.OperatorID
	}
	if r.Status != nil {
		p["status"] = *r.Status
	}
	if r.DayCount != nil {
		p["dayCount"] = *r.DayCount
	}
	if r.Strategy != nil {
		p["strategy"] = *r.Strategy
	}
	if r.LifecycleStage != nil {
		p["lifecycleStage"] = *r.LifecycleStage
	}
	if r.LastUpdateDate != nil {
		p["lastUpdateDate"] = *r.LastUpdateDate
	}
	if r.TaskProgress != nil {
		p["taskProgress"] = r.TaskProgress
	}
	if r.History != nil {
		p["history"] = r.History
	}
	if r.AnalysisRecords != nil {
		p["analysisRecords"] = r.AnalysisRecords
	}
	return p
}

// Targets

type createTargetRequest struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Priority   string `json:"priority"`
	Deadline   string `json:"deadline"`
	OperatorID string `json:"operatorId"`
	Workspace  string `json:"workspace"`
}

type updateTargetRequest struct {
	Title            *string  `json:"title"`
	Type             *string  `json:"type"`
	Priority         *string  `json:"priority"`
	Deadline         *string  `json:"deadline"`
	OperatorID       *string  `json:"operatorId"`
	CompletedAt      *string  `json:"completedAt"`
	CompletionNote   *string  `json:"completionNote"`
	CompletionImages []string `json:"completionImages"`
}

func (r updateTargetRequest) patch() storage.Row {
	p := storage.Row{}
	if r.Title != nil {
		p["title"] = *r.Title
	}
	if r.Type != nil {
		p["type"] = *r.Type
	}
	if r.Priority != nil {
		p["priority"] = *r.Priority
	}
	if r.Deadline != nil {
		p["deadline"] = *r.Deadline
	}
	if r.OperatorID != nil {
		p["operatorId"] = *r.OperatorID
	}
	if r.CompletedAt != nil {
		p["completedAt"] = *r.CompletedAt
	}
	if r.CompletionNote != nil {
		p["completionNote"] = *r.CompletionNote
	}
	if r.CompletionImages != nil {
		p["completionImages"] = r.CompletionImages
	}
	return p
}

// Credits

type triggerCreditRequest struct {
	UserID    string         `json:"userId"`
	EventType string         `json:"eventType"`
	RelatedID string         `json:"relatedId"`
	CycleKey  string         `json:"cycleKey"`
	Data      map[string]any `json:"data"`
}

type skippedResponse struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

type creditEventResponse struct {
	EventType      string `json:"eventType"`
	Change         int    `json:"change"`
	Reason         string `json:"reason,omitempty"`
	ReasonTemplate string `json:"reasonTemplate,omitempty"`
}

// Auth

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func toUserResponse(u ops.AdminUser) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: u.Role}
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        userResponse `json:"user"`
}

// Admin

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type adjustCreditRequest struct {
	Change int    `json:"change"`
	Reason string `json:"reason"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type adjustCreditResponse struct {
	OK       bool `json:"ok"`
	NewScore int  `json:"newScore"`
}
