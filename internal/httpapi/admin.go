// Admin handlers: cross-workspace statistics, account management, and the
// manual credit adjustment path. All of them sit behind RequireAuth.
package httpapi

import (
	"errors"
	"net/http"
	"sort"

	chi "github.com/go-chi/chi/v5"

	"github.com/bossops/opsdeck/internal/auth"
	"github.com/bossops/opsdeck/internal/errs"
	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

type statsOverview struct {
	TotalMembers         int `json:"totalMembers"`
	TotalProducts        int `json:"totalProducts"`
	TotalTargets         int `json:"totalTargets"`
	CompletedTargets     int `json:"completedTargets"`
	TargetCompletionRate int `json:"targetCompletionRate"`
	AvgCredit            int `json:"avgCredit"`
	MaxCredit            int `json:"maxCredit"`
	MinCredit            int `json:"minCredit"`
}

type creditDistribution struct {
	Danger    int `json:"danger"`
	Normal    int `json:"normal"`
	Good      int `json:"good"`
	Excellent int `json:"excellent"`
	Legendary int `json:"legendary"`
}

type workspaceStats struct {
	Products         int `json:"products"`
	Targets          int `json:"targets"`
	CompletedTargets int `json:"completedTargets"`
}

type memberRank struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CreditScore int    `json:"creditScore"`
}

type statsResponse struct {
	Overview                  statsOverview             `json:"overview"`
	CreditDistribution        creditDistribution        `json:"creditDistribution"`
	ProductStatusDistribution map[string]int            `json:"productStatusDistribution"`
	WorkspaceComparison       map[string]workspaceStats `json:"workspaceComparison"`
	MemberRanking             []memberRank              `json:"memberRanking"`
}

// workspaces aggregated by the admin dashboard.
var statsWorkspaces = []string{"Tmall", "TaoFactory"}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberRows, err := s.store.SelectAll(ctx, storage.CollectionMembers, storage.Query{})
	if err != nil {
		serverError(w, err, "could not fetch members")
		return
	}
	members, err := storage.DecodeAll[ops.Member](memberRows)
	if err != nil {
		serverError(w, err, "could not decode members")
		return
	}

	var allProducts []ops.Product
	var allTargets []ops.Target
	comparison := make(map[string]workspaceStats, len(statsWorkspaces))
	for _, ws := range statsWorkspaces {
		productRows, err := s.store.SelectAll(ctx, storage.CollectionProducts, storage.Query{
			Filters: storage.Filters{"workspace": ws},
		})
		if err != nil {
			serverError(w, err, "could not fetch products")
			return
		}
		products, err := storage.DecodeAll[ops.Product](productRows)
		if err != nil {
			serverError(w, err, "could not decode products")
			return
		}
		targetRows, err := s.store.SelectAll(ctx, storage.CollectionTargets, storage.Query{
			Filters: storage.Filters{"workspace": ws},
		})
		if err != nil {
			serverError(w, err, "could not fetch targets")
			return
		}
		targets, err := storage.DecodeAll[ops.Target](targetRows)
		if err != nil {
			serverError(w, err, "could not decode targets")
			return
		}
		completed := 0
		for _, t := range targets {
			if t.CompletedAt != "" {
				completed++
			}
		}
		comparison[comparisonKey(ws)] = workspaceStats{
			Products:         len(products),
			Targets:          len(targets),
			CompletedTargets: completed,
		}
		allProducts = append(allProducts, products...)
		allTargets = append(allTargets, targets...)
	}

	completedTargets := 0
	for _, t := range allTargets {
		if t.CompletedAt != "" {
			completedTargets++
		}
	}
	completionRate := 0
	if len(allTargets) > 0 {
		completionRate = int(float64(completedTargets)/float64(len(allTargets))*100 + 0.5)
	}

	var sum, maxCredit, minCredit int
	dist := creditDistribution{}
	for i, m := range members {
		score := m.CreditScore
		sum += score
		if i == 0 || score > maxCredit {
			maxCredit = score
		}
		if i == 0 || score < minCredit {
			minCredit = score
		}
		switch {
		case score < 60:
			dist.Danger++
		case score < 100:
			dist.Normal++
		case score < 150:
			dist.Good++
		case score < 180:
			dist.Excellent++
		default:
			dist.Legendary++
		}
	}
	avgCredit := 0
	if len(members) > 0 {
		avgCredit = int(float64(sum)/float64(len(members)) + 0.5)
	}

	statusDist := make(map[string]int)
	for _, p := range allProducts {
		status := string(p.Status)
		if status == "" {
			status = string(ops.StatusPending)
		}
		statusDist[status]++
	}

	ranking := make([]memberRank, 0, len(members))
	for _, m := range members {
		ranking = append(ranking, memberRank{ID: m.ID, Name: m.Name, Role: m.Role, CreditScore: m.CreditScore})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].CreditScore > ranking[j].CreditScore })

	toJSON(w, http.StatusOK, statsResponse{
		Overview: statsOverview{
			TotalMembers:         len(members),
			TotalProducts:        len(allProducts),
			TotalTargets:         len(allTargets),
			CompletedTargets:     completedTargets,
			TargetCompletionRate: completionRate,
			AvgCredit:            avgCredit,
			MaxCredit:            maxCredit,
			MinCredit:            minCredit,
		},
		CreditDistribution:        dist,
		ProductStatusDistribution: statusDist,
		WorkspaceComparison:       comparison,
		MemberRanking:             ranking,
	})
}

// comparisonKey lower-cases the leading rune so the JSON keys stay
// camelCase (tmall, taoFactory) as the dashboard expects.
func comparisonKey(workspace string) string {
	if workspace == "" {
		return workspace
	}
	return string(workspace[0]|0x20) + workspace[1:]
}

func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		serverError(w, err, "could not fetch users")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id == claims.UserID {
		badRequest(w, "cannot delete the current account")
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w, "user not found")
			return
		}
		serverError(w, err, "could not delete user")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) adminResetPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.NewPassword == "" {
		badRequest(w, "newPassword is required")
		return
	}
	if err := s.users.SetPassword(r.Context(), id, req.NewPassword); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w, "user not found")
			return
		}
		serverError(w, err, "could not reset password")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) adminAdjustCredit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req adjustCreditRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Reason == "" {
		badRequest(w, "reason is required")
		return
	}
	newScore, err := s.credit.Adjust(r.Context(), id, req.Change, req.Reason)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w, "member not found")
			return
		}
		serverError(w, err, "could not adjust credit")
		return
	}
	toJSON(w, http.StatusOK, adjustCreditResponse{OK: true, NewScore: newScore})
}
