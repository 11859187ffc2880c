package dto

import (
	"time"

	"github.com/google/uuid"

	"talent-ledger/internal/domain/pool"
)

type SkillRequirementDTO struct {
	Category     string `json:"category"`
	MinimumLevel int    `json:"minimum_level"`
}

type CreatePoolRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	JobType      string                `json:"job_type"`
	Requirements []SkillRequirementDTO `json:"requirements"`
	SalaryMin    int64                 `json:"salary_min"`
	SalaryMax    int64                 `json:"salary_max"`
	StakeAmount  int64                 `json:"stake_amount"`
	Deadline     time.Time             `json:"deadline"`
	Location     string                `json:"location"`
	IsRemote     bool                  `json:"is_remote"`
}

type ApplyRequest struct {
	CredentialIDs []int64 `json:"credential_ids"`
	StakeAmount   int64   `json:"stake_amount"`
	CoverLetter   string  `json:"cover_letter"`
	Portfolio     string  `json:"portfolio"`
}

type SelectCandidateRequest struct {
	Candidate uuid.UUID `json:"candidate"`
}

type ClosePoolRequest struct {
	Reason string `json:"reason"`
}

type PoolResponse struct {
	ID                int64                 `json:"id"`
	Company           uuid.UUID             `json:"company"`
	Title             string                `json:"title"`
	Description       string                `json:"description,omitempty"`
	JobType           string                `json:"job_type"`
	Requirements      []SkillRequirementDTO `json:"requirements"`
	SalaryMin         int64                 `json:"salary_min,omitempty"`
	SalaryMax         int64                 `json:"salary_max,omitempty"`
	StakeAmount       int64                 `json:"stake_amount"`
	FeeRateBP         int                   `json:"fee_rate_bp"`
	Deadline          time.Time             `json:"deadline"`
	CreatedAt         time.Time             `json:"created_at"`
	Status            string                `json:"status"`
	SelectedCandidate *uuid.UUID            `json:"selected_candidate,omitempty"`
	Location          string                `json:"location,omitempty"`
	IsRemote          bool                  `json:"is_remote"`
	TotalApplications int                   `json:"total_applications"`
}

func FromPool(p pool.Pool) PoolResponse {
	reqs := make([]SkillRequirementDTO, 0, len(p.Requirements))
	for _, r := range p.Requirements {
		reqs = append(reqs, SkillRequirementDTO{Category: r.Category, MinimumLevel: r.MinimumLevel})
	}
	return PoolResponse{
		ID:                p.ID,
		Company:           p.Company,
		Title:             p.Title,
		Description:       p.Description,
		JobType:           string(p.JobType),
		Requirements:      reqs,
		SalaryMin:         p.SalaryMin,
		SalaryMax:         p.SalaryMax,
		StakeAmount:       p.StakeAmount,
		FeeRateBP:         p.FeeRateBP,
		Deadline:          p.Deadline,
		CreatedAt:         p.CreatedAt,
		Status:            string(p.Status),
		SelectedCandidate: p.SelectedCandidate,
		Location:          p.Location,
		IsRemote:          p.IsRemote,
		TotalApplications: p.TotalApplications,
	}
}

func FromPools(pools []pool.Pool) []PoolResponse {
	out := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		out = append(out, FromPool(p))
	}
	return out
}

type ApplicationResponse struct {
	PoolID        int64     `json:"pool_id"`
	Candidate     uuid.UUID `json:"candidate"`
	CredentialIDs []int64   `json:"credential_ids"`
	StakeAmount   int64     `json:"stake_amount"`
	AppliedAt     time.Time `json:"applied_at"`
	Status        string    `json:"status"`
	MatchScore    int       `json:"match_score"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
	Portfolio     string    `json:"portfolio,omitempty"`
}

func FromApplication(a pool.Application) ApplicationResponse {
	return ApplicationResponse{
		PoolID:        a.PoolID,
		Candidate:     a.Candidate,
		CredentialIDs: a.CredentialIDs,
		StakeAmount:   a.StakeAmount,
		AppliedAt:     a.AppliedAt,
		Status:        string(a.Status),
		MatchScore:    a.MatchScore,
		CoverLetter:   a.CoverLetter,
		Portfolio:     a.Portfolio,
	}
}

func FromApplications(apps []pool.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, FromApplication(a))
	}
	return out
}
