package pool

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeFullTime  JobType = "FULL_TIME"
	JobTypePartTime  JobType = "PART_TIME"
	JobTypeContract  JobType = "CONTRACT"
	JobTypeFreelance JobType = "FREELANCE"
)

func ParseJobType(s string) (JobType, bool) {
	jt := JobType(s)
	switch jt {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance:
		return jt, true
	}
	return "", false
}

// SkillRequirement pairs a skill category with the minimum credential
// level a candidate must prove for it.
type SkillRequirement struct {
	Category     string
	MinimumLevel int
}

// Pool is one job opening with the company's stake held in escrow.
// FeeRateBP is snapshotted at creation so later platform fee changes
// never apply to in-flight pools.
type Pool struct {
	ID                int64
	Company           uuid.UUID
	Title             string
	Description       string
	JobType           JobType
	Requirements      []SkillRequirement
	SalaryMin         int64
	SalaryMax         int64
	StakeAmount       int64
	FeeRateBP         int
	Deadline          time.Time
	CreatedAt         time.Time
	Status            Status
	SelectedCandidate *uuid.UUID
	Location          string
	IsRemote          bool

	TotalApplications int
}

// Application is one candidate's bid into a pool, with the candidate's
// counter-stake held in escrow. At most one exists per (pool, candidate).
type Application struct {
	PoolID        int64
	Candidate     uuid.UUID
	CredentialIDs []int64
	StakeAmount   int64
	AppliedAt     time.Time
	Status        ApplicationStatus
	MatchScore    int
	CoverLetter   string
	Portfolio     string
}
