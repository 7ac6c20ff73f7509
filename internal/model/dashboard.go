package model

import "github.com/shopspring/decimal"

// AdminDashboard aggregates platform-wide counters.
type AdminDashboard struct {
	TotalUsers           int64            `json:"totalUsers"`
	TotalCandidates      int64            `json:"totalCandidates"`
	TotalRecruiters      int64            `json:"totalRecruiters"`
	ActiveRecruiters     int64            `json:"activeRecruiters"`
	UnassignedCandidates int64            `json:"unassignedCandidates"`
	RecruitersAtCapacity int64            `json:"recruitersAtCapacity"`
	TotalApplications    int64            `json:"totalApplications"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	CandidatesByPayment  map[string]int64 `json:"candidatesByPaymentStatus"`
	ResumesGenerated     int64            `json:"resumesGenerated"`
	SubscriptionRevenue  decimal.Decimal  `json:"subscriptionRevenue"`
	RecentActivity       []ActivityLog    `json:"recentActivity"`
}

// RecruiterDashboard summarizes one recruiter's workload.
type RecruiterDashboard struct {
	Recruiter            *Recruiter       `json:"recruiter"`
	AssignedCandidates   int64            `json:"assignedCandidates"`
	MaxCandidates        int              `json:"maxCandidates"`
	Workload             float64          `json:"workload"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	ResumesGenerated     int64            `json:"resumesGenerated"`
}
