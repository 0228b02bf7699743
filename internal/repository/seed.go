package repository

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

var (
	seedSubjects = []string{
		"Login issues with SSO integration",
		"Database connectivity problems",
		"Performance degradation in production",
		"UI/UX feedback for dashboard",
		"API rate limiting concerns",
		"Security vulnerability report",
		"Feature request: Advanced filtering",
		"Mobile app synchronization issues",
		"Email notification not working",
		"Payment gateway integration bug",
	}
	seedCompanies = []string{"TechCorp", "DataSys", "CloudNet", "DevWorks", "InfoTech", "NetSolutions"}
	seedTags      = []string{"support", "bug", "feature"}
)

const (
	seedCreatedWindow = 30 * 24 * time.Hour
	seedUpdateWindow  = 7 * 24 * time.Hour
)

// GenerateTickets builds n demo tickets with ids TKT-0001 onward. Output is
// fully determined by rng and now.
func GenerateTickets(n int, rng *rand.Rand, now time.Time) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, n)
	for i := 1; i <= n; i++ {
		created := now.Add(-randDuration(rng, seedCreatedWindow))
		updated := now.Add(-randDuration(rng, seedUpdateWindow))
		if updated.Before(created) {
			updated = created
		}

		emailDomain := strings.ToLower(seedCompanies[rng.IntN(len(seedCompanies))])
		ticket := domain.Ticket{
			ID:       fmt.Sprintf("TKT-%04d", i),
			Subject:  seedSubjects[rng.IntN(len(seedSubjects))],
			Priority: domain.AllPriorities[rng.IntN(len(domain.AllPriorities))],
			Status:   domain.AllStatuses[rng.IntN(len(domain.AllStatuses))],
			Description: fmt.Sprintf("Detailed description for ticket %d. This ticket requires attention and proper "+
				"resolution to ensure customer satisfaction. The issue has been reported by the customer and needs "+
				"immediate action from our support team.", i),
			DateCreated: created,
			LastUpdate:  updated,
			Customer: domain.Customer{
				Name:    fmt.Sprintf("Customer %d", i),
				Email:   fmt.Sprintf("customer%d@%s.com", i, emailDomain),
				Company: seedCompanies[rng.IntN(len(seedCompanies))],
			},
			Tags: append([]string{}, seedTags[:rng.IntN(len(seedTags))+1]...),
		}
		if rng.Float64() > 0.3 {
			ticket.AssignedTo = &domain.Assignee{
				Name:      fmt.Sprintf("Agent %d", rng.IntN(10)+1),
				AvatarRef: fmt.Sprintf("avatars/agent-%d.jpg", rng.IntN(100_000_000)),
			}
		}
		tickets = append(tickets, ticket)
	}
	return tickets
}

// NewSeededRand returns a deterministic generator for seed, or a time based
// one when seed is zero.
func NewSeededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randDuration(rng *rand.Rand, max time.Duration) time.Duration {
	return time.Duration(rng.Int64N(int64(max)))
}
