package content

import "slices"

const (
	BriefNew      = "new"
	BriefReviewed = "reviewed"
	BriefArchived = "archived"
)

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
)

var (
	Categories = []string{"Visual Identity", "Event Branding", "Editorial Design", "Digital Interface"}

	BriefStatuses  = []string{BriefNew, BriefReviewed, BriefArchived}
	ReviewStatuses = []string{ReviewPending, ReviewApproved}

	BudgetTiers = []string{"Request Quotation", "Under $2,500", "$2,500 - $7,500", "$7,500 - $15,000", "$15,000+"}
	Timelines   = []string{"2 Weeks", "1 Month", "3 Months", "Flexible"}

	Deliverables = []string{"Logotype", "Visual Identity System", "Social Media Kit", "Web/App Interface", "Print Collateral", "Brand Manual"}
)

const (
	DefaultBudget   = "Request Quotation"
	DefaultTimeline = "1 Month"
	DefaultCategory = "Visual Identity"
)

func IsCategory(s string) bool     { return slices.Contains(Categories, s) }
func IsBriefStatus(s string) bool  { return slices.Contains(BriefStatuses, s) }
func IsReviewStatus(s string) bool { return slices.Contains(ReviewStatuses, s) }
func IsBudgetTier(s string) bool   { return slices.Contains(BudgetTiers, s) }
func IsTimeline(s string) bool     { return slices.Contains(Timelines, s) }
func IsDeliverable(s string) bool  { return slices.Contains(Deliverables, s) }

// NextReviewStatus flips pending and approved.
func NextReviewStatus(current string) string {
	if current == ReviewApproved {
		return ReviewPending
	}
	return ReviewApproved
}
