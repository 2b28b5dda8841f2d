package catalog

// Plan tier identifiers. The set is closed: a stored plan id outside of it is
// treated as catalog drift and resolved back to the free tier.
const (
	PlanFree = "free"
	PlanEdu  = "edu"
	PlanPro  = "pro"
)

// Money represents a monetary amount in the smallest currency unit.
// For example, $29.99 USD would be Amount: 2999, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`   // Amount in smallest currency unit (cents for USD)
	Currency string `yaml:"currency"` // ISO 4217 currency code
}

// Plan describes a subscription tier and its resource caps.
// Plans are immutable after catalog construction; there is no runtime
// mutation path, definitions are provisioned by an external seeding step.
type Plan struct {
	ID                  string `yaml:"id"`
	Name                string `yaml:"name"`
	Price               Money  `yaml:"price"`
	DurationDays        int    `yaml:"duration_days"`
	MaxCourses          int64  `yaml:"max_courses"`            // Cap on cumulative course creations
	MaxModulesPerCourse int64  `yaml:"max_modules_per_course"` // Scoped to a single course, not a global counter
	RegenerationLimit   int64  `yaml:"regeneration_limit"`     // Consumed by the generation collaborator
	CertificateAccess   bool   `yaml:"certificate_access"`     // Consumed by the certificate collaborator
}

// DefaultPlans returns the built-in plan set used when no external source is
// configured. Values mirror the seeded production catalog.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		PlanFree: {
			ID:                  PlanFree,
			Name:                "Normal User",
			Price:               Money{Amount: 0, Currency: "USD"},
			DurationDays:        36500,
			MaxCourses:          1,
			MaxModulesPerCourse: 8,
			RegenerationLimit:   5,
			CertificateAccess:   false,
		},
		PlanEdu: {
			ID:                  PlanEdu,
			Name:                "Educational User",
			Price:               Money{Amount: 0, Currency: "USD"},
			DurationDays:        365,
			MaxCourses:          12,
			MaxModulesPerCourse: 4,
			RegenerationLimit:   20,
			CertificateAccess:   true,
		},
		PlanPro: {
			ID:                  PlanPro,
			Name:                "Pro User",
			Price:               Money{Amount: 2999, Currency: "USD"},
			DurationDays:        30,
			MaxCourses:          9999,
			MaxModulesPerCourse: 8,
			RegenerationLimit:   9999,
			CertificateAccess:   true,
		},
	}
}
