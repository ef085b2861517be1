package billing

import "github.com/blagoySimandov/imagify/internal/models"

// Plan is a purchasable credit bundle. Amount is in whole currency units.
type Plan struct {
	ID          string
	DisplayName string
	Description string
	Credits     int64
	Amount      int64
}

// MinorAmount is the amount in the currency's smallest unit, as payment
// providers expect it.
func (p Plan) MinorAmount() int64 {
	return p.Amount * 100
}

// Plans is the only pricing table in the system.
var Plans = map[string]Plan{
	"Basic": {
		ID:          "Basic",
		DisplayName: "Basic",
		Description: "Best for personal use.",
		Credits:     100,
		Amount:      10,
	},
	"Advanced": {
		ID:          "Advanced",
		DisplayName: "Advanced",
		Description: "Best for business use.",
		Credits:     500,
		Amount:      50,
	},
	"Business": {
		ID:          "Business",
		DisplayName: "Business",
		Description: "Best for enterprise use.",
		Credits:     5000,
		Amount:      250,
	},
}

// PlanOrder defines the display ordering of plans.
var PlanOrder = []string{"Basic", "Advanced", "Business"}

// GetPlan returns a plan by its ID.
func GetPlan(id string) (Plan, error) {
	plan, ok := Plans[id]
	if !ok {
		return Plan{}, models.ErrUnknownPlan
	}
	return plan, nil
}
