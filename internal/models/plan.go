package models

// Plan is a subscription meal plan offered by a tavola calda.
type Plan struct {
	ID          string  `json:"id"`
	OwnerUID    string  `json:"userId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PlanType    string  `json:"planType"`
	BasePrice   float64 `json:"basePrice"`
}

// DummyPlan receives plan data from a JSON request before it is
// completed with an ID and an owner and stored as a Plan.
type DummyPlan struct {
	OwnerUID    string  `json:"userId,omitempty"`
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=500"`
	PlanType    string  `json:"planType" validate:"required"`
	BasePrice   float64 `json:"basePrice" validate:"required,gt=0"`
}
