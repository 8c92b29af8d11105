// internal/domain/execution.go
package domain

import "time"

// Execution statuses. Status transitions after insert belong to
// downstream fulfillment, not this service.
const (
	ExecutionStatusPending = "pending"
)

// Execution is one persisted rebalancing transfer header. Written only
// in live mode and never mutated afterwards by this service.
type Execution struct {
	ID         int64     `json:"id" db:"id"`
	PublicID   string    `json:"public_id" db:"public_id"`
	Alias      string    `json:"alias" db:"alias"`
	Simulation bool      `json:"simulation" db:"simulation"`
	Status     string    `json:"status" db:"status"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Allocation is one line-item transfer belonging to an Execution.
type Allocation struct {
	ID          int64     `json:"id" db:"id"`
	ExecutionID int64     `json:"execution_id" db:"execution_id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Calculation []byte    `json:"calculation" db:"calculation"`
	PublicID    string    `json:"public_id" db:"public_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AllocationCalc is the JSON audit blob stored on each allocation.
type AllocationCalc struct {
	Reason  string `json:"reason"`
	Urgency int    `json:"urgency"`
	From    string `json:"from"`
	To      string `json:"to"`
}
