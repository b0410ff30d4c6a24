package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// EventView is the API shape of a payment audit row.
type EventView struct {
	ID              uuid.UUID              `json:"id"`
	Type            enums.PaymentEventType `json:"type"`
	PreviousStatus  enums.PaymentStatus    `json:"previous_status"`
	RequestedStatus enums.PaymentStatus    `json:"requested_status"`
	FinalStatus     enums.PaymentStatus    `json:"final_status"`
	PreviousPaid    money.Money            `json:"previous_paid"`
	InputAmount     money.Money            `json:"input_amount"`
	NewPaid         money.Money            `json:"new_paid"`
	ChangeAmount    money.Money            `json:"change_amount"`
	RemainingAmount money.Money            `json:"remaining_amount"`
	PaymentMethodID *uuid.UUID             `json:"payment_method_id"`
	Metadata        json.RawMessage        `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// NewEventViews maps stored events. Metadata that is not valid JSON is dropped.
func NewEventViews(events []models.PaymentEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		view := EventView{
			ID:              e.ID,
			Type:            e.Type,
			PreviousStatus:  e.PreviousStatus,
			RequestedStatus: e.RequestedStatus,
			FinalStatus:     e.FinalStatus,
			PreviousPaid:    e.PreviousPaid,
			InputAmount:     e.InputAmount,
			NewPaid:         e.NewPaid,
			ChangeAmount:    e.ChangeAmount,
			RemainingAmount: e.RemainingAmount,
			PaymentMethodID: e.PaymentMethodID,
			CreatedAt:       e.CreatedAt,
		}
		if e.Metadata != nil && json.Valid([]byte(*e.Metadata)) {
			view.Metadata = json.RawMessage(*e.Metadata)
		}
		out = append(out, view)
	}
	return out
}
