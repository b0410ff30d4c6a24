package catalog

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

type ServiceView struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Description  *string           `json:"description,omitempty"`
	Unit         enums.ServiceUnit `json:"unit"`
	Price        money.Money       `json:"price"`
	PriceLabel   string            `json:"price_label"`
	DurationDays int               `json:"duration_days"`
}

type PaymentMethodView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

func NewServiceViews(services []models.Service) []ServiceView {
	out := make([]ServiceView, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceView{
			ID:           s.ID,
			Name:         s.Name,
			Description:  s.Description,
			Unit:         s.Unit,
			Price:        s.Price,
			PriceLabel:   s.Price.Rupiah() + "/" + string(s.Unit),
			DurationDays: s.DurationDays,
		})
	}
	return out
}

func NewPaymentMethodViews(methods []models.PaymentMethod) []PaymentMethodView {
	out := make([]PaymentMethodView, 0, len(methods))
	for _, m := range methods {
		out = append(out, PaymentMethodView{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	return out
}
