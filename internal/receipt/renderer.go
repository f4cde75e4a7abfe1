package receipt

import (
	"errors"
	"fmt"

	"charity-receipts/internal/model"

	"github.com/osteele/liquid"
)

// ErrTemplate wraps any template parse or render failure. A failed render
// must prevent a sent transition, so it is surfaced, never swallowed.
var ErrTemplate = errors.New("template error")

// DefaultReceiptTemplate is used when a charity has not customized its
// receipt email.
const DefaultReceiptTemplate = `Dear customer,

Thank you for your donation of {{ donation.amount }} to {{ charity.name }} with order {{ order.name }}.

{{ charity.name }}
Charity No. {{ charity.charity_id }}`

const DefaultEmailSubject = "Donation receipt for your order"

type Renderer struct {
	engine *liquid.Engine
}

func NewRenderer() *Renderer {
	return &Renderer{
		engine: liquid.NewEngine(),
	}
}

// Render interpolates the template with the given bindings and returns the
// document bytes.
func (r *Renderer) Render(template string, bindings map[string]interface{}) ([]byte, error) {
	out, err := r.engine.ParseAndRender([]byte(template), bindings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return out, nil
}

// Bindings exposes shop, charity, donation and order fields for template
// interpolation. Nil inputs contribute nothing, so callers can render against
// partial context (e.g. a test email has no donation).
func Bindings(shop *model.Shop, charity *model.Charity, donation *model.Donation) map[string]interface{} {
	bindings := map[string]interface{}{}

	if shop != nil {
		bindings["shop"] = map[string]interface{}{
			"domain":       shop.Domain,
			"name":         shop.Name,
			"email":        shop.Email,
			"currency":     shop.Currency,
			"money_format": shop.MoneyFormat,
		}
	}

	if charity != nil {
		bindings["charity"] = map[string]interface{}{
			"name":       charity.Name,
			"charity_id": charity.CharityID,
		}
	}

	if donation != nil {
		bindings["donation"] = map[string]interface{}{
			"id":         donation.ID,
			"amount":     donation.Amount.StringFixed(2),
			"status":     string(donation.Status),
			"created_at": donation.CreatedAt,
		}
		bindings["order"] = map[string]interface{}{
			"id":   donation.OrderID,
			"name": donation.OrderName,
		}
	}

	return bindings
}

// OrderBinding overrides the order fields, e.g. with a sample order for
// preview rendering.
func OrderBinding(bindings map[string]interface{}, id int64, name string) map[string]interface{} {
	bindings["order"] = map[string]interface{}{
		"id":   id,
		"name": name,
	}
	return bindings
}
