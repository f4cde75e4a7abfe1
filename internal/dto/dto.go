package dto

// Order is the subset of the commerce platform's order webhook payload the
// pipeline cares about. The payload shape is owned upstream; unknown fields
// are ignored.
type Order struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"` // display reference, e.g. "#1001"
	Email     string      `json:"email"`
	Customer  *Customer   `json:"customer"`
	LineItems []*LineItem `json:"line_items"`
}

type Customer struct {
	Email string `json:"email"`
}

type LineItem struct {
	ProductID int64  `json:"product_id"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CustomerEmail returns the address a receipt should be delivered to, or ""
// when the order carries no usable recipient.
func (o *Order) CustomerEmail() string {
	if o.Customer != nil && o.Customer.Email != "" {
		return o.Customer.Email
	}
	return o.Email
}

type WebhookResponse struct {
	Outcome string `json:"outcome"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PreviewResponse struct {
	EmailBody string `json:"email_body"`
}

type DonationResponse struct {
	ID        string `json:"id"`
	Shop      string `json:"shop"`
	OrderID   int64  `json:"order_id"`
	OrderName string `json:"order_name"`
	Email     string `json:"email"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
