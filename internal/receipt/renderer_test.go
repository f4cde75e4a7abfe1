package receipt

import (
	"errors"
	"strings"
	"testing"

	"charity-receipts/internal/model"

	"github.com/shopspring/decimal"
)

func TestRender_OrderName(t *testing.T) {
	r := NewRenderer()

	donation := &model.Donation{
		OrderID:   1001,
		OrderName: "#1001",
		Amount:    decimal.NewFromInt(10),
		Status:    model.StatusPending,
	}

	out, err := r.Render("order {{ order.name }}", Bindings(nil, nil, donation))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "order #1001" {
		t.Fatalf("expected %q, got %q", "order #1001", string(out))
	}
}

func TestRender_CharityAndAmount(t *testing.T) {
	r := NewRenderer()

	charity := &model.Charity{Name: "Amnesty", CharityID: "12-3456"}
	donation := &model.Donation{
		OrderName: "#1001",
		Amount:    decimal.RequireFromString("9.5"),
	}

	out, err := r.Render("{{ charity.name }} thanks you for {{ donation.amount }}", Bindings(nil, charity, donation))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "Amnesty thanks you for 9.50" {
		t.Fatalf("unexpected output %q", string(out))
	}
}

func TestRender_MalformedTemplate(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("{% if %}", map[string]interface{}{})
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("expected ErrTemplate, got %v", err)
	}
}

func TestRender_DefaultReceiptTemplate(t *testing.T) {
	r := NewRenderer()

	shop := &model.Shop{Domain: "apple.myshopify.com", Name: "Apple"}
	charity := &model.Charity{Name: "Amnesty", CharityID: "12-3456"}
	donation := &model.Donation{
		OrderName: "#1001",
		Amount:    decimal.NewFromInt(25),
	}

	out, err := r.Render(DefaultReceiptTemplate, Bindings(shop, charity, donation))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"25.00", "Amnesty", "#1001", "12-3456"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestBindings_NilDonationOmitsOrder(t *testing.T) {
	bindings := Bindings(nil, &model.Charity{Name: "Amnesty"}, nil)

	if _, ok := bindings["donation"]; ok {
		t.Fatal("expected no donation binding")
	}
	if _, ok := bindings["order"]; ok {
		t.Fatal("expected no order binding")
	}
}
