package bill

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aym0707/storefront/internal/checkout"
)

func sampleOrder() *checkout.OrderRecord {
	return &checkout.OrderRecord{
		Serial: "AYM-03-1234-07",
		Customer: checkout.CustomerInfo{
			Name:    "احمد",
			Phone:   "0789123456",
			Address: "کابل",
		},
		Items: []checkout.LineItem{
			{
				Name:      "کتاب ریاضی",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(1400),
				LineTotal: decimal.NewFromInt(2800),
			},
		},
		Total:     decimal.NewFromInt(2800),
		CreatedAt: time.Date(2024, 3, 7, 14, 30, 5, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleOrder()))

	out := buf.String()
	assert.Contains(t, out, `dir="rtl"`)
	assert.Contains(t, out, "شماره بل: AYM-03-1234-07")
	assert.Contains(t, out, "احمد")
	assert.Contains(t, out, "0789123456")
	assert.Contains(t, out, "کابل")
	assert.Contains(t, out, "کتاب ریاضی")
	assert.Contains(t, out, "تاریخ: 2024/03/07")
	assert.Contains(t, out, "زمان: 14:30:05")
	assert.Contains(t, out, "2,800 افغانی")
}

func TestRender_EscapesMarkup(t *testing.T) {
	order := sampleOrder()
	order.Customer.Name = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, order))
	assert.NotContains(t, buf.String(), "<script>alert")
}

func TestRender_NoOrder(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, nil), ErrNoOrder)

	order := sampleOrder()
	order.Serial = ""
	assert.ErrorIs(t, Render(&buf, order), ErrNoOrder)
}
