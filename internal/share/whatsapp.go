// Package share builds WhatsApp deep links for sending a finalized order to
// the shop operator.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/aym0707/storefront/internal/checkout"
	"github.com/aym0707/storefront/internal/money"
)

var (
	ErrNoOrder = errors.New("no finalized order to share")
	ErrNoItems = errors.New("order has no items")
)

const (
	fallbackName    = "مشتری"
	fallbackPhone   = "بدون شماره"
	fallbackAddress = "بدون آدرس"
)

// Builder renders wa.me links targeting a single operator number.
type Builder struct {
	number string
}

func NewBuilder(number string) *Builder {
	return &Builder{number: number}
}

// Link returns the wa.me URL carrying the full order message.
func (b *Builder) Link(order *checkout.OrderRecord) (string, error) {
	msg, err := b.Message(order)
	if err != nil {
		return "", err
	}
	return "https://wa.me/" + b.number + "?text=" + url.QueryEscape(msg), nil
}

// Message renders the order as the operator-facing text template.
func (b *Builder) Message(order *checkout.OrderRecord) (string, error) {
	if order == nil || order.Serial == "" {
		return "", ErrNoOrder
	}
	if len(order.Items) == 0 {
		return "", ErrNoItems
	}

	name := order.Customer.Name
	if name == "" {
		name = fallbackName
	}
	phone := order.Customer.Phone
	if phone == "" {
		phone = fallbackPhone
	}
	address := order.Customer.Address
	if address == "" {
		address = fallbackAddress
	}

	var items strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&items, "%d. %s - %d عدد - %s افغانی\n",
			i+1, item.Name, item.Quantity, money.FormatGroups(item.LineTotal))
	}

	msg := fmt.Sprintf(`📱 *سفارش جدید از فروشگاه آنلاین AYM*

🔖 *شماره بل:* %s

👤 *مشتری:* %s
📞 *شماره تماس:* %s
📍 *آدرس:* %s

🛒 *اقلام سفارش:*
%s

💰 *مبلغ کل:* %s افغانی

📅 *تاریخ:* %s
⏰ *زمان:* %s

_لطفاً پس از بررسی موجودی، سفارش را تایید کنید._`,
		order.Serial,
		name, phone, address,
		items.String(),
		money.FormatGroups(order.Total),
		order.CreatedAt.Format("2006/01/02"),
		order.CreatedAt.Format("15:04:05"),
	)
	return msg, nil
}
