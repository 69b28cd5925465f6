// Package catalog holds the per-session product catalog: the product model,
// the ingestion field-mapping policy for raw spreadsheet records, and the
// in-memory store with its durable snapshot fallback.
package catalog

import "fmt"

// Product is a catalog item. Price stays a raw string and is parsed on
// demand; Stock is the authoritative sellable quantity and only ever
// decreases, through Store.DecrementAll at checkout.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Code            string   `json:"code"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	Price           string   `json:"price"`
	Stock           int      `json:"stock"`
	Category        string   `json:"category"`
	Images          []string `json:"images"`
}

// categoryEmojis is the canonical category-to-glyph mapping, used for
// placeholder images and exposed to presentation layers via PlaceholderFor.
var categoryEmojis = map[string]string{
	"آرایشی و بهداشتی": "💄",
	"مراقبت مو":        "🧴",
	"مراقبت پوست":      "🧴",
	"بهداشتی":          "🧼",
	"لوازم آرایشی":     "💅",
	"عطر":              "🌸",
	"کرم":              "🧴",
	"شامپو":            "🧴",
	"صابون":            "🧼",
	"لوازم خانگی":      "🏠",
	"لباس":             "👕",
	"کفش":              "👟",
	"اکسسوری":          "👜",
	"لوازم الکترونیکی": "📱",
	"کتاب":             "📚",
	"اسباب بازی":       "🧸",
	"خوراکی":           "🍎",
	CategoryGeneral:    "📦",
}

// PlaceholderFor returns the glyph representing a category, falling back to
// the generic bucket's glyph for unknown categories.
func PlaceholderFor(category string) string {
	if e, ok := categoryEmojis[category]; ok {
		return e
	}
	return categoryEmojis[CategoryGeneral]
}

// placeholderImage synthesizes an inline SVG data URI showing the category
// glyph, used when a product has no source images.
func placeholderImage(category string) string {
	return fmt.Sprintf(`data:image/svg+xml,<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300" viewBox="0 0 100 100"><rect width="100" height="100" fill="%%23f5f5f5"/><text x="50" y="50" font-size="40" text-anchor="middle" dy=".3em" fill="%%23999">%s</text></svg>`,
		PlaceholderFor(category))
}
