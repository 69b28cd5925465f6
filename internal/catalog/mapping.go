package catalog

import (
	"strconv"
	"strings"
)

// Default values used when every candidate field is empty. The upstream
// table mixes Persian and English column names, so candidates are tried in a
// fixed order and the first non-empty one wins.
const (
	CategoryGeneral = "عمومی"

	defaultName        = "محصول بدون نام"
	defaultDescription = "بدون توضیح"
	defaultPrice       = "0 افغانی"
)

var (
	nameFields     = []string{"نام", "Name", "Product Name"}
	codeFields     = []string{"کود", "Code", "Product Code"}
	descFields     = []string{"توضیح", "Description", "توضیحات"}
	fullDescFields = []string{"توضیح کامل", "Full Description", "توضیحات کامل", "توضیح", "Description", "توضیحات"}
	priceFields    = []string{"قیمت", "Price", "قیمت (افغانی)"}
	stockFields    = []string{"موجودی", "Stock", "تعداد"}
	categoryFields = []string{"دسته‌بندی", "Category", "دسته"}
	imageFields    = []string{"تصویر", "عکس", "Image", "Picture", "Photo"}
)

// Value is one raw field value. Scalars (strings, numbers) are carried as
// Text; attachment-shaped values (a list of objects with URLs, or a single
// such object) are carried as URLs.
type Value struct {
	Text string
	URLs []string
}

// Field is a named raw value. Fields keep document order so image gathering
// stays deterministic.
type Field struct {
	Name  string
	Value Value
}

// Record is one raw spreadsheet row as fetched from the source.
type Record struct {
	ID     string
	Fields []Field
}

func (r Record) value(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (r Record) first(candidates []string) string {
	for _, name := range candidates {
		if v, ok := r.value(name); ok && v.Text != "" {
			return v.Text
		}
	}
	return ""
}

// MapRecord applies the field-mapping policy to a raw record. It returns
// false for records with no name under any candidate field, which are
// skipped entirely.
func MapRecord(r Record) (Product, bool) {
	if r.first(nameFields) == "" {
		return Product{}, false
	}

	p := Product{
		ID:              r.ID,
		Name:            fallback(r.first(nameFields), defaultName),
		Code:            fallback(r.first(codeFields), defaultCode(r.ID)),
		Description:     fallback(r.first(descFields), defaultDescription),
		FullDescription: fallback(r.first(fullDescFields), defaultDescription),
		Price:           fallback(r.first(priceFields), defaultPrice),
		Stock:           parseStock(r.first(stockFields)),
		Category:        fallback(r.first(categoryFields), CategoryGeneral),
		Images:          gatherImages(r),
	}
	return p, true
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func defaultCode(id string) string {
	if len(id) > 4 {
		id = id[:4]
	}
	return "CODE-" + id
}

// parseStock reads the leading integer of s; non-numeric input is 0.
// Negative stock cannot occur upstream and is clamped to 0 anyway.
func parseStock(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// gatherImages collects image URLs from the fixed candidate fields, then
// from any field whose name contains "image" or "pic" (case-insensitive) or
// whose value is attachment-shaped. URLs are deduplicated preserving
// first-seen order. When nothing is found, a category placeholder is
// synthesized so Images is never empty.
func gatherImages(r Record) []string {
	var urls []string
	for _, name := range imageFields {
		if v, ok := r.value(name); ok {
			urls = append(urls, v.URLs...)
		}
	}
	for _, f := range r.Fields {
		lower := strings.ToLower(f.Name)
		if strings.Contains(lower, "image") || strings.Contains(lower, "pic") || len(f.Value.URLs) > 0 {
			urls = append(urls, f.Value.URLs...)
		}
	}

	seen := make(map[string]struct{}, len(urls))
	images := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		images = append(images, u)
	}

	if len(images) == 0 {
		category := fallback(r.first(categoryFields), CategoryGeneral)
		images = append(images, placeholderImage(category))
	}
	return images
}
