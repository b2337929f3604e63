package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field normalization. The classifier's data payload is untrusted:
// keys arrive in arbitrary casing and under several aliases
// ("Product", "product_name", "item" all mean the product field), and
// numeric values arrive as numbers, numeric strings, or garbage. The
// normalizer collapses this into one canonical Fields record consulted
// by every intent handler, so alias knowledge lives in exactly one
// table.

// fieldAliases maps each canonical field to the payload keys that may
// carry it, in lookup order. All matching is case-insensitive.
var fieldAliases = map[string][]string{
	"product":       {"product", "product_name", "item", "name"},
	"quantity":      {"quantity", "qty", "count", "amount"},
	"price":         {"price", "price_each", "purchase_price", "unit_price", "rate", "cost"},
	"selling_price": {"selling_price", "sale_price", "price", "rate"},
	"supplier":      {"supplier", "supplier_name", "vendor"},
	"customer":      {"customer", "customer_name", "client", "buyer", "name"},
	"notes":         {"notes", "note", "remarks", "remark"},
	"phone":         {"phone", "mobile", "phone_number", "contact"},
	"email":         {"email", "mail", "email_address"},
	"tags":          {"tags", "tag"},
	"amount":        {"amount", "value", "total"},
	"type":          {"type", "ftype", "category"},
	"date":          {"date", "day"},
	"task":          {"task", "task_name", "title"},
	"assigned_to":   {"assigned_to", "assignee", "assigned"},
	"status":        {"status", "state"},
	"device":        {"device", "machine", "item"},
	"problem":       {"problem", "issue", "fault"},
	"technician":    {"technician", "tech", "engineer"},
	"service_id":    {"service_id", "job_id", "id"},
	"tax_rate":      {"tax_rate", "tax", "gst"},
	"discount":      {"discount"},
	"paid":          {"paid", "paid_amount", "advance"},
	"cost":          {"cost", "price", "charge"},
	"threshold":     {"threshold", "limit"},
}

// Fields is a canonical, string-valued view of one intent payload.
type Fields map[string]string

// Normalize extracts the wanted canonical fields from a raw payload.
// Missing fields are present with an empty value, so downstream code
// never distinguishes absent from blank. Pure function; never fails.
func Normalize(data map[string]any, want ...string) Fields {
	lowered := make(map[string]string, len(data))
	for k, v := range data {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, taken := lowered[key]; !taken {
			lowered[key] = valueToString(v)
		}
	}

	out := make(Fields, len(want))
	for _, field := range want {
		out[field] = ""
		aliases, ok := fieldAliases[field]
		if !ok {
			aliases = []string{field}
		}
		for _, alias := range aliases {
			if v, ok := lowered[alias]; ok && strings.TrimSpace(v) != "" {
				out[field] = strings.TrimSpace(v)
				break
			}
		}
	}
	return out
}

// Text returns the field value, or def when blank.
func (f Fields) Text(field, def string) string {
	if v := f[field]; v != "" {
		return v
	}
	return def
}

// Quantity coerces the quantity field; malformed or missing input
// defaults to 1, never an error.
func (f Fields) Quantity() decimal.Decimal {
	return f.Decimal("quantity", decimal.NewFromInt(1))
}

// Price coerces a price-like field; malformed or missing input
// defaults to 0, never an error.
func (f Fields) Price(field string) decimal.Decimal {
	return f.Decimal(field, decimal.Zero)
}

// Decimal coerces any field to a decimal with the given default.
func (f Fields) Decimal(field string, def decimal.Decimal) decimal.Decimal {
	d, ok := CoerceDecimal(f[field])
	if !ok {
		return def
	}
	return d
}

// CoerceDecimal parses a loosely formatted number: currency symbols,
// thousands separators, and surrounding whitespace are stripped before
// parsing. Returns false for anything still unparseable.
func CoerceDecimal(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.NewReplacer("₹", "", "$", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// valueToString renders a raw JSON payload value as a clean string.
// Floats that are whole numbers print without an exponent or trailing
// zeros ("10", not "1e+01" or "10.000000").
func valueToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	case float32:
		return decimal.NewFromFloat32(x).String()
	case int:
		return decimal.NewFromInt(int64(x)).String()
	case int64:
		return decimal.NewFromInt(x).String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

// equalsFold is a trim-and-fold comparison used wherever names act as
// case-insensitive keys.
func equalsFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
