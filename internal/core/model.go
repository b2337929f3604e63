package core

import (
	"github.com/shopspring/decimal"
)

// Intent is the classified business action a user utterance requests.
type Intent string

const (
	IntentAddStock           Intent = "add_stock"
	IntentReduceStock        Intent = "reduce_stock"
	IntentUpdateStock        Intent = "update_stock"
	IntentCheckStock         Intent = "check_stock"
	IntentLowStockCheck      Intent = "low_stock_check"
	IntentPurchaseEntry      Intent = "purchase_entry"
	IntentSupplierAdd        Intent = "supplier_add"
	IntentSalesEntry         Intent = "sales_entry"
	IntentMixedTransaction   Intent = "mixed_transaction"
	IntentCreateInvoice      Intent = "create_invoice"
	IntentAddCustomer        Intent = "add_customer"
	IntentGetCustomers       Intent = "get_customers"
	IntentGetCustomerProfile Intent = "get_customer_profile"
	IntentAddFinance         Intent = "add_finance"
	IntentGetFinance         Intent = "get_finance"
	IntentAddTask            Intent = "add_task"
	IntentGetTasks           Intent = "get_tasks"
	IntentAddService         Intent = "add_service"
	IntentUpdateService      Intent = "update_service"
	IntentGetServiceStatus   Intent = "get_service_status"
	IntentProfitReport       Intent = "profit_report"
	IntentSalesReport        Intent = "sales_report"
	IntentPurchaseReport     Intent = "purchase_report"
	IntentDailyReport        Intent = "daily_report"
	IntentWeeklyReport       Intent = "weekly_report"
	IntentSuggestions        Intent = "suggestions"
	IntentGeneralChat        Intent = "general_chat"
)

// knownIntents is the closed set the classifier may emit. Anything
// outside it is treated as general chat.
var knownIntents = map[Intent]bool{
	IntentAddStock: true, IntentReduceStock: true, IntentUpdateStock: true,
	IntentCheckStock: true, IntentLowStockCheck: true,
	IntentPurchaseEntry: true, IntentSupplierAdd: true, IntentSalesEntry: true,
	IntentMixedTransaction: true, IntentCreateInvoice: true,
	IntentAddCustomer: true, IntentGetCustomers: true, IntentGetCustomerProfile: true,
	IntentAddFinance: true, IntentGetFinance: true,
	IntentAddTask: true, IntentGetTasks: true,
	IntentAddService: true, IntentUpdateService: true, IntentGetServiceStatus: true,
	IntentProfitReport: true, IntentSalesReport: true, IntentPurchaseReport: true,
	IntentDailyReport: true, IntentWeeklyReport: true, IntentSuggestions: true,
	IntentGeneralChat: true,
}

// KnownIntent reports whether in is one of the allowed intents.
func KnownIntent(in Intent) bool { return knownIntents[in] }

// Classification is the structured result of running one utterance
// through the intent classifier. Data is the loosely-typed field
// payload specific to the intent; it is untrusted and must pass through
// the field normalizer before any business logic sees it.
type Classification struct {
	Intent     Intent         `json:"intent"`
	Data       map[string]any `json:"data"`
	Reply      string         `json:"reply"`
	VoiceReply bool           `json:"voice_reply"`
}

// InventoryItem is the per-product stock row. Quantity never drops
// below zero; Price is the last-known purchase price and doubles as the
// cost basis for profit at sale time.
type InventoryItem struct {
	Product   string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	UpdatedAt string
}

// PurchaseRecord is an immutable append-only purchase ledger line.
type PurchaseRecord struct {
	ID        string
	Date      string
	Supplier  string
	Product   string
	Quantity  decimal.Decimal
	PriceEach decimal.Decimal
	Total     decimal.Decimal
	Notes     string
}

// SaleRecord is an immutable append-only sale ledger line. Profit is
// (PriceEach − cost basis at time of sale) × Quantity and may be
// negative for a loss-making sale.
type SaleRecord struct {
	ID        string
	Date      string
	Customer  string
	Product   string
	Quantity  decimal.Decimal
	PriceEach decimal.Decimal
	Total     decimal.Decimal
	Profit    decimal.Decimal
	Notes     string
}

// Profile is a CRM customer or supplier record with lifetime counters.
// Counters only ever increase.
type Profile struct {
	Name           string
	Phone          string
	Email          string
	LastVisit      string
	TotalPurchases decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalProfit    decimal.Decimal
	Notes          string
	Tags           string
}

// InvoiceItem is one line of an invoice. Total = Quantity × Price.
type InvoiceItem struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Invoice totals are computed once at creation and stored immutably:
// GrandTotal = Subtotal + Subtotal×TaxRate/100 − Discount,
// Due = GrandTotal − Paid.
type Invoice struct {
	ID         string
	Date       string
	Customer   string
	Items      []InvoiceItem
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
	Paid       decimal.Decimal
	Due        decimal.Decimal
}

// JobStatus is the closed status set of a service job.
type JobStatus string

const (
	JobPending    JobStatus = "Pending"
	JobInProgress JobStatus = "InProgress"
	JobDone       JobStatus = "Done"
)

// ServiceJob is a repair/service ticket. Status and Cost are mutated as
// the job progresses; everything else is fixed at creation.
type ServiceJob struct {
	ID         string
	Date       string
	Customer   string
	Device     string
	Problem    string
	Status     JobStatus
	Cost       decimal.Decimal
	Technician string
	Notes      string
}

// MemoryEntry is one turn of per-user conversation history.
type MemoryEntry struct {
	UserID    string
	Timestamp string
	Role      string
	Text      string
}

// FinanceEntry is a manual income or expense record.
type FinanceEntry struct {
	Customer string
	Amount   decimal.Decimal
	Type     string // "income" or "expense"
	Date     string
	Notes    string
}

// TaskEntry is a simple to-do item counted by the weekly report.
type TaskEntry struct {
	Name       string
	AssignedTo string
	Status     string
	CreatedAt  string
}

// DocumentAttachment is a rendered file to send back alongside a reply.
type DocumentAttachment struct {
	Filename string
	MIME     string
	Data     []byte
}

// DocumentRenderer turns a finished invoice into a sendable document.
// Rendering is an external concern; a renderer failure must never
// affect ledger state.
type DocumentRenderer interface {
	RenderInvoice(inv *Invoice) ([]byte, error)
}
