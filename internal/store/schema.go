package store

import "context"

// Collection names. These match the worksheet titles of existing
// deployments and must not change.
const (
	Inventory      = "Inventory"
	Purchase       = "Purchase"
	Sales          = "Sales"
	CRM            = "CRM"
	Invoice        = "Invoice"
	ServiceHistory = "ServiceHistory"
	Memory         = "Memory"
	Finance        = "Finance"
	Task           = "Task"
	Report         = "Report"
)

// Column names shared by multiple collections.
const (
	ColProduct  = "Product"
	ColQuantity = "Quantity"
	ColPrice    = "Price"
	ColCustomer = "Customer"
	ColNotes    = "Notes"
	ColDate     = "Date"
	ColStatus   = "Status"
	ColTotal    = "Total"
	ColProfit   = "Profit"
)

// Headers holds the persisted column layout of every collection, in
// order. The layouts are load-bearing: existing spreadsheets already
// carry these exact headers.
var Headers = map[string][]string{
	Inventory:      {ColProduct, ColQuantity, ColPrice, "UpdatedAt"},
	Purchase:       {"PurchaseID", ColDate, "Supplier", ColProduct, ColQuantity, "PriceEach", ColTotal, ColNotes},
	Sales:          {"SaleID", ColDate, ColCustomer, ColProduct, ColQuantity, "PriceEach", ColTotal, ColProfit, ColNotes},
	CRM:            {ColCustomer, "Phone", "Email", "LastVisit", "TotalPurchases", "TotalSpent", "TotalProfit", ColNotes, "Tags"},
	Invoice:        {"InvoiceID", ColDate, ColCustomer, "ItemsJSON", "Subtotal", "TaxRate", "Discount", "GrandTotal", "Paid", "Due"},
	ServiceHistory: {"ServiceID", ColDate, ColCustomer, "Device", "Problem", ColStatus, "Cost", "Technician", ColNotes},
	Memory:         {"UserID", "Timestamp", "Role", "Text"},
	Finance:        {ColCustomer, "Amount", "Type", ColDate, ColNotes},
	Task:           {"TaskName", "AssignedTo", ColStatus, "CreatedAt"},
	Report:         {"Timestamp", "Text"},
}

// EnsureAll creates every known collection that does not exist yet.
func EnsureAll(ctx context.Context, st Store) error {
	for name, header := range Headers {
		if err := st.EnsureCollection(ctx, name, header); err != nil {
			return err
		}
	}
	return nil
}
