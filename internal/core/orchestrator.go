package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fallback parties for ledger lines whose classifier payload names
// nobody.
const (
	DefaultSupplier = "Unknown Supplier"
	DefaultCustomer = "Walk-in Customer"
)

// OutcomeState is the terminal state of one dispatched utterance.
type OutcomeState string

const (
	StateSuccess OutcomeState = "success"
	StatePartial OutcomeState = "partial"
	StateFailed  OutcomeState = "failed"
)

// StepResult is the result of one sub-operation of a dispatch. A
// composite intent produces one entry per ledger line.
type StepResult struct {
	Name   string
	OK     bool
	Detail string
}

// Outcome is the structured result of dispatching one classified
// utterance.
type Outcome struct {
	Intent     Intent
	State      OutcomeState
	Steps      []StepResult
	Reply      string
	VoiceReply bool
	Document   *DocumentAttachment
}

// Orchestrator routes a classified utterance to the business services
// and folds the per-step results into one reply. Sub-operation
// failures never abort the composite: each failure becomes a reply
// line and later sub-operations still run.
type Orchestrator struct {
	inventory InventoryService
	recorder  RecorderService
	directory DirectoryService
	invoices  InvoiceService
	jobs      ServiceJobService
	finance   FinanceService
	tasks     TaskService
	reporting ReportingService
	renderer  DocumentRenderer
	logger    *zap.Logger
}

// NewOrchestrator wires the orchestrator. Renderer may be nil; invoice
// creation then skips the document.
func NewOrchestrator(
	inv InventoryService,
	rec RecorderService,
	dir DirectoryService,
	invc InvoiceService,
	jobs ServiceJobService,
	fin FinanceService,
	tasks TaskService,
	rep ReportingService,
	renderer DocumentRenderer,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		inventory: inv,
		recorder:  rec,
		directory: dir,
		invoices:  invc,
		jobs:      jobs,
		finance:   fin,
		tasks:     tasks,
		reporting: rep,
		renderer:  renderer,
		logger:    logger,
	}
}

// Dispatch applies the classified intent and returns the outcome. It
// never returns an error: store failures are logged and reported in
// the reply, per-line misses become soft-failure lines.
func (o *Orchestrator) Dispatch(ctx context.Context, cls Classification) *Outcome {
	out := &Outcome{Intent: cls.Intent, VoiceReply: cls.VoiceReply}
	if !KnownIntent(cls.Intent) {
		out.Intent = IntentGeneralChat
	}

	switch out.Intent {
	case IntentPurchaseEntry:
		o.step(out, o.applyPurchase(ctx, Normalize(cls.Data, "product", "quantity", "price", "supplier", "notes")))
	case IntentSalesEntry:
		o.step(out, o.applySale(ctx, Normalize(cls.Data, "product", "quantity", "selling_price", "customer", "notes")))
	case IntentMixedTransaction:
		o.applyMixed(ctx, cls.Data, out)
	case IntentAddStock:
		o.handleAddStock(ctx, cls.Data, out)
	case IntentReduceStock:
		o.handleReduceStock(ctx, cls.Data, out)
	case IntentUpdateStock:
		o.handleUpdateStock(ctx, cls.Data, out)
	case IntentCheckStock:
		o.handleCheckStock(ctx, cls.Data, out)
	case IntentLowStockCheck:
		o.handleLowStock(ctx, cls.Data, out)
	case IntentAddCustomer:
		o.handleUpsertProfile(ctx, cls.Data, out, false)
	case IntentSupplierAdd:
		o.handleUpsertProfile(ctx, cls.Data, out, true)
	case IntentGetCustomers:
		o.handleListProfiles(ctx, out)
	case IntentGetCustomerProfile:
		o.handleGetProfile(ctx, cls.Data, out)
	case IntentCreateInvoice:
		o.handleCreateInvoice(ctx, cls.Data, out)
	case IntentAddService:
		o.handleAddService(ctx, cls.Data, out)
	case IntentUpdateService:
		o.handleUpdateService(ctx, cls.Data, out)
	case IntentGetServiceStatus:
		o.handleServiceStatus(ctx, cls.Data, out)
	case IntentAddFinance:
		o.handleAddFinance(ctx, cls.Data, out)
	case IntentGetFinance:
		o.handleGetFinance(ctx, out)
	case IntentAddTask:
		o.handleAddTask(ctx, cls.Data, out)
	case IntentGetTasks:
		o.handleGetTasks(ctx, out)
	case IntentProfitReport, IntentSalesReport, IntentPurchaseReport,
		IntentDailyReport, IntentWeeklyReport, IntentSuggestions:
		o.handleReport(ctx, out)
	default:
		// General chat mutates nothing; the classifier's reply passes
		// through untouched.
		out.State = StateSuccess
		out.Reply = cls.Reply
		return out
	}

	o.finalize(out)
	return out
}

// step appends one result and keeps the aggregate state honest.
func (o *Orchestrator) step(out *Outcome, res StepResult) {
	out.Steps = append(out.Steps, res)
	if !res.OK {
		o.logger.Info("dispatch step failed",
			zap.String("intent", string(out.Intent)),
			zap.String("step", res.Name),
			zap.String("detail", res.Detail))
	}
}

func (o *Orchestrator) finalize(out *Outcome) {
	ok, failed := 0, 0
	var lines []string
	for _, s := range out.Steps {
		if s.OK {
			ok++
		} else {
			failed++
		}
		if s.Detail != "" {
			lines = append(lines, s.Detail)
		}
	}
	switch {
	case failed == 0:
		out.State = StateSuccess
	case ok == 0:
		out.State = StateFailed
	default:
		out.State = StatePartial
	}
	if out.Reply == "" {
		out.Reply = strings.Join(lines, "\n")
	}
}

// storeFailure is the generic reply for a step that hit the store.
func storeFailure(name string) StepResult {
	return StepResult{Name: name, OK: false, Detail: fmt.Sprintf("Could not complete %s right now. Please try again.", name)}
}

func (o *Orchestrator) applyPurchase(ctx context.Context, f Fields) StepResult {
	product := f.Text("product", "")
	if product == "" {
		return StepResult{Name: "purchase", OK: false, Detail: "Could not record purchase: no product named."}
	}
	supplier := f.Text("supplier", DefaultSupplier)
	qty := f.Quantity()
	price := f.Price("price")

	if err := o.inventory.Increase(ctx, product, qty, &price); err != nil {
		o.logger.Error("increase stock failed", zap.String("product", product), zap.Error(err))
		return storeFailure("purchase")
	}
	id, total, err := o.recorder.RecordPurchase(ctx, supplier, product, qty, price, f.Text("notes", ""))
	if err != nil {
		o.logger.Error("record purchase failed", zap.String("product", product), zap.Error(err))
		return StepResult{Name: "purchase", OK: false,
			Detail: fmt.Sprintf("Stock for %s was updated but the purchase entry could not be saved.", product)}
	}
	return StepResult{Name: "purchase", OK: true,
		Detail: fmt.Sprintf("Purchased %s x %s from %s for %s (id %s).", qty.String(), product, supplier, total.String(), id)}
}

func (o *Orchestrator) applySale(ctx context.Context, f Fields) StepResult {
	product := f.Text("product", "")
	if product == "" {
		return StepResult{Name: "sale", OK: false, Detail: "Could not record sale: no product named."}
	}
	customer := f.Text("customer", DefaultCustomer)
	qty := f.Quantity()
	sellPrice := f.Price("selling_price")

	cost, err := o.inventory.LookupPrice(ctx, product)
	if err != nil {
		o.logger.Error("lookup cost basis failed", zap.String("product", product), zap.Error(err))
		return storeFailure("sale")
	}

	var stockNote string
	if err := o.inventory.Decrease(ctx, product, qty); err != nil {
		if !errors.Is(err, ErrNotFound) {
			o.logger.Error("decrease stock failed", zap.String("product", product), zap.Error(err))
			return storeFailure("sale")
		}
		// Unknown product: the sale is still recorded, just flagged.
		stockNote = fmt.Sprintf(" Note: %s is not in the inventory ledger.", product)
	}

	id, total, profit, err := o.recorder.RecordSale(ctx, customer, product, qty, sellPrice, cost, f.Text("notes", ""))
	if err != nil {
		o.logger.Error("record sale failed", zap.String("product", product), zap.Error(err))
		return StepResult{Name: "sale", OK: false,
			Detail: fmt.Sprintf("Stock for %s was reduced but the sale entry could not be saved.", product)}
	}

	o.creditCustomer(ctx, customer, total, profit)
	return StepResult{Name: "sale", OK: true,
		Detail: fmt.Sprintf("Sold %s x %s to %s for %s, profit %s (id %s).%s",
			qty.String(), product, customer, total.String(), profit.String(), id, stockNote)}
}

// creditCustomer updates CRM lifetime counters for a completed sale,
// creating the profile on first sight. CRM failures never undo the
// sale; they are logged and dropped.
func (o *Orchestrator) creditCustomer(ctx context.Context, customer string, total, profit decimal.Decimal) {
	found, err := o.directory.RecordTransaction(ctx, customer, total, profit)
	if err != nil {
		o.logger.Warn("credit customer failed", zap.String("customer", customer), zap.Error(err))
		return
	}
	if found {
		return
	}
	if err := o.directory.Upsert(ctx, customer, ProfileUpdate{}); err != nil {
		o.logger.Warn("auto-create customer failed", zap.String("customer", customer), zap.Error(err))
		return
	}
	if _, err := o.directory.RecordTransaction(ctx, customer, total, profit); err != nil {
		o.logger.Warn("credit customer failed", zap.String("customer", customer), zap.Error(err))
	}
}

// applyMixed runs every purchase line before every sale line so a sale
// in the same utterance can draw on stock its own purchase supplied.
func (o *Orchestrator) applyMixed(ctx context.Context, data map[string]any, out *Outcome) {
	for _, raw := range sliceField(data, "purchases") {
		o.step(out, o.applyPurchase(ctx, Normalize(raw, "product", "quantity", "price", "supplier", "notes")))
	}
	for _, raw := range sliceField(data, "sales") {
		o.step(out, o.applySale(ctx, Normalize(raw, "product", "quantity", "selling_price", "customer", "notes")))
	}
	if len(out.Steps) == 0 {
		o.step(out, StepResult{Name: "mixed", OK: false, Detail: "No purchase or sale lines found in that message."})
	}
}

// sliceField pulls a list of payload maps out of the raw data, keyed
// case-insensitively.
func sliceField(data map[string]any, key string) []map[string]any {
	var raw any
	for k, v := range data {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			raw = v
			break
		}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func (o *Orchestrator) handleAddStock(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "product", "quantity", "price")
	product := f.Text("product", "")
	if product == "" {
		o.step(out, StepResult{Name: "add_stock", OK: false, Detail: "Which product should I add stock for?"})
		return
	}
	qty := f.Quantity()
	var price *decimal.Decimal
	if f["price"] != "" {
		p := f.Price("price")
		price = &p
	}
	if err := o.inventory.Increase(ctx, product, qty, price); err != nil {
		o.logger.Error("increase stock failed", zap.String("product", product), zap.Error(err))
		o.step(out, storeFailure("add_stock"))
		return
	}
	o.step(out, StepResult{Name: "add_stock", OK: true,
		Detail: fmt.Sprintf("Added %s to %s stock.", qty.String(), product)})
}

func (o *Orchestrator) handleReduceStock(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "product", "quantity")
	product := f.Text("product", "")
	if product == "" {
		o.step(out, StepResult{Name: "reduce_stock", OK: false, Detail: "Which product should I reduce stock for?"})
		return
	}
	qty := f.Quantity()
	if err := o.inventory.Decrease(ctx, product, qty); err != nil {
		if errors.Is(err, ErrNotFound) {
			o.step(out, StepResult{Name: "reduce_stock", OK: false,
				Detail: fmt.Sprintf("%s is not in the inventory ledger.", product)})
			return
		}
		o.logger.Error("decrease stock failed", zap.String("product", product), zap.Error(err))
		o.step(out, storeFailure("reduce_stock"))
		return
	}
	o.step(out, StepResult{Name: "reduce_stock", OK: true,
		Detail: fmt.Sprintf("Reduced %s stock by %s.", product, qty.String())})
}

func (o *Orchestrator) handleUpdateStock(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "product", "quantity", "price")
	product := f.Text("product", "")
	if product == "" {
		o.step(out, StepResult{Name: "update_stock", OK: false, Detail: "Which product should I update?"})
		return
	}
	qty := f.Decimal("quantity", decimal.Zero)
	price := f.Price("price")
	if err := o.inventory.Overwrite(ctx, product, qty, price); err != nil {
		o.logger.Error("overwrite stock failed", zap.String("product", product), zap.Error(err))
		o.step(out, storeFailure("update_stock"))
		return
	}
	o.step(out, StepResult{Name: "update_stock", OK: true,
		Detail: fmt.Sprintf("Set %s to quantity %s, price %s.", product, qty.String(), price.String())})
}

func (o *Orchestrator) handleCheckStock(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "product")
	items, err := o.inventory.GetAll(ctx)
	if err != nil {
		o.logger.Error("read inventory failed", zap.Error(err))
		o.step(out, storeFailure("check_stock"))
		return
	}
	if product := f.Text("product", ""); product != "" {
		for _, item := range items {
			if equalsFold(item.Product, product) {
				o.step(out, StepResult{Name: "check_stock", OK: true,
					Detail: fmt.Sprintf("%s: %s in stock at %s each.", item.Product, item.Quantity.String(), item.Price.String())})
				return
			}
		}
		o.step(out, StepResult{Name: "check_stock", OK: false,
			Detail: fmt.Sprintf("%s is not in the inventory ledger.", product)})
		return
	}
	if len(items) == 0 {
		o.step(out, StepResult{Name: "check_stock", OK: true, Detail: "Inventory is empty."})
		return
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s @ %s", item.Product, item.Quantity.String(), item.Price.String()))
	}
	o.step(out, StepResult{Name: "check_stock", OK: true,
		Detail: "Current stock:\n" + strings.Join(lines, "\n")})
}

func (o *Orchestrator) handleLowStock(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "threshold")
	threshold := f.Decimal("threshold", DefaultLowStockThreshold)
	items, err := o.reporting.LowStock(ctx, threshold)
	if err != nil {
		o.logger.Error("low stock check failed", zap.Error(err))
		o.step(out, storeFailure("low_stock_check"))
		return
	}
	if len(items) == 0 {
		o.step(out, StepResult{Name: "low_stock_check", OK: true, Detail: "No products are running low."})
		return
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s left", item.Product, item.Quantity.String()))
	}
	o.step(out, StepResult{Name: "low_stock_check", OK: true,
		Detail: "Running low:\n" + strings.Join(lines, "\n")})
}

func (o *Orchestrator) handleUpsertProfile(ctx context.Context, data map[string]any, out *Outcome, supplier bool) {
	name := "add_customer"
	f := Normalize(data, "customer", "supplier", "phone", "email", "notes", "tags")
	who := f.Text("customer", "")
	update := ProfileUpdate{
		Phone: f.Text("phone", ""),
		Email: f.Text("email", ""),
		Notes: f.Text("notes", ""),
		Tags:  f.Text("tags", ""),
	}
	if supplier {
		name = "supplier_add"
		if s := f.Text("supplier", ""); s != "" {
			who = s
		}
		update.Tags = mergeTags(update.Tags, "supplier")
	}
	if who == "" {
		o.step(out, StepResult{Name: name, OK: false, Detail: "Whose profile should I save?"})
		return
	}
	if err := o.directory.Upsert(ctx, who, update); err != nil {
		o.logger.Error("upsert profile failed", zap.String("name", who), zap.Error(err))
		o.step(out, storeFailure(name))
		return
	}
	o.step(out, StepResult{Name: name, OK: true, Detail: fmt.Sprintf("Saved profile for %s.", who)})
}

func (o *Orchestrator) handleListProfiles(ctx context.Context, out *Outcome) {
	profiles, err := o.directory.List(ctx)
	if err != nil {
		o.logger.Error("list profiles failed", zap.Error(err))
		o.step(out, storeFailure("get_customers"))
		return
	}
	if len(profiles) == 0 {
		o.step(out, StepResult{Name: "get_customers", OK: true, Detail: "No customers on record yet."})
		return
	}
	var lines []string
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("%s: %s purchases, spent %s", p.Name, p.TotalPurchases.String(), p.TotalSpent.String()))
	}
	o.step(out, StepResult{Name: "get_customers", OK: true,
		Detail: "Customers:\n" + strings.Join(lines, "\n")})
}

func (o *Orchestrator) handleGetProfile(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "customer")
	who := f.Text("customer", "")
	if who == "" {
		o.step(out, StepResult{Name: "get_customer_profile", OK: false, Detail: "Whose profile do you want?"})
		return
	}
	p, err := o.directory.Get(ctx, who)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			o.step(out, StepResult{Name: "get_customer_profile", OK: false,
				Detail: fmt.Sprintf("No profile found for %s.", who)})
			return
		}
		o.logger.Error("get profile failed", zap.String("name", who), zap.Error(err))
		o.step(out, storeFailure("get_customer_profile"))
		return
	}
	detail := fmt.Sprintf("%s: phone %s, email %s, last visit %s, %s purchases, spent %s, profit %s.",
		p.Name, orDash(p.Phone), orDash(p.Email), orDash(p.LastVisit),
		p.TotalPurchases.String(), p.TotalSpent.String(), p.TotalProfit.String())
	if p.Notes != "" {
		detail += " Notes: " + p.Notes
	}
	o.step(out, StepResult{Name: "get_customer_profile", OK: true, Detail: detail})
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (o *Orchestrator) handleCreateInvoice(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "customer", "tax_rate", "discount", "paid")
	customer := f.Text("customer", DefaultCustomer)

	var items []InvoiceInput
	for _, raw := range sliceField(data, "items") {
		lf := Normalize(raw, "product", "quantity", "price")
		if lf.Text("product", "") == "" {
			continue
		}
		items = append(items, InvoiceInput{
			Product:  lf.Text("product", ""),
			Quantity: lf.Quantity(),
			Price:    lf.Price("price"),
		})
	}
	if len(items) == 0 {
		o.step(out, StepResult{Name: "create_invoice", OK: false, Detail: "I need at least one line item for an invoice."})
		return
	}

	inv, err := o.invoices.Create(ctx, customer,
		items, f.Price("tax_rate"), f.Price("discount"), f.Price("paid"))
	if err != nil {
		o.logger.Error("create invoice failed", zap.String("customer", customer), zap.Error(err))
		o.step(out, storeFailure("create_invoice"))
		return
	}

	if o.renderer != nil {
		pdf, err := o.renderer.RenderInvoice(inv)
		if err != nil {
			// The ledger row exists; only the document is lost.
			o.logger.Warn("render invoice failed", zap.String("invoice", inv.ID), zap.Error(err))
		} else {
			out.Document = &DocumentAttachment{
				Filename: inv.ID + ".pdf",
				MIME:     "application/pdf",
				Data:     pdf,
			}
		}
	}
	o.step(out, StepResult{Name: "create_invoice", OK: true,
		Detail: fmt.Sprintf("Invoice %s for %s: total %s, due %s.", inv.ID, customer, inv.GrandTotal.String(), inv.Due.String())})
}

func (o *Orchestrator) handleAddService(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "customer", "device", "problem", "technician", "cost", "notes")
	customer := f.Text("customer", DefaultCustomer)
	job, err := o.jobs.Create(ctx, customer, f.Text("device", ""), f.Text("problem", ""),
		f.Text("technician", ""), f.Text("notes", ""), f.Price("cost"))
	if err != nil {
		o.logger.Error("create service job failed", zap.String("customer", customer), zap.Error(err))
		o.step(out, storeFailure("add_service"))
		return
	}
	o.step(out, StepResult{Name: "add_service", OK: true,
		Detail: fmt.Sprintf("Service job %s opened for %s (%s).", job.ID, customer, orDash(job.Device))})
}

func (o *Orchestrator) handleUpdateService(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "service_id", "status", "cost")
	id := f.Text("service_id", "")
	if id == "" {
		o.step(out, StepResult{Name: "update_service", OK: false, Detail: "Which service job id should I update?"})
		return
	}
	var changes []string
	if st := f.Text("status", ""); st != "" {
		if err := o.jobs.UpdateStatus(ctx, id, ParseJobStatus(st)); err != nil {
			o.stepJobError(out, "update_service", id, err)
			return
		}
		changes = append(changes, "status "+string(ParseJobStatus(st)))
	}
	if f["cost"] != "" {
		if err := o.jobs.UpdateCost(ctx, id, f.Price("cost")); err != nil {
			o.stepJobError(out, "update_service", id, err)
			return
		}
		changes = append(changes, "cost "+f.Price("cost").String())
	}
	if len(changes) == 0 {
		o.step(out, StepResult{Name: "update_service", OK: false, Detail: "Nothing to update: give a status or a cost."})
		return
	}
	o.step(out, StepResult{Name: "update_service", OK: true,
		Detail: fmt.Sprintf("Updated %s: %s.", id, strings.Join(changes, ", "))})
}

func (o *Orchestrator) handleServiceStatus(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "service_id")
	id := f.Text("service_id", "")
	if id == "" {
		o.step(out, StepResult{Name: "get_service_status", OK: false, Detail: "Which service job id should I look up?"})
		return
	}
	job, err := o.jobs.Get(ctx, id)
	if err != nil {
		o.stepJobError(out, "get_service_status", id, err)
		return
	}
	o.step(out, StepResult{Name: "get_service_status", OK: true,
		Detail: fmt.Sprintf("%s for %s (%s): %s, cost %s.", job.ID, job.Customer, orDash(job.Device), job.Status, job.Cost.String())})
}

func (o *Orchestrator) stepJobError(out *Outcome, name, id string, err error) {
	if errors.Is(err, ErrNotFound) {
		o.step(out, StepResult{Name: name, OK: false, Detail: fmt.Sprintf("No service job found with id %s.", id)})
		return
	}
	o.logger.Error("service job operation failed", zap.String("id", id), zap.Error(err))
	o.step(out, storeFailure(name))
}

func (o *Orchestrator) handleAddFinance(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "customer", "amount", "type", "notes")
	entry, err := o.finance.Add(ctx, f.Text("customer", ""), f.Price("amount"), f.Text("type", "expense"), f.Text("notes", ""))
	if err != nil {
		o.logger.Error("add finance entry failed", zap.Error(err))
		o.step(out, storeFailure("add_finance"))
		return
	}
	o.step(out, StepResult{Name: "add_finance", OK: true,
		Detail: fmt.Sprintf("Recorded %s of %s.", entry.Type, entry.Amount.String())})
}

func (o *Orchestrator) handleGetFinance(ctx context.Context, out *Outcome) {
	entries, err := o.finance.List(ctx)
	if err != nil {
		o.logger.Error("list finance failed", zap.Error(err))
		o.step(out, storeFailure("get_finance"))
		return
	}
	if len(entries) == 0 {
		o.step(out, StepResult{Name: "get_finance", OK: true, Detail: "No finance entries yet."})
		return
	}
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Type == "income" {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount)
		}
	}
	o.step(out, StepResult{Name: "get_finance", OK: true,
		Detail: fmt.Sprintf("%d entries: income %s, expense %s, net %s.",
			len(entries), income.String(), expense.String(), income.Sub(expense).String())})
}

func (o *Orchestrator) handleAddTask(ctx context.Context, data map[string]any, out *Outcome) {
	f := Normalize(data, "task", "assigned_to")
	name := f.Text("task", "")
	if name == "" {
		o.step(out, StepResult{Name: "add_task", OK: false, Detail: "What task should I add?"})
		return
	}
	if _, err := o.tasks.Add(ctx, name, f.Text("assigned_to", "")); err != nil {
		o.logger.Error("add task failed", zap.Error(err))
		o.step(out, storeFailure("add_task"))
		return
	}
	o.step(out, StepResult{Name: "add_task", OK: true, Detail: fmt.Sprintf("Task noted: %s.", name)})
}

func (o *Orchestrator) handleGetTasks(ctx context.Context, out *Outcome) {
	tasks, err := o.tasks.List(ctx)
	if err != nil {
		o.logger.Error("list tasks failed", zap.Error(err))
		o.step(out, storeFailure("get_tasks"))
		return
	}
	if len(tasks) == 0 {
		o.step(out, StepResult{Name: "get_tasks", OK: true, Detail: "No tasks on the list."})
		return
	}
	var lines []string
	for _, t := range tasks {
		line := fmt.Sprintf("%s [%s]", t.Name, t.Status)
		if t.AssignedTo != "" {
			line += " " + t.AssignedTo
		}
		lines = append(lines, line)
	}
	o.step(out, StepResult{Name: "get_tasks", OK: true,
		Detail: "Tasks:\n" + strings.Join(lines, "\n")})
}

func (o *Orchestrator) handleReport(ctx context.Context, out *Outcome) {
	name := string(out.Intent)
	detail, err := o.composeReport(ctx, out.Intent)
	if err != nil {
		o.logger.Error("report failed", zap.String("report", name), zap.Error(err))
		o.step(out, storeFailure(name))
		return
	}
	o.step(out, StepResult{Name: name, OK: true, Detail: detail})
}

func (o *Orchestrator) composeReport(ctx context.Context, intent Intent) (string, error) {
	switch intent {
	case IntentProfitReport:
		profit, err := o.reporting.TotalProfit(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total profit so far: %s.", profit.String()), nil

	case IntentSalesReport:
		sales, err := o.recorder.Sales(ctx)
		if err != nil {
			return "", err
		}
		total := decimal.Zero
		for _, s := range sales {
			total = total.Add(s.Total)
		}
		top, err := o.reporting.TopSelling(ctx)
		if err != nil {
			return "", err
		}
		text := fmt.Sprintf("%d sales, total %s.", len(sales), total.String())
		if len(top) > 0 {
			var names []string
			for _, pv := range top {
				names = append(names, fmt.Sprintf("%s (%s)", pv.Product, pv.Quantity.String()))
			}
			text += " Top sellers: " + strings.Join(names, ", ") + "."
		}
		return text, nil

	case IntentPurchaseReport:
		purchases, err := o.recorder.Purchases(ctx)
		if err != nil {
			return "", err
		}
		total := decimal.Zero
		for _, p := range purchases {
			total = total.Add(p.Total)
		}
		return fmt.Sprintf("%d purchases, total %s.", len(purchases), total.String()), nil

	case IntentDailyReport:
		sum, err := o.reporting.TodaySummary(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Today (%s): %d sales totaling %s with profit %s; %d purchases totaling %s.",
			sum.Date, sum.SalesCount, sum.SalesTotal.String(), sum.Profit.String(),
			sum.PurchaseCount, sum.PurchaseTotal.String()), nil

	case IntentWeeklyReport:
		return o.reporting.WeeklyReport(ctx)

	case IntentSuggestions:
		hints, err := o.reporting.Suggestions(ctx)
		if err != nil {
			return "", err
		}
		return strings.Join(hints, "\n"), nil
	}
	return "", fmt.Errorf("unknown report intent %q", intent)
}
