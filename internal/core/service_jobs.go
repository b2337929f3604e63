package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-agent/internal/store"
)

// ParseJobStatus folds free-form status text onto the closed status
// set. Unrecognized text maps to Pending.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inprogress", "in progress", "in_progress", "started", "working":
		return JobInProgress
	case "done", "completed", "complete", "finished", "ready", "delivered":
		return JobDone
	default:
		return JobPending
	}
}

// ServiceJobService tracks repair and service tickets.
type ServiceJobService interface {
	// Create opens a new job with status Pending and returns it.
	Create(ctx context.Context, customer, device, problem, technician, notes string, cost decimal.Decimal) (*ServiceJob, error)
	// UpdateStatus moves an existing job to the given status. Returns
	// ErrNotFound when no job carries the id.
	UpdateStatus(ctx context.Context, serviceID string, status JobStatus) error
	// UpdateCost overwrites the job's cost. Returns ErrNotFound when no
	// job carries the id.
	UpdateCost(ctx context.Context, serviceID string, cost decimal.Decimal) error
	// Get returns the job by id, or ErrNotFound.
	Get(ctx context.Context, serviceID string) (*ServiceJob, error)
}

type serviceJobService struct {
	store  store.Store
	ids    *IDGenerator
	logger *zap.Logger
	now    func() time.Time
}

// NewServiceJobService constructs a ServiceJobService over the tabular
// store.
func NewServiceJobService(st store.Store, ids *IDGenerator, logger *zap.Logger) ServiceJobService {
	return &serviceJobService{store: st, ids: ids, logger: logger, now: time.Now}
}

func (s *serviceJobService) Create(ctx context.Context, customer, device, problem, technician, notes string, cost decimal.Decimal) (*ServiceJob, error) {
	if cost.IsNegative() {
		s.logger.Warn("clamping negative service cost to zero", zap.String("customer", customer))
		cost = decimal.Zero
	}
	job := &ServiceJob{
		ID:         s.ids.Next(PrefixJob),
		Date:       s.now().UTC().Format(time.RFC3339),
		Customer:   customer,
		Device:     device,
		Problem:    problem,
		Status:     JobPending,
		Cost:       cost,
		Technician: technician,
		Notes:      notes,
	}
	row := []string{
		job.ID, job.Date, job.Customer, job.Device, job.Problem,
		string(job.Status), job.Cost.String(), job.Technician, job.Notes,
	}
	if err := s.store.AppendRow(ctx, store.ServiceHistory, row); err != nil {
		return nil, fmt.Errorf("append service job: %w", err)
	}
	return job, nil
}

func (s *serviceJobService) UpdateStatus(ctx context.Context, serviceID string, status JobStatus) error {
	rec, err := s.find(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCell(ctx, store.ServiceHistory, rec.Row, store.ColStatus, string(status)); err != nil {
		return fmt.Errorf("update service status: %w", err)
	}
	return nil
}

func (s *serviceJobService) UpdateCost(ctx context.Context, serviceID string, cost decimal.Decimal) error {
	rec, err := s.find(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCell(ctx, store.ServiceHistory, rec.Row, "Cost", cost.String()); err != nil {
		return fmt.Errorf("update service cost: %w", err)
	}
	return nil
}

func (s *serviceJobService) Get(ctx context.Context, serviceID string) (*ServiceJob, error) {
	rec, err := s.find(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return jobFromRecord(rec), nil
}

func (s *serviceJobService) find(ctx context.Context, serviceID string) (store.Record, error) {
	records, err := s.store.ReadAll(ctx, store.ServiceHistory)
	if err != nil {
		return store.Record{}, fmt.Errorf("read service history: %w", err)
	}
	rec, found := store.FindByKey(records, "ServiceID", serviceID)
	if !found {
		return store.Record{}, fmt.Errorf("service job %q: %w", serviceID, ErrNotFound)
	}
	return rec, nil
}

func jobFromRecord(rec store.Record) *ServiceJob {
	cost, _ := decimal.NewFromString(rec.Get("Cost"))
	return &ServiceJob{
		ID:         rec.Get("ServiceID"),
		Date:       rec.Get(store.ColDate),
		Customer:   rec.Get(store.ColCustomer),
		Device:     rec.Get("Device"),
		Problem:    rec.Get("Problem"),
		Status:     ParseJobStatus(rec.Get(store.ColStatus)),
		Cost:       cost,
		Technician: rec.Get("Technician"),
		Notes:      rec.Get(store.ColNotes),
	}
}
