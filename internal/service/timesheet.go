package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/ledger"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/payment"
	"github.com/wes/paca/internal/tzclock"
	"github.com/wes/paca/internal/utils"
)

const defaultProjectColor = "#3b82f6"

var (
	ErrArchivedProject   = errors.New("project is archived")
	ErrNoBillableEntries = errors.New("no billable time entries")
	ErrNoCustomer        = errors.New("project has no customer")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEntryInvoiced     = errors.New("time entry is already invoiced")
)

type TimesheetService struct {
	db       database.DB
	cfg      *config.Config
	ledger   *ledger.Ledger
	clock    *tzclock.Clock
	payments payment.Provider
	log      *slog.Logger
	now      func() time.Time

	paymentsInjected bool
}

type Option func(*TimesheetService)

func WithPayments(p payment.Provider) Option {
	return func(s *TimesheetService) {
		s.payments = p
		s.paymentsInjected = true
	}
}

func WithClock(c *tzclock.Clock) Option {
	return func(s *TimesheetService) { s.clock = c }
}

func WithNow(now func() time.Time) Option {
	return func(s *TimesheetService) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *TimesheetService) { s.log = log }
}

func NewTimesheetService(db database.DB, cfg *config.Config, opts ...Option) *TimesheetService {
	s := &TimesheetService{
		db:  db,
		cfg: cfg,
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg == nil {
		s.cfg = &config.Config{}
	}
	if s.clock == nil {
		s.clock = tzclock.New(tzclock.NewLocationOracle(), time.Local)
	}
	s.ledger = ledger.New(db, ledger.WithNow(s.now), ledger.WithLogger(s.log))
	return s
}

func (s *TimesheetService) StartTimer(ctx context.Context, projectName string) (*models.TimeEntry, error) {
	project, err := s.projectByName(ctx, projectName)
	if err != nil {
		return nil, err
	}
	if project.Archived {
		return nil, fmt.Errorf("cannot start timer on '%s': %w", projectName, ErrArchivedProject)
	}

	entry, err := s.ledger.Start(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	entry.ProjectName = project.Name
	return entry, nil
}

// StopTimer stops whatever timer is running. An empty description keeps the existing one.
func (s *TimesheetService) StopTimer(ctx context.Context, description string) (*models.TimeEntry, error) {
	running, err := s.ledger.Running(ctx)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, ledger.ErrNotRunning
	}
	return s.ledger.Stop(ctx, running.ID, utils.TrimToPtr(description))
}

func (s *TimesheetService) ActiveEntry(ctx context.Context) (*models.TimeEntry, error) {
	return s.ledger.Running(ctx)
}

func (s *TimesheetService) CreateCustomer(ctx context.Context, name, email string) (*models.Customer, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: customer email %q is not valid", ErrInvalidInput, email)
	}

	existing, err := s.db.GetCustomerByName(ctx, name)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing customer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("customer '%s' already exists", name)
	}

	return s.db.CreateCustomer(ctx, name, email)
}

func (s *TimesheetService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.db.ListCustomers(ctx)
}

func (s *TimesheetService) UpdateCustomer(ctx context.Context, name, newName, email string) (*models.Customer, error) {
	c, err := s.customerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if newName = strings.TrimSpace(newName); newName == "" {
		newName = c.Name
	}
	if email = strings.TrimSpace(email); email == "" {
		email = c.Email
	} else if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: customer email %q is not valid", ErrInvalidInput, email)
	}
	return s.db.UpdateCustomer(ctx, c.ID, newName, email)
}

func (s *TimesheetService) DeleteCustomer(ctx context.Context, name string) error {
	c, err := s.customerByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteCustomer(ctx, c.ID)
}

// ProjectInput carries project fields from the CLI. Nil fields are left unchanged on update.
type ProjectInput struct {
	Name         string
	Color        *string
	Description  *string
	HourlyRate   *float64
	CustomerName *string
}

func (s *TimesheetService) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourly rate cannot be negative", ErrInvalidInput)
	}

	existing, err := s.db.GetProjectByName(ctx, name)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing project: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("project '%s' already exists", name)
	}

	details := database.ProjectDetails{
		Name:        name,
		Color:       utils.FromPtrOr(in.Color, defaultProjectColor),
		Description: in.Description,
		HourlyRate:  in.HourlyRate,
	}
	if in.CustomerName != nil {
		c, err := s.customerByName(ctx, *in.CustomerName)
		if err != nil {
			return nil, err
		}
		details.CustomerID = &c.ID
	}
	return s.db.CreateProject(ctx, details)
}

func (s *TimesheetService) UpdateProject(ctx context.Context, name string, in ProjectInput) (*models.Project, error) {
	p, err := s.projectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourly rate cannot be negative", ErrInvalidInput)
	}

	details := database.ProjectDetails{
		Name:        p.Name,
		Color:       utils.FromPtrOr(in.Color, p.Color),
		Description: p.Description,
		HourlyRate:  p.HourlyRate,
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		details.Name = n
	}
	if in.Description != nil {
		details.Description = utils.TrimToPtr(*in.Description)
	}
	if in.HourlyRate != nil {
		details.HourlyRate = in.HourlyRate
	}

	err = s.db.WithTx(ctx, func(tx database.DB) error {
		if _, err := tx.UpdateProject(ctx, p.ID, details); err != nil {
			return err
		}
		if in.CustomerName == nil {
			return nil
		}
		var customerID *string
		if *in.CustomerName != "" {
			c, err := tx.GetCustomerByName(ctx, *in.CustomerName)
			if err != nil {
				return fmt.Errorf("customer '%s' does not exist: %w", *in.CustomerName, err)
			}
			customerID = &c.ID
		}
		return tx.SetProjectCustomer(ctx, p.ID, customerID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.db.GetProjectByID(ctx, p.ID)
}

func (s *TimesheetService) SetProjectArchived(ctx context.Context, name string, archived bool) error {
	p, err := s.projectByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.SetProjectArchived(ctx, p.ID, archived)
}

func (s *TimesheetService) DeleteProject(ctx context.Context, name string) error {
	p, err := s.projectByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteProject(ctx, p.ID)
}

func (s *TimesheetService) ListProjects(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	return s.db.ListProjects(ctx, includeArchived)
}

func (s *TimesheetService) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return s.projectByName(ctx, name)
}

func (s *TimesheetService) projectByName(ctx context.Context, name string) (*models.Project, error) {
	p, err := s.db.GetProjectByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("project '%s' does not exist: %w", name, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *TimesheetService) customerByName(ctx context.Context, name string) (*models.Customer, error) {
	c, err := s.db.GetCustomerByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("customer '%s' does not exist: %w", name, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// CalculateDuration returns the live duration for a running entry.
func (s *TimesheetService) CalculateDuration(entry *models.TimeEntry) time.Duration {
	if entry.EndTime == nil {
		return s.now().Sub(entry.StartTime)
	}
	return entry.Duration()
}

func (s *TimesheetService) FormatDuration(d time.Duration) string {
	return FormatDuration(d)
}

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func FormatAmount(amount float64) string {
	if amount <= 0 {
		return "$0.00"
	}
	return fmt.Sprintf("$%.2f", amount)
}
