package opportunities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ahu-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pageSize caps every list query; there is no further pagination.
const pageSize = 50

var (
	ErrNotFound        = errors.New("Opportunity not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrSiteRequired    = errors.New("site is required")
	ErrInvalidStatus   = errors.New("Invalid status value")
	ErrInvalidPriority = errors.New("Invalid priority value")
)

type Service struct {
	DB *gorm.DB
}

// sortable is the allow-list of sort columns. Anything else silently falls
// back to updated_at descending.
var sortable = map[string]bool{
	"title":                        true,
	"site":                         true,
	"status":                       true,
	"priority":                     true,
	"target_close_date":            true,
	"owner_name":                   true,
	"price_eur":                    true,
	"air_flow_m3h":                 true,
	"number_of_units":              true,
	"selling_price":                true,
	"transfer_cost_complete_per_u": true,
	"vortice_price":                true,
	"updated_at":                   true,
	"created_at":                   true,
}

// OrderClause resolves sort/dir query values to a SQL order clause.
func OrderClause(sort, dir string) string {
	if !sortable[sort] {
		return "updated_at DESC"
	}
	direction := "DESC"
	if strings.EqualFold(dir, "asc") {
		direction = "ASC"
	}
	return sort + " " + direction
}

// List fetches up to pageSize opportunities ordered by the requested column.
func (s *Service) List(ctx context.Context, sort, dir string) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	if err := s.DB.WithContext(ctx).Order(OrderClause(sort, dir)).Limit(pageSize).Find(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&opp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

// WriteInput is the full-record payload used by both create and update
// (the form posts a complete record on submit).
type WriteInput struct {
	Title                            string   `json:"title"`
	Site                             string   `json:"site"`
	Description                      *string  `json:"description"`
	Status                           string   `json:"status"`
	Priority                         string   `json:"priority"`
	TargetCloseDate                  *string  `json:"target_close_date"`
	OwnerName                        *string  `json:"owner_name"`
	PriceEUR                         *float64 `json:"price_eur"`
	BU                               *string  `json:"bu"`
	AirFlowM3H                       *float64 `json:"air_flow_m3h"`
	NumberOfUnits                    *int     `json:"number_of_units"`
	DSSDSPDesign                     *string  `json:"dss_dsp_design"`
	TransferCostWithoutOHProfit8PerU *float64 `json:"transfer_cost_without_oh_profit_8_per_u"`
	TransferCostCompletePerU         *float64 `json:"transfer_cost_complete_per_u"`
	VorticePrice                     *float64 `json:"vortice_price"`
	SellingPrice                     *float64 `json:"selling_price"`
	Comments                         *string  `json:"comments"`
}

func (in *WriteInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(in.Site) == "" {
		return ErrSiteRequired
	}
	if in.Status == "" {
		in.Status = domain.StatusNew
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !domain.IsValidStatus(in.Status) {
		return ErrInvalidStatus
	}
	if !domain.IsValidPriority(in.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

func (in *WriteInput) apply(opp *domain.Opportunity) {
	opp.Title = in.Title
	opp.Site = in.Site
	opp.Description = in.Description
	opp.Status = in.Status
	opp.Priority = in.Priority
	opp.TargetCloseDate = in.TargetCloseDate
	opp.OwnerName = in.OwnerName
	opp.PriceEUR = in.PriceEUR
	opp.BU = in.BU
	opp.AirFlowM3H = in.AirFlowM3H
	opp.NumberOfUnits = in.NumberOfUnits
	opp.DSSDSPDesign = in.DSSDSPDesign
	opp.TransferCostWithoutOHProfit8PerU = in.TransferCostWithoutOHProfit8PerU
	opp.TransferCostCompletePerU = in.TransferCostCompletePerU
	opp.VorticePrice = in.VorticePrice
	opp.SellingPrice = in.SellingPrice
	opp.Comments = in.Comments
}

func (s *Service) Create(ctx context.Context, in WriteInput) (*domain.Opportunity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	opp := &domain.Opportunity{}
	in.apply(opp)
	if err := s.DB.WithContext(ctx).Create(opp).Error; err != nil {
		return nil, fmt.Errorf("Failed to create opportunity: %v", err)
	}
	return opp, nil
}

// Update replaces all editable fields of an existing record (form save).
func (s *Service) Update(ctx context.Context, id uuid.UUID, in WriteInput) (*domain.Opportunity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	opp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(opp)
	if err := s.DB.WithContext(ctx).Save(opp).Error; err != nil {
		return nil, fmt.Errorf("Failed to update opportunity: %v", err)
	}
	return opp, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Opportunity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MissingTable reports whether err looks like the opportunities table has not
// been created yet (setup-needed notice instead of a raw 500).
func MissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find the table") ||
		strings.Contains(msg, "schema cache") ||
		strings.Contains(msg, "relation") ||
		strings.Contains(msg, "no such table")
}
