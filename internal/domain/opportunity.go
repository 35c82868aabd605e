package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Opportunity statuses (closed enumeration, no free text).
const (
	StatusNew       = "New"
	StatusQualified = "Qualified"
	StatusAssessing = "Assessing"
	StatusQuoted    = "Quoted"
	StatusWon       = "Won"
	StatusLost      = "Lost"
	StatusOnHold    = "On Hold"
)

// Opportunity priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Statuses in display order.
var Statuses = []string{StatusNew, StatusQualified, StatusAssessing, StatusQuoted, StatusWon, StatusLost, StatusOnHold}

// Priorities in display order.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Opportunity is an AHU sales lead, the sole persisted entity.
// Dates are stored as YYYY-MM-DD strings; all numeric fields are nullable.
type Opportunity struct {
	ID                               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title                            string    `gorm:"column:title;not null" json:"title"`
	Site                             string    `gorm:"column:site;not null" json:"site"`
	Description                      *string   `gorm:"column:description" json:"description"`
	Status                           string    `gorm:"column:status;type:varchar(20);not null;default:'New'" json:"status"`
	Priority                         string    `gorm:"column:priority;type:varchar(20);not null;default:'Medium'" json:"priority"`
	TargetCloseDate                  *string   `gorm:"column:target_close_date;type:varchar(10)" json:"target_close_date"`
	OwnerName                        *string   `gorm:"column:owner_name" json:"owner_name"`
	PriceEUR                         *float64  `gorm:"column:price_eur;type:decimal(18,2)" json:"price_eur"`
	BU                               *string   `gorm:"column:bu" json:"bu"`
	AirFlowM3H                       *float64  `gorm:"column:air_flow_m3h;type:decimal(18,2)" json:"air_flow_m3h"`
	NumberOfUnits                    *int      `gorm:"column:number_of_units" json:"number_of_units"`
	DSSDSPDesign                     *string   `gorm:"column:dss_dsp_design" json:"dss_dsp_design"`
	TransferCostWithoutOHProfit8PerU *float64  `gorm:"column:transfer_cost_without_oh_profit_8_per_u;type:decimal(18,2)" json:"transfer_cost_without_oh_profit_8_per_u"`
	TransferCostCompletePerU         *float64  `gorm:"column:transfer_cost_complete_per_u;type:decimal(18,2)" json:"transfer_cost_complete_per_u"`
	VorticePrice                     *float64  `gorm:"column:vortice_price;type:decimal(18,2)" json:"vortice_price"`
	SellingPrice                     *float64  `gorm:"column:selling_price;type:decimal(18,2)" json:"selling_price"`
	Comments                         *string   `gorm:"column:comments" json:"comments"`
	CreatedAt                        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsClosed reports whether the opportunity falls in the "closed" partition.
// Closed iff status is Won, Lost or On Hold; every other status is current.
func (o *Opportunity) IsClosed() bool {
	return IsClosedStatus(o.Status)
}

// IsClosedStatus is the partition rule for a raw status value.
func IsClosedStatus(status string) bool {
	switch status {
	case StatusWon, StatusLost, StatusOnHold:
		return true
	}
	return false
}

// IsValidStatus reports whether s is one of the seven allowed statuses.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidPriority reports whether p is one of the three allowed priorities.
func IsValidPriority(p string) bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}
