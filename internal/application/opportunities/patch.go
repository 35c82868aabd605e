package opportunities

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ahu-backend/internal/domain"

	"github.com/google/uuid"
)

// Column kinds drive how a raw grid-cell value is coerced before persisting.
type columnKind int

const (
	kindText columnKind = iota
	kindRequiredText
	kindNumber
	kindInteger
	kindDate
	kindStatus
	kindPriority
)

var ErrUnknownColumn = errors.New("Unknown or non-editable column")

var patchable = map[string]columnKind{
	"title":                                   kindRequiredText,
	"site":                                    kindRequiredText,
	"description":                             kindText,
	"owner_name":                              kindText,
	"bu":                                      kindText,
	"dss_dsp_design":                          kindText,
	"comments":                                kindText,
	"status":                                  kindStatus,
	"priority":                                kindPriority,
	"target_close_date":                       kindDate,
	"price_eur":                               kindNumber,
	"air_flow_m3h":                            kindNumber,
	"transfer_cost_without_oh_profit_8_per_u": kindNumber,
	"transfer_cost_complete_per_u":            kindNumber,
	"vortice_price":                           kindNumber,
	"selling_price":                           kindNumber,
	"number_of_units":                         kindInteger,
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// Patch persists a single-column change for one record (inline grid edit).
// The coerced value is returned to the caller inside the updated record so the
// cell can show what was actually stored.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, column string, raw interface{}) (*domain.Opportunity, error) {
	kind, ok := patchable[column]
	if !ok {
		return nil, ErrUnknownColumn
	}
	value, err := coercePatchValue(column, kind, raw)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Opportunity{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return nil, fmt.Errorf("Failed to save %s: %v", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// coercePatchValue applies the per-kind rules from the grid cell protocol:
// empty number input means null, never zero; unparsable numbers become null;
// select kinds are enum-validated and never free text.
func coercePatchValue(column string, kind columnKind, raw interface{}) (interface{}, error) {
	switch kind {
	case kindRequiredText:
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return nil, fmt.Errorf("%s cannot be blank", column)
		}
		return s, nil
	case kindText:
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return nil, nil
		}
		return s, nil
	case kindDate:
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return nil, nil
		}
		return s, nil
	case kindStatus:
		s := asString(raw)
		if !domain.IsValidStatus(s) {
			return nil, ErrInvalidStatus
		}
		return s, nil
	case kindPriority:
		s := asString(raw)
		if !domain.IsValidPriority(s) {
			return nil, ErrInvalidPriority
		}
		return s, nil
	case kindNumber:
		return coerceNumber(raw), nil
	case kindInteger:
		n := coerceNumber(raw)
		if n == nil {
			return nil, nil
		}
		return int(*n), nil
	}
	return nil, ErrUnknownColumn
}

// coerceNumber strips everything but digits, sign and decimal point before
// parsing. Returns nil for empty or unparsable input.
func coerceNumber(raw interface{}) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	s := nonNumericRe.ReplaceAllString(asString(raw), "")
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
