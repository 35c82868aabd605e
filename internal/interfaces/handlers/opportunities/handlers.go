package opportunities

import (
	"encoding/json"
	"errors"
	"strings"

	oppsvc "ahu-backend/internal/application/opportunities"
	"ahu-backend/internal/domain"
	"ahu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *oppsvc.Service
}

// ListData is the list-view payload: the filtered set already split into the
// current/closed partition, plus dropdown options and the Won aggregate.
type ListData struct {
	Current        []domain.Opportunity `json:"current"`
	Closed         []domain.Opportunity `json:"closed"`
	WonOrdersTotal float64              `json:"won_orders_total"`
	BUOptions      []string             `json:"bu_options"`
	DSSOptions     []string             `json:"dss_options"`
}

// GET /api/v1/opportunities?sort=&dir=&status=&priority=&bu=&dss_dsp=
func (h *Handlers) List(c *fiber.Ctx) error {
	opps, err := h.Service.List(c.Context(), c.Query("sort"), c.Query("dir"))
	if err != nil {
		if oppsvc.MissingTable(err) {
			return response.Error(c, "Opportunities table not found. Run the database setup first.", fiber.StatusServiceUnavailable, nil)
		}
		log.Error().Err(err).Msg("opportunities: list failed")
		return response.Error(c, "Failed to fetch opportunities", fiber.StatusInternalServerError, nil)
	}

	filters := oppsvc.FilterState{
		Status:   queryValues(c, "status"),
		Priority: queryValues(c, "priority"),
		BU:       queryValues(c, "bu"),
		DSSDSP:   queryValues(c, "dss_dsp"),
	}
	filtered := filters.Apply(opps)
	current, closed := oppsvc.Partition(filtered)

	data := ListData{
		Current:        current,
		Closed:         closed,
		WonOrdersTotal: oppsvc.WonOrdersTotal(closed),
		BUOptions:      oppsvc.DistinctValues(opps, func(o domain.Opportunity) *string { return o.BU }),
		DSSOptions:     oppsvc.DistinctValues(opps, func(o domain.Opportunity) *string { return o.DSSDSPDesign }),
	}
	return response.Success(c, "Opportunities fetched successfully", data, fiber.Map{
		"order": oppsvc.OrderClause(c.Query("sort"), c.Query("dir")),
	})
}

// GET /api/v1/opportunities/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid id format", fiber.StatusBadRequest, nil)
	}
	opp, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, oppsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch opportunity", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Opportunity fetched successfully", opp, nil)
}

// POST /api/v1/opportunities
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in oppsvc.WriteInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	opp, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Opportunity created successfully", opp, nil)
}

// PUT /api/v1/opportunities/:id — full-record replace (form save).
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid id format", fiber.StatusBadRequest, nil)
	}
	var in oppsvc.WriteInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	opp, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Opportunity updated successfully", opp, nil)
}

type patchRequest struct {
	Column string      `json:"column"`
	Value  interface{} `json:"value"`
}

// PATCH /api/v1/opportunities/:id — single-column grid-cell save.
// On failure the details carry the last stored value so the cell can revert.
func (h *Handlers) Patch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid id format", fiber.StatusBadRequest, nil)
	}
	var req patchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.Column) == "" {
		return response.Error(c, "column is required", fiber.StatusBadRequest, nil)
	}
	opp, err := h.Service.Patch(c.Context(), id, req.Column, req.Value)
	if err != nil {
		if errors.Is(err, oppsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		details := fiber.Map{"column": req.Column}
		if last, lerr := h.Service.Get(c.Context(), id); lerr == nil {
			details["last_value"] = lastValue(last, req.Column)
		}
		status := fiber.StatusBadRequest
		if !errors.Is(err, oppsvc.ErrUnknownColumn) && !isValidationError(err) {
			status = fiber.StatusInternalServerError
		}
		return response.Error(c, err.Error(), status, details)
	}
	return response.Success(c, "Opportunity updated successfully", opp, nil)
}

// DELETE /api/v1/opportunities/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid id format", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, oppsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to delete opportunity", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Opportunity deleted successfully", nil, nil)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, oppsvc.ErrNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case isValidationError(err):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		log.Error().Err(err).Msg("opportunities: write failed")
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, oppsvc.ErrTitleRequired) ||
		errors.Is(err, oppsvc.ErrSiteRequired) ||
		errors.Is(err, oppsvc.ErrInvalidStatus) ||
		errors.Is(err, oppsvc.ErrInvalidPriority) ||
		strings.Contains(err.Error(), "cannot be blank")
}

// queryValues reads a multi-select filter param; repeated params and
// comma-separated values both work, empty means no restriction.
func queryValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func lastValue(o *domain.Opportunity, column string) interface{} {
	switch column {
	case "title":
		return o.Title
	case "site":
		return o.Site
	case "description":
		return o.Description
	case "status":
		return o.Status
	case "priority":
		return o.Priority
	case "target_close_date":
		return o.TargetCloseDate
	case "owner_name":
		return o.OwnerName
	case "price_eur":
		return o.PriceEUR
	case "bu":
		return o.BU
	case "air_flow_m3h":
		return o.AirFlowM3H
	case "number_of_units":
		return o.NumberOfUnits
	case "dss_dsp_design":
		return o.DSSDSPDesign
	case "transfer_cost_without_oh_profit_8_per_u":
		return o.TransferCostWithoutOHProfit8PerU
	case "transfer_cost_complete_per_u":
		return o.TransferCostCompletePerU
	case "vortice_price":
		return o.VorticePrice
	case "selling_price":
		return o.SellingPrice
	case "comments":
		return o.Comments
	}
	return nil
}
