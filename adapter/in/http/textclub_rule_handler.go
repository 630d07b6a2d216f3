package http

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"textclub_server/core/domain"
	"textclub_server/core/port/out"
	"textclub_server/core/service/spam"
	"textclub_server/pkg/apperr"
	"textclub_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RuleHandler handles spam rule administration.
type RuleHandler struct {
	rules out.SpamRuleRepository
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(rules out.SpamRuleRepository) *RuleHandler {
	return &RuleHandler{rules: rules}
}

// Register registers rule routes.
func (h *RuleHandler) Register(router fiber.Router) {
	rules := router.Group("/spam/rules")

	rules.Get("/", h.ListRules)
	rules.Get("/:id", h.GetRule)
	rules.Post("/", h.CreateRule)
	rules.Put("/:id", h.UpdateRule)
	rules.Delete("/:id", h.DeleteRule)
}

type ruleRequest struct {
	Pattern string  `json:"pattern"`
	Mode    string  `json:"mode"`
	Brand   *string `json:"brand"`
	Enabled *bool   `json:"enabled"`
}

func (r *ruleRequest) validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return apperr.MissingField("pattern")
	}
	if spam.Normalize(r.Pattern) == "" {
		return apperr.InvalidInput("pattern", "normalizes to empty, rule would never match")
	}
	if r.Mode != "" && !domain.RuleMode(r.Mode).IsValid() {
		return apperr.InvalidInput("mode", "must be CONTAINS or LONE")
	}
	return nil
}

// ListRules returns a page of rules.
func (h *RuleHandler) ListRules(c *fiber.Ctx) error {
	page := response.GetPagination(c, 50, 200)

	rules, total, err := h.rules.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return apperr.DatabaseError("list spam rules", err)
	}

	return response.OKWithMeta(c, rules, &response.Meta{
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.Offset+len(rules) < total,
	})
}

// GetRule returns a single rule.
func (h *RuleHandler) GetRule(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "must be an integer")
	}

	rule, err := h.rules.GetByID(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("get spam rule", err)
	}
	if rule == nil {
		return apperr.NotFound("spam rule")
	}

	return response.OK(c, rule)
}

// CreateRule creates a new rule. The normalized pattern is computed once at
// write time so match runs skip per-rule normalization.
func (h *RuleHandler) CreateRule(c *fiber.Ctx) error {
	var req ruleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	mode := domain.RuleModeContains
	if req.Mode != "" {
		mode = domain.RuleMode(req.Mode)
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := &domain.SpamRule{
		Pattern:     req.Pattern,
		PatternNorm: spam.Normalize(req.Pattern),
		Mode:        mode,
		Brand:       req.Brand,
		Enabled:     enabled,
	}

	if err := h.rules.Create(c.Context(), rule); err != nil {
		return apperr.DatabaseError("create spam rule", err)
	}

	return response.Created(c, rule)
}

// UpdateRule updates an existing rule.
func (h *RuleHandler) UpdateRule(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "must be an integer")
	}

	var req ruleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	rule, err := h.rules.GetByID(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("get spam rule", err)
	}
	if rule == nil {
		return apperr.NotFound("spam rule")
	}

	rule.Pattern = req.Pattern
	rule.PatternNorm = spam.Normalize(req.Pattern)
	if req.Mode != "" {
		rule.Mode = domain.RuleMode(req.Mode)
	}
	rule.Brand = req.Brand
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.rules.Update(c.Context(), rule); err != nil {
		return apperr.DatabaseError("update spam rule", err)
	}

	return response.OK(c, rule)
}

// DeleteRule deletes a rule.
func (h *RuleHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "must be an integer")
	}

	if err := h.rules.Delete(c.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("spam rule")
		}
		return apperr.DatabaseError("delete spam rule", err)
	}

	return response.NoContent(c)
}
