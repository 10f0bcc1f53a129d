package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/ruleset"
)

// RuleSetHandler handles rule set management endpoints.
type RuleSetHandler struct {
	ruleSets port.RuleSetRepository
}

// NewRuleSetHandler creates a new RuleSetHandler.
func NewRuleSetHandler(ruleSets port.RuleSetRepository) *RuleSetHandler {
	return &RuleSetHandler{ruleSets: ruleSets}
}

// List handles GET /api/v1/rule-sets
// @Summary List active rule sets
// @Tags rule-sets
// @Produce json
// @Success 200 {object} APIResponse "Active rule sets"
// @Router /rule-sets [get]
func (h *RuleSetHandler) List(c *gin.Context) {
	sets, err := h.ruleSets.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sets)
}

// Get handles GET /api/v1/rule-sets/:id
// @Summary Get a rule set by id
// @Tags rule-sets
// @Produce json
// @Param id path string true "Rule set id (slug)"
// @Success 200 {object} APIResponse "Rule set"
// @Failure 404 {object} APIResponse "Rule set not found"
// @Router /rule-sets/{id} [get]
func (h *RuleSetHandler) Get(c *gin.Context) {
	set, err := h.ruleSets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, set)
}

// Create handles POST /api/v1/rule-sets
// @Summary Register a custom rule set
// @Tags rule-sets
// @Accept json
// @Produce json
// @Success 201 {object} APIResponse "Rule set created"
// @Failure 400 {object} APIResponse "Invalid spec"
// @Failure 409 {object} APIResponse "Rule set already exists"
// @Router /rule-sets [post]
func (h *RuleSetHandler) Create(c *gin.Context) {
	var spec domain.RuleSetSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid rule set body")
		return
	}
	if spec.Kind == "" {
		spec.Kind = domain.RuleSetKindStandard
	}
	if errs := ruleset.ValidateSpec(&spec); len(errs) > 0 {
		RespondValidationErrors(c, errs)
		return
	}

	set := specToSet(&spec)
	if err := h.ruleSets.Create(c.Request.Context(), set); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, set)
}

// Update handles PUT /api/v1/rule-sets/:id
// @Summary Replace a rule set's definition
// @Tags rule-sets
// @Accept json
// @Produce json
// @Param id path string true "Rule set id (slug)"
// @Success 200 {object} APIResponse "Rule set updated"
// @Failure 400 {object} APIResponse "Invalid spec"
// @Failure 404 {object} APIResponse "Rule set not found"
// @Router /rule-sets/{id} [put]
func (h *RuleSetHandler) Update(c *gin.Context) {
	var spec domain.RuleSetSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid rule set body")
		return
	}

	existing, err := h.ruleSets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if spec.Kind == "" {
		spec.Kind = existing.Kind
	}
	if errs := ruleset.ValidateSpec(&spec); len(errs) > 0 {
		RespondValidationErrors(c, errs)
		return
	}

	set := specToSet(&spec)
	set.ID = existing.ID
	if spec.MinimumScore == nil {
		set.MinimumScore = existing.MinimumScore
	}
	if err := h.ruleSets.Update(c.Request.Context(), set); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, set)
}

// Delete handles DELETE /api/v1/rule-sets/:id
// @Summary Soft-delete a rule set
// @Description Marks the set inactive; the record is retained
// @Tags rule-sets
// @Produce json
// @Param id path string true "Rule set id (slug)"
// @Success 200 {object} APIResponse "Deletion outcome"
// @Failure 404 {object} APIResponse "Rule set not found"
// @Router /rule-sets/{id} [delete]
func (h *RuleSetHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.ruleSets.SoftDelete(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "deleted": deleted})
}

func specToSet(spec *domain.RuleSetSpec) *domain.RuleSet {
	set := &domain.RuleSet{
		ID:          ruleset.Slugify(spec.Name),
		Name:        spec.Name,
		Description: spec.Description,
		Kind:        spec.Kind,
		Rules:       spec.Rules,
		IsActive:    true,
	}
	if spec.MinimumScore != nil {
		set.MinimumScore = *spec.MinimumScore
	}
	return set
}
