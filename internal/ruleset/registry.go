package ruleset

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"birvalid/internal/domain"
	"birvalid/internal/port"
)

// Registry is an in-memory implementation of port.RuleSetRepository, seeded
// with the built-in sets. Every access goes through the RWMutex; it is safe
// for concurrent handlers.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*domain.RuleSet
}

// NewRegistry creates a Registry seeded with all built-in rule sets.
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[string]*domain.RuleSet)}
	for _, set := range BuiltinRuleSets() {
		r.sets[set.ID] = set
	}
	return r
}

var _ port.RuleSetRepository = (*Registry)(nil)

// Get returns the rule set with the given slug id, including soft-deleted
// ones; callers resolving a set for validation must check IsActive.
func (r *Registry) Get(_ context.Context, id string) (*domain.RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[id]
	if !ok {
		return nil, domain.ErrRuleSetNotFound
	}
	cp := cloneSet(set)
	return &cp, nil
}

// List returns all active rule sets.
func (r *Registry) List(_ context.Context) ([]domain.RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RuleSet, 0, len(r.sets))
	for _, set := range r.sets {
		if set.IsActive {
			out = append(out, cloneSet(set))
		}
	}
	return out, nil
}

// Create registers a new rule set. The caller is expected to have run
// ValidateSpec already; the id is derived from the name.
func (r *Registry) Create(_ context.Context, set *domain.RuleSet) error {
	if set.ID == "" {
		set.ID = Slugify(set.Name)
	}
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now
	set.IsActive = true

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sets[set.ID]; exists {
		return fmt.Errorf("rule set %q: %w", set.ID, domain.ErrRuleSetExists)
	}
	stored := cloneSet(set)
	r.sets[set.ID] = &stored
	return nil
}

// Update replaces a stored rule set. Built-in sets may be updated too; the
// flag is preserved.
func (r *Registry) Update(_ context.Context, set *domain.RuleSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sets[set.ID]
	if !ok {
		return domain.ErrRuleSetNotFound
	}
	set.IsBuiltin = existing.IsBuiltin
	set.CreatedAt = existing.CreatedAt
	set.UpdatedAt = time.Now().UTC()
	stored := cloneSet(set)
	r.sets[set.ID] = &stored
	return nil
}

// SoftDelete flips IsActive and keeps the record. Deleting an already
// inactive set reports false without error.
func (r *Registry) SoftDelete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	if !ok {
		return false, domain.ErrRuleSetNotFound
	}
	if !set.IsActive {
		return false, nil
	}
	set.IsActive = false
	set.UpdatedAt = time.Now().UTC()
	return true, nil
}

func cloneSet(set *domain.RuleSet) domain.RuleSet {
	cp := *set
	cp.Rules = make([]domain.ValidationRule, len(set.Rules))
	copy(cp.Rules, set.Rules)
	return cp
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a rule set id from its name: lowercase, runs of
// non-alphanumerics collapsed to a single underscore, trimmed.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

// ValidateSpec checks a client-supplied rule set spec and returns itemized
// errors rather than failing on the first problem. Empty rule sets are
// rejected here so the score denominator can never be zero.
func ValidateSpec(spec *domain.RuleSetSpec) []string {
	var errs []string
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(spec.Description) == "" {
		errs = append(errs, "description is required")
	}
	if spec.Kind != "" && spec.Kind != domain.RuleSetKindStandard && spec.Kind != domain.RuleSetKindBIR {
		errs = append(errs, fmt.Sprintf("kind must be %q or %q", domain.RuleSetKindStandard, domain.RuleSetKindBIR))
	}
	if len(spec.Rules) == 0 {
		errs = append(errs, "at least one rule is required")
	}
	for i, rule := range spec.Rules {
		errs = append(errs, validateRule(i, &rule, spec.Kind)...)
	}
	if spec.MinimumScore != nil && (*spec.MinimumScore < 0 || *spec.MinimumScore > 100) {
		errs = append(errs, "minimum_score must be between 0 and 100")
	}
	return errs
}

func validateRule(idx int, rule *domain.ValidationRule, kind domain.RuleSetKind) []string {
	var errs []string
	prefix := fmt.Sprintf("rules[%d]", idx)
	if strings.TrimSpace(rule.Field) == "" {
		errs = append(errs, prefix+": field is required")
	}
	if strings.TrimSpace(rule.Message) == "" {
		errs = append(errs, prefix+": message is required")
	}
	if kind == domain.RuleSetKindBIR {
		if rule.Weight < 1 || rule.Weight > 10 {
			errs = append(errs, prefix+": weight must be between 1 and 10")
		}
	} else if rule.Weight != 0 {
		errs = append(errs, prefix+": weight applies to BIR rule sets only")
	}
	if p := rule.Predicate; p != nil {
		if !domain.ValidPredicateKinds[p.Kind] {
			errs = append(errs, fmt.Sprintf("%s: unknown predicate kind %q", prefix, p.Kind))
			return errs
		}
		switch p.Kind {
		case domain.PredicateRegexMatch:
			if p.Pattern == "" {
				errs = append(errs, prefix+": regex_match requires a pattern")
			} else if _, err := compiledPattern(p.Pattern); err != nil {
				errs = append(errs, fmt.Sprintf("%s: invalid pattern: %v", prefix, err))
			}
		case domain.PredicateOneOf:
			if len(p.Choices) == 0 {
				errs = append(errs, prefix+": one_of requires at least one choice")
			}
		case domain.PredicateCustom:
			if !KnownCustomPredicate(p.Custom) {
				errs = append(errs, fmt.Sprintf("%s: unknown custom predicate %q", prefix, p.Custom))
			}
		}
	}
	return errs
}
