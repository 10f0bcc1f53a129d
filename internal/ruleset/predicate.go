package ruleset

import (
	"regexp"
	"strings"
	"sync"

	"birvalid/internal/domain"
)

// customPredicates resolves the custom predicate names a rule may reference.
// Keeping these behind names (instead of closures stored in the rule) keeps
// rule sets serializable and auditable.
var customPredicates = map[string]func(value any) bool{
	"tin_format":     tinFormat,
	"contains_digit": containsDigit,
}

// KnownCustomPredicate reports whether a custom predicate name is registered.
func KnownCustomPredicate(name string) bool {
	_, ok := customPredicates[name]
	return ok
}

var (
	regexCacheMu sync.RWMutex
	regexCache   = map[string]*regexp.Regexp{}
)

func compiledPattern(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCacheMu.Lock()
	regexCache[pattern] = re
	regexCacheMu.Unlock()
	return re, nil
}

// Evaluate interprets a serialized predicate against a field's runtime value.
// A nil predicate degrades to a presence check. Values come from the schema
// validator: string, float64, bool, or nil for absent fields.
func Evaluate(p *domain.RulePredicate, value any) bool {
	if p == nil {
		return value != nil
	}
	switch p.Kind {
	case domain.PredicateNonEmptyString:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	case domain.PredicatePositiveNumber:
		n, ok := value.(float64)
		return ok && n > 0
	case domain.PredicateRegexMatch:
		s, ok := value.(string)
		if !ok {
			return false
		}
		re, err := compiledPattern(p.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	case domain.PredicateOneOf:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, choice := range p.Choices {
			if strings.EqualFold(s, choice) {
				return true
			}
		}
		return false
	case domain.PredicateBooleanTrue:
		b, ok := value.(bool)
		return ok && b
	case domain.PredicateCustom:
		fn, ok := customPredicates[p.Custom]
		return ok && fn(value)
	default:
		return false
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// tinFormat accepts a TIN with 9-12 digits after stripping separators and
// labels, e.g. "123-456-789-000" or "TIN: 123456789".
func tinFormat(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	digits := nonDigits.ReplaceAllString(s, "")
	return len(digits) >= 9 && len(digits) <= 12
}

func containsDigit(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return strings.ContainsAny(s, "0123456789")
}
