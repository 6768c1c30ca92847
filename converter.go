package restspec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gopatchy/jsrest"
)

// Converter names a class of URL path segment usable in route rules as
// <name:param>. Converters only affect how path parameters are documented;
// matching is owned by the router.
type Converter interface {
	Regexp() string
}

type (
	StringConverter struct{}
	IntConverter    struct{}
	UUIDConverter   struct{}
)

func (StringConverter) Regexp() string { return `[^/]+` }
func (IntConverter) Regexp() string    { return `\d+` }
func (UUIDConverter) Regexp() string   { return `[0-9a-fA-F-]{36}` }

var ruleParam = regexp.MustCompile(`<(?:([^<>:]+):)?([^<>:]+)>`)

type ruleSegment struct {
	param     string
	converter string
}

// parseRule splits a flask-style rule into its httprouter path and its
// parameter segments. <param> gets the string converter; <conv:param>
// references a converter registered on the app.
func parseRule(rule string) (string, []ruleSegment, error) {
	segments := []ruleSegment{}
	seen := map[string]bool{}

	routePath := ruleParam.ReplaceAllStringFunc(rule, func(m string) string {
		sub := ruleParam.FindStringSubmatch(m)

		conv := sub[1]
		if conv == "" {
			conv = "string"
		}

		segments = append(segments, ruleSegment{
			param:     sub[2],
			converter: conv,
		})

		return ":" + sub[2]
	})

	for _, seg := range segments {
		if seen[seg.param] {
			return "", nil, jsrest.Errorf(jsrest.ErrInternalServerError, "duplicate parameter %s in rule %s", seg.param, rule)
		}

		seen[seg.param] = true
	}

	if strings.Contains(routePath, "<") || strings.Contains(routePath, ">") {
		return "", nil, jsrest.Errorf(jsrest.ErrInternalServerError, "malformed rule %s", rule)
	}

	return routePath, segments, nil
}

// docPath converts a flask-style rule to OpenAPI path template form.
func docPath(rule string) string {
	return ruleParam.ReplaceAllString(rule, "{$2}")
}

func joinPrefix(prefix, rule string) string {
	if prefix == "" {
		return rule
	}

	prefix = strings.TrimSuffix(prefix, "/")

	if rule == "" || rule == "/" {
		return fmt.Sprintf("%s/", prefix)
	}

	if !strings.HasPrefix(rule, "/") {
		rule = "/" + rule
	}

	return prefix + rule
}
