package node

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// templatePattern matches {{ ... }} expressions inside form values
var templatePattern = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)

// HasTemplate reports whether a string contains a template expression
func HasTemplate(s string) bool {
	return templatePattern.MatchString(s)
}

// RenderTemplates walks a form map and evaluates every {{ ... }}
// expression against the upstream output's data. A value that is exactly
// one expression keeps the evaluated type; expressions embedded in a
// larger string are stringified in place.
func RenderTemplates(form map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error) {
	if data == nil {
		data = make(map[string]interface{})
	}
	env := map[string]interface{}{"data": data}

	rendered := make(map[string]interface{}, len(form))
	for key, value := range form {
		out, err := renderValue(value, env)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		rendered[key] = out
	}
	return rendered, nil
}

func renderValue(value interface{}, env map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return renderString(v, env)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			rendered, err := renderValue(inner, env)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			rendered, err := renderValue(inner, env)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return value, nil
	}
}

func renderString(s string, env map[string]interface{}) (interface{}, error) {
	matches := templatePattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// Whole-value expression keeps its evaluated type
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		return evalExpression(s[matches[0][2]:matches[0][3]], env)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		result, err := evalExpression(s[m[2]:m[3]], env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%v", result)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func evalExpression(expression string, env map[string]interface{}) (interface{}, error) {
	result, err := expr.Eval(expression, env)
	if err != nil {
		return nil, fmt.Errorf("template expression %q: %w", expression, err)
	}
	return result, nil
}
