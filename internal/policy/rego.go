package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

const ruleFile = "policy.rego"

// defaultRule flags open vulnerabilities at or above the policy severity.
// It backs policies created without a rule of their own.
const defaultRule = `package sentinel.default

rank := {"low": 1, "medium": 2, "high": 3, "critical": 4}

deny[msg] {
	host := input.hosts[_]
	vuln := host.vulnerabilities[_]
	vuln.status == "open"
	rank[vuln.severity] >= rank[input.policy.severity]
	msg := sprintf("%s has open %s vulnerability %s", [host.ip, vuln.severity, vuln.id])
}
`

// compileRule parses and compiles a Rego module and returns the query for
// its deny set
func compileRule(rule string) (string, error) {
	module, err := ast.ParseModule(ruleFile, rule)
	if err != nil {
		return "", fmt.Errorf("parse rule: %w", err)
	}
	if module == nil {
		return "", fmt.Errorf("rule is empty")
	}

	compiler := ast.NewCompiler()
	compiler.Compile(map[string]*ast.Module{ruleFile: module})
	if compiler.Failed() {
		return "", fmt.Errorf("compile rule: %v", compiler.Errors)
	}

	hasDeny := false
	for _, r := range module.Rules {
		if ref := r.Head.Ref(); len(ref) > 0 && ref[0].Value.Compare(ast.Var("deny")) == 0 {
			hasDeny = true
			break
		}
	}
	if !hasDeny {
		return "", fmt.Errorf("rule must define deny")
	}

	return module.Package.Path.String() + ".deny", nil
}

// evalDeny runs query against rule and returns the deny messages sorted
func evalDeny(ctx context.Context, rule, query string, input any) ([]string, error) {
	// rego wants plain JSON values
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}

	results, err := rego.New(
		rego.Query(query),
		rego.Module(ruleFile, rule),
		rego.Input(doc),
	).Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}

	violations := make([]string, 0)
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return violations, nil
	}

	switch v := results[0].Expressions[0].Value.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				violations = append(violations, s)
			} else {
				violations = append(violations, fmt.Sprint(item))
			}
		}
	case map[string]interface{}:
		for k := range v {
			violations = append(violations, k)
		}
	}
	sort.Strings(violations)
	return violations, nil
}
