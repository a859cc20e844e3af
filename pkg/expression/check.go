package expression

import (
	"fmt"

	"github.com/expr-lang/expr"
)

func CheckItemSingleMatch(env *Env, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckItemSingleMatchWithReason(env, expressions)
	return match, err
}

func CheckItemAllMatch(env *Env, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckItemAllMatchWithReason(env, expressions)
	return match, err
}

// CheckItemSingleMatchWithReason reports the first expression that matched.
func CheckItemSingleMatchWithReason(env *Env, expressions []CompiledExpression) (bool, string, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, env)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("type assert expression result: got %T", result)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}

// CheckItemAllMatchWithReason reports the expressions that did not match.
func CheckItemAllMatchWithReason(env *Env, expressions []CompiledExpression) (bool, []string, error) {
	var failedExpressions []string

	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, env)
		if err != nil {
			return false, nil, fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, nil, fmt.Errorf("type assert expression result: got %T", result)
		}

		if !expResult {
			failedExpressions = append(failedExpressions, expression.Text)
		}
	}

	if len(failedExpressions) > 0 {
		return false, failedExpressions, nil
	}

	return true, nil, nil
}

// Match is true when there are no expressions or every one of them matches.
func Match(env *Env, expressions []CompiledExpression) (bool, error) {
	if len(expressions) == 0 {
		return true, nil
	}
	return CheckItemAllMatch(env, expressions)
}
