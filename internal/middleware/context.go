package middleware

import "context"

type contextKey string

const operatorKey contextKey = "operator"

// OperatorInfo is the authenticated admin behind a request.
type OperatorInfo struct {
	UserID string
	Email  string
	Role   string
}

func WithOperator(ctx context.Context, op *OperatorInfo) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// GetOperatorInfo returns nil on unauthenticated requests.
func GetOperatorInfo(ctx context.Context) *OperatorInfo {
	val, ok := ctx.Value(operatorKey).(*OperatorInfo)
	if !ok {
		return nil
	}
	return val
}
