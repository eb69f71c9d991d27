package service

import "context"

type requestInfoKey struct{}

// RequestInfo is the caller metadata recorded in audit entries
type RequestInfo struct {
	IP        string
	UserAgent string
}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func requestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}
