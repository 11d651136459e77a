package server

import "context"

type contextKey string

const payloadKey contextKey = "webhook-payload"

func withPayload(ctx context.Context, body []byte) context.Context {
	return context.WithValue(ctx, payloadKey, body)
}

func payloadFrom(ctx context.Context) []byte {
	body, _ := ctx.Value(payloadKey).([]byte)
	return body
}
