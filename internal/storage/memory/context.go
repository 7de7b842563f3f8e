package memory

import "context"

type trxCtx struct{}

func withTransactionID(ctx context.Context, trxID string) context.Context {
	return context.WithValue(ctx, trxCtx{}, trxID)
}

func transactionIDFromContext(ctx context.Context) (string, bool) {
	trxID, ok := ctx.Value(trxCtx{}).(string)

	return trxID, ok && trxID != ""
}
