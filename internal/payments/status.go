package payments

import "github.com/printhubhq/printhub-backend/pkg/enums"

// DerivePaymentStatus computes the order's payment status from the ledger
// aggregate. Pure; recomputed on every mutation and never cached.
func DerivePaymentStatus(total, paidSum int64) enums.PaymentStatus {
	switch {
	case paidSum == 0:
		return enums.PaymentStatusPending
	case paidSum == total:
		return enums.PaymentStatusPaid
	default:
		return enums.PaymentStatusPartial
	}
}
