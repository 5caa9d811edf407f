package domain

// PurchaseRecord is kept per idempotency key. Result stays nil while the
// first purchase holding the key has not finished.
type PurchaseRecord struct {
	Quantity int    `json:"quantity"`
	Result   *Sweet `json:"result,omitempty"`
}

// Pending reports whether the purchase holding the key is still in flight.
func (r PurchaseRecord) Pending() bool {
	return r.Result == nil
}
