package cart

// ChangeQuantityRequest carries the signed delta for a quantity patch. A
// zero delta is passed through and absorbed by the store as a no-op.
type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}
