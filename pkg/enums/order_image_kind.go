package enums

// OrderImageKind distinguishes customer reference art from design proofs.
type OrderImageKind string

const (
	OrderImageKindReference OrderImageKind = "reference"
	OrderImageKindProof     OrderImageKind = "proof"
)

var validOrderImageKinds = []OrderImageKind{
	OrderImageKindReference,
	OrderImageKindProof,
}

// IsValid reports whether the value is a known OrderImageKind.
func (k OrderImageKind) IsValid() bool {
	for _, candidate := range validOrderImageKinds {
		if candidate == k {
			return true
		}
	}
	return false
}
