package validator

// AdjustmentDelta converts an adjustment's entered value into the signed
// quantity actually recorded. The operator enters the desired resulting
// balance, not a delta: recording target−current and re-projecting lands the
// balance exactly on the entered value.
func AdjustmentDelta(targetBalance, currentBalance float64) float64 {
	return targetBalance - currentBalance
}
