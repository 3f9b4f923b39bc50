package service

// choosePrimaryOnInsert decides whether a record being inserted should carry
// the primary flag: only the first record to land on a vehicle that has no
// primary yet claims it. Uploads never steal the flag from existing media.
// The delete-side counterpart is domain.NextPrimary.
func choosePrimaryOnInsert(existingHasPrimary bool, batchIndex int) bool {
	return !existingHasPrimary && batchIndex == 0
}
