package cart

// Merge reconciles a guest-session snapshot into an account cart. It runs
// exactly once, at the moment an anonymous session becomes identified.
//
// The remote cart is the base. For each local item whose identity key
// already exists remotely, the remote quantity is increased by the local
// quantity while the remote item's denormalized metadata (price, name,
// image) is kept; remote display data is considered fresher than a copy
// taken during an anonymous session. Local items with no remote
// counterpart are appended as-is. Neither input is mutated.
//
// Merging an empty local cart into any remote cart yields the remote cart
// unchanged; two empty carts yield an empty cart.
func Merge(remote, local []LineItem) []LineItem {
	merged := CloneItems(remote)

	for _, localItem := range local {
		found := false
		for idx := range merged {
			if merged[idx].Key() == localItem.Key() {
				merged[idx].Quantity += localItem.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, localItem.clone())
		}
	}

	return merged
}
