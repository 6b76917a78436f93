package catalog

// Merge reconciles a local product snapshot with a freshly fetched remote
// snapshot. Remote products form the base and win ties on shared ids;
// local-only products (created offline or before the last successful sync)
// are appended after the remote set. The result is deduplicated by id,
// keeping the first occurrence.
func Merge(local, remote []Product) []Product {
	merged := make([]Product, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote)+len(local))

	for _, p := range remote {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range local {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}

// Equal reports whether two snapshots hold the same products in the same
// order, compared by id and update timestamp. Used to skip redundant persists
// after a merge that changed nothing.
func Equal(a, b []Product) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].UpdatedAt.Equal(b[i].UpdatedAt) || a[i].Name != b[i].Name || !a[i].Price.Equal(b[i].Price) {
			return false
		}
	}
	return true
}
