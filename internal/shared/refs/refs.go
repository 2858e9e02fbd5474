// Package refs implements the cardinality-match rule used to validate
// client-supplied reference lists against master lists resolved from
// the store.
//
// The rule is an O(1) shortcut: a master list fetched by querying for
// exactly the client-supplied identifiers (plus the required capability
// flag) can never contain entries the client did not ask for, so equal
// lengths imply every identifier resolved. The shortcut is only safe
// when the master list is derived that way; callers must never pass an
// independently-sourced master list.
package refs

// Satisfied reports whether a resolved master list validates the
// client list: equal cardinality, including the both-empty case for
// optional reference sets.
func Satisfied(requested, resolved int) bool {
	return requested == resolved
}

// Missing returns the client-supplied names absent from the resolved
// master list, preserving the client's order, for error reporting.
func Missing(requested, resolved []string) []string {
	seen := make(map[string]bool, len(resolved))
	for _, name := range resolved {
		seen[name] = true
	}

	var missing []string
	for _, name := range requested {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Duplicates returns the names appearing more than once in a
// client-supplied list, each reported once, in first-occurrence order.
// Duplicate identifiers are a field-level error, not a reference error.
func Duplicates(names []string) []string {
	counts := make(map[string]int, len(names))
	var dupes []string
	for _, name := range names {
		counts[name]++
		if counts[name] == 2 {
			dupes = append(dupes, name)
		}
	}
	return dupes
}
