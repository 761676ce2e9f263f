package imports

// Reduce recognizes "from M import X" -> "import M" transitions (and the
// reverse) in a computed diff and replaces the two raw findings with a
// single upgrade or downgrade record. It runs to a fixed point over the
// full removed/new sets, and never records the same module in both an
// upgrade and a downgrade for one diff.
//
// Callers should Simplify the diff afterwards to drop entries the
// reduction emptied.
func Reduce(d *Diff) {
	if d == nil {
		return
	}
	for changed := true; changed; {
		changed = false
		if upgrade(d) {
			changed = true
		}
		if downgrade(d) {
			changed = true
		}
	}
}

// upgrade merges a new direct import with the removed from-imports of the
// same module into one "upgraded to direct import" record.
func upgrade(d *Diff) bool {
	changed := false
	for _, imported := range append([]ImportedName(nil), d.New...) {
		module := imported.Canonical
		names, ok := d.RemovedFrom[module]
		if !ok || containsPackage(d.Downgraded, module) {
			continue
		}
		d.Upgraded = append(d.Upgraded, PackageImportChange{
			Package: module,
			Names:   localNames(names),
		})
		delete(d.RemovedFrom, module)
		d.New = removeBinding(d.New, imported)
		d.RemovedFromModules = removeString(d.RemovedFromModules, module)
		changed = true
	}
	return changed
}

// downgrade merges a removed direct import with the new from-imports of the
// same module into one "downgraded to from-import" record.
func downgrade(d *Diff) bool {
	changed := false
	for _, imported := range append([]ImportedName(nil), d.Removed...) {
		module := imported.Canonical
		names, ok := d.NewFrom[module]
		if !ok || containsPackage(d.Upgraded, module) {
			continue
		}
		d.Downgraded = append(d.Downgraded, PackageImportChange{
			Package: module,
			Names:   localNames(names),
		})
		delete(d.NewFrom, module)
		d.Removed = removeBinding(d.Removed, imported)
		d.NewFromModules = removeString(d.NewFromModules, module)
		changed = true
	}
	return changed
}

func containsPackage(changes []PackageImportChange, module string) bool {
	for _, change := range changes {
		if change.Package == module {
			return true
		}
	}
	return false
}

func removeBinding(bindings []ImportedName, target ImportedName) []ImportedName {
	kept := bindings[:0]
	for _, binding := range bindings {
		if binding != target {
			kept = append(kept, binding)
		}
	}
	return kept
}
