package migration

// CheckConsistentHistory verifies that no applied migration has an
// unapplied dependency.
func CheckConsistentHistory(g *Graph, applied map[Key]bool) error {
	for _, key := range g.Keys() {
		if !applied[key] {
			continue
		}
		m, _ := g.Node(key)
		for _, dep := range m.Dependencies {
			if !applied[dep] {
				return &InconsistentHistoryError{Migration: key, Dependency: dep}
			}
		}
	}
	return nil
}
