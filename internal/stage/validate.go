package stage

// ValidatePool checks a routing pool at assembly time: ids must be unique and
// every difficulty tier must have a block.
// Routing itself never calls this; it tolerates defective pools by falling back.
func ValidatePool(blocks []Block) error {
	if len(blocks) == 0 {
		return &PoolError{Problem: "pool is empty"}
	}

	seen := make(map[string]bool, len(blocks))
	tiers := make(map[Difficulty]bool, 3)
	for _, b := range blocks {
		if b.ID == "" {
			return &PoolError{Problem: "block with empty id"}
		}
		if seen[b.ID] {
			return &PoolError{BlockID: b.ID, Problem: "duplicate block id"}
		}
		seen[b.ID] = true

		if !b.TargetDifficulty.Valid() {
			return &PoolError{BlockID: b.ID, Problem: "unknown target difficulty " + string(b.TargetDifficulty)}
		}
		tiers[b.TargetDifficulty] = true
	}

	for _, d := range Difficulties() {
		if !tiers[d] {
			return &PoolError{Problem: "no block for tier " + string(d)}
		}
	}
	return nil
}
