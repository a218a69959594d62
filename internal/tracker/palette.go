package tracker

import "hash/fnv"

// PaletteSize is the number of distinct class colors.
const PaletteSize = 8

// PaletteSlot maps a class to a color slot. It depends only on the class identity and the
// order the classes were declared in, so a class keeps its color across polls and runs.
//
// Priority n uses slot n-1. A declared fairness band uses its declared index. Anything else
// hashes its identity.
func PaletteSlot(id ClassID, declaredOrder []ClassID) int {
	if priority, ok := id.Priority(); ok && priority >= 1 {
		return (priority - 1) % PaletteSize
	}

	for i, declared := range declaredOrder {
		if declared == id {
			return i % PaletteSize
		}
	}

	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(id))

	return int(hasher.Sum32() % PaletteSize)
}
