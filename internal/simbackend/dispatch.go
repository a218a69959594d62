package simbackend

import (
	"cmp"
	"slices"

	"github.com/joe/fairwatch/internal/tracker"
)

// pickByPriority serves the lowest priority number first, oldest workflow first within a
// level.
func pickByPriority(eligible []*workflow, capacity int) []*workflow {
	if capacity <= 0 || len(eligible) == 0 {
		return nil
	}

	sorted := slices.Clone(eligible)
	slices.SortStableFunc(sorted, func(a, b *workflow) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}

		return cmp.Compare(a.seq, b.seq)
	})

	return sorted[:min(capacity, len(sorted))]
}

// pickFair shares capacity among bands in proportion to their weight using smooth
// weighted round robin, FIFO within a band. When no band has a positive weight (fairness
// disabled) every workflow is served in submission order.
func pickFair(eligible []*workflow, capacity int) []*workflow {
	if capacity <= 0 || len(eligible) == 0 {
		return nil
	}

	queues := make(map[tracker.ClassID][]*workflow)

	var order []tracker.ClassID

	weighted := false

	for _, wf := range eligible {
		id := tracker.FairnessClassID(wf.key, wf.weight)
		if _, ok := queues[id]; !ok {
			order = append(order, id)
		}

		queues[id] = append(queues[id], wf)

		if wf.weight > 0 {
			weighted = true
		}
	}

	if !weighted {
		sorted := slices.Clone(eligible)
		slices.SortStableFunc(sorted, func(a, b *workflow) int { return cmp.Compare(a.seq, b.seq) })

		return sorted[:min(capacity, len(sorted))]
	}

	for _, id := range order {
		slices.SortStableFunc(queues[id], func(a, b *workflow) int { return cmp.Compare(a.seq, b.seq) })
	}

	credit := make(map[tracker.ClassID]float64, len(order))
	chosen := make([]*workflow, 0, capacity)

	for len(chosen) < capacity {
		var (
			best  tracker.ClassID
			found bool
			total float64
		)

		for _, id := range order {
			if len(queues[id]) == 0 {
				continue
			}

			weight := bandWeight(queues[id][0])
			credit[id] += weight
			total += weight

			if !found || credit[id] > credit[best] {
				best = id
				found = true
			}
		}

		if !found {
			break
		}

		credit[best] -= total
		chosen = append(chosen, queues[best][0])
		queues[best] = queues[best][1:]
	}

	return chosen
}

// bandWeight treats unweighted bands as weight 1 when mixed with weighted ones.
func bandWeight(wf *workflow) float64 {
	if wf.weight > 0 {
		return wf.weight
	}

	return 1
}
