package schema

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/spaolacci/murmur3"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// ROW SAMPLING — Deterministic Stratified Reduction
// ============================================================================
// Rows are grouped into strata (target classes, target deciles, or one
// stratum). Each stratum gets a quota proportional to its size, rounded with
// the largest-remainder method so quotas sum to exactly the limit. Inside a
// stratum, rows are ranked by a seeded murmur3 hash of their index and the
// lowest-ranked rows are kept. Kept rows are returned in original order.
// ============================================================================

// regressionBins is the number of quantile strata for a numeric target.
const regressionBins = 10

// stratify assigns every row of v to a stratum id.
func stratify(v dataset.View, target string, problem ProblemType) []int {
	n := v.Len()
	strata := make([]int, n)

	switch problem {
	case ProblemClassification:
		ids := make(map[string]int)
		for i := 0; i < n; i++ {
			val := v.Value(i, target)
			if dataset.IsMissing(val) {
				val = ""
			}
			id, ok := ids[val]
			if !ok {
				id = len(ids)
				ids[val] = id
			}
			strata[i] = id
		}

	case ProblemRegression:
		type ranked struct {
			row int
			val float64
		}
		valid := make([]ranked, 0, n)
		for i := 0; i < n; i++ {
			if f, ok := v.Float(i, target); ok {
				valid = append(valid, ranked{i, f})
			} else {
				strata[i] = regressionBins // missing targets share a stratum
			}
		}
		sort.SliceStable(valid, func(a, b int) bool { return valid[a].val < valid[b].val })
		for rank, r := range valid {
			strata[r.row] = rank * regressionBins / len(valid)
		}
	}

	return strata
}

// sampleRows returns the ascending row indices kept when len(strata) rows are
// reduced to limit. When limit covers every row, all indices are returned.
func sampleRows(strata []int, limit int, seed uint32) []int {
	n := len(strata)
	if limit >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	groups := make(map[int][]int)
	var ids []int
	for row, s := range strata {
		if _, ok := groups[s]; !ok {
			ids = append(ids, s)
		}
		groups[s] = append(groups[s], row)
	}
	sort.Ints(ids)

	quotas := allocateQuotas(ids, groups, n, limit)

	kept := make([]int, 0, limit)
	for _, id := range ids {
		rows := groups[id]
		q := quotas[id]
		if q == 0 {
			continue
		}
		hashes := make([]uint64, len(rows))
		for i, row := range rows {
			hashes[i] = rowHash(row, seed)
		}
		order := make([]int, len(rows))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			ha, hb := hashes[order[a]], hashes[order[b]]
			if ha != hb {
				return ha < hb
			}
			return rows[order[a]] < rows[order[b]]
		})
		for _, o := range order[:q] {
			kept = append(kept, rows[o])
		}
	}

	sort.Ints(kept)
	return kept
}

// allocateQuotas splits limit across strata by largest remainder. Ties go to
// the lower stratum id.
func allocateQuotas(ids []int, groups map[int][]int, total, limit int) map[int]int {
	quotas := make(map[int]int, len(ids))
	type rem struct {
		id   int
		frac float64
	}
	rems := make([]rem, 0, len(ids))
	assigned := 0
	for _, id := range ids {
		exact := float64(len(groups[id])) * float64(limit) / float64(total)
		q := int(math.Floor(exact))
		quotas[id] = q
		assigned += q
		rems = append(rems, rem{id, exact - float64(q)})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < limit && i < len(rems); i++ {
		id := rems[i].id
		if quotas[id] < len(groups[id]) {
			quotas[id]++
			assigned++
		}
	}
	return quotas
}

func rowHash(row int, seed uint32) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(row))
	return murmur3.Sum64WithSeed(buf[:], seed)
}
