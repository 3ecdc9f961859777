package plan

import "hash/fnv"

// PermutationHash folds a 64-bit FNV-1a hash of combinedDefines into 32
// bits by XOR-ing its high and low halves, the same fold the original
// tool's std::hash-based HashToUint performs.
func PermutationHash(combinedDefines string) uint32 {
	h := fnv.New64a()
	h.Write([]byte(combinedDefines))
	v := h.Sum64()
	return uint32(v>>32) ^ uint32(v)
}
