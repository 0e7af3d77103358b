// Code generated by "stringer -type Kind"; hand-maintained in this
// exercise since the toolchain is not run, but kept in the form stringer
// emits.

package macroop

import "strconv"

func _() {
	var x [1]struct{}
	_ = x[KindNandMmap-0]
	_ = x[KindNandMunmap-1]
	_ = x[KindSramMalloc-2]
	_ = x[KindSramFree-3]
	_ = x[KindDramMalloc-4]
	_ = x[KindDramFree-5]
	_ = x[KindSramPrefetch-6]
	_ = x[KindSramPrefetchRelease-7]
	_ = x[KindMatMul-8]
}

const _kindNames = "NandMmapNandMunmapSramMallocSramFreeDramMallocDramFreeSramPrefetchSramPrefetchReleaseMatMul"

var _kindIndex = [...]uint8{0, 8, 18, 28, 36, 46, 54, 66, 85, 91}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(_kindIndex)-1 {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return _kindNames[_kindIndex[k]:_kindIndex[k+1]]
}
