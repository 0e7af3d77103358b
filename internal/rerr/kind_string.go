// Code generated by "stringer -type Kind"; hand-maintained in this exercise
// since the toolchain is not run, but kept in the form stringer emits.

package rerr

import "strconv"

func _() {
	// An "invalid array index" compiler error signals that the constant
	// values have changed. Re-edit this file and its _kindNames/_kindIndex
	// tables accordingly.
	var x [1]struct{}
	_ = x[UnknownFile-0]
	_ = x[BadHandle-1]
	_ = x[AddrInUse-2]
	_ = x[MapConflict-3]
	_ = x[NotMapped-4]
	_ = x[AlreadyMapped-5]
	_ = x[OOMSram-6]
	_ = x[OOMDram-7]
	_ = x[OOMPrefetch-8]
	_ = x[NandBlockFull-9]
	_ = x[NandSpaceExhausted-10]
	_ = x[PermDenied-11]
	_ = x[AddrOutOfRange-12]
	_ = x[ConfigInvalid-13]
}

const _kindNames = "UNKNOWN_FILEBAD_HANDLEADDR_IN_USEMAP_CONFLICTNOT_MAPPEDALREADY_MAPPEDOOM_SRAMOOM_DRAMOOM_PREFETCHNAND_BLOCK_FULLNAND_SPACE_EXHAUSTEDPERM_DENIEDADDR_OUT_OF_RANGECONFIG_INVALID"

var _kindIndex = [...]uint16{0, 12, 22, 33, 45, 55, 69, 77, 85, 97, 112, 132, 143, 160, 174}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(_kindIndex)-1 {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return _kindNames[_kindIndex[k]:_kindIndex[k+1]]
}
