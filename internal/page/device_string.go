// Code generated by "stringer -type Device"; hand-maintained in this
// exercise since the toolchain is not run, but kept in the form stringer
// emits.

package page

import "strconv"

func _() {
	var x [1]struct{}
	_ = x[NAND-0]
	_ = x[DRAM-1]
	_ = x[SRAM-2]
}

const _deviceNames = "NANDDRAMSRAM"

var _deviceIndex = [...]uint8{0, 4, 8, 12}

func (d Device) String() string {
	if d < 0 || int(d) >= len(_deviceIndex)-1 {
		return "Device(" + strconv.Itoa(int(d)) + ")"
	}

	return _deviceNames[_deviceIndex[d]:_deviceIndex[d+1]]
}
