//go:build !windows

package priority

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// niceValues maps abstract levels onto nice values. Anything that is not
// Windows gets this table, so unrecognized platforms degrade to Linux
// semantics rather than silently succeeding.
var niceValues = map[Level]int{
	VeryHigh:    -10,
	High:        -5,
	AboveNormal: -2,
	Normal:      0,
	BelowNormal: 5,
	Low:         10,
}

func (m *nativeMapper) SetPriority(pid int32, level Level) error {
	nice, ok := niceValues[level]
	if !ok {
		return fmt.Errorf("set priority pid %d: %w", pid, ErrUnsupportedLevel)
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, int(pid), nice); err != nil {
		return classify("set priority", pid, err)
	}
	return nil
}
