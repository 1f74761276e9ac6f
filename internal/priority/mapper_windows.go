//go:build windows

package priority

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// priorityClasses maps abstract levels onto Windows priority classes.
var priorityClasses = map[Level]uint32{
	VeryHigh:    windows.REALTIME_PRIORITY_CLASS,
	High:        windows.HIGH_PRIORITY_CLASS,
	AboveNormal: windows.ABOVE_NORMAL_PRIORITY_CLASS,
	Normal:      windows.NORMAL_PRIORITY_CLASS,
	BelowNormal: windows.BELOW_NORMAL_PRIORITY_CLASS,
	Low:         windows.IDLE_PRIORITY_CLASS,
}

func (m *nativeMapper) SetPriority(pid int32, level Level) error {
	class, ok := priorityClasses[level]
	if !ok {
		return fmt.Errorf("set priority pid %d: %w", pid, ErrUnsupportedLevel)
	}

	handle, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION, false, uint32(pid))
	if err != nil {
		if err == windows.ERROR_ACCESS_DENIED {
			return fmt.Errorf("set priority pid %d: %w", pid, ErrAccessDenied)
		}
		// OpenProcess rejects pids that no longer exist with
		// ERROR_INVALID_PARAMETER.
		return fmt.Errorf("set priority pid %d: %w", pid, ErrProcessVanished)
	}
	defer windows.CloseHandle(handle)

	if err := windows.SetPriorityClass(handle, class); err != nil {
		return classify("set priority", pid, err)
	}
	return nil
}
