package domain

import "sort"

// Vehicle commands accepted by the dispatcher. These mirror the Fleet API
// command names; anything outside this set is rejected before any network
// call is made.
const (
	CommandDoorLock     = "door_lock"
	CommandDoorUnlock   = "door_unlock"
	CommandHonkHorn     = "honk_horn"
	CommandFlashLights  = "flash_lights"
	CommandClimateStart = "auto_conditioning_start"
	CommandClimateStop  = "auto_conditioning_stop"
)

var knownCommands = map[string]struct{}{
	CommandDoorLock:     {},
	CommandDoorUnlock:   {},
	CommandHonkHorn:     {},
	CommandFlashLights:  {},
	CommandClimateStart: {},
	CommandClimateStop:  {},
}

// CommandAllowed reports whether name is a dispatchable vehicle command.
func CommandAllowed(name string) bool {
	_, ok := knownCommands[name]
	return ok
}

// Commands returns the dispatchable command names in sorted order.
func Commands() []string {
	names := make([]string, 0, len(knownCommands))
	for name := range knownCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
