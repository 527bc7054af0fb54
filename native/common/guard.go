package common

import "errors"

// Module identifiers used for pause gating.
const (
	ModuleStaking = "staking"
	ModuleBurn    = "burn"
	ModuleRates   = "rates"
)

// ErrModulePaused is returned when a mutation is attempted against a module
// the host has paused.
var ErrModulePaused = errors.New("module paused")

// PauseView exposes the host's pause switches to the native modules.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects mutations for paused modules. A nil view or empty module name
// leaves the operation ungated.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
