// pkg/vehicle/command.go
package vehicle

import "github.com/go-gl/mathgl/mgl64"

// CommandKind identifies a discrete pilot or game command.
type CommandKind int

const (
	CommandToggleEngine CommandKind = iota
	CommandMove
	CommandRespawn
	CommandFlip
)

func (k CommandKind) String() string {
	switch k {
	case CommandToggleEngine:
		return "toggle_engine"
	case CommandMove:
		return "move"
	case CommandRespawn:
		return "respawn"
	case CommandFlip:
		return "flip"
	default:
		return "unknown"
	}
}

// Command is a discrete request consumed at the start of the next tick.
// Position and Rotation are used by CommandMove only.
type Command struct {
	Kind     CommandKind
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// ToggleEngineCommand starts a stopped engine or stops a running one.
func ToggleEngineCommand() Command { return Command{Kind: CommandToggleEngine} }

// MoveCommand teleports the vehicle with its engine running.
func MoveCommand(pos mgl64.Vec3, rot mgl64.Quat) Command {
	return Command{Kind: CommandMove, Position: pos, Rotation: rot}
}

// RespawnCommand returns the vehicle to its spawn pose with the engine off.
func RespawnCommand() Command { return Command{Kind: CommandRespawn} }

// FlipCommand rights a slow, upside-down vehicle.
func FlipCommand() Command { return Command{Kind: CommandFlip} }
