package entity

// Role - what a connected participant may do.
type Role int8

const (
	RoleRed Role = iota
	RoleBlack
	RoleSpectator
)

const spectatorLabel = "观战"

func (that Role) String() string {
	switch that {
	case RoleRed:
		return redLabel
	case RoleBlack:
		return blackLabel
	default:
		return spectatorLabel
	}
}

// Side - returns the side the role plays, false for spectators.
func (that Role) Side() (Side, bool) {
	switch that {
	case RoleRed:
		return Red, true
	case RoleBlack:
		return Black, true
	default:
		return Red, false
	}
}

// Opponent - returns the seated role facing this one, false for spectators.
func (that Role) Opponent() (Role, bool) {
	switch that {
	case RoleRed:
		return RoleBlack, true
	case RoleBlack:
		return RoleRed, true
	default:
		return RoleSpectator, false
	}
}
