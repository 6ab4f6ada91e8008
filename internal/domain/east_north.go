package domain

// EastNorthStatus describes what the easting/northing fields currently show.
type EastNorthStatus int

const (
	// EastNorthBlank means nothing has been computed yet.
	EastNorthBlank EastNorthStatus = iota
	// EastNorthPending means the fields were cleared while a new value is computed.
	EastNorthPending
	// EastNorthReady means X and Y hold a value.
	EastNorthReady
)

func (s EastNorthStatus) String() string {
	switch s {
	case EastNorthPending:
		return "pending"
	case EastNorthReady:
		return "ready"
	default:
		return "blank"
	}
}

// EastNorth is the projection of the canonical position into the active SRS.
// It is derived state and may lag the position while a transform is in flight.
type EastNorth struct {
	Status EastNorthStatus
	X      float64
	Y      float64
}

func PendingEastNorth() EastNorth { return EastNorth{Status: EastNorthPending} }

func ReadyEastNorth(x, y float64) EastNorth {
	return EastNorth{Status: EastNorthReady, X: x, Y: y}
}

// Direction of a coordinate transform.
type Direction string

const (
	// Forward transforms geographic lon/lat into the target SRS.
	Forward Direction = "fwd"
	// Inverse transforms SRS easting/northing back into lon/lat.
	Inverse Direction = "inv"
)
