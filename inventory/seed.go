package inventory

// SeedEntry is one (room id, units) pair used to populate the Inventory at startup.
// Type is optional.
type SeedEntry struct {
	RoomID RoomID
	Type   string
	Units  int
}

// DefaultSeed returns the rooms of the booking simulation: 101 with 5 units, 102 with 3, and 103 with 2.
func DefaultSeed() []SeedEntry {
	return []SeedEntry{
		{RoomID: 101, Type: "Standard", Units: 5},
		{RoomID: 102, Type: "Deluxe", Units: 3},
		{RoomID: 103, Type: "Suite", Units: 2},
	}
}
