package core

// WallFollower is an example maze-ant table that keeps its left
// antenna on a wall.
//
// Inputs are L (wall to the left), A (wall ahead), and S (breadcrumb
// here).  Outputs are TL, TR, F, D, and E.
const WallFollower = `; A left-hand wall follower.
;
; Inputs: L A S.  Outputs: TL TR F D E.

walk 0 - - | walk 1 0 1 0 0
walk 1 0 - | walk 0 0 1 0 0
walk 1 1 - | walk 0 1 0 0 0
`

// ThreeFloors is an example elevator table for a three-floor
// building.  The state name encodes the floor.
//
// Inputs are one pending-request bit per floor.  Outputs are UP,
// DOWN, OPEN, and RING.
const ThreeFloors = `; Serve the current floor, otherwise move toward a pending request.
F0 1 - - | F0 0 0 1 0
F0 0 1 - | F1 1 0 0 0
F0 0 0 1 | F1 1 0 0 0
F0 0 0 0 | F0 0 0 0 0
F1 - 1 - | F1 0 0 1 0
F1 1 0 - | F0 0 1 0 0
F1 0 0 1 | F2 1 0 0 0
F1 0 0 0 | F1 0 0 0 0
F2 - - 1 | F2 0 0 1 0
F2 - 1 0 | F1 0 1 0 0
F2 1 0 0 | F1 0 1 0 0
F2 0 0 0 | F2 0 0 0 0
`

// WallFollowerTable loads WallFollower.
func WallFollowerTable() (*Table, error) {
	return Load(WallFollower, 3, 5)
}

// ThreeFloorsTable loads ThreeFloors.
func ThreeFloorsTable() (*Table, error) {
	return Load(ThreeFloors, 3, 4)
}
