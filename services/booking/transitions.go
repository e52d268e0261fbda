package booking

import "fundilink/models"

// edge is one legal move in the booking state machine.
type edge struct {
	from string
	to   string
}

// transitionTable is the single capability table consulted by Transition:
// which edges exist, and which roles may drive each one. The system role
// appears only on the edge fired by the "payment settled" event. The
// happy path is pending -> accepted -> in_progress -> completed;
// completed, cancelled and disputed are terminal.
var transitionTable = map[edge][]string{
	{models.StatusPending, models.StatusAccepted}:     {models.RoleFundi, models.RoleSystem, models.RoleAdmin},
	{models.StatusAccepted, models.StatusInProgress}:  {models.RoleFundi, models.RoleAdmin},
	{models.StatusInProgress, models.StatusCompleted}: {models.RoleFundi, models.RoleAdmin},
	{models.StatusPending, models.StatusCancelled}:    {models.RoleClient, models.RoleAdmin},
	{models.StatusAccepted, models.StatusCancelled}:   {models.RoleClient, models.RoleAdmin},
	{models.StatusInProgress, models.StatusDisputed}:  {models.RoleClient, models.RoleFundi, models.RoleAdmin},
	{models.StatusCompleted, models.StatusDisputed}:   {models.RoleClient, models.RoleFundi, models.RoleAdmin},
}

// validTransition reports whether the edge exists at all.
func validTransition(from, to string) bool {
	_, ok := transitionTable[edge{from, to}]
	return ok
}

// roleAllowed reports whether the role may drive an existing edge.
func roleAllowed(from, to, role string) bool {
	roles, ok := transitionTable[edge{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
