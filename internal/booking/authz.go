package booking

type Action string

const (
	ActionView         Action = "view"
	ActionUpdateStatus Action = "update_status"
	ActionCancel       Action = "cancel"
)

// Parties are the two users with rights over a booking.
type Parties struct {
	GuestID string
	HostID  string
}

// Authorize decides whether actorID may perform action.
// Guests and hosts may view and cancel; only the host decides on a request.
func (p Parties) Authorize(actorID string, action Action) error {
	if actorID == "" {
		return ErrPermissionDenied
	}
	isGuest := actorID == p.GuestID
	isHost := actorID == p.HostID

	switch action {
	case ActionView, ActionCancel:
		if isGuest || isHost {
			return nil
		}
	case ActionUpdateStatus:
		if isHost {
			return nil
		}
	}
	return ErrPermissionDenied
}
