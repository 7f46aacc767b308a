package models

// Trip groups the expenses of one journey.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Title is the display name of the trip (e.g., "Goa 2025").
	Title string

	// StartDate and EndDate are calendar dates in YYYY-MM-DD form.
	// EndDate is empty while the trip is ongoing.
	StartDate string
	EndDate   string

	// CreatedBy is the user ID of the trip's creator.
	CreatedBy string

	// Members are the user IDs taking part in the trip.
	Members []string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}
