package holiday

import "context"

type HolidayRepository interface {
	// List returns the whole calendar ordered by date
	List(ctx context.Context) ([]Holiday, error)

	// Save adds holidays; dates already in the calendar keep their label
	Save(ctx context.Context, holidays []Holiday) error
}
