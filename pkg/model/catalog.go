package model

import "time"

// Room is a bookable unit supplied by the catalog. The reservation core
// never writes to this collection; it reads room identity, number, title,
// price and blackout dates at booking time.
type Room struct {
	ID          string  `json:"id,omitempty" bson:"_id,omitempty"`
	HotelID     string  `json:"hotel_id" bson:"hotel_id"`
	Number      int     `json:"number" bson:"number"`
	Title       string  `json:"title" bson:"title"`
	Price       float64 `json:"price" bson:"price"`
	MaxPeople   int     `json:"max_people" bson:"max_people"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`

	// UnavailableDates are static blackout dates (maintenance etc.),
	// independent of any reservation.
	UnavailableDates []time.Time `json:"unavailable_dates,omitempty" bson:"unavailable_dates,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// IsBlackedOut reports whether the room carries a blackout on the given
// calendar day.
func (r *Room) IsBlackedOut(date time.Time) bool {
	key := DateKey(date)
	for _, d := range r.UnavailableDates {
		if DateKey(d) == key {
			return true
		}
	}
	return false
}

// Detail snapshots the fields a reservation denormalizes.
func (r *Room) Detail() RoomDetail {
	return RoomDetail{
		RoomID: r.ID,
		Number: r.Number,
		Title:  r.Title,
	}
}

type Hotel struct {
	ID            string  `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string  `json:"name" bson:"name"`
	City          string  `json:"city" bson:"city"`
	CheapestPrice float64 `json:"cheapest_price,omitempty" bson:"cheapest_price,omitempty"`
}
