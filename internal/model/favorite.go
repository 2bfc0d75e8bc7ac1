package model

import "time"

// Favorite is a bookmark linking a user to a car.  The pair
// (UserID, CarID) is unique; existence of the row is the whole
// signal.  Favorites are independent of the reservation workflow and
// only read car status at display time.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who favorited the car.
//  CarID     – favorited car.
//  CreatedAt – when the favorite was added.
type Favorite struct {
    ID        uint64    // favorites.id
    UserID    uint64    // favorites.user_id
    CarID     uint64    // favorites.car_id
    CreatedAt time.Time // favorites.created_at
}
