package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Car status values as stored in the cars.status column.  A car is
// visible to customers only while it is not in DRAFT.  Status is
// mutated exclusively by the reservation workflow (reserve sets
// RESERVED, cancel restores AVAILABLE); SOLD and DRAFT are set by
// back-office processes outside this service.
const (
    CarStatusAvailable = "AVAILABLE"
    CarStatusReserved  = "RESERVED"
    CarStatusSold      = "SOLD"
    CarStatusDraft     = "DRAFT"
)

// Car represents a vehicle listing as stored in the `cars` table.
// The slug is a stable, human readable identifier derived from
// make/model/year/variant and is unique across the table.  Price is
// a decimal so money never rounds through binary floats.
//
// Fields:
//  ID        – primary key identifier.
//  Slug      – unique human readable identifier.
//  Make      – manufacturer name.
//  Model     – model name.
//  Year      – build year.
//  Variant   – trim/badge designation.
//  Mileage   – odometer reading in kilometres.
//  Price     – asking price.
//  Status    – one of AVAILABLE, RESERVED, SOLD, DRAFT.
//  Featured  – whether the car is promoted on the home listing.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Car struct {
    ID        uint64          // cars.id
    Slug      string          // cars.slug
    Make      string          // cars.make
    Model     string          // cars.model
    Year      uint16          // cars.year
    Variant   string          // cars.variant
    Mileage   uint32          // cars.mileage
    Price     decimal.Decimal // cars.price
    Status    string          // cars.status
    Featured  bool            // cars.featured
    CreatedAt time.Time       // cars.created_at
    UpdatedAt time.Time       // cars.updated_at
}

// CarImage is a row in the `car_images` table.  Each car may have
// several images; at most one per car carries IsPrimary and is the
// one denormalized onto listings, favorites and confirmations.
//
// Fields:
//  ID        – primary key identifier.
//  CarID     – owning car.
//  URL       – image location.
//  IsPrimary – whether this is the display image.
//  SortOrder – gallery ordering.
type CarImage struct {
    ID        uint64 // car_images.id
    CarID     uint64 // car_images.car_id
    URL       string // car_images.url
    IsPrimary bool   // car_images.is_primary
    SortOrder uint32 // car_images.sort_order
}
