package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Reservation status values as stored in reservations.status.  A
// reservation moves forward through the delivery pipeline or sideways
// to CANCELLED.  Only the first three states may be cancelled by the
// owning customer; pipeline progression past INSPECTION_SCHEDULED is
// driven by back-office processes outside this service.
const (
    ReservationStatusPending             = "PENDING"
    ReservationStatusConfirmed           = "CONFIRMED"
    ReservationStatusInspectionScheduled = "INSPECTION_SCHEDULED"
    ReservationStatusInTransit           = "IN_TRANSIT"
    ReservationStatusDelivered           = "DELIVERED"
    ReservationStatusCompleted           = "COMPLETED"
    ReservationStatusCancelled           = "CANCELLED"
)

// CancellableStatus reports whether a customer may still cancel a
// reservation in the given status.
func CancellableStatus(status string) bool {
    switch status {
    case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusInspectionScheduled:
        return true
    }
    return false
}

// Reservation records a customer's binding request to hold a specific
// car, together with the contact, delivery and payment details
// captured by the checkout wizard.  CarPrice and TotalAmount are
// snapshots taken at reservation time; they must never follow later
// price changes on the car.  Only the last four card digits are ever
// stored.
//
// Fields:
//  ID            – primary key identifier.
//  OrderNumber   – unique human shareable identifier (ORD-YYYY-NNNNN).
//  UserID        – customer who made the reservation.
//  CarID         – car being reserved.
//  Status        – current reservation status.
//  CustomerName  – contact name captured at checkout.
//  CustomerEmail – contact email captured at checkout.
//  CustomerPhone – contact phone captured at checkout.
//  StreetAddress – delivery street address.
//  Suburb        – delivery suburb.
//  State         – delivery state.
//  Postcode      – delivery postcode.
//  PreferredDate – preferred inspection/delivery date.
//  PaymentMethod – chosen payment method.
//  CardLast4     – masked card suffix, empty for non-card methods.
//  CarPrice      – car price snapshotted at reservation time.
//  TotalAmount   – amount payable snapshotted at reservation time.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
    ID            uint64          // reservations.id
    OrderNumber   string          // reservations.order_number
    UserID        uint64          // reservations.user_id
    CarID         uint64          // reservations.car_id
    Status        string          // reservations.status
    CustomerName  string          // reservations.customer_name
    CustomerEmail string          // reservations.customer_email
    CustomerPhone string          // reservations.customer_phone
    StreetAddress string          // reservations.street_address
    Suburb        string          // reservations.suburb
    State         string          // reservations.state
    Postcode      string          // reservations.postcode
    PreferredDate string          // reservations.preferred_inspection_date
    PaymentMethod string          // reservations.payment_method
    CardLast4     string          // reservations.card_last4
    CarPrice      decimal.Decimal // reservations.car_price
    TotalAmount   decimal.Decimal // reservations.total_amount
    CreatedAt     time.Time       // reservations.created_at
    UpdatedAt     time.Time       // reservations.updated_at
}

// CustomerDetails carries the validated checkout wizard output into
// the reservation workflow.  Field formats are validated upstream by
// the wizard; the workflow only enforces business invariants.
type CustomerDetails struct {
    Name          string
    Email         string
    Phone         string
    StreetAddress string
    Suburb        string
    State         string
    Postcode      string
    PreferredDate string
    PaymentMethod string
    CardLast4     string
}
