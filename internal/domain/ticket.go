package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type TicketStatus string

const (
	TicketUnpaid     TicketStatus = "unpaid"
	TicketChallenged TicketStatus = "challenged"
	TicketPaid       TicketStatus = "paid"
	TicketAccepted   TicketStatus = "accepted" // Khiếu nại được chấp nhận, phí được xóa
	TicketDenied     TicketStatus = "denied"   // Khiếu nại bị từ chối, trạng thái cuối
)

// Ticket là biên bản phạt do enforcer lập cho một vehicle.
type Ticket struct {
	ID                   string       `json:"id"`
	VehicleID            string       `json:"vehicle_id"`
	Cost                 float64      `json:"cost"`
	Issued               time.Time    `json:"issued"`
	Deadline             time.Time    `json:"deadline"`
	Status               TicketStatus `json:"status"`
	ChallengeDescription null.String  `json:"challenge_description"`
	PaidAt               null.Time    `json:"paid_at"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

type MakeTicketDTO struct {
	Plate string  `json:"plate" binding:"required"`
	State string  `json:"state" binding:"required"`
	Cost  float64 `json:"cost" binding:"min=0"`
}

type ChallengeTicketDTO struct {
	Description string `json:"description" binding:"required"`
}
