package domain

import "time"

type TicketEventType string

const (
	TicketEventIssued      TicketEventType = "ticket_issued"
	TicketEventPaid        TicketEventType = "ticket_paid"
	TicketEventChallenged  TicketEventType = "ticket_challenged"
	TicketEventAdjudicated TicketEventType = "ticket_adjudicated"
)

// TicketEventNotification - Event được gửi đến ops dashboard qua WebSocket
type TicketEventNotification struct {
	EventID   string          `json:"event_id"`
	TicketID  string          `json:"ticket_id"`
	VehicleID string          `json:"vehicle_id"`
	EventType TicketEventType `json:"event_type"`
	Status    TicketStatus    `json:"status"`
	Cost      float64         `json:"cost"`
	Timestamp time.Time       `json:"timestamp"`
	Message   string          `json:"message,omitempty"` // Thông báo hiển thị cho ops
}

// EmailNotification là payload gửi sang mail provider (best-effort).
type EmailNotification struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
