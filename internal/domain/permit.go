package domain

import "time"

// Permit là một vé đã phát hành cho driver, tham chiếu đến PermitType.
// Bất biến sau khi tạo (trong phạm vi core này).
type Permit struct {
	ID              string    `json:"id"`
	TypeID          string    `json:"type_id"`
	HolderID        string    `json:"holder_id"`
	VehicleID       string    `json:"vehicle_id"`
	Active          bool      `json:"active"`
	Expiration      time.Time `json:"expiration"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PermitCheckoutDTO struct {
	VehicleID    string `json:"vehicle_id" binding:"required"`
	PermitTypeID string `json:"permit_type_id" binding:"required"`
}
