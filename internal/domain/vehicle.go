package domain

import "time"

// Vehicle thuộc sở hữu của một driver; (plate, state) là khóa tự nhiên,
// id là khóa opaque dùng trong API. Mọi truy vấn ticket/permit của driver
// đều được giới hạn theo quyền sở hữu vehicle.
type Vehicle struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	State     string    `json:"state"`
	HolderID  string    `json:"holder_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterVehicleDTO struct {
	Plate string `json:"plate" binding:"required"`
	State string `json:"state" binding:"required"`
}
