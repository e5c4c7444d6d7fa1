package domain

import "time"

// PermitType là một mục trong catalog vé tháng/vé ngày.
// Ràng buộc: tại một thời điểm chỉ có tối đa MỘT bản ghi active (deleted = false)
// cho mỗi cặp (classname, type); các bản ghi đã soft-delete được giữ lại làm lịch sử.
type PermitType struct {
	ID        string    `json:"id"`
	Classname string    `json:"classname"`
	Type      string    `json:"type"` // Nhãn chu kỳ tính phí: "day", "month", ...
	Price     float64   `json:"price"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePermitTypeDTO struct {
	Classname string  `json:"classname" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Price     float64 `json:"price" binding:"min=0"`
}

type UpdatePermitPriceDTO struct {
	Price float64 `json:"price" binding:"min=0"`
}
