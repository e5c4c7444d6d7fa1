package domain

type Role string

const (
	RoleDriver   Role = "driver"
	RoleEnforcer Role = "enforcer"
	RoleAdmin    Role = "admin"
)

// Subject là danh tính đã được Identity Oracle xác nhận cho request hiện tại.
type Subject struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// DriverInfo là payload trả về từ Driver Directory (getDriver/{id}).
type DriverInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
