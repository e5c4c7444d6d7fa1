package domain

// AllowedTransitions mô tả máy trạng thái của ticket dưới dạng đồ thị có hướng.
// unpaid là trạng thái khởi tạo; paid, accepted, denied là trạng thái cuối.
var AllowedTransitions = map[TicketStatus][]TicketStatus{
	TicketUnpaid:     {TicketPaid, TicketChallenged},
	TicketChallenged: {TicketAccepted, TicketDenied},
	TicketPaid:       {},
	TicketAccepted:   {},
	TicketDenied:     {},
}

// CanTransition kiểm tra from -> to có phải một bước chuyển hợp lệ không.
func CanTransition(from, to TicketStatus) bool {
	allowed, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// RequiredState trả về trạng thái hiện tại bắt buộc để chuyển sang to.
// Mỗi trạng thái đích chỉ có đúng một trạng thái nguồn trong máy trạng thái này.
func RequiredState(to TicketStatus) TicketStatus {
	switch to {
	case TicketPaid, TicketChallenged:
		return TicketUnpaid
	case TicketAccepted, TicketDenied:
		return TicketChallenged
	}
	return ""
}
