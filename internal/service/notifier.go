package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
)

// Mailer là interface của mail client; notifier nuốt mọi lỗi gửi mail.
type Mailer interface {
	Send(ctx context.Context, mail domain.EmailNotification) error
}

// Notifier là side-channel best-effort chạy SAU khi mutation chính đã commit.
// Lỗi gửi mail chỉ được log, không bao giờ lan ngược vào kết quả nghiệp vụ.
type Notifier struct {
	mailer  Mailer
	from    string
	timeout time.Duration
}

func NewNotifier(mailer Mailer, from string, timeout time.Duration) *Notifier {
	return &Notifier{mailer: mailer, from: from, timeout: timeout}
}

func (n *Notifier) TicketIssued(driver *domain.DriverInfo, t *domain.Ticket) {
	body := fmt.Sprintf("Xin chào %s,\n\nXe của bạn vừa bị lập biên bản phạt %.2f. Hạn nộp phạt: %s.",
		driver.Name, t.Cost, t.Deadline.Format("02/01/2006"))
	n.send(driver.Email, "Thông báo vé phạt mới", body, t.ID)
}

func (n *Notifier) TicketPaid(driver *domain.DriverInfo, t *domain.Ticket) {
	body := fmt.Sprintf("Xin chào %s,\n\nVé phạt %s đã được thanh toán thành công (%.2f).",
		driver.Name, t.ID, t.Cost)
	n.send(driver.Email, "Xác nhận thanh toán vé phạt", body, t.ID)
}

func (n *Notifier) send(to, subject, body, ticketID string) {
	// Không dùng request context: mutation đã commit, thông báo có vòng đời riêng.
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	err := n.mailer.Send(ctx, domain.EmailNotification{
		To:      to,
		From:    n.from,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		log.Printf("Gửi mail cho ticket %s thất bại (bỏ qua): %v", ticketID, err)
		return
	}
	log.Printf("Đã gửi mail '%s' cho %s (ticket %s)", subject, to, ticketID)
}
