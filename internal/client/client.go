// Package client chứa các adapter HTTP mỏng cho các hệ thống bên ngoài:
// Identity Oracle, Driver Directory, mail provider và payment gateway.
// Mọi client đều dùng chung một timeout từ config; timeout hoặc lỗi mạng
// được quy về ErrUpstream.
package client

import (
	"errors"
	"net/http"
	"time"
)

var ErrUnauthorized = errors.New("credential không hợp lệ hoặc không có vai trò yêu cầu")
var ErrUpstream = errors.New("không thể kết nối đến dịch vụ bên ngoài")

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
