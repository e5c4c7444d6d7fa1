package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/api"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/api/handler"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/api/middleware"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/client"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/config"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository/postgresql"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Khởi tạo external clients (Identity Oracle, Driver Directory, mail, payment)
	identityClient := client.NewIdentityClient(cfg.IdentityServiceURL, cfg.ExternalTimeout)
	directoryClient := client.NewDirectoryClient(cfg.DriverDirectoryURL, cfg.ExternalTimeout)
	mailClient := client.NewMailClient(cfg.MailAPIURL, cfg.MailAPIKey, cfg.ExternalTimeout)
	paymentClient := client.NewPaymentClient(cfg.PaymentGatewayURL, cfg.ExternalTimeout)
	log.Println("Đã khởi tạo các external client.")

	// 4. Initialize Repositories
	permitTypeRepo := postgresql.NewPgPermitTypeRepository(db)
	ticketRepo := postgresql.NewPgTicketRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	permitRepo := postgresql.NewPgPermitRepository(db)

	// init websocket manager cho ops dashboard
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 5. Initialize Services
	notifier := service.NewNotifier(mailClient, cfg.MailFrom, cfg.ExternalTimeout)
	catalogService := service.NewCatalogService(permitTypeRepo)
	ticketService := service.NewTicketService(ticketRepo, vehicleRepo, directoryClient,
		notifier, webSocketManager, cfg.TicketGracePeriod)
	permitService := service.NewPermitService(permitRepo, vehicleRepo, permitTypeRepo, paymentClient)

	// 6. Initialize Auth Middleware (authorization gate trước mọi thao tác dữ liệu)
	authMiddleware := middleware.NewAuthMiddleware(identityClient)

	// 7. Setup HTTP Router
	router := api.SetupRouter(catalogService, ticketService, permitService, authMiddleware, webSocketManager)

	// 8. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Server đã tắt.")
}
