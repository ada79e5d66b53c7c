package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafeteria-orders/src/cli"
	"cafeteria-orders/src/config"
	"cafeteria-orders/src/controllers"
	"cafeteria-orders/src/infrastructure"
	"cafeteria-orders/src/infrastructure/csvstore"
	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/infrastructure/mongo"
	"cafeteria-orders/src/infrastructure/rabbitmq"
	"cafeteria-orders/src/services/dlq"
	"cafeteria-orders/src/services/events"
	"cafeteria-orders/src/services/notification"
	notificationHandlers "cafeteria-orders/src/services/notification/handlers"
	"cafeteria-orders/src/services/order/domain"
	"cafeteria-orders/src/services/order/domain/persistence"
	"cafeteria-orders/src/services/placement"

	_ "cafeteria-orders/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// @title        Cafeteria Orders API
// @version      1.0
// @description  Order intake for the campus cafeteria: menu, customers and order placement.
// @host         localhost:8080
// @BasePath     /
func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.NewLogger()

	var configs, err = config.LoadConfig()
	if err != nil {
		logger.Fatal(ctx, "Failed to load configuration", err)
	}
	logger.Info(ctx, "Configuration loaded successfully")

	cafeteriaCatalog, err := csvstore.LoadCatalog(csvstore.CatalogFiles{
		Menu:        configs.MenuFile,
		Students:    configs.StudentsFile,
		Instructors: configs.InstructorsFile,
		Staff:       configs.StaffFile,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to load catalogs", err)
	}
	logger.InfoWithExtra(ctx, "Catalogs loaded", map[string]any{
		"MenuItems": len(cafeteriaCatalog.ListMenu()),
		"DataDir":   configs.DataDir,
	})

	orderService := domain.NewOrderService(logger, cafeteriaCatalog)
	orderWriter := csvstore.NewOrderWriter(configs.OrdersFile)

	// Optional MongoDB archive
	var (
		mongoClient     *mongodriver.Client
		orderRepository *persistence.OrderRepository
		archive         placement.OrderArchive
		orderLookup     controllers.OrderLookup
		orderHistory    controllers.OrderHistory
	)
	if configs.ArchiveEnabled() {
		mongoClient, err = mongo.GetMongoClient(configs)
		if err != nil {
			logger.Fatal(ctx, "Failed to connect to MongoDB", err)
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			logger.Fatal(ctx, "MongoDB ping failed", err)
		}
		logger.Info(ctx, "MongoDB connection successful")

		database, err := mongo.GetDatabase(configs)
		if err != nil {
			logger.Fatal(ctx, "Failed to open MongoDB database", err)
		}
		orderRepository = persistence.NewOrderRepository(database)
		if err := orderRepository.EnsureIndexes(ctx); err != nil {
			logger.Fatal(ctx, "Failed to create order indexes", err)
		}
		archive = orderRepository
		orderLookup = orderRepository
		orderHistory = orderRepository
	} else {
		logger.Warn(ctx, "MONGODB_CONNECTION_STRING not set, order archive disabled")
	}

	// Optional RabbitMQ events
	var (
		rabbitmqService *rabbitmq.RabbitMQServiceImpl
		publisher       placement.EventPublisher
	)
	if configs.EventsEnabled() {
		rabbitmqService, err = rabbitmq.NewRabbitMQService(configs.RabbitMQHostName, configs.RabbitMQExchange, configs.RabbitMQQueueName, events.Queues)
		if err != nil {
			logger.Fatal(ctx, "Failed to create RabbitMQ service", err)
		}
		defer rabbitmqService.Close()

		if !rabbitmqService.IsHealthy() {
			logger.Fatal(ctx, "RabbitMQ connection is not healthy", nil)
		}
		logger.Info(ctx, "RabbitMQ connection successful")
		publisher = rabbitmqService

		notificationService := notification.NewNotificationService(logger)
		eventListener := infrastructure.NewEventListener(rabbitmqService, logger)
		eventListener.RegisterHandler(events.OrderPlaced, notificationHandlers.NewOrderPlacedEventHandler(notificationService, logger))
		if orderRepository != nil {
			dlqHandler := dlq.NewDLQHandler(orderRepository, logger)
			eventListener.RegisterHandler(configs.RabbitMQQueueName+".dlq", dlqHandler)
			eventListener.RegisterHandler(events.OrderPlacedDLQ, dlqHandler)
		}

		go func() {
			if err := eventListener.StartListening(ctx); err != nil {
				logger.Exception(ctx, "Event listener stopped", err)
			}
		}()
		logger.Info(ctx, "Event listeners started successfully")
	} else {
		logger.Warn(ctx, "RABBITMQ_HOSTNAME not set, order events disabled")
	}

	placementService := placement.NewPlacementService(logger, orderService, orderWriter, archive, publisher)

	if configs.Mode == config.ModePrompt {
		prompt := cli.NewPrompt(os.Stdin, os.Stdout, orderService, placementService)
		if _, err := prompt.Run(ctx); err != nil {
			logger.Warn(ctx, "Order was not placed: "+err.Error())
		}
		return
	}

	app := fiber.New(fiber.Config{
		ServerHeader: "Cafeteria-Orders-Service",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Exception(c.UserContext(), "HTTP request error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(_ string) bool { return true },
	}))
	app.Use(recover.New())
	app.Use(controllers.RequestLogger(logger))

	app.Get("/api/swagger/*", fiberSwagger.WrapHandler)
	app.Get("/api/healthCheck", func(c *fiber.Ctx) error {
		if mongoClient != nil {
			if err := mongoClient.Ping(c.UserContext(), nil); err != nil {
				logger.Exception(c.UserContext(), "Health check: MongoDB ping failed", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unhealthy",
					"error":  "database connection failed",
				})
			}
		}

		if rabbitmqService != nil && !rabbitmqService.IsHealthy() {
			logger.Warn(c.UserContext(), "Health check: RabbitMQ connection is unhealthy")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "message queue connection failed",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	controllers.NewMenuController(orderService).Route(app)
	controllers.NewCustomerController(orderService, orderHistory).Route(app)
	controllers.NewOrderController(placementService, orderLookup).Route(app)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	serverShutdown := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting server on port "+configs.HTTPPort)
		if err := app.Listen(":" + configs.HTTPPort); err != nil {
			serverShutdown <- err
		}
	}()

	select {
	case <-c:
		logger.Info(ctx, "Shutdown signal received, shutting down gracefully...")
	case err := <-serverShutdown:
		logger.Exception(ctx, "Server error occurred", err)
	}

	// Cancel context to stop background processes
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Exception(ctx, "Server shutdown error", err)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Exception(ctx, "MongoDB disconnect error", err)
		}
	}

	logger.Info(ctx, "Server shutdown complete")
}
