package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"food-ordering/internal/config"
	"food-ordering/internal/database"
	"food-ordering/internal/events"
	"food-ordering/internal/location"
	"food-ordering/internal/logger"
	"food-ordering/internal/messaging"
	"food-ordering/internal/models"
	"food-ordering/internal/pricing"
	"food-ordering/internal/promo"
	"food-ordering/internal/schedule"
	"food-ordering/internal/services/address"
	"food-ordering/internal/services/cart"
	"food-ordering/internal/services/checkout"
	"food-ordering/internal/services/notification"
	"food-ordering/internal/services/order"
	"food-ordering/internal/services/payment"
	"food-ordering/internal/services/rating"
	"food-ordering/internal/services/session"
	"food-ordering/internal/services/tracking"
	"food-ordering/internal/storage"
)

func main() {
	var (
		mode       = flag.String("mode", "demo", "Service mode (demo, tracking-worker, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		workerName = flag.String("worker-name", "tracker-1", "Consumer tag for tracking-worker mode")
		prefetch   = flag.Int("prefetch", 5, "RabbitMQ prefetch count")
		useBroker  = flag.Bool("broker", false, "Publish demo events to RabbitMQ")
		promoCode  = flag.String("promo", "WELCOME10", "Promo code applied in demo mode")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":            *mode,
		"storage_backend": cfg.Storage.Backend,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "demo":
		err = runDemo(ctx, cfg, log, *useBroker, *promoCode)
	case "tracking-worker":
		err = runTrackingWorker(ctx, cfg, log, *workerName, *prefetch)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// backends holds the optional infrastructure a mode connected to
type backends struct {
	kv     storage.Store
	db     *database.DB
	rdb    *redis.Client
	kafka  *events.Producer
	closer []func()
}

func (b *backends) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		b.closer[i]()
	}
}

// openBackends connects the storage backend plus Redis and Kafka when configured
func openBackends(ctx context.Context, cfg *config.Config, log *logger.Logger, needDB bool) (*backends, error) {
	b := &backends{kv: storage.NewMemory()}

	if needDB || cfg.Storage.Backend == config.BackendPostgres {
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		b.closer = append(b.closer, db.Close)
		if err := db.RunMigrations(ctx, database.Migrations()); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		b.db = db
	}

	if cfg.Storage.Backend == config.BackendRedis || cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			if cfg.Storage.Backend == config.BackendRedis {
				b.Close()
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			log.Warn("redis_unavailable", "Redis unreachable, driver positions are not shared", "", map[string]interface{}{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		} else {
			b.rdb = rdb
			b.closer = append(b.closer, func() { rdb.Close() })
		}
	}

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		b.kv = storage.NewRedis(b.rdb, cfg.Redis.KeyPrefix)
	case config.BackendPostgres:
		b.kv = storage.NewPostgres(b.db)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to initialize kafka producer: %w", err)
		}
		b.kafka = producer
		b.closer = append(b.closer, func() { producer.Close() })
	}

	return b, nil
}

func trackingOptions(cfg *config.Config) tracking.Options {
	return tracking.Options{
		StatusInterval:   cfg.Tracking.StatusInterval,
		LocationInterval: cfg.Tracking.LocationInterval,
		SpeedKmh:         cfg.Tracking.SpeedKmh,
	}
}

// runDemo walks one customer through checkout and tracks the order to the door
func runDemo(ctx context.Context, cfg *config.Config, log *logger.Logger, useBroker bool, code string) error {
	requestID := logger.GenerateRequestID()

	b, err := openBackends(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer b.Close()

	sched := schedule.Real{}
	users := session.NewStore(log)
	addresses := address.NewStore(b.kv, log)
	payments := payment.NewStore(b.kv, log)
	basket := cart.NewStore(log)
	ratings := rating.NewStore(b.kv, log, time.Now)
	notifications := notification.NewStore(b.kv, log, sched)

	var orderOpts []order.Option
	if b.db != nil {
		orderOpts = append(orderOpts, order.WithArchive(b.db))
	}
	orders := order.NewStore(b.kv, log, orderOpts...)

	for _, load := range []func(context.Context) error{addresses.Load, payments.Load, orders.Load, ratings.Load, notifications.Load} {
		if err := load(ctx); err != nil {
			return fmt.Errorf("failed to load saved state: %w", err)
		}
	}

	var publishers []checkout.OrderPublisher
	notifiers := []tracking.Notifier{notifications}
	if useBroker {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()
		publisher := messaging.NewPublisher(conn, log)
		publishers = append(publishers, publisher)
		notifiers = append(notifiers, publisher)
	}
	if b.kafka != nil {
		publishers = append(publishers, b.kafka)
		notifiers = append(notifiers, b.kafka)
	}

	if err := seedCustomer(ctx, users, addresses, payments, basket); err != nil {
		return err
	}

	validator := promo.NewValidator(promo.DefaultCodes(), promo.WithLatency(cfg.Checkout.PromoLatency))
	promoSession := promo.NewSession(validator)
	if code != "" {
		result, err := promoSession.Apply(ctx, code, basket.Subtotal())
		if err != nil {
			return err
		}
		if !result.IsValid {
			log.Warn("promo_rejected", result.Error, requestID, map[string]interface{}{"code": code})
		}
	}

	delivered := make(chan string, 1)
	hooks := tracking.Hooks{
		Recorder:  orders,
		Notifiers: notifiers,
		OnDelivered: func(orderID string) {
			if err := ratings.MarkPending(context.Background(), orderID); err != nil {
				log.Error("rating_prompt_failed", "Failed to queue rating prompt", "", err, nil)
			}
			delivered <- orderID
		},
	}
	if b.rdb != nil {
		hooks.Locations = location.NewRedis(b.rdb, cfg.Redis.KeyPrefix)
	}
	manager := tracking.NewManager(sched, hooks, trackingOptions(cfg), log)
	defer manager.StopAll()

	orchestrator := checkout.NewOrchestrator(checkout.Deps{
		Addresses:               addresses,
		Cart:                    basket,
		Payments:                payments,
		Users:                   users,
		Orders:                  orders,
		Placer:                  checkout.NewSimulatedPlacer(cfg.Checkout.PlacementDelay, cfg.Checkout.FailureRate, nil),
		Promo:                   promoSession,
		Usage:                   validator,
		Publishers:              publishers,
		FallbackDeliveryMinutes: cfg.Checkout.FallbackDeliveryMinutes,
	}, log)

	summary := orchestrator.Summary()
	fmt.Printf("Subtotal %s  Delivery %s  Tax %s  Discount -%s  Total %s\n",
		pricing.FormatPrice(summary.Subtotal), pricing.FormatPrice(summary.DeliveryFee),
		pricing.FormatPrice(summary.Tax), pricing.FormatPrice(summary.Discount), pricing.FormatPrice(summary.Total))

	placed, err := placeWithRetry(ctx, orchestrator, 3)
	if err != nil {
		return err
	}
	fmt.Printf("Order %s placed, paid with %s\n", placed.ID, payment.Describe(placed.PaymentMethod))

	tracker := manager.Track(placed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case id := <-delivered:
			log.Info("demo_completed", fmt.Sprintf("Order %s delivered", id), requestID, nil)
			return errDelivered
		}
	})
	g.Go(func() error {
		return printProgress(gctx, os.Stdout, tracker, cfg.Tracking.StatusInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errDelivered) {
		return err
	}

	for _, n := range notifications.List() {
		fmt.Printf("  [%s] %s: %s\n", n.CreatedAt.Format("15:04:05"), n.Title, n.Body)
	}
	if pending := ratings.Pending(); len(pending) > 0 {
		fmt.Printf("Rate your order %s!\n", pending[0])
	}
	return nil
}

var errDelivered = errors.New("order delivered")

func placeWithRetry(ctx context.Context, o *checkout.Orchestrator, attempts int) (models.Order, error) {
	placed, err := o.PlaceOrder(ctx)
	for i := 1; err != nil && i < attempts; i++ {
		failure, ok := o.Failure()
		if !ok || !failure.Retryable {
			break
		}
		fmt.Printf("Placement failed: %s, retrying\n", failure.Message)
		placed, err = o.Retry(ctx)
	}
	return placed, err
}

func printProgress(ctx context.Context, w io.Writer, tracker *tracking.Tracker, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		snap := tracker.Snapshot()
		line := fmt.Sprintf("%s  %s", snap.Status.Label(), snap.ETA())
		if snap.Driver != nil {
			line += fmt.Sprintf("  driver %s at %.5f,%.5f", snap.Driver.Name, snap.Driver.Location.Latitude, snap.Driver.Location.Longitude)
		}
		fmt.Fprintln(w, line)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// seedCustomer signs in a demo customer with an address, a card and a full cart
func seedCustomer(ctx context.Context, users *session.Store, addresses *address.Store, payments *payment.Store, basket *cart.Store) error {
	if err := users.SignIn(models.User{ID: "user_demo", Name: "Demo Customer", Email: "demo@example.com"}); err != nil {
		return err
	}

	if len(addresses.List()) == 0 {
		if _, err := addresses.Add(ctx, models.Address{
			Label:       models.LabelHome,
			Street:      "350 Fifth Avenue",
			City:        "New York",
			ZipCode:     "10118",
			Coordinates: models.Coordinates{Latitude: 40.7484, Longitude: -73.9857},
		}); err != nil {
			return err
		}
	}
	if addr, ok := addresses.Default(); ok {
		if err := addresses.Select(addr.ID); err != nil {
			return err
		}
	}

	if len(payments.GetSavedCards()) == 0 {
		card, err := payment.NewCard("", payment.CardInput{
			Number:      "4242 4242 4242 4242",
			ExpiryMonth: 12,
			ExpiryYear:  time.Now().Year() + 2,
			HolderName:  "Demo Customer",
		}, time.Now())
		if err != nil {
			return err
		}
		if _, err := payments.AddPaymentMethod(ctx, card); err != nil {
			return err
		}
	}

	fee := 1.99
	restaurant := models.Restaurant{
		ID:              "rest_luigi",
		Name:            "Luigi's Pizzeria",
		Cuisine:         "Italian",
		Coordinates:     models.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		DeliveryFee:     &fee,
		DeliveryTimeMin: 25,
		DeliveryTimeMax: 40,
	}
	items := []models.OrderItem{
		{
			MenuItem:       models.MenuItem{ID: "menu_margherita", RestaurantID: restaurant.ID, Name: "Margherita", Price: 14.5, Available: true},
			Quantity:       2,
			Customizations: []models.Customization{{ID: "extra_cheese", Name: "Extra cheese", Price: 1.5}},
		},
		{
			MenuItem: models.MenuItem{ID: "menu_tiramisu", RestaurantID: restaurant.ID, Name: "Tiramisu", Price: 7, Available: true},
			Quantity: 1,
		},
	}
	for _, item := range items {
		if err := basket.AddItem(restaurant, item); err != nil {
			return err
		}
	}
	return nil
}

// runTrackingWorker tracks every order placed on the bus and records status history in PostgreSQL
func runTrackingWorker(ctx context.Context, cfg *config.Config, log *logger.Logger, workerName string, prefetch int) error {
	b, err := openBackends(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer b.Close()

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	publisher := messaging.NewPublisher(conn, log)
	hooks := tracking.Hooks{
		Recorder:  tracking.LogRecorder(b.db),
		Notifiers: []tracking.Notifier{publisher},
	}
	if b.kafka != nil {
		hooks.Notifiers = append(hooks.Notifiers, b.kafka)
	}
	if b.rdb != nil {
		hooks.Locations = location.NewRedis(b.rdb, cfg.Redis.KeyPrefix)
	}

	manager := tracking.NewManager(schedule.Real{}, hooks, trackingOptions(cfg), log)
	consumer := messaging.NewConsumer(conn, log, messaging.QueueTracking, workerName, prefetch)
	worker := tracking.NewWorker(workerName, manager, consumer, log)

	return worker.Start(ctx)
}

// runNotificationSubscriber prints status updates from the notifications fanout
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	b, err := openBackends(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer b.Close()

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	store := notification.NewStore(b.kv, log, schedule.Real{})
	if err := store.Load(ctx); err != nil {
		return err
	}

	consumer := messaging.NewConsumer(conn, log, messaging.QueueNotifications, "notification-subscriber", prefetch)
	subscriber := notification.NewSubscriber(consumer, store, os.Stdout, log)
	return subscriber.Start(ctx)
}
