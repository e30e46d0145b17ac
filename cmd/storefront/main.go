package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Emmakaranja1/symatech-storefront/internal/cart"
	"github.com/Emmakaranja1/symatech-storefront/internal/checkout"
	"github.com/Emmakaranja1/symatech-storefront/internal/events"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
	h "github.com/Emmakaranja1/symatech-storefront/internal/http"
	"github.com/Emmakaranja1/symatech-storefront/internal/payment"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	CommerceAPIURL  string
	FlwPublicKey    string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	CallbackWindow  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CommerceAPIURL:  getEnv("COMMERCE_API_URL", "https://symatech-backend.onrender.com/api"),
		FlwPublicKey:    getEnv("FLW_PUBLIC_KEY", ""),
		RequestTimeout:  30 * time.Second,
		CallbackWindow:  2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "storefront").Logger()

	registry := session.NewRegistry()

	gw := gateway.New(
		gateway.Config{BaseURL: cfg.CommerceAPIURL, Timeout: 15 * time.Second},
		registry.Invalidate,
		log.With().Str("component", "gateway").Logger(),
	)

	carts := cart.NewStore(gw, log.With().Str("component", "cart").Logger())
	push := payment.NewMobilePush(gw, log.With().Str("component", "mpesa").Logger())
	card := payment.NewRedirectCard(gw, cfg.FlwPublicKey, log.With().Str("component", "flutterwave").Logger())

	orchestrator := checkout.NewOrchestrator(carts, gw, push, card, log.With().Str("component", "checkout").Logger()).
		WithCallbackWindow(cfg.CallbackWindow)

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, log.With().Str("component", "events").Logger())
		orchestrator.WithEvents(publisher)
	}

	sessions := h.NewSessionMiddleware(registry, carts, log.With().Str("component", "session").Logger())
	cartHandler := h.NewCartHandler(carts, gw, log.With().Str("component", "http").Logger())
	checkoutHandler := h.NewCheckoutHandler(orchestrator, orchestrator, push, log.With().Str("component", "http").Logger())
	ordersHandler := h.NewOrdersHandler(gw, log.With().Str("component", "http").Logger())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(sessions.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Post("/stock/check", cartHandler.CheckStock)
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Post("/payments/card/callback", checkoutHandler.CardCallback)
		r.Post("/payments/mpesa/verify", checkoutHandler.VerifyMpesa)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Get("/{order_id}/payment-status", ordersHandler.GetPaymentStatus)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Drain detached cart reconciliation calls before dropping the publisher.
	carts.Wait()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}

	log.Info().Msg("server exited")
}
