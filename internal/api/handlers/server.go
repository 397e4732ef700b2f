package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/account"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/cart"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/checkout"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/orders"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/payment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/review"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

type ContactSender interface {
	Contact(ctx context.Context, name, email, subject, body string) error
}

type PaymentService interface {
	CreatePayment(ctx context.Context, s *session.Session) (string, error)
	ParseEvent(payload []byte, signature string) (*payment.Event, error)
}

type Fulfiller interface {
	Fulfill(ctx context.Context, paymentRef string) (*models.OrderWithLines, error)
}

type Deps struct {
	Store       session.Store
	Products    repository.ProductRepository
	Operations  repository.OperationRepository
	Coupons     repository.CouponRepository
	Cart        *cart.Manager
	Checkout    *checkout.Calculator
	Payments    PaymentService
	Fulfillment Fulfiller
	Orders      *orders.Service
	Accounts    *account.Service
	Reviews     *review.Service
	Contact     ContactSender
	Logger      *zap.Logger

	SessionTTL    time.Duration
	SecureCookies bool
}

type Server struct {
	store       session.Store
	products    repository.ProductRepository
	cart        *cart.Manager
	checkout    *checkout.Calculator
	payments    PaymentService
	fulfillment Fulfiller
	orders      *orders.Service
	accounts    *account.Service
	reviews     *review.Service
	contact     ContactSender
	logger      *zap.Logger

	productHandler *ProductHandler
	couponHandler  *CouponHandler
	orderHandler   *OrderHandler

	sessionTTL    time.Duration
	secureCookies bool
}

func NewServer(d Deps) *Server {
	return &Server{
		store:       d.Store,
		products:    d.Products,
		cart:        d.Cart,
		checkout:    d.Checkout,
		payments:    d.Payments,
		fulfillment: d.Fulfillment,
		orders:      d.Orders,
		accounts:    d.Accounts,
		reviews:     d.Reviews,
		contact:     d.Contact,
		logger:      d.Logger,

		productHandler: NewProductHandler(d.Products, d.Operations),
		couponHandler:  NewCouponHandler(d.Coupons),
		orderHandler:   NewOrderHandler(d.Orders),

		sessionTTL:    d.SessionTTL,
		secureCookies: d.SecureCookies,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/payment/webhook", s.PaymentWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.Sessions)

		r.Get("/", s.Home)
		r.Get("/search", s.Search)
		r.Get("/products/{id}", s.ProductDetail)

		r.Get("/contact", s.ContactPage)
		r.Post("/contact", s.SendContact)

		r.Get("/accounts/register", s.RegisterPage)
		r.Post("/accounts/register", s.Register)
		r.Get("/accounts/login", s.LoginPage)
		r.Post("/accounts/login", s.Login)
		r.Post("/accounts/logout", s.Logout)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireLogin)

			r.Post("/products/{id}/reviews", s.SubmitReview)

			r.Get("/cart", s.ViewCart)
			r.Post("/cart/add/{id}", s.AddToCart)
			r.Post("/cart/update/{id}", s.UpdateCart)
			r.Post("/cart/remove/{id}", s.RemoveFromCart)

			r.Get("/checkout", s.ViewCheckout)
			r.Post("/checkout/process", s.ProcessCheckout)
			r.Post("/coupon/apply", s.ApplyCoupon)

			r.Get("/payment/create", s.CreatePayment)
			r.Post("/payment/create", s.CreatePayment)
			r.Get("/payment/success", s.PaymentSuccess)
			r.Get("/payment/cancel", s.PaymentCancel)

			r.Get("/orders", s.OrderHistory)
			r.Get("/orders/{id}", s.OrderDetail)

			r.Get("/accounts/profile", s.Profile)
			r.Post("/accounts/profile", s.UpdateProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.RequireStaff)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.productHandler.GetAll)
				r.Post("/", s.productHandler.Create)
				r.Get("/{id}", s.productHandler.GetByID)
				r.Put("/{id}", s.productHandler.Update)
				r.Delete("/{id}", s.productHandler.Delete)
				r.Get("/{id}/operations", s.productHandler.GetOperations)
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", s.couponHandler.GetAll)
				r.Post("/", s.couponHandler.Create)
				r.Get("/{id}", s.couponHandler.GetByID)
				r.Put("/{id}", s.couponHandler.Update)
				r.Delete("/{id}", s.couponHandler.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.orderHandler.GetAll)
				r.Get("/{id}", s.orderHandler.GetByID)
				r.Put("/{id}/status", s.orderHandler.UpdateStatus)
			})
		})
	})

	return r
}
