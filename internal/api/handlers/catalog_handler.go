package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

const ProductsPerPage = 20

type listingPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
}

type productPage struct {
	Product models.Product  `json:"product"`
	Reviews []models.Review `json:"reviews"`
	Average float64         `json:"average_rating"`
}

// Home lists the catalog. Out of range or malformed ?page values fall back to
// the nearest valid page.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	products, total, err := s.products.GetPage(r.Context(), page, ProductsPerPage)
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		internalError(w, "failed to get products")
		return
	}

	pages := max((total+ProductsPerPage-1)/ProductsPerPage, 1)
	if page > pages {
		page = pages
		products, total, err = s.products.GetPage(r.Context(), page, ProductsPerPage)
		if err != nil {
			s.logger.Error("failed to list products", zap.Error(err))
			internalError(w, "failed to get products")
			return
		}
	}

	writePage(w, r, listingPage{Products: products, Page: page, Pages: pages, Total: total})
}

func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	products, err := s.products.SearchByName(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", zap.String("q", q), zap.Error(err))
		internalError(w, "search failed")
		return
	}

	writePage(w, r, map[string]any{"query": q, "products": products})
}

func (s *Server) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			notFound(w, "product")
			return
		}
		internalError(w, "failed to get product")
		return
	}

	reviews, avg, err := s.reviews.ForProduct(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load reviews", zap.Int("product_id", id), zap.Error(err))
		internalError(w, "failed to get reviews")
		return
	}

	writePage(w, r, productPage{Product: *product, Reviews: reviews, Average: avg})
}

func (s *Server) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}
	back := fmt.Sprintf("/products/%d", id)

	stars, err := strconv.Atoi(r.FormValue("stars"))
	if err != nil {
		redirectWith(w, r, back, session.FlashError, "Please choose a rating from 1 to 5.")
		return
	}

	_, err = s.reviews.Submit(r.Context(), id, sessionFrom(r).UserID, stars, r.FormValue("comment"))
	switch {
	case err == nil:
		redirectWith(w, r, back, session.FlashSuccess, "Thank you for your review!")
	case errors.Is(err, repository.ErrNotFound):
		notFound(w, "product")
	case errors.Is(err, repository.ErrInvalidInput):
		redirectWith(w, r, back, session.FlashError, "Please choose a rating from 1 to 5.")
	default:
		s.logger.Error("failed to save review", zap.Int("product_id", id), zap.Error(err))
		redirectWith(w, r, back, session.FlashError, "Your review could not be saved.")
	}
}
