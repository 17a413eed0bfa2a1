package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/colorfit/pkg/products"
)

type ProductsHandler struct {
	searcher products.Searcher
}

func NewProductsHandler(searcher products.Searcher) *ProductsHandler {
	return &ProductsHandler{searcher: searcher}
}

type searchErrorResponse struct {
	Error string `json:"error"`
}

// Search proxies a clothing search for a gender and outfit category.
// @Summary Search clothing
// @Tags    products
// @Produce json
// @Param   gender   query string false "male or female" default(male)
// @Param   category query string false "Accessories, Casuals, Party, Formal or Trending" default(Trending)
// @Param   page     query int    false "page number" default(1)
// @Success 200 {object} products.Result
// @Failure 400 {object} searchErrorResponse
// @Failure 502 {object} searchErrorResponse
// @Failure 503 {object} searchErrorResponse
// @Router  /search [get]
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	q := products.Query{Gender: c.Query("gender"), Category: c.Query("category")}
	if v := strings.TrimSpace(c.Query("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.Status(http.StatusBadRequest).JSON(searchErrorResponse{Error: "page must be a positive integer"})
		}
		q.Page = n
	}

	res, err := h.searcher.Search(c.UserContext(), q)
	if err != nil {
		var ue *products.UpstreamError
		switch {
		case errors.As(err, &ue):
			return c.Status(ue.StatusCode).JSON(searchErrorResponse{Error: ue.Message})
		case errors.Is(err, products.ErrNotConfigured):
			return c.Status(http.StatusServiceUnavailable).JSON(searchErrorResponse{Error: err.Error()})
		case errors.Is(err, products.ErrInvalidQuery):
			return c.Status(http.StatusBadRequest).JSON(searchErrorResponse{Error: err.Error()})
		default:
			return c.Status(http.StatusBadGateway).JSON(searchErrorResponse{Error: "product search failed"})
		}
	}
	return c.Status(http.StatusOK).JSON(res)
}
