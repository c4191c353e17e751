package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/shell"
)

const source = "rest"

// PricingHandler serves the pricing endpoints.
type PricingHandler struct {
	metrics *metrics.Collector
}

func NewPricingHandler(m *metrics.Collector) *PricingHandler {
	return &PricingHandler{metrics: m}
}

// RegisterRoutes binds the handler under /api/v1.
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1")
	{
		api.POST("/price", h.Price)
		api.POST("/price/:kind", h.PriceKind)
	}
}

// PriceRequest accepts each input as a JSON number or a numeric string.
type PriceRequest struct {
	Spot         json.Number `json:"spot"`
	Strike       json.Number `json:"strike"`
	TimeToExpiry json.Number `json:"time_to_expiry"`
	RiskFreeRate json.Number `json:"risk_free_rate"`
	Volatility   json.Number `json:"volatility"`
}

// PriceResponse carries raw prices and their two-decimal display form.
type PriceResponse struct {
	CallPrice float64 `json:"call_price"`
	PutPrice  float64 `json:"put_price"`
	Call      string  `json:"call"`
	Put       string  `json:"put"`
}

// KindResponse is returned by the single-kind endpoint.
type KindResponse struct {
	Kind    pricing.OptionKind `json:"kind"`
	Price   float64            `json:"price"`
	Display string             `json:"display"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r PriceRequest) texts() [5]string {
	return [5]string{r.Spot.String(), r.Strike.String(), r.TimeToExpiry.String(), r.RiskFreeRate.String(), r.Volatility.String()}
}

// Price returns both call and put prices.
func (h *PricingHandler) Price(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := pricing.Price(req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.metrics.ObservePricing(source, metrics.OutcomeOK)
	c.JSON(http.StatusOK, PriceResponse{
		CallPrice: res.Call,
		PutPrice:  res.Put,
		Call:      shell.Round2(res.Call),
		Put:       shell.Round2(res.Put),
	})
}

// PriceKind returns the price of the leg named by the :kind path parameter.
func (h *PricingHandler) PriceKind(c *gin.Context) {
	kind, err := pricing.ParseKind(c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}

	req, ok := h.bind(c)
	if !ok {
		return
	}

	price, err := pricing.PriceKind(req, kind)
	if err != nil {
		h.fail(c, err)
		return
	}

	display := shell.CallLine(price)
	if kind == pricing.Put {
		display = shell.PutLine(price)
	}

	h.metrics.ObservePricing(source, metrics.OutcomeOK)
	c.JSON(http.StatusOK, KindResponse{Kind: kind, Price: price, Display: display})
}

func (h *PricingHandler) bind(c *gin.Context) (pricing.Request, bool) {
	var body PriceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, &pricing.InvalidInputError{Field: "body", Value: nil, Reason: err.Error()})
		return pricing.Request{}, false
	}

	req, err := shell.ParseRequest(body.texts())
	if err != nil {
		h.fail(c, err)
		return pricing.Request{}, false
	}
	return req, true
}

// fail maps invalid input to 400 with the generic message; anything else is a 500.
func (h *PricingHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, pricing.ErrInvalidInput) {
		logger.Debugf("rejected pricing request: %v", err)
		h.metrics.ObservePricing(source, metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, errorResponse{Error: shell.InvalidInputMessage})
		return
	}

	logger.Errorf("pricing request failed: %v", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
