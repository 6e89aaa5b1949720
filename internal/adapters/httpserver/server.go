// Package httpserver maps HTTP requests to settlement-core calls and error
// kinds to status codes. The core stays transport-agnostic; everything here
// is a thin translation layer.
package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"energytrader/internal/app"
	"energytrader/internal/domain"
	"energytrader/internal/ports"
)

// Server exposes the settlement engine over HTTP/JSON.
type Server struct {
	router  *gin.Engine
	service *app.SettlementService
	logger  ports.Logger
	metrics *Metrics
}

// NewServer creates the gin router and registers all routes.
func NewServer(service *app.SettlementService, logger ports.Logger, metrics *Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		service: service,
		logger:  logger,
		metrics: metrics,
	}
	if metrics != nil {
		router.Use(metrics.Middleware())
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.root)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.POST("/trade", s.executeTrade)
		api.GET("/balance/:user_id", s.getUserBalance)
		api.GET("/all-balances", s.getAllBalances)
		api.GET("/history", s.getHistory)
	}
}

// --- Request/Response Schemas ---

type tradeRequest struct {
	SellerID     string     `json:"seller_id" binding:"required,min=3,max=50"`
	BuyerID      string     `json:"buyer_id" binding:"required,min=3,max=50"`
	EnergyAmount float64    `json:"energy_amount" binding:"required"`
	PricePerUnit float64    `json:"price_per_unit" binding:"required"`
	Timestamp    *time.Time `json:"timestamp"`
}

type tradeResponse struct {
	TradeID      string    `json:"trade_id"`
	SellerID     string    `json:"seller_id"`
	BuyerID      string    `json:"buyer_id"`
	EnergyAmount float64   `json:"energy_amount"`
	PricePerUnit float64   `json:"price_per_unit"`
	TotalPrice   float64   `json:"total_price"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message"`
	TradeHash    string    `json:"trade_hash"`
}

type balanceResponse struct {
	UserID        string  `json:"user_id"`
	EnergyBalance float64 `json:"energy_balance"`
}

type historyEntry struct {
	SellerID     string    `json:"seller_id"`
	BuyerID      string    `json:"buyer_id"`
	EnergyAmount float64   `json:"energy_amount"`
	PricePerUnit float64   `json:"price_per_unit"`
	Timestamp    time.Time `json:"timestamp"`
	TradeHash    string    `json:"trade_hash"`
	SettledAt    time.Time `json:"settled_at"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Handlers ---

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "P2P Energy Trading API Running"})
}

func (s *Server) executeTrade(c *gin.Context) {
	var body tradeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	req := &domain.TradeRequest{
		SellerID:     body.SellerID,
		BuyerID:      body.BuyerID,
		EnergyAmount: body.EnergyAmount,
		PricePerUnit: body.PricePerUnit,
	}
	if body.Timestamp != nil {
		req.Timestamp = *body.Timestamp
	}

	receipt, err := s.service.Settle(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordSettlement(outcomeCompleted)
	}
	c.JSON(http.StatusOK, tradeResponse{
		TradeID:      receipt.TradeID,
		SellerID:     receipt.SellerID,
		BuyerID:      receipt.BuyerID,
		EnergyAmount: receipt.EnergyAmount,
		PricePerUnit: receipt.PricePerUnit,
		TotalPrice:   receipt.TotalPrice,
		Status:       string(receipt.Status),
		Timestamp:    receipt.Timestamp,
		Message:      receipt.Message,
		TradeHash:    receipt.TradeHash,
	})
}

func (s *Server) getUserBalance(c *gin.Context) {
	userID := c.Param("user_id")
	// Unknown users read as 0.0 rather than 404ing.
	c.JSON(http.StatusOK, balanceResponse{
		UserID:        userID,
		EnergyBalance: s.service.BalanceOf(userID),
	})
}

func (s *Server) getAllBalances(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.AllBalances())
}

func (s *Server) getHistory(c *gin.Context) {
	entries := s.service.History()
	if user := c.Query("user_id"); user != "" {
		entries = s.service.HistoryForUser(user)
	}

	out := make([]historyEntry, len(entries))
	for i, entry := range entries {
		out[i] = historyEntry{
			SellerID:     entry.Request.SellerID,
			BuyerID:      entry.Request.BuyerID,
			EnergyAmount: entry.Request.EnergyAmount,
			PricePerUnit: entry.Request.PricePerUnit,
			Timestamp:    entry.Request.Timestamp,
			TradeHash:    entry.Fingerprint,
			SettledAt:    entry.SettledAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// writeError maps settlement error kinds to HTTP responses. All
// caller-recoverable settlement failures are 400s with a detail body;
// anything else is a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	if ports.IsSettlementError(err) {
		if s.metrics != nil {
			s.metrics.RecordSettlement(outcomeForError(err))
		}
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	s.logger.Error(c.Request.Context(), err, "Unhandled settlement failure")
	if s.metrics != nil {
		s.metrics.RecordSettlement(outcomeInternal)
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: "internal error"})
}
