package main

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/internal/chat"
	"brainstormer/backend/internal/expand"
	"brainstormer/backend/internal/extract"
	"brainstormer/backend/internal/insights"
	"brainstormer/backend/internal/layout"
	"brainstormer/backend/internal/mindmap"
	"brainstormer/backend/internal/relay"
	"brainstormer/backend/internal/search"
	"brainstormer/backend/pkg/config"
	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting brainstormer API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize dependencies
	store := mindmap.NewStore()
	llm := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ModelID, cfg.FastModelID)

	var provider search.Provider
	if cfg.TavilyAPIKey != "" {
		provider = search.NewTavilyProvider(cfg.TavilyAPIKey)
	} else {
		log.Warn("TAVILY_API_KEY not set, using keyless search provider")
		provider = search.NewDuckDuckGoProvider()
	}
	searcher := search.NewClient(provider, cfg.SearchCacheTTL, cfg.SearchMaxResults)

	orchestrator := expand.NewOrchestrator(store, llm)
	chatSvc := chat.NewService(chat.NewSessionStore(), llm, searcher)
	insightsSvc := insights.NewService(llm, llm, searcher)

	// Continuous layout simulation
	params := layout.DefaultParams(cfg.CanvasWidth, cfg.CanvasHeight)
	params.LinkStrength = cfg.LinkStrength
	params.ChargeStrength = cfg.ChargeStrength
	params.CollideStrength = cfg.CollideStrength
	params.CenterStrength = cfg.CenterStrength
	engine := layout.NewEngine(store, params)
	runner := layout.NewRunner(engine, 0)

	layoutCtx, stopLayout := context.WithCancel(context.Background())
	defer stopLayout()
	go runner.Start(layoutCtx)

	// At most one expansion per node may be in flight
	busy := newInflight()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Create a mind map from a seed idea
		api.POST("/mindmap", func(c *gin.Context) {
			var req struct {
				Idea string `json:"idea" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			graph, err := orchestrator.GenerateRoot(c.Request.Context(), req.Idea, cfg.CanvasWidth, cfg.CanvasHeight)
			if err != nil {
				log.Error("Failed to generate mind map", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}

			engine.Reheat()
			c.JSON(http.StatusOK, graph)
		})

		// Current graph snapshot with simulated positions
		api.GET("/mindmap", func(c *gin.Context) {
			c.JSON(http.StatusOK, store.Snapshot())
		})

		// Expand one node by one batch of suggestions
		api.POST("/expand-node", func(c *gin.Context) {
			var req struct {
				NodeID string `json:"nodeId" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			if !busy.acquire(req.NodeID) {
				c.JSON(http.StatusConflict, gin.H{"error": "expansion already in progress for this node"})
				return
			}
			defer busy.release(req.NodeID)

			expansion, err := orchestrator.Expand(c.Request.Context(), req.NodeID)
			if err != nil {
				log.Error("Failed to expand node",
					zap.String("node", req.NodeID),
					zap.Error(err),
				)
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}

			engine.Reheat()
			c.JSON(http.StatusOK, expansion)
		})

		// Live position batches while the simulation is hot
		api.GET("/mindmap/positions", func(c *gin.Context) {
			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")
			c.Writer.WriteHeader(http.StatusOK)
			c.Writer.Flush()

			ctx := c.Request.Context()
			for {
				select {
				case <-ctx.Done():
					return
				case batch := <-runner.Positions():
					payload, err := json.Marshal(batch)
					if err != nil {
						continue
					}
					fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
					c.Writer.Flush()
				}
			}
		})

		// Re-layout the graph as a tidy horizontal tree
		api.POST("/mindmap/reorganize", func(c *gin.Context) {
			snapshot := store.Snapshot()
			if len(snapshot.Nodes) == 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "graph is empty"})
				return
			}

			positions := layout.TreeLayout(snapshot, cfg.CanvasWidth, cfg.CanvasHeight)
			for i := range snapshot.Nodes {
				if pos, ok := positions[snapshot.Nodes[i].ID]; ok {
					snapshot.Nodes[i].X = pos[0]
					snapshot.Nodes[i].Y = pos[1]
					snapshot.Nodes[i].Pinned = true
				}
			}

			if err := store.ReplaceAll(snapshot.Nodes, snapshot.Links); err != nil {
				log.Error("Failed to apply tree layout", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}

			engine.Reheat()
			c.JSON(http.StatusOK, store.Snapshot())
		})

		// Mark a node as selected for the final idea
		api.POST("/node/:id/click", func(c *gin.Context) {
			if err := store.MarkClicked(c.Param("id")); err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "clicked"})
		})

		// Pin a node at a fixed position
		api.POST("/node/:id/pin", func(c *gin.Context) {
			var req struct {
				X *float64 `json:"x" binding:"required"`
				Y *float64 `json:"y" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			if err := store.Pin(c.Param("id"), *req.X, *req.Y); err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "pinned"})
		})

		// Release a pinned node back to the simulation
		api.DELETE("/node/:id/pin", func(c *gin.Context) {
			if err := store.Unpin(c.Param("id")); err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			engine.Reheat()
			c.JSON(http.StatusOK, gin.H{"status": "unpinned"})
		})

		// Tune force strengths; omitted fields keep their value
		api.PUT("/forces", func(c *gin.Context) {
			var req struct {
				Link    *float64 `json:"link"`
				Charge  *float64 `json:"charge"`
				Collide *float64 `json:"collide"`
				Center  *float64 `json:"center"`
				Group   *float64 `json:"group"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			next := engine.Params()
			if req.Link != nil {
				next.LinkStrength = *req.Link
			}
			if req.Charge != nil {
				next.ChargeStrength = *req.Charge
			}
			if req.Collide != nil {
				next.CollideStrength = *req.Collide
			}
			if req.Center != nil {
				next.CenterStrength = *req.Center
			}
			if req.Group != nil {
				next.GroupStrength = *req.Group
			}

			engine.SetParams(next)
			c.JSON(http.StatusOK, next)
		})

		// Streaming chat over a server-side transcript
		api.POST("/chat", func(c *gin.Context) {
			var req struct {
				Message   string `json:"message" binding:"required"`
				SessionID string `json:"sessionId"`
				UseSearch bool   `json:"useSearch"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			ctx := c.Request.Context()
			session, source, err := chatSvc.Stream(ctx, req.SessionID, req.Message, req.UseSearch)
			if err != nil {
				log.Error("Failed to open chat stream", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}

			c.Writer.Header().Set("X-Session-Id", session.ID)
			reply, completed := relay.WriteSSE(c, relay.Open(ctx, source))
			if completed {
				chatSvc.Record(session, reply)
			}
		})

		// Stream the final business document for the clicked concepts
		api.POST("/generate-idea", func(c *gin.Context) {
			root, ok := store.Get(mindmap.RootID)
			if !ok {
				c.JSON(http.StatusConflict, gin.H{"error": "no mind map to summarize"})
				return
			}

			ctx := c.Request.Context()
			source, err := insightsSvc.FinalIdeaStream(ctx, store.ClickedNames(), root.Name)
			if err != nil {
				log.Error("Failed to open idea stream", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}

			relay.WriteSSEFinal(c, relay.Open(ctx, source), func(full string) any {
				return gin.H{"plan": extract.Extract(full)}
			})
		})

		// Predict how long the final document will take
		api.POST("/estimate-generation-time", func(c *gin.Context) {
			var req struct {
				Nodes []string `json:"nodes"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"estimatedTime": insightsSvc.EstimateGenerationTime(len(req.Nodes)),
			})
		})

		// Web search
		api.POST("/search", func(c *gin.Context) {
			var req struct {
				Query string `json:"query"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			results, err := searcher.Search(c.Request.Context(), req.Query)
			if err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"results": results})
		})

		// Industry trends report
		api.GET("/trends", func(c *gin.Context) {
			trends, err := insightsSvc.IndustryTrends(c.Request.Context())
			if err != nil {
				log.Error("Failed to generate trends", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"trends": trends})
		})

		// Distill an idea into searchable terms
		api.POST("/distill-searchable-terms", func(c *gin.Context) {
			var req struct {
				Idea string `json:"idea" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			terms, err := insightsSvc.DistillSearchTerms(c.Request.Context(), req.Idea)
			if err != nil {
				log.Error("Failed to distill search terms", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"terms": terms})
		})

		// Market analysis over the distilled-terms search fan-out
		api.POST("/market-analysis", func(c *gin.Context) {
			var req struct {
				Idea string `json:"idea" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			analysis, err := insightsSvc.AnalyzeMarket(c.Request.Context(), req.Idea)
			if err != nil {
				log.Error("Failed to analyze market", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, analysis)
		})

		// Competitor landscape
		api.POST("/competitor-analysis", func(c *gin.Context) {
			var req struct {
				Idea string `json:"idea" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			competitors, err := insightsSvc.CompetitorLandscape(c.Request.Context(), req.Idea)
			if err != nil {
				log.Error("Failed to analyze competitors", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"competitors": competitors})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopLayout()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	var notFound *errors.ErrNodeNotFound
	var capacity *errors.ErrCapacityExceeded
	switch {
	case goerrors.As(err, &notFound):
		return http.StatusNotFound
	case goerrors.As(err, &capacity):
		return http.StatusConflict
	case goerrors.Is(err, errors.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.IsErrorType(err, errors.ErrorTypeGraph):
		return http.StatusBadRequest
	case errors.IsErrorType(err, errors.ErrorTypeGeneration),
		errors.IsErrorType(err, errors.ErrorTypeSearch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// inflight tracks node IDs with an expansion currently running
type inflight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[string]struct{})}
}

func (f *inflight) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *inflight) release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
