package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"brainstormer/backend/pkg/errors"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestExpandNodeEndpoint_InvalidRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Mock endpoint
	router.POST("/api/expand-node", func(c *gin.Context) {
		var req struct {
			NodeID string `json:"nodeId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"nodes": []string{}})
	})

	// Test missing fields
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/expand-node", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.NewNodeNotFound("ghost"), http.StatusNotFound},
		{errors.NewCapacityExceeded(32, 1, 32), http.StatusConflict},
		{errors.ErrEmptyQuery, http.StatusBadRequest},
		{errors.NewUnknownParent("ghost"), http.StatusBadRequest},
		{errors.NewGenerationFailed("gpt-4o", fmt.Errorf("boom")), http.StatusBadGateway},
		{errors.NewSearchFailed("query", fmt.Errorf("boom")), http.StatusBadGateway},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), "error: %v", c.err)
	}
}

func TestInflight_OneExpansionPerNode(t *testing.T) {
	busy := newInflight()

	assert.True(t, busy.acquire("center"))
	assert.False(t, busy.acquire("center"), "second acquire for the same node must fail")
	assert.True(t, busy.acquire("center_0"), "other nodes are unaffected")

	busy.release("center")
	assert.True(t, busy.acquire("center"), "released node can be expanded again")
}
