package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the job-submission HTTP surface. The Manager's
// history store may be nil (see NewManager) — the service then runs
// history-less.
func SetupRouter(jobs *Manager, hub *Hub) *gin.Engine {
	r := gin.Default()

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handleHealth)
		pub.GET("/stream", hub.Subscribe)
	}

	protected := r.Group("/api/v1/jobs")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(30, 5).Middleware())
	{
		protected.POST("/generate", handleSubmitGenerate(jobs))
		protected.POST("/attack", handleSubmitAttack(jobs))
		protected.GET("/:id", handleGetJob(jobs))
	}

	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleSubmitGenerate(jobs *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := jobs.SubmitGenerate(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"id": id})
	}
}

func handleSubmitAttack(jobs *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AttackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := jobs.SubmitAttack(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"id": id})
	}
}

func handleGetJob(jobs *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := jobs.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}
