package api

import (
	"errors"
	"log"

	"powerhub/internal/db"
	"powerhub/internal/rules"
	"powerhub/internal/web/middleware"
	webModels "powerhub/internal/web/models"

	"github.com/gin-gonic/gin"
)

type ruleListing struct {
	rules.Rule
	Summary rules.Summary `json:"summary"`
}

func RegisterAutomationRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, store *rules.Store, database *db.DB) {
	automations := r.Group("/automations")
	automations.Use(middleware.RequireAuth())
	{
		automations.GET("/rules", func(c *gin.Context) {
			all := store.Rules()
			listing := make([]ruleListing, len(all))
			for i, rule := range all {
				listing[i] = ruleListing{Rule: rule, Summary: rules.Summarize(rule)}
			}
			c.JSON(200, listing)
		})

		automations.GET("/rules/:id", func(c *gin.Context) {
			rule, ok := store.Get(c.Param("id"))
			if !ok {
				c.JSON(404, gin.H{"error": "Rule not found"})
				return
			}
			c.JSON(200, ruleListing{Rule: rule, Summary: rules.Summarize(rule)})
		})

		automations.POST("/rules", func(c *gin.Context) {
			var req webModels.AddRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			draft := rules.NewDraft(nil)
			draft.Name = req.Name
			draft.DeviceID = req.DeviceID
			for _, cond := range req.Conditions {
				draft.PutCondition(cond)
			}
			for _, act := range req.Actions {
				draft.PutAction(act)
			}

			rule, err := draft.Save()
			if err != nil {
				var incomplete *rules.IncompleteRuleError
				var invalid *rules.ValidationError
				switch {
				case errors.As(err, &incomplete):
					c.JSON(400, gin.H{"error": incomplete.Reason, "field": incomplete.Field})
				case errors.As(err, &invalid):
					c.JSON(400, gin.H{"error": "Validation failed", "fields": invalid.Fields})
				default:
					c.JSON(400, gin.H{"error": err.Error()})
				}
				return
			}

			// The rule is visible immediately; persistence settles in the
			// background and rolls back on failure.
			store.Create(rule)
			c.JSON(201, rule)
		})

		automations.PATCH("/rules/:id", func(c *gin.Context) {
			ruleID := c.Param("id")
			var req webModels.UpdateRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, ok := store.Get(ruleID)
			if !ok {
				c.JSON(404, gin.H{"error": "Rule not found"})
				return
			}

			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.DeviceID != nil {
				existing.DeviceID = *req.DeviceID
			}
			if req.Conditions != nil {
				existing.Conditions = *req.Conditions
			}
			if req.Actions != nil {
				existing.Actions = *req.Actions
			}

			if err := rules.ValidateRule(existing); err != nil {
				var incomplete *rules.IncompleteRuleError
				var invalid *rules.ValidationError
				switch {
				case errors.As(err, &incomplete):
					c.JSON(400, gin.H{"error": incomplete.Reason, "field": incomplete.Field})
				case errors.As(err, &invalid):
					c.JSON(400, gin.H{"error": "Validation failed", "fields": invalid.Fields})
				default:
					c.JSON(400, gin.H{"error": err.Error()})
				}
				return
			}

			store.Update(existing)
			c.JSON(200, existing)
		})

		automations.DELETE("/rules/:id", func(c *gin.Context) {
			store.Delete(c.Param("id"))
			c.JSON(200, gin.H{"status": "Rule deleted successfully"})
		})

		automations.PATCH("/rules/:id/toggle", func(c *gin.Context) {
			rule, ok := store.ToggleActive(c.Param("id"))
			if !ok {
				c.JSON(404, gin.H{"error": "Rule not found"})
				return
			}
			c.JSON(200, rule)
		})

		automations.GET("/rules/:id/history", func(c *gin.Context) {
			events, err := database.GetRuleEvents(c, c.Param("id"))
			if err != nil {
				log.Printf("API: failed to fetch rule history: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch rule history"})
				return
			}
			c.JSON(200, events)
		})
	}
}
