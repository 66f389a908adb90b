package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/models"
)

// RequireOpportunityOwnership loads the opportunity in the :id parameter
// scoped to the acting organization. Opportunities owned by someone else read
// as not found, never as forbidden.
func RequireOpportunityOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := GetOrganization(c)
		if !ok {
			apierrors.Forbidden(c, "Organization account required")
			c.Abort()
			return
		}

		oppID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid opportunity ID")
			c.Abort()
			return
		}

		var opp models.Opportunity
		if err := database.GetDB().
			Where("organization_id = ?", org.ID).
			First(&opp, oppID).Error; err != nil {
			apierrors.NotFound(c, "Opportunity not found")
			c.Abort()
			return
		}

		c.Set("opportunity", opp)
		c.Next()
	}
}

// GetOpportunity retrieves the opportunity loaded by RequireOpportunityOwnership
func GetOpportunity(c *gin.Context) (models.Opportunity, bool) {
	v, exists := c.Get("opportunity")
	if !exists {
		return models.Opportunity{}, false
	}
	opp, ok := v.(models.Opportunity)
	return opp, ok
}
