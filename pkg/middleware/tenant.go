package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freight-platform/booking-service/pkg/tenant"
)

// Tenant header names
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// Required rejects requests without a tenant header when true
	Required bool

	// DefaultTenantID is used when no tenant header is provided and Required is false
	DefaultTenantID string
}

// DefaultTenantConfig returns a configuration suitable for single-operator deployments
func DefaultTenantConfig() *TenantConfig {
	return &TenantConfig{
		Required:        false,
		DefaultTenantID: "default",
	}
}

// TenantContext extracts tenant scope from headers and attaches it to the
// request context so repositories can filter by tenant.
func TenantContext(config *TenantConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultTenantConfig()
	}

	return func(c *gin.Context) {
		tenantID := c.GetHeader(HeaderTenantID)
		userID := c.GetHeader(HeaderUserID)

		if tenantID == "" {
			if config.Required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    "MISSING_TENANT_CONTEXT",
					"message": "Tenant context is required",
				})
				return
			}
			tenantID = config.DefaultTenantID
		}

		tc := &tenant.Context{
			TenantID: tenantID,
			UserID:   userID,
		}

		ctx := tenant.NewContext(c.Request.Context(), tc)
		c.Request = c.Request.WithContext(ctx)
		c.Set("tenantContext", tc)

		c.Next()
	}
}

// GetTenantContext retrieves the tenant scope from the Gin context
func GetTenantContext(c *gin.Context) *tenant.Context {
	if val, exists := c.Get("tenantContext"); exists {
		if tc, ok := val.(*tenant.Context); ok {
			return tc
		}
	}
	return &tenant.Context{}
}
