package constants

import "time"

const (
	DefaultTimeout        = 30 * time.Second
	DefaultRequestTimeout = 15 * time.Second

	// Context keys
	ContextTokenData = "token_data"

	// Token scopes
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"

	// Privileges
	PrivilegeEdit    = "edit"
	PrivilegePublish = "publish"
	PrivilegeAdmin   = "admin"

	// Cache keys
	RedisKeyRefreshToken = "auth:refresh:"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
)
