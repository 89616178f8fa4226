// internal/app/system/limits/limits.go
package limits

// Request body size limits for JSON endpoints.
const (
	// MaxJSONBody caps ordinary create/update payloads.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxContentBody caps news, prayer and activity payloads, whose bodies
	// carry rich text.
	MaxContentBody = 4 << 20 // 4 MB

	// MaxAuthBody caps sign-in payloads.
	MaxAuthBody = 16 << 10 // 16 KB
)
