// Package auth provides authentication and authorization for the application.
//
// It supports two authentication modes:
//   - "local": users register with email and password and call write
//     endpoints with a bearer token (default)
//   - "none": no authentication, all requests use DefaultUserID
//
// # Configuration
//
//	AUTH_MODE=local          # or none
//	JWT_SECRET=<secret>      # Auto-generated if empty (tokens die on restart)
//	AUTH_TOKEN_EXPIRY=1h     # Access token lifetime
//	AUTH_BCRYPT_COST=10      # bcrypt cost factor
//
// # Usage
//
//	authService, err := auth.NewService(usersRepo, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
//	books.POST("", authMiddleware.RequireAuth(), controller.CreateBook)
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
package auth
