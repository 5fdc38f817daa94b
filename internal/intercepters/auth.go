// Package intercepters holds the gRPC server interceptors: owner resolution
// from JWT metadata, zap logging and trusted subnet checks.
package intercepters

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/middleware"
)

// NewTokenTrailer is the trailer key carrying a token issued for a caller
// that sent none.
const NewTokenTrailer = "new-token"

// OwnerLogField is the call log field holding the resolved owner.
const OwnerLogField = "owner"

// WithJWT resolves the owner of a call from the "authorization" metadata.
// An invalid token is rejected. Without a token the owner is fallback(), or
// a freshly issued token returned in the trailer when fallback is nil. The
// owner is added to the fields of the logging interceptor, if any.
func WithJWT(auth service.AuthIface, fallback func() string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var userID string

		md, _ := metadata.FromIncomingContext(ctx)
		authHeader := md.Get("authorization")

		switch {
		case len(authHeader) > 0 && authHeader[0] != "":
			tokenString := strings.TrimSpace(authHeader[0])
			if len(tokenString) >= 7 && strings.EqualFold(tokenString[:7], "bearer ") {
				tokenString = strings.TrimSpace(tokenString[7:])
			}
			claims, err := auth.ParseRawJWT(tokenString)
			if err != nil {
				return nil, status.Errorf(codes.Unauthenticated, "invalid JWT: %v", err)
			}
			userID = claims.UserID
		case fallback != nil:
			userID = fallback()
		default:
			token, generatedID, err := auth.BuildJWTString("")
			if err != nil {
				return nil, status.Errorf(codes.Internal, "failed to build JWT: %v", err)
			}
			userID = generatedID
			_ = grpc.SetTrailer(ctx, metadata.Pairs(NewTokenTrailer, token))
		}

		logging.AddFields(ctx, logging.Fields{OwnerLogField, userID})
		ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
		return handler(ctx, req)
	}
}
