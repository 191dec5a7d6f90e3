// Package grpc exposes the platform-standard gRPC port: stock health
// checking plus server reflection. The withdrawal API itself is HTTP-only.
package grpc

import (
	googlegrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewServer creates a gRPC server with health and reflection registered
func NewServer() (*googlegrpc.Server, *health.Server) {
	server := googlegrpc.NewServer()

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(server)
	return server, healthServer
}
