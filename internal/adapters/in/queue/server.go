package queue

import (
	"sameday/internal/adapters/out/queue"

	"github.com/hibiken/asynq"
)

// Server runs the consumer until Shutdown.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(cfg queue.Config, consumer *Consumer, logger asynq.Logger) *Server {
	opt, serverCfg := queue.ServerConfig(cfg)
	serverCfg.Logger = logger
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Server{server: asynq.NewServer(opt, serverCfg), mux: mux}
}

// Start processes tasks in background goroutines and returns.
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}
