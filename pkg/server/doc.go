// Package server hosts the management API and the mock gateway on a single
// HTTP listener.
//
// Management routes live at the root (/health, /projects, ...). Mock routes
// live under /{prefix}/ where prefix defaults to "mock":
//
//	st, _ := server.OpenStore(ctx, cfg.Store(), log)
//	srv := server.New(cfg, st, server.WithLogger(log))
//	err := srv.Run(ctx) // returns after ctx is cancelled and shutdown completes
package server
