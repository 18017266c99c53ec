// Command httpcored is a demo binary embedding the httpcore server: it
// wires together routes, a mounted sub-router, JSON responses, and gzip to
// exercise the framework end to end.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/slicingmelon/go-httpcore"
)

type config struct {
	port            int
	corePoolSize    int
	maxPoolSize     int
	queueCapacity   int
	idleTimeoutSecs int
	verbose         bool
	debug           bool
}

func parseFlags() *config {
	cfg := &config{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("httpcored: embeddable HTTP/1.1 server demo")

	flagSet.CreateGroup("server", "Server",
		flagSet.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on"),
		flagSet.IntVarP(&cfg.corePoolSize, "core-pool", "c", 8, "core worker pool size"),
		flagSet.IntVarP(&cfg.maxPoolSize, "max-pool", "m", 64, "max worker pool size"),
		flagSet.IntVarP(&cfg.queueCapacity, "queue", "q", 1024, "worker queue capacity"),
		flagSet.IntVarP(&cfg.idleTimeoutSecs, "idle-timeout", "i", 60, "idle connection timeout in seconds"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "verbose output"),
		flagSet.BoolVarP(&cfg.debug, "debug", "d", false, "debug output"),
	)

	if err := flagSet.Parse(); err != nil {
		panic(err)
	}
	return cfg
}

func main() {
	cfg := parseFlags()
	logger := httpcore.NewLogger(cfg.verbose, cfg.debug)

	srv := httpcore.NewServer(
		httpcore.WithPort(cfg.port),
		httpcore.WithPoolSizes(cfg.corePoolSize, cfg.maxPoolSize, cfg.queueCapacity),
		httpcore.WithIdleTimeout(time.Duration(cfg.idleTimeoutSecs)*time.Second),
		httpcore.WithLogger(logger),
	)

	registerDemoRoutes(srv)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		ok, err := srv.Stop(10 * time.Second)
		if err != nil {
			logger.Error("shutdown reported errors", err)
		}
		if !ok {
			logger.Warn("shutdown did not complete within the grace period")
		}
	}()

	logger.Info("listening", "port", cfg.port)
	if err := srv.Start(); err != nil {
		logger.Error("server exited", err)
		os.Exit(1)
	}
}

// registerDemoRoutes wires routes covering spec-scenario shapes S1-S4: path
// params, a JSON POST response, gzip, and two independently mounted
// sub-routers.
func registerDemoRoutes(srv *httpcore.Server) {
	root := srv.Router()

	root.GET("/users/:u/orders/:o", func(req *httpcore.Request, res *httpcore.Response) {
		res.WriteText("u=" + req.PathParam("u") + ",o=" + req.PathParam("o"))
		_ = res.Send()
	})

	root.POST("/api/data/:key", func(req *httpcore.Request, res *httpcore.Response) {
		res.SetStatus(201).WriteJSON(map[string]any{
			"ok":  true,
			"key": req.PathParam("key"),
		})
		_ = res.Send()
	})

	root.GET("/", func(req *httpcore.Request, res *httpcore.Response) {
		res.EnableGzip().WriteText("hello")
		_ = res.Send()
	})

	v1 := httpcore.NewRouter()
	v1.GET("/ping", func(req *httpcore.Request, res *httpcore.Response) {
		res.WriteText("pong from v1")
		_ = res.Send()
	})
	srv.Mount("/api/v1", v1)

	v2 := httpcore.NewRouter()
	v2.GET("/ping", func(req *httpcore.Request, res *httpcore.Response) {
		res.WriteText("pong from v2")
		_ = res.Send()
	})
	srv.Mount("/api/v2", v2)
}
