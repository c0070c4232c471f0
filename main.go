package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"

	"slidesync/config"
	"slidesync/core"
	"slidesync/handlers/api/presentations"
	handler "slidesync/handlers/socketio"
	"slidesync/room"
	"slidesync/session"
	"slidesync/stores"
)

func setupRouter(store core.PresentationStore) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "Connection", "Accept-Encoding", "Accept-Language", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presentations/{id}", presentations.HandleGet(store))
	})

	return r
}

// handleUI serves the client bundle from the configured public directory,
// falling back to index.html for client-side routes.
func handleUI(publicDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(publicDir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := publicDir + r.URL.Path
		if r.URL.Path == "/" || r.URL.Path == "" {
			http.ServeFile(w, r, publicDir+"/index.html")
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, publicDir+"/index.html")
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}

func waitForShutdown(ioo *socketio.Server) {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	logrus.Info("Shutting down...")
	ioo.Close(nil)
	os.Exit(0)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	listenAddress := flag.String("listen", fmt.Sprintf(":%d", cfg.Port), "The address to listen on.")
	logLevel := flag.String("loglevel", cfg.LogLevel, "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore(cfg)
	sessions := session.NewRegistry()

	ioo := handler.Setup(func(b room.Broadcaster) *room.Coordinator {
		return room.NewCoordinator(store, sessions, b, core.Role(cfg.DefaultRole))
	})

	r := setupRouter(store)
	r.Mount("/socket.io/", ioo.ServeHandler(nil))
	r.NotFound(handleUI(cfg.PublicDir))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo)
}
