package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/panelhive/panelhive/internal/api"
	"github.com/panelhive/panelhive/internal/db"
	"github.com/panelhive/panelhive/internal/middleware"
	"github.com/panelhive/panelhive/internal/services"
	"github.com/panelhive/panelhive/internal/storage"
	"github.com/panelhive/panelhive/internal/utils"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	addr := utils.Env("PANELHIVE_ADDR", ":8080")

	var store api.Store
	if path := os.Getenv("PANELHIVE_SQLITE_PATH"); path != "" {
		conn, err := sql.Open("sqlite3", path)
		if err != nil {
			log.Fatalf("server: open sqlite at %s: %v", path, err)
		}
		store, err = db.NewStore(conn)
		if err != nil {
			log.Fatalf("server: init sqlite store: %v", err)
		}
		log.Printf("server: sqlite store at %s", path)
	} else {
		store = api.NewMemoryStore()
		log.Printf("server: in-memory store (set PANELHIVE_SQLITE_PATH to persist)")
	}

	objects := storage.NewFSObjectStore(utils.Env("PANELHIVE_SCAN_DIR", "./scans"))

	rt := api.NewRouter(store, objects)
	mux := http.NewServeMux()
	rt.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"version": version})
	})
	mux.Handle("/metrics", middleware.MetricsHandler())

	seedAdmin(rt.AuthService(), store)

	handler := middleware.CORS(middleware.SecureHeaders(middleware.Metrics(middleware.WithAuth(mux))))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("server: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
}

// seedAdmin provisions the first admin account from the environment. A reused
// email is left untouched, so restarts are harmless.
func seedAdmin(auth *services.AuthService, store api.Store) {
	email := os.Getenv("PANELHIVE_ADMIN_EMAIL")
	pass := os.Getenv("PANELHIVE_ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return
	}
	if store.FindUserByEmail(email) != nil {
		return
	}
	role := utils.Env("PANELHIVE_ADMIN_ROLE", services.RoleSystemAdmin)
	if _, err := auth.RegisterAdmin(email, pass, role); err != nil {
		log.Printf("server: seed admin: %v", err)
		return
	}
	log.Printf("server: seeded admin account %s", email)
}
