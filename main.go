package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/zestyzy/CampusStudyHub/api"
	"github.com/zestyzy/CampusStudyHub/calendar"
	"github.com/zestyzy/CampusStudyHub/config"
	"github.com/zestyzy/CampusStudyHub/domain"
	"github.com/zestyzy/CampusStudyHub/lan"
	"github.com/zestyzy/CampusStudyHub/storage"
)

type settingsStore struct {
	dir string
}

func (s settingsStore) Load() (config.Config, error) { return config.Load(s.dir) }

func (s settingsStore) Save(cfg config.Config) error { return config.Save(s.dir, cfg) }

type lanNotifier struct{}

func (lanNotifier) Broadcast(ctx context.Context, peers []lan.Peer, message string) []lan.Result {
	return lan.Broadcast(ctx, peers, message)
}

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := storage.New(dataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	rc := newRedisClient()
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			log.Fatalf("invalid CACHE_TTL: %v", err)
		}
		ttl = d
	}

	ctx := context.Background()
	conferences := storage.NewCollection[domain.Conference](store, "conferences")
	if _, err := storage.SeedConferences(ctx, conferences); err != nil {
		log.Fatalf("seed conferences: %v", err)
	}

	cols := api.Collections{
		Tasks:       storage.NewCache(storage.NewCollection[domain.Task](store, "tasks"), rc, ttl),
		Conferences: storage.NewCache(conferences, rc, ttl),
		Grades:      storage.NewCache(storage.NewCollection[domain.GradeRow](store, "grades"), rc, ttl),
		Experiments: storage.NewCache(storage.NewCollection[domain.Experiment](store, "experiments"), rc, ttl),
		Papers:      storage.NewCache(storage.NewCollection[domain.Paper](store, "papers"), rc, ttl),
	}

	auth := api.NewAuth(os.Getenv("AUTH_SHARED_SECRET"))

	var exporter api.CalendarExporter
	if credentials := os.Getenv("GOOGLE_CREDENTIALS_FILE"); credentials != "" {
		svc, err := calendar.New(ctx, credentials, os.Getenv("GOOGLE_TOKEN_FILE"), os.Getenv("CALENDAR_NAME"))
		if err != nil {
			log.Fatalf("calendar: %v", err)
		}
		exporter = svc
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger := log.New()
	api.Register(e, cols, settingsStore{dir: dataDir}, lanNotifier{}, exporter, auth, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// newRedisClient connects to REDIS_CONNECTION_STRING, or starts an embedded
// in-process instance so the snapshot cache works out of the box with no
// external services.
func newRedisClient() *redis.Client {
	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Warnf("embedded redis unavailable, caching disabled: %v", err)
			return nil
		}
		return redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	return redis.NewClient(redisOpts)
}
