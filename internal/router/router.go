package router

import (
	"context"
	"net/http"
	"time"

	mem "surgical-records/internal/adapters/storage/memory"
	_ "surgical-records/internal/docs"
	"surgical-records/internal/domain/capture"
	"surgical-records/internal/domain/export"
	"surgical-records/internal/domain/records"
	"surgical-records/internal/middleware"
	"surgical-records/internal/platform/logger"
	"surgical-records/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Store ya cargado. Si es nil se usa un slot en memoria (modo dev).
	Store *records.Store

	// Extractores; nil deja el canal respondiendo 503.
	Image extraction.ImageExtractor
	Audio extraction.AudioExtractor

	// Tope de cada extracción completa; debe quedar por debajo del WriteTimeout.
	ExtractionTimeout time.Duration

	Logger logger.Logger
	Now    func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	store := opts.Store
	if store == nil {
		store = records.NewStore(mem.NewSlot(), log)
		// slot vacío: no puede fallar
		_, _ = store.Load(context.Background())
	}

	captureSvc := capture.NewService(capture.Options{
		Builder: records.NewBuilder(opts.Now),
		Store:   store,
		Image:   opts.Image,
		Audio:   opts.Audio,
		Logger:  log,
		Timeout: opts.ExtractionTimeout,
	})

	// Rutas por módulo. export va antes que /records/{recordID}: chi prioriza
	// segmentos estáticos, el orden es solo por legibilidad.
	capture.RegisterRoutes(r, captureSvc)
	export.RegisterRoutes(r, store, export.Options{Logger: log, Now: opts.Now})
	records.RegisterRoutes(r, store)

	return r
}
