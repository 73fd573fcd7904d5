package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// OrderItemsRoutes registers the upload and metrics routes on r.
// It is used both at the root and under /api/v1/order-items.
func OrderItemsRoutes(upload *UploadHandler, metrics *MetricsHandler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Post("/upload", upload.Upload)

		r.Route("/uploads/{file_id}", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(metrics.UploadCtx)
			r.Get("/processing-stats", metrics.ProcessingStats)
			r.Get("/metrics", metrics.Metrics)
			r.Get("/metrics/export", metrics.Export)
		})
	}
}
