// Package services implements the business logic of the order metrics service.
// It sits between the HTTP handlers and the ingestion pipeline, the upload
// store and the event feed.
//
// # Available Services
//
//	- IngestionService: downloads a CSV, classifies its rows and stores the
//	  cleaned table under a new file id
//	- MetricsService: processing stats, metrics reports and report exports of
//	  stored uploads
//	- HealthService: health, readiness, liveness and runtime statistics
//
// # Error Handling
//
// Services return domain errors unchanged so handlers can map them:
//
//	- ErrInvalidFileID, ErrInvalidGroupBy for invalid parameters
//	- ErrUploadNotFound for unknown file ids
//	- *files.TransportError when the source cannot be downloaded
//	- *dataprocessing.DecodeError, *dataprocessing.StructuralParseError and
//	  *dataprocessing.SchemaError for unusable content
//
// # Testing
//
// Collaborators are interfaces (Fetcher, UploadStore, EventPublisher) and are
// mocked with testify:
//
//	fetcher := new(MockFetcher)
//	fetcher.On("Fetch", mock.Anything, url).Return(body, nil)
//	svc := NewIngestionService(fetcher, storage.NewMemoryStore(0), IngestionOptions{}, logger)
package services
