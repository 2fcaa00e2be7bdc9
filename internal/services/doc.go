// Package services implements the business logic between the HTTP handlers
// and the processing packages.
//
// LogisticsService owns one upload's journey: it runs the dataprocessing
// pipeline over the uploaded bytes, then renders documents of the resulting
// report through the exporter package. It records upload, stage, document
// and archive metrics on infrastructure.BusinessMetrics when one is supplied.
//
// HealthService backs the liveness, readiness and version endpoints.
// Readiness is the conjunction of the probes it was built with.
//
// Services take their dependencies in the constructor and keep no state
// between calls, so a single instance serves concurrent requests:
//
//	svc := services.NewLogisticsService(vocab, labels, services.LogisticsConfig{
//		Limits:         dataprocessing.Limits{MaxRows: 50000, MaxColumns: 500},
//		Render:         exporter.Options{Title: "Troop 1234"},
//		ArchiveWorkers: 4,
//	}, metrics, logger)
//
//	report, err := svc.Process(ctx, data, "export.csv")
//	doc, err := svc.Render(ctx, report, services.DocumentRequest{
//		Kind:   domain.DocumentPickList,
//		Format: domain.FormatXLSX,
//	})
package services
