// Package http implements the HTTP handlers of the logistics dashboard.
// Handlers stay thin: they parse and validate the request, call the service
// layer and translate its errors into RFC 7807 problem details through
// apierrors.ErrorHandler.
//
// # Endpoints
//
//	GET  /api/vocabulary            active product table and labels
//	POST /api/orders/analyze        multipart "file"; JSON report summary
//	POST /api/documents/{kind}      multipart "file"; document bytes
//	GET  /api/health                liveness summary
//	GET  /api/health/live           liveness with runtime details
//	GET  /api/health/ready          readiness, 503 when a probe fails
//	GET  /api/version               build information
//
// Document kinds are troop-summary, pick-list, packing-slips, packet and
// archive. The format query parameter selects csv, xlsx, html or pdf; packet
// downloads also need a recipient parameter.
//
// # Errors
//
// Pipeline failures keep their stable error_code and the failing stage.
// Service sentinels map as follows:
//
//	services.ErrEmptyUpload          400 EMPTY_UPLOAD
//	services.ErrRecipientRequired    400 VALIDATION_FAILED
//	exporter.ErrUnsupportedFormat    400 UNSUPPORTED_DOCUMENT_FORMAT
//	exporter.ErrFormatDisabled       400 FORMAT_DISABLED
//	services.ErrUnknownDocumentKind  404 UNKNOWN_DOCUMENT_KIND
//	services.ErrRecipientNotFound    404 RECIPIENT_NOT_FOUND
//
// The service keeps no reports between requests, so every download carries
// the export it is built from.
package http
