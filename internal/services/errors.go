package services

import "errors"

// Document request errors
var (
	ErrUnknownDocumentKind = errors.New("unknown document kind")
	ErrRecipientRequired   = errors.New("a recipient is required for a packet")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrEmptyUpload         = errors.New("uploaded file is empty")
)
