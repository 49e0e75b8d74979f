package handlers

const (
	ErrKindValidation = errKindValidation
	ErrKindBadRequest = errKindBadRequest
	ErrKindNotFound   = errKindNotFound
	XLSXContentType   = xlsxContentType
)
