package resp

const (
	CodeOK            = 0
	CodeQueued        = 2002
	CodeBadRequest    = 4000
	CodeNotFound      = 4004
	CodeInternalError = 5000
)
