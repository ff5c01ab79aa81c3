package error

type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
