package utils

type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate it
// into an HTTP response.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
