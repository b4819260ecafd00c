package request

// SubmitRequest is the request body for submitting credentials to a form
type SubmitRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
